// Package lowstock finds products running out of stock and tells an
// administrator about each of them.
package lowstock

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veo1/catalog-api/models"
)

// DefaultThreshold is the stock level under which a product is reported.
const DefaultThreshold = 10

type ProductSource interface {
	LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error)
}

type AdministratorDirectory interface {
	ListAdmins(ctx context.Context) ([]models.User, error)
}

type Notifier interface {
	NotifyLowStock(ctx context.Context, admin models.User, product models.Product) error
}

// Report summarises one scan.
type Report struct {
	Scanned  int
	Notified int
	Skipped  int
	Failed   int
}

// Scanner reports each low-stock product to the first administrator found.
// Runs are not idempotent: a product still low on the next run is reported again.
type Scanner struct {
	products  ProductSource
	admins    AdministratorDirectory
	notifier  Notifier
	threshold int
	log       logrus.FieldLogger
}

func NewScanner(products ProductSource, admins AdministratorDirectory, notifier Notifier, threshold int, log logrus.FieldLogger) *Scanner {
	return &Scanner{
		products:  products,
		admins:    admins,
		notifier:  notifier,
		threshold: threshold,
		log:       log,
	}
}

// Run performs one scan. Only a failure to list products aborts it; each
// product's admin lookup and notification fail on their own.
func (s *Scanner) Run(ctx context.Context) (Report, error) {
	var report Report

	products, err := s.products.LowStockProducts(ctx, s.threshold)
	if err != nil {
		return report, fmt.Errorf("low stock scan: %w", err)
	}
	report.Scanned = len(products)

	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		entry := s.log.WithFields(logrus.Fields{
			"product_id": product.ID,
			"stock":      product.Stock,
		})

		admin, ok, err := s.firstAdmin(ctx)
		if err != nil {
			report.Failed++
			entry.WithError(err).Error("low stock: admin lookup failed")
			continue
		}
		if !ok {
			report.Skipped++
			entry.Warn("low stock: no administrator to notify")
			continue
		}

		if err := s.notifier.NotifyLowStock(ctx, admin, product); err != nil {
			report.Failed++
			entry.WithError(err).WithField("admin_id", admin.ID).Error("low stock: notification failed")
			continue
		}

		report.Notified++
		entry.WithField("admin_id", admin.ID).Infof("low stock notification sent for %s", product.Name)
	}

	return report, nil
}

func (s *Scanner) firstAdmin(ctx context.Context) (models.User, bool, error) {
	admins, err := s.admins.ListAdmins(ctx)
	if err != nil || len(admins) == 0 {
		return models.User{}, false, err
	}
	return admins[0], true, nil
}

// Start runs a scan right away and then on every tick until ctx is done.
func (s *Scanner) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.runLogged(ctx)

		select {
		case <-ctx.Done():
			s.log.Info("low stock scanner stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scanner) runLogged(ctx context.Context) {
	report, err := s.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.WithError(err).Error("low stock scan failed")
		}
		return
	}

	s.log.WithFields(logrus.Fields{
		"scanned":  report.Scanned,
		"notified": report.Notified,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
	}).Info("low stock scan finished")
}
