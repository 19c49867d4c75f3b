// Package events holds the subscribers of product change events.
package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/veo1/catalog-api/models"
)

// LogSink writes one line per product change.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) OnProductChanged(_ context.Context, event models.ProductChanged) error {
	s.log.WithFields(logrus.Fields{
		"product_id": event.Product.ID,
		"action":     event.Action,
	}).Infof("Product %s: %s", event.Action, event.Product.Name)
	return nil
}
