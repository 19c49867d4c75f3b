package lowstock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veo1/catalog-api/models"
)

// --- Fakes ---

type fakeProducts struct {
	Products []models.Product
	Err      error

	calls         int
	lastThreshold int
	onCall        func(n int)
}

func (f *fakeProducts) LowStockProducts(_ context.Context, threshold int) ([]models.Product, error) {
	f.calls++
	f.lastThreshold = threshold
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	return f.Products, f.Err
}

type fakeAdmins struct {
	Admins []models.User
	Err    error
}

func (f *fakeAdmins) ListAdmins(context.Context) ([]models.User, error) {
	return f.Admins, f.Err
}

type sent struct {
	AdminID   uint
	ProductID uint
}

type fakeNotifier struct {
	// FailFor makes notifications about these product ids fail.
	FailFor map[uint]bool
	Sent    []sent
}

func (f *fakeNotifier) NotifyLowStock(_ context.Context, admin models.User, product models.Product) error {
	if f.FailFor[product.ID] {
		return errors.New("mail server unavailable")
	}
	f.Sent = append(f.Sent, sent{AdminID: admin.ID, ProductID: product.ID})
	return nil
}

func lowProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Hammer", Stock: 5},
		{ID: 2, Name: "Hose", Stock: 0},
	}
}

// --- Tests ---

func TestRun(t *testing.T) {
	admins := []models.User{
		{ID: 7, Name: "Root", IsAdmin: true},
		{ID: 8, Name: "Ops", IsAdmin: true},
	}

	testCases := []struct {
		name           string
		products       *fakeProducts
		admins         *fakeAdmins
		notifier       *fakeNotifier
		expectedReport Report
		expectedSent   []sent
		expectErr      bool
	}{
		{
			name:           "Notifies the first administrator",
			products:       &fakeProducts{Products: lowProducts()},
			admins:         &fakeAdmins{Admins: admins},
			notifier:       &fakeNotifier{},
			expectedReport: Report{Scanned: 2, Notified: 2},
			expectedSent:   []sent{{AdminID: 7, ProductID: 1}, {AdminID: 7, ProductID: 2}},
		},
		{
			name:           "Nothing below threshold",
			products:       &fakeProducts{},
			admins:         &fakeAdmins{Admins: admins},
			notifier:       &fakeNotifier{},
			expectedReport: Report{},
		},
		{
			name:           "No administrator",
			products:       &fakeProducts{Products: lowProducts()},
			admins:         &fakeAdmins{},
			notifier:       &fakeNotifier{},
			expectedReport: Report{Scanned: 2, Skipped: 2},
		},
		{
			name:           "Admin lookup failure",
			products:       &fakeProducts{Products: lowProducts()},
			admins:         &fakeAdmins{Err: errors.New("db down")},
			notifier:       &fakeNotifier{},
			expectedReport: Report{Scanned: 2, Failed: 2},
		},
		{
			name:           "One failed notification does not stop the scan",
			products:       &fakeProducts{Products: lowProducts()},
			admins:         &fakeAdmins{Admins: admins},
			notifier:       &fakeNotifier{FailFor: map[uint]bool{1: true}},
			expectedReport: Report{Scanned: 2, Notified: 1, Failed: 1},
			expectedSent:   []sent{{AdminID: 7, ProductID: 2}},
		},
		{
			name:      "Listing failure aborts",
			products:  &fakeProducts{Err: errors.New("db down")},
			admins:    &fakeAdmins{Admins: admins},
			notifier:  &fakeNotifier{},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			log, _ := logtest.NewNullLogger()
			scanner := NewScanner(tc.products, tc.admins, tc.notifier, DefaultThreshold, log)

			// Act
			report, err := scanner.Run(context.Background())

			// Assert
			if tc.expectErr {
				assert.Error(t, err)
				assert.Empty(t, tc.notifier.Sent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedReport, report)
			assert.Equal(t, tc.expectedSent, tc.notifier.Sent)
			assert.Equal(t, DefaultThreshold, tc.products.lastThreshold)
		})
	}
}

func TestRunLogsSkippedAndFailedProducts(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	scanner := NewScanner(
		&fakeProducts{Products: lowProducts()},
		&fakeAdmins{Admins: []models.User{{ID: 7}}},
		&fakeNotifier{FailFor: map[uint]bool{2: true}},
		DefaultThreshold,
		log,
	)

	_, err := scanner.Run(context.Background())
	require.NoError(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "low stock notification sent for Hammer", entries[0].Message)
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, uint(2), entries[1].Data["product_id"])
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	notifier := &fakeNotifier{}
	scanner := NewScanner(&fakeProducts{Products: lowProducts()}, &fakeAdmins{Admins: []models.User{{ID: 1}}}, notifier, DefaultThreshold, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, notifier.Sent)
}

func TestStart(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	products := &fakeProducts{
		onCall: func(n int) {
			if n == 3 {
				cancel()
			}
		},
	}
	scanner := NewScanner(products, &fakeAdmins{}, &fakeNotifier{}, 3, log)

	err := scanner.Start(ctx, time.Millisecond)

	require.NoError(t, err)
	// The ticker may race the cancellation once more.
	assert.GreaterOrEqual(t, products.calls, 3)
	assert.Equal(t, 3, products.lastThreshold)
	assert.Equal(t, "low stock scanner stopped", hook.LastEntry().Message)
}
