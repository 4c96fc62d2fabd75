// stm-dashboard/models/subscription_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentPending, DerivePaymentStatus(0, 1000))
	assert.Equal(t, PaymentPartial, DerivePaymentStatus(1, 1000))
	assert.Equal(t, PaymentPartial, DerivePaymentStatus(999.99, 1000))
	assert.Equal(t, PaymentPaid, DerivePaymentStatus(1000, 1000))
	assert.Equal(t, PaymentPaid, DerivePaymentStatus(1500, 1000))

	// A free course is pending until any payment is recorded.
	assert.Equal(t, PaymentPending, DerivePaymentStatus(0, 0))
}

func TestDefaultValidTill(t *testing.T) {
	enrolled := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), DefaultValidTill(enrolled, 6))
	assert.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), DefaultValidTill(enrolled, 12))
}
