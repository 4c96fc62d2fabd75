// stm-dashboard/models/subscription.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses for a course subscription. The status is never supplied
// directly by the client: it is always derived from the amount paid.
const (
	PaymentPending = "pending"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// CourseSubscription links a student to a course. A student can hold at most
// one subscription per course.
type CourseSubscription struct {
	gorm.Model
	StudentID     uint      `json:"studentId" gorm:"not null;uniqueIndex:idx_subscriptions_student_course"`
	CourseID      uint      `json:"courseId" gorm:"not null;uniqueIndex:idx_subscriptions_student_course"`
	EnrolledDate  time.Time `json:"enrolledDate" gorm:"not null"`
	ValidTill     time.Time `json:"validTill" gorm:"not null"`
	PaymentStatus string    `json:"paymentStatus" gorm:"not null;default:'pending'"`
	AmountPaid    float64   `json:"amountPaid" gorm:"not null;default:0"`
	IsActive      *bool     `json:"isActive" gorm:"default:true"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// DerivePaymentStatus maps an amount paid onto the payment status:
// 0 is pending, anything at or above the course fee is paid, the rest is partial.
func DerivePaymentStatus(amountPaid, courseFee float64) string {
	switch {
	case amountPaid == 0:
		return PaymentPending
	case amountPaid >= courseFee:
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// DefaultValidTill computes the subscription expiry when the client does not
// supply one: enrolment date plus the course duration in months.
func DefaultValidTill(enrolledDate time.Time, courseDurationMonths int) time.Time {
	return enrolledDate.AddDate(0, courseDurationMonths, 0)
}
