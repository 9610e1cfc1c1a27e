package otp

import (
	"time"
)

// TTL is how long a booking verification code stays valid.
const TTL = 10 * time.Minute

// OTP is the one-time passcode attached to a Booking, used by the patient to
// confirm completion of the dispatch.
type OTP struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID uint      `gorm:"not null;unique" json:"booking_id"`
	OTPCode   string    `gorm:"column:otp_code;type:varchar(10);not null" json:"otp_code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// TableName sets the table name for the OTP model
func (OTP) TableName() string {
	return "otp"
}

// IsExpired checks if the OTP has expired
func (o *OTP) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}
