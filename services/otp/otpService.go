package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"lifeline-backend/apperr"
	bookingModel "lifeline-backend/models/booking"

	"gorm.io/gorm"
)

// Service handles OTP operations for bookings.
type Service struct {
	DB *gorm.DB
}

func NewOTPService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// GenerateOTP generates a random 6-digit code. Leading zeros are preserved
// because the code lives as text.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// VerifyBookingOTP checks the code for a booking and, on success, consumes it
// by marking the booking completed.
func (s *Service) VerifyBookingOTP(bookingID uint, code string) (*bookingModel.Booking, error) {
	var booking bookingModel.Booking
	err := s.DB.Preload("OTP").First(&booking, bookingID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("Booking not found.")
	}
	if err != nil {
		return nil, apperr.Dependency("An error occurred while fetching the booking.", err)
	}

	if booking.OTP == nil {
		return nil, apperr.NotFound("No OTP found for this booking.")
	}
	if !booking.Status.IsInProgress() {
		return nil, apperr.Conflict("Booking has already been completed.")
	}
	if booking.OTP.IsExpired() {
		return nil, apperr.Validation("OTP has expired.")
	}
	if booking.OTP.OTPCode != code {
		return nil, apperr.Validation("Invalid OTP.")
	}

	if err := s.DB.Model(&booking).Update("status", bookingModel.BookingStatusCompleted).Error; err != nil {
		return nil, apperr.Dependency("An error occurred while completing the booking.", err)
	}
	booking.Status = bookingModel.BookingStatusCompleted
	return &booking, nil
}
