package booking

import (
	bookingModel "lifeline-backend/models/booking"
	hospitalModel "lifeline-backend/models/hospital"
	userModel "lifeline-backend/models/user"
)

// RequestRepository is the persistence port for booking requests.
type RequestRepository interface {
	Create(req *bookingModel.BookingRequest) error
	// FindByID returns (nil, nil) when absent.
	FindByID(id uint) (*bookingModel.BookingRequest, error)
	ListByUser(userID uint) ([]bookingModel.BookingRequest, error)
	ListByHospital(hospitalID uint) ([]bookingModel.BookingRequest, error)
	// TransitionStatus atomically moves the request to `to` iff its current
	// status is one of `from`, updating the rejection reason when given.
	// Returns false when the precondition no longer holds; that is how the
	// loser of a respond/auto-reject race turns into a no-op.
	TransitionStatus(id uint, from []bookingModel.RequestStatus, to bookingModel.RequestStatus, reason *string) (bool, error)
}

// BookingRepository is the persistence port for finalized bookings.
type BookingRepository interface {
	// FindByRequestID returns (nil, nil) when no booking exists for the request.
	FindByRequestID(requestID uint) (*bookingModel.Booking, error)
	// CreateAssigned persists the booking together with its OTP child and
	// flips the request from accepted to completed, all in one transaction.
	// Returns false when the request was no longer in an accepted state.
	// Partial creation (a Booking without its OTP) is never observable.
	CreateAssigned(b *bookingModel.Booking) (bool, error)
}

// HospitalRepository resolves hospitals for validation and notification.
type HospitalRepository interface {
	// FindByID returns (nil, nil) when absent.
	FindByID(id uint) (*hospitalModel.Hospital, error)
}

// UserRepository resolves requesters for notification.
type UserRepository interface {
	// FindByID returns (nil, nil) when absent.
	FindByID(id uint) (*userModel.User, error)
}
