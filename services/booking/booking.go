package booking

import (
	"fmt"
	"time"

	"lifeline-backend/apperr"
	"lifeline-backend/constants"
	"lifeline-backend/logger"
	bookingModel "lifeline-backend/models/booking"
	otpModel "lifeline-backend/models/otp"
	"lifeline-backend/observability"
	"lifeline-backend/services/address"
	"lifeline-backend/services/authz"
	"lifeline-backend/services/notification"
	otpService "lifeline-backend/services/otp"
	bookingTypes "lifeline-backend/types/booking"
)

const (
	// ResponseWindow is how long a hospital has to accept or reject a new
	// request before it is auto-rejected.
	ResponseWindow = 15 * time.Minute

	// DetailsWindow is how long a hospital has to assign driver/ambulance
	// details after accepting.
	DetailsWindow = 15 * time.Minute

	ReasonNoResponse = "Hospital did not respond in time"
	ReasonNoDetails  = "Hospital could not provide booking details in time"
)

// AutoRejectActionID derives the deferred-action key for a request. Arming
// with the same key replaces any stale entry.
func AutoRejectActionID(requestID uint) string {
	return fmt.Sprintf("auto_reject_%d", requestID)
}

// DeadlineScheduler is the scheduling port the engine arms and cancels
// auto-reject timers through.
type DeadlineScheduler interface {
	Arm(actionID string, fireAt time.Time, requestID uint, reason string) error
	Cancel(actionID string)
}

// AssignResult carries the booking produced by AssignBookingDetails.
// AlreadyAssigned is set when a prior assignment existed and was returned
// unchanged instead of creating a duplicate.
type AssignResult struct {
	Booking         *bookingModel.Booking
	AlreadyAssigned bool
}

// Engine is the booking lifecycle state machine. A request moves
//
//	pending -> accepted | rejected   (hospital respond, or timeout)
//	accepted -> completed            (details assigned, Booking created)
//	accepted -> rejected             (timeout, no details in time)
//
// and exactly one of {explicit respond, auto-reject} may consume a pending
// request. That exclusivity rests on TransitionStatus preconditions, not on
// timer cancellation succeeding.
type Engine struct {
	requests   RequestRepository
	bookings   BookingRepository
	hospitals  HospitalRepository
	users      UserRepository
	cityStates address.CityStateStore
	sched      DeadlineScheduler
	notifier   notification.Notifier
	now        func() time.Time
}

func NewEngine(
	requests RequestRepository,
	bookings BookingRepository,
	hospitals HospitalRepository,
	users UserRepository,
	cityStates address.CityStateStore,
	sched DeadlineScheduler,
	notifier notification.Notifier,
) *Engine {
	return &Engine{
		requests:   requests,
		bookings:   bookings,
		hospitals:  hospitals,
		users:      users,
		cityStates: cityStates,
		sched:      sched,
		notifier:   notifier,
		now:        time.Now,
	}
}

// CreateOrderRequest creates a new ambulance booking request for a user and
// arms the 15-minute auto-reject timer.
func (e *Engine) CreateOrderRequest(in bookingTypes.OrderRequestInput, userID uint) (*bookingModel.BookingRequest, bookingTypes.PatientDetails, error) {
	var patient bookingTypes.PatientDetails

	if in.Name == "" {
		return nil, patient, apperr.Validation("Patient name is required.")
	}
	if in.Age <= 0 {
		return nil, patient, apperr.Validation("Patient age must be a positive number.")
	}
	if !bookingModel.Sex(in.Sex).IsValid() {
		return nil, patient, apperr.Validation("Invalid sex. Use 'M', 'F' or 'O'.")
	}
	ambulanceType := bookingModel.AmbulanceType(in.AmbulanceType)
	if in.AmbulanceType == "" {
		ambulanceType = bookingModel.AmbulanceTypeBasic
	}
	if !ambulanceType.IsValid() {
		return nil, patient, apperr.Validation("Invalid ambulance type.")
	}

	hospital, err := e.hospitals.FindByID(in.HospitalID)
	if err != nil {
		return nil, patient, apperr.Dependency("An error occurred while looking up the hospital.", err)
	}
	if hospital == nil {
		return nil, patient, apperr.NotFound("Hospital not found.")
	}

	cityState, err := address.GetOrCreate(e.cityStates, in.Address)
	if err != nil {
		return nil, patient, err
	}

	req := &bookingModel.BookingRequest{
		UserID:        userID,
		HospitalID:    in.HospitalID,
		Name:          in.Name,
		Age:           in.Age,
		Sex:           bookingModel.Sex(in.Sex),
		AmbulanceType: ambulanceType,
		Status:        bookingModel.RequestStatusPending,
		Street:        in.Address.Street,
		Latitude:      in.Address.Latitude,
		Longitude:     in.Address.Longitude,
		CityStateID:   cityState.ID,
		CityState:     *cityState,
	}

	if err := e.requests.Create(req); err != nil {
		return nil, patient, apperr.Dependency("An error occurred while saving the order request.", err)
	}

	observability.BookingRequestsCreated.Inc()

	// Best-effort: the request stands even if the hospital never gets the mail.
	e.notifier.Notify(hospital.Email, "New Ambulance Booking Request", fmt.Sprintf(
		"Dear %s,\n\nYou have received a new ambulance booking request.\n\n"+
			"Patient Name: %s\nAge: %d\nSex: %s\nAmbulance Type: %s\n"+
			"Pickup Address: %s, %s, %s, %s\n\n"+
			"Please check your dashboard for more details.\n\nBest Regards,\nLifeLineGo Team",
		hospital.Name, in.Name, in.Age, in.Sex, ambulanceType,
		in.Address.Street, cityState.City, cityState.State, cityState.PostalCode))

	if err := e.sched.Arm(AutoRejectActionID(req.ID), e.now().Add(ResponseWindow), req.ID, ReasonNoResponse); err != nil {
		return nil, patient, apperr.Dependency("An error occurred while scheduling the response deadline.", err)
	}

	patient = bookingTypes.PatientDetails{
		PatientName: in.Name,
		PatientAge:  in.Age,
		PatientSex:  in.Sex,
	}
	return req, patient, nil
}

// RespondToBooking is step 1 of the hospital flow: accept or reject a
// pending request.
func (e *Engine) RespondToBooking(in bookingTypes.RespondInput, requestID uint, caller authz.Identity) (*bookingModel.BookingRequest, error) {
	if in.Status == nil {
		return nil, apperr.Validation("Missing status field.")
	}
	status := bookingModel.RequestStatus(*in.Status)
	if status != bookingModel.RequestStatusAccepted && status != bookingModel.RequestStatusRejected {
		return nil, apperr.Validation("Invalid status. Use 'accepted' or 'rejected'.")
	}

	req, err := e.requests.FindByID(requestID)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while fetching the booking request.", err)
	}
	if req == nil {
		return nil, apperr.NotFound("Booking request not found.")
	}
	if !req.Status.CanBeRespondedTo() {
		return nil, apperr.Conflict("Booking has already been processed.")
	}
	if err := authz.RequireOwner(caller, constants.RoleHospital, req.HospitalID); err != nil {
		return nil, apperr.Forbidden("Access forbidden: Booking request not for this hospital.")
	}

	var reason *string
	if status == bookingModel.RequestStatusRejected {
		if in.Reason == nil || *in.Reason == "" {
			return nil, apperr.Validation("Reason must be specified while rejecting the request")
		}
		reason = in.Reason
	}

	ok, err := e.requests.TransitionStatus(requestID,
		[]bookingModel.RequestStatus{bookingModel.RequestStatusPending}, status, reason)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while updating the booking request.", err)
	}
	if !ok {
		// The auto-reject timer won the race.
		return nil, apperr.Conflict("Booking has already been processed.")
	}

	req.Status = status
	req.ReasonOfRejection = reason
	observability.BookingTransitions.WithLabelValues(status.String(), "hospital").Inc()

	// A missed cancel is harmless: the fired callback's own status check has
	// already found the request terminal.
	e.sched.Cancel(AutoRejectActionID(requestID))

	user, err := e.users.FindByID(req.UserID)
	if err != nil || user == nil {
		logger.Error(fmt.Sprintf("Could not resolve requester %d for notification", req.UserID), err)
		return req, nil
	}

	if status == bookingModel.RequestStatusAccepted {
		e.notifier.Notify(user.Email, "🚑 Booking Accepted - LifeLineGo",
			"Your ambulance booking request has been accepted. The hospital will assign details soon.")

		if err := e.sched.Arm(AutoRejectActionID(requestID), e.now().Add(DetailsWindow), requestID, ReasonNoDetails); err != nil {
			return nil, apperr.Dependency("An error occurred while scheduling the details deadline.", err)
		}
	} else {
		e.notifier.Notify(user.Email, "❌ Booking Rejected - LifeLineGo", fmt.Sprintf(
			"Your ambulance booking request has been rejected by the hospital. Please try again.\n Reason : %s", *reason))
	}

	return req, nil
}

// AssignBookingDetails is step 2 of the hospital flow: assign driver and
// ambulance snapshots and issue the OTP. Calling it again for the same
// request returns the prior booking unchanged.
func (e *Engine) AssignBookingDetails(in bookingTypes.AssignDetailsInput, requestID uint, caller authz.Identity) (*AssignResult, error) {
	req, err := e.requests.FindByID(requestID)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while fetching the booking request.", err)
	}
	if req == nil {
		return nil, apperr.NotFound("Booking request not found.")
	}
	if err := authz.RequireOwner(caller, constants.RoleHospital, req.HospitalID); err != nil {
		return nil, apperr.Forbidden("Access forbidden: Booking request not for this hospital.")
	}
	// A booking on file means a prior assignment already completed the
	// request; a repeat call returns it as success, not as a conflict.
	if existing, err := e.bookings.FindByRequestID(requestID); err != nil {
		return nil, apperr.Dependency("An error occurred while checking existing bookings.", err)
	} else if existing != nil {
		return &AssignResult{Booking: existing, AlreadyAssigned: true}, nil
	}

	if !req.Status.CanBeAssigned() {
		return nil, apperr.Conflict("Booking request is not in an accepted state.")
	}

	if in.Driver.Name == "" || in.Driver.Phone == "" || in.Ambulance.VehicleNumber == "" || in.Ambulance.VehicleType == "" {
		return nil, apperr.Validation("Invalid data. Could not assign booking details.")
	}

	code, err := otpService.GenerateOTP()
	if err != nil {
		return nil, apperr.Dependency("An error occurred while generating the OTP.", err)
	}

	now := e.now()
	b := &bookingModel.Booking{
		RequestID: requestID,
		Status:    bookingModel.BookingStatusPending,
		AmbulanceDetails: bookingModel.AmbulanceDetails{
			ID:            in.Ambulance.ID,
			VehicleNumber: in.Ambulance.VehicleNumber,
			VehicleType:   in.Ambulance.VehicleType,
		},
		DriverDetails: bookingModel.DriverDetails{
			ID:    in.Driver.ID,
			Name:  in.Driver.Name,
			Phone: in.Driver.Phone,
		},
		OTP: &otpModel.OTP{
			OTPCode:   code,
			ExpiresAt: now.Add(otpModel.TTL),
		},
	}

	ok, err := e.bookings.CreateAssigned(b)
	if err != nil {
		// The unique request_id constraint may have rejected a concurrent
		// duplicate; surface the winner's booking instead of an error.
		if existing, findErr := e.bookings.FindByRequestID(requestID); findErr == nil && existing != nil {
			return &AssignResult{Booking: existing, AlreadyAssigned: true}, nil
		}
		return nil, apperr.Dependency("An error occurred while assigning booking details.", err)
	}
	if !ok {
		return nil, apperr.Conflict("Booking request is not in an accepted state.")
	}

	observability.BookingTransitions.WithLabelValues(bookingModel.RequestStatusCompleted.String(), "hospital").Inc()

	e.sched.Cancel(AutoRejectActionID(requestID))

	if user, err := e.users.FindByID(req.UserID); err == nil && user != nil {
		e.notifier.Notify(user.Email, "✅ Booking Confirmed - LifeLineGo", fmt.Sprintf(
			"Your ambulance and driver have been assigned.\n\n"+
				"🚑 Ambulance Details:\n• Vehicle Number: %s\n• Type: %s\n\n"+
				"👨‍⚕️ Driver Details:\n• Name: %s\n• Phone: %s\n\n"+
				"🔑 Your OTP for booking verification: %s\n\n"+
				"Use this OTP to confirm the completion of your booking.",
			in.Ambulance.VehicleNumber, in.Ambulance.VehicleType,
			in.Driver.Name, in.Driver.Phone, code))
	} else {
		logger.Error(fmt.Sprintf("Could not resolve requester %d for notification", req.UserID), err)
	}

	return &AssignResult{Booking: b}, nil
}

// AutoRejectBooking is invoked only by the deferred action scheduler. The
// status recheck makes a race with a concurrent human response safe: if the
// request is already terminal this is a no-op.
func (e *Engine) AutoRejectBooking(requestID uint, reason string) {
	req, err := e.requests.FindByID(requestID)
	if err != nil {
		logger.Error(fmt.Sprintf("Auto-reject: failed to fetch booking request %d", requestID), err)
		return
	}
	if req == nil || !req.Status.CanBeAutoRejected() {
		return
	}

	ok, err := e.requests.TransitionStatus(requestID,
		[]bookingModel.RequestStatus{bookingModel.RequestStatusPending, bookingModel.RequestStatusAccepted},
		bookingModel.RequestStatusRejected, &reason)
	if err != nil {
		logger.Error(fmt.Sprintf("Auto-reject: failed to update booking request %d", requestID), err)
		return
	}
	if !ok {
		// A human response committed first.
		return
	}

	observability.BookingTransitions.WithLabelValues(bookingModel.RequestStatusRejected.String(), "scheduler").Inc()
	logger.Info(fmt.Sprintf("Booking request %d auto-rejected: %s", requestID, reason))

	if user, err := e.users.FindByID(req.UserID); err == nil && user != nil {
		e.notifier.Notify(user.Email, "❌ Booking Auto-Rejected - LifeLineGo",
			fmt.Sprintf("Your booking has been automatically rejected. Reason: %s", reason))
	}
}

// GetOrderRequests lists booking requests for the logged-in user or hospital.
// No requests is an empty list, not an error.
func (e *Engine) GetOrderRequests(partyID uint, role string) ([]bookingModel.BookingRequest, error) {
	switch role {
	case constants.RoleUser:
		requests, err := e.requests.ListByUser(partyID)
		if err != nil {
			return nil, apperr.Dependency("An error occurred while fetching order requests.", err)
		}
		return requests, nil
	case constants.RoleHospital:
		requests, err := e.requests.ListByHospital(partyID)
		if err != nil {
			return nil, apperr.Dependency("An error occurred while fetching order requests.", err)
		}
		return requests, nil
	default:
		return nil, apperr.Forbidden("Access forbidden: Only users and hospitals can retrieve order requests.")
	}
}
