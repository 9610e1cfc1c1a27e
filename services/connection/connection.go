package connection

import (
	"lifeline-backend/apperr"
	"lifeline-backend/constants"
	connectionModel "lifeline-backend/models/connection"
	"lifeline-backend/services/authz"
)

// Repository is the persistence port for the connection registry.
type Repository interface {
	DriverExists(id uint) (bool, error)
	HospitalExists(id uint) (bool, error)
	PendingExists(driverID, hospitalID uint) (bool, error)
	Create(req *connectionModel.ConnectRequest) error
	// FindByID returns (nil, nil) when absent.
	FindByID(id uint) (*connectionModel.ConnectRequest, error)
	ListPendingByDriver(driverID uint) ([]connectionModel.ConnectRequest, error)
	ListPendingByHospital(hospitalID uint) ([]connectionModel.ConnectRequest, error)
	// Resolve flips a pending request to the given terminal status and, when
	// addMembership is set, adds the bidirectional driver/hospital membership
	// in the same transaction (idempotent add). Returns false if the request
	// was no longer pending.
	Resolve(id uint, status connectionModel.Status, addMembership bool) (bool, error)
	IsConnected(hospitalID, driverID uint) (bool, error)
	RemoveMembership(hospitalID, driverID uint) error
	// DriverHasActiveBooking reports whether the driver is snapshotted on any
	// Booking still in progress.
	DriverHasActiveBooking(driverID uint) (bool, error)
}

// Service manages connection requests and the resulting driver/hospital
// memberships.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Request creates a pending connection request from one side to the other.
func (s *Service) Request(senderType connectionModel.SenderType, driverID, hospitalID uint) (*connectionModel.ConnectRequest, error) {
	if !senderType.IsValid() {
		return nil, apperr.Validation("Invalid sender type. Must be 'driver' or 'hospital'.")
	}

	if err := s.requireParties(driverID, hospitalID); err != nil {
		return nil, err
	}

	exists, err := s.repo.PendingExists(driverID, hospitalID)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while checking pending requests.", err)
	}
	if exists {
		return nil, apperr.Conflict("A pending request already exists.")
	}

	req := &connectionModel.ConnectRequest{
		DriverID:   driverID,
		HospitalID: hospitalID,
		SenderType: senderType,
		Status:     connectionModel.StatusPending,
	}
	if err := s.repo.Create(req); err != nil {
		// The partial unique index is the authority for the one-pending-pair
		// rule; a concurrent creator may have won.
		exists, checkErr := s.repo.PendingExists(driverID, hospitalID)
		if checkErr == nil && exists {
			return nil, apperr.Conflict("A pending request already exists.")
		}
		return nil, apperr.Dependency("An error occurred while creating the connection request.", err)
	}
	return req, nil
}

// ListPending returns the pending requests referencing the party.
func (s *Service) ListPending(partyID uint, partyType connectionModel.SenderType) ([]connectionModel.ConnectRequest, error) {
	var (
		requests []connectionModel.ConnectRequest
		err      error
	)
	switch partyType {
	case connectionModel.SenderDriver:
		requests, err = s.repo.ListPendingByDriver(partyID)
	case connectionModel.SenderHospital:
		requests, err = s.repo.ListPendingByHospital(partyID)
	default:
		return nil, apperr.Validation("Invalid party type. Must be 'driver' or 'hospital'.")
	}
	if err != nil {
		return nil, apperr.Dependency("An error occurred while fetching connection requests.", err)
	}
	return requests, nil
}

// Respond resolves a pending request. Only the counterparty of the sender may
// respond; an accepted decision establishes the bidirectional membership.
func (s *Service) Respond(requestID uint, decision connectionModel.Status, caller authz.Identity) (*connectionModel.ConnectRequest, error) {
	if !decision.IsResolution() {
		return nil, apperr.Validation("Invalid response status. Must be 'accepted' or 'rejected'.")
	}

	req, err := s.repo.FindByID(requestID)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while fetching the connection request.", err)
	}
	if req == nil {
		return nil, apperr.NotFound("Connection request not found.")
	}

	// The responder must be the side that did NOT send the request.
	switch req.SenderType {
	case connectionModel.SenderDriver:
		if err := authz.RequireOwner(caller, constants.RoleHospital, req.HospitalID); err != nil {
			return nil, err
		}
	case connectionModel.SenderHospital:
		if err := authz.RequireOwner(caller, constants.RoleDriver, req.DriverID); err != nil {
			return nil, err
		}
	}

	if req.Status != connectionModel.StatusPending {
		return nil, apperr.Conflict("Connection request has already been responded to.")
	}

	ok, err := s.repo.Resolve(requestID, decision, decision == connectionModel.StatusAccepted)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while resolving the connection request.", err)
	}
	if !ok {
		return nil, apperr.Conflict("Connection request has already been responded to.")
	}

	req.Status = decision
	return req, nil
}

// Remove severs an existing driver/hospital membership. A driver occupied by
// an in-progress booking may not be disconnected: severing the link must
// never orphan an active dispatch.
func (s *Service) Remove(hospitalID, driverID uint) error {
	if err := s.requireParties(driverID, hospitalID); err != nil {
		return err
	}

	connected, err := s.repo.IsConnected(hospitalID, driverID)
	if err != nil {
		return apperr.Dependency("An error occurred while checking the connection.", err)
	}
	if !connected {
		return apperr.Conflict("No connection exists between the hospital and driver.")
	}

	busy, err := s.repo.DriverHasActiveBooking(driverID)
	if err != nil {
		return apperr.Dependency("An error occurred while checking driver bookings.", err)
	}
	if busy {
		return apperr.Conflict("Driver is currently involved in an active booking.")
	}

	if err := s.repo.RemoveMembership(hospitalID, driverID); err != nil {
		return apperr.Dependency("An error occurred while removing the connection.", err)
	}
	return nil
}

func (s *Service) requireParties(driverID, hospitalID uint) error {
	driverOK, err := s.repo.DriverExists(driverID)
	if err != nil {
		return apperr.Dependency("An error occurred while looking up the driver.", err)
	}
	hospitalOK, err := s.repo.HospitalExists(hospitalID)
	if err != nil {
		return apperr.Dependency("An error occurred while looking up the hospital.", err)
	}
	if !driverOK || !hospitalOK {
		return apperr.NotFound("Hospital or Driver not found.")
	}
	return nil
}
