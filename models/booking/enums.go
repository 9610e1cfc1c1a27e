package booking

// RequestStatus is the lifecycle state of a BookingRequest.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
)

func (rs RequestStatus) String() string {
	return string(rs)
}

func (rs RequestStatus) IsValid() bool {
	switch rs {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected, RequestStatusCompleted:
		return true
	default:
		return false
	}
}

// IsFinal returns true once no further transition may occur.
func (rs RequestStatus) IsFinal() bool {
	return rs == RequestStatusRejected || rs == RequestStatusCompleted
}

// CanBeRespondedTo returns true if a hospital respond action is still allowed.
func (rs RequestStatus) CanBeRespondedTo() bool {
	return rs == RequestStatusPending
}

// CanBeAssigned returns true if booking details may still be assigned.
func (rs RequestStatus) CanBeAssigned() bool {
	return rs == RequestStatusAccepted
}

// CanBeAutoRejected returns true if the auto-reject timer may still consume
// the request. Anything else means a human response already won the race.
func (rs RequestStatus) CanBeAutoRejected() bool {
	return rs == RequestStatusPending || rs == RequestStatusAccepted
}

// AmbulanceType categorizes the requested vehicle.
type AmbulanceType string

const (
	AmbulanceTypeBasic    AmbulanceType = "Basic"
	AmbulanceTypeAdvanced AmbulanceType = "Advanced"
	AmbulanceTypeICU      AmbulanceType = "ICU"
	AmbulanceTypeNeonatal AmbulanceType = "Neonatal"
)

func (at AmbulanceType) IsValid() bool {
	switch at {
	case AmbulanceTypeBasic, AmbulanceTypeAdvanced, AmbulanceTypeICU, AmbulanceTypeNeonatal:
		return true
	default:
		return false
	}
}

// Sex is the patient's recorded sex.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
	SexOther  Sex = "O"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	default:
		return false
	}
}

// BookingStatus is the lifecycle state of a finalized Booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
)

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusPending, BookingStatusActive, BookingStatusCompleted:
		return true
	default:
		return false
	}
}

// IsInProgress returns true while the dispatch still occupies its driver.
func (bs BookingStatus) IsInProgress() bool {
	return bs == BookingStatusPending || bs == BookingStatusActive
}
