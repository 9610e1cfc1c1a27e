package booking

// AddressInput is the pickup/registration address payload.
type AddressInput struct {
	Street     string   `json:"street"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
}

// OrderRequestInput is the payload for creating a booking request.
type OrderRequestInput struct {
	Name          string       `json:"name"`
	Age           int          `json:"age"`
	Sex           string       `json:"sex"`
	HospitalID    uint         `json:"hospital_id"`
	AmbulanceType string       `json:"ambulance_type"`
	Address       AddressInput `json:"address"`
}

// RespondInput is the hospital's accept/reject payload. Status and Reason are
// pointers so a missing field is distinguishable from an empty string.
type RespondInput struct {
	Status *string `json:"status"`
	Reason *string `json:"reason"`
}

// DriverDetailsInput is the driver snapshot supplied by the hospital.
type DriverDetailsInput struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// AmbulanceDetailsInput is the vehicle snapshot supplied by the hospital.
type AmbulanceDetailsInput struct {
	ID            uint   `json:"id"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
}

// AssignDetailsInput is the payload for assigning driver and ambulance
// details to an accepted booking request.
type AssignDetailsInput struct {
	Driver    DriverDetailsInput    `json:"driver"`
	Ambulance AmbulanceDetailsInput `json:"ambulance"`
}

// PatientDetails is the denormalized summary returned on request creation.
type PatientDetails struct {
	PatientName string `json:"patientName"`
	PatientAge  int    `json:"patientAge"`
	PatientSex  string `json:"patientSex"`
}
