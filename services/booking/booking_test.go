package booking

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"lifeline-backend/apperr"
	"lifeline-backend/constants"
	bookingModel "lifeline-backend/models/booking"
	"lifeline-backend/models/citystate"
	hospitalModel "lifeline-backend/models/hospital"
	userModel "lifeline-backend/models/user"
	"lifeline-backend/services/authz"
	bookingTypes "lifeline-backend/types/booking"
)

type fakeRequests struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*bookingModel.BookingRequest
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{nextID: 1, rows: map[uint]*bookingModel.BookingRequest{}}
}

func (f *fakeRequests) Create(req *bookingModel.BookingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = f.nextID
	f.nextID++
	cp := *req
	f.rows[req.ID] = &cp
	return nil
}

func (f *fakeRequests) FindByID(id uint) (*bookingModel.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRequests) ListByUser(userID uint) ([]bookingModel.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bookingModel.BookingRequest
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRequests) ListByHospital(hospitalID uint) ([]bookingModel.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bookingModel.BookingRequest
	for _, row := range f.rows {
		if row.HospitalID == hospitalID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRequests) TransitionStatus(id uint, from []bookingModel.RequestStatus, to bookingModel.RequestStatus, reason *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, s := range from {
		if row.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	row.Status = to
	if reason != nil {
		row.ReasonOfRejection = reason
	}
	return true, nil
}

type fakeBookings struct {
	mu       sync.Mutex
	nextID   uint
	requests *fakeRequests
	rows     map[uint]*bookingModel.Booking // keyed by request id
}

func newFakeBookings(requests *fakeRequests) *fakeBookings {
	return &fakeBookings{nextID: 1, requests: requests, rows: map[uint]*bookingModel.Booking{}}
}

func (f *fakeBookings) FindByRequestID(requestID uint) (*bookingModel.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[requestID]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeBookings) CreateAssigned(b *bookingModel.Booking) (bool, error) {
	ok, err := f.requests.TransitionStatus(b.RequestID,
		[]bookingModel.RequestStatus{bookingModel.RequestStatusAccepted},
		bookingModel.RequestStatusCompleted, nil)
	if err != nil || !ok {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.rows[b.RequestID]; exists {
		return false, errors.New("duplicate key value violates unique constraint")
	}
	b.ID = f.nextID
	f.nextID++
	cp := *b
	f.rows[b.RequestID] = &cp
	return true, nil
}

type fakeHospitals struct {
	rows map[uint]*hospitalModel.Hospital
}

func (f *fakeHospitals) FindByID(id uint) (*hospitalModel.Hospital, error) {
	return f.rows[id], nil
}

type fakeUsers struct {
	rows map[uint]*userModel.User
}

func (f *fakeUsers) FindByID(id uint) (*userModel.User, error) {
	return f.rows[id], nil
}

type fakeCityStates struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]*citystate.CityState
}

func newFakeCityStates() *fakeCityStates {
	return &fakeCityStates{nextID: 1, rows: map[string]*citystate.CityState{}}
}

func (f *fakeCityStates) FindByPostalCode(code string) (*citystate.CityState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[code], nil
}

func (f *fakeCityStates) Create(cs *citystate.CityState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cs.ID = f.nextID
	f.nextID++
	f.rows[cs.PostalCode] = cs
	return nil
}

type armedAction struct {
	fireAt    time.Time
	requestID uint
	reason    string
}

type fakeSched struct {
	mu        sync.Mutex
	armed     map[string]armedAction
	cancelled []string
	armErr    error
}

func newFakeSched() *fakeSched {
	return &fakeSched{armed: map[string]armedAction{}}
}

func (f *fakeSched) Arm(actionID string, fireAt time.Time, requestID uint, reason string) error {
	if f.armErr != nil {
		return f.armErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed[actionID] = armedAction{fireAt: fireAt, requestID: requestID, reason: reason}
	return nil
}

func (f *fakeSched) Cancel(actionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, actionID)
	f.cancelled = append(f.cancelled, actionID)
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeNotifier) Notify(toEmail, subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: toEmail, subject: subject, body: body})
}

func (f *fakeNotifier) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.subject)
	}
	return out
}

type testEnv struct {
	engine    *Engine
	requests  *fakeRequests
	bookings  *fakeBookings
	sched     *fakeSched
	notifier  *fakeNotifier
	hospitals *fakeHospitals
	now       time.Time
}

func newTestEnv() *testEnv {
	requests := newFakeRequests()
	bookings := newFakeBookings(requests)
	hospitals := &fakeHospitals{rows: map[uint]*hospitalModel.Hospital{
		7: {ID: 7, Name: "City General", Email: "citygeneral@example.com"},
	}}
	users := &fakeUsers{rows: map[uint]*userModel.User{
		3: {ID: 3, Name: "rahim", Email: "rahim@example.com"},
	}}
	sched := newFakeSched()
	notifier := &fakeNotifier{}

	e := NewEngine(requests, bookings, hospitals, users, newFakeCityStates(), sched, notifier)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	return &testEnv{
		engine:    e,
		requests:  requests,
		bookings:  bookings,
		sched:     sched,
		notifier:  notifier,
		hospitals: hospitals,
		now:       now,
	}
}

func validOrderInput() bookingTypes.OrderRequestInput {
	return bookingTypes.OrderRequestInput{
		Name:          "Karim",
		Age:           54,
		Sex:           "M",
		HospitalID:    7,
		AmbulanceType: "ICU",
		Address: bookingTypes.AddressInput{
			Street:     "12 Green Road",
			City:       "Dhaka",
			State:      "Dhaka",
			PostalCode: "1205",
		},
	}
}

func hospitalCaller(id uint) authz.Identity {
	return authz.Identity{PartyID: id, Role: constants.RoleHospital}
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	ae, ok := apperr.As(err)
	if !ok {
		t.Fatalf("error %v is not a domain error", err)
	}
	return ae.Kind
}

func accepted() *string {
	s := "accepted"
	return &s
}

func rejected(reason string) (*string, *string) {
	s := "rejected"
	return &s, &reason
}

func TestCreateOrderRequestArmsDeadline(t *testing.T) {
	env := newTestEnv()

	req, patient, err := env.engine.CreateOrderRequest(validOrderInput(), 3)
	if err != nil {
		t.Fatalf("CreateOrderRequest returned error: %v", err)
	}
	if req.Status != bookingModel.RequestStatusPending {
		t.Errorf("new request status = %s, want pending", req.Status)
	}
	if patient.PatientName != "Karim" || patient.PatientAge != 54 || patient.PatientSex != "M" {
		t.Errorf("patient details = %+v", patient)
	}

	a, ok := env.sched.armed[AutoRejectActionID(req.ID)]
	if !ok {
		t.Fatal("auto-reject timer not armed")
	}
	if a.reason != ReasonNoResponse {
		t.Errorf("armed reason = %q, want %q", a.reason, ReasonNoResponse)
	}
	if want := env.now.Add(ResponseWindow); !a.fireAt.Equal(want) {
		t.Errorf("armed fireAt = %v, want %v", a.fireAt, want)
	}

	subjects := env.notifier.subjects()
	if len(subjects) != 1 {
		t.Fatalf("sent %d notifications, want 1 hospital mail", len(subjects))
	}
	if env.notifier.sent[0].to != "citygeneral@example.com" {
		t.Errorf("hospital notification went to %s", env.notifier.sent[0].to)
	}
}

func TestCreateOrderRequestDefaultsAmbulanceType(t *testing.T) {
	env := newTestEnv()
	in := validOrderInput()
	in.AmbulanceType = ""

	req, _, err := env.engine.CreateOrderRequest(in, 3)
	if err != nil {
		t.Fatalf("CreateOrderRequest returned error: %v", err)
	}
	if req.AmbulanceType != bookingModel.AmbulanceTypeBasic {
		t.Errorf("ambulance type = %s, want Basic default", req.AmbulanceType)
	}
}

func TestCreateOrderRequestValidation(t *testing.T) {
	env := newTestEnv()

	cases := []struct {
		name   string
		mutate func(*bookingTypes.OrderRequestInput)
	}{
		{"missing name", func(in *bookingTypes.OrderRequestInput) { in.Name = "" }},
		{"non-positive age", func(in *bookingTypes.OrderRequestInput) { in.Age = 0 }},
		{"invalid sex", func(in *bookingTypes.OrderRequestInput) { in.Sex = "X" }},
		{"invalid ambulance type", func(in *bookingTypes.OrderRequestInput) { in.AmbulanceType = "Helicopter" }},
		{"missing postal code", func(in *bookingTypes.OrderRequestInput) { in.Address.PostalCode = "" }},
	}
	for _, tc := range cases {
		in := validOrderInput()
		tc.mutate(&in)
		_, _, err := env.engine.CreateOrderRequest(in, 3)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if kind := kindOf(t, err); kind != apperr.KindValidation {
			t.Errorf("%s: kind = %v, want validation", tc.name, kind)
		}
	}
}

func TestCreateOrderRequestUnknownHospital(t *testing.T) {
	env := newTestEnv()
	in := validOrderInput()
	in.HospitalID = 99

	_, _, err := env.engine.CreateOrderRequest(in, 3)
	if kindOf(t, err) != apperr.KindNotFound {
		t.Fatalf("unknown hospital error = %v, want not-found", err)
	}
}

func TestRespondAcceptReArmsDetailsDeadline(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)

	updated, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, req.ID, hospitalCaller(7))
	if err != nil {
		t.Fatalf("RespondToBooking returned error: %v", err)
	}
	if updated.Status != bookingModel.RequestStatusAccepted {
		t.Errorf("status = %s, want accepted", updated.Status)
	}

	// Accepting replaces the response deadline with the details deadline.
	a, ok := env.sched.armed[AutoRejectActionID(req.ID)]
	if !ok {
		t.Fatal("details deadline not armed after accept")
	}
	if a.reason != ReasonNoDetails {
		t.Errorf("re-armed reason = %q, want %q", a.reason, ReasonNoDetails)
	}
}

func TestRespondRejectRequiresReason(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)

	s := "rejected"
	_, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: &s}, req.ID, hospitalCaller(7))
	if kindOf(t, err) != apperr.KindValidation {
		t.Fatalf("reject without reason error = %v, want validation", err)
	}

	// The request must still be pending: the failed respond consumed nothing.
	row, _ := env.requests.FindByID(req.ID)
	if row.Status != bookingModel.RequestStatusPending {
		t.Errorf("request status = %s after failed reject, want pending", row.Status)
	}
}

func TestRespondRejectStoresReason(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)

	status, reason := rejected("No ICU ambulance available")
	updated, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: status, Reason: reason}, req.ID, hospitalCaller(7))
	if err != nil {
		t.Fatalf("RespondToBooking returned error: %v", err)
	}
	if updated.ReasonOfRejection == nil || *updated.ReasonOfRejection != "No ICU ambulance available" {
		t.Errorf("rejection reason not stored: %+v", updated.ReasonOfRejection)
	}

	// Rejection must not leave a live deadline behind.
	if _, ok := env.sched.armed[AutoRejectActionID(req.ID)]; ok {
		t.Error("deadline still armed after reject")
	}
}

func TestRespondMissingAndInvalidStatus(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)

	_, err := env.engine.RespondToBooking(bookingTypes.RespondInput{}, req.ID, hospitalCaller(7))
	if kindOf(t, err) != apperr.KindValidation {
		t.Errorf("missing status error = %v, want validation", err)
	}

	bad := "maybe"
	_, err = env.engine.RespondToBooking(bookingTypes.RespondInput{Status: &bad}, req.ID, hospitalCaller(7))
	if kindOf(t, err) != apperr.KindValidation {
		t.Errorf("invalid status error = %v, want validation", err)
	}
}

func TestRespondForeignHospitalForbidden(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)

	_, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, req.ID, hospitalCaller(8))
	if kindOf(t, err) != apperr.KindForbidden {
		t.Fatalf("foreign hospital error = %v, want forbidden", err)
	}
}

func TestRespondUnknownRequest(t *testing.T) {
	env := newTestEnv()
	_, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, 404, hospitalCaller(7))
	if kindOf(t, err) != apperr.KindNotFound {
		t.Fatalf("unknown request error = %v, want not-found", err)
	}
}

func TestAutoRejectConsumesPendingRequest(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)

	env.engine.AutoRejectBooking(req.ID, ReasonNoResponse)

	row, _ := env.requests.FindByID(req.ID)
	if row.Status != bookingModel.RequestStatusRejected {
		t.Fatalf("status = %s after auto-reject, want rejected", row.Status)
	}
	if row.ReasonOfRejection == nil || *row.ReasonOfRejection != ReasonNoResponse {
		t.Errorf("auto-reject reason = %v", row.ReasonOfRejection)
	}

	// The human response now loses the race.
	_, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, req.ID, hospitalCaller(7))
	if kindOf(t, err) != apperr.KindConflict {
		t.Errorf("respond after auto-reject error = %v, want conflict", err)
	}
}

func TestAutoRejectAfterHumanResponseIsNoop(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)

	status, reason := rejected("fleet unavailable")
	if _, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: status, Reason: reason}, req.ID, hospitalCaller(7)); err != nil {
		t.Fatalf("RespondToBooking returned error: %v", err)
	}

	before := len(env.notifier.subjects())
	env.engine.AutoRejectBooking(req.ID, ReasonNoResponse)

	row, _ := env.requests.FindByID(req.ID)
	if row.ReasonOfRejection == nil || *row.ReasonOfRejection != "fleet unavailable" {
		t.Errorf("auto-reject overwrote the human decision: %v", row.ReasonOfRejection)
	}
	if got := len(env.notifier.subjects()); got != before {
		t.Errorf("stale auto-reject sent %d extra notification(s)", got-before)
	}
}

func TestAutoRejectConsumesAcceptedRequest(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)
	if _, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, req.ID, hospitalCaller(7)); err != nil {
		t.Fatalf("RespondToBooking returned error: %v", err)
	}

	// No details arrived in time.
	env.engine.AutoRejectBooking(req.ID, ReasonNoDetails)

	row, _ := env.requests.FindByID(req.ID)
	if row.Status != bookingModel.RequestStatusRejected {
		t.Fatalf("status = %s, want rejected after details timeout", row.Status)
	}
}

func validAssignInput() bookingTypes.AssignDetailsInput {
	return bookingTypes.AssignDetailsInput{
		Driver:    bookingTypes.DriverDetailsInput{ID: 21, Name: "Salam", Phone: "01712345678"},
		Ambulance: bookingTypes.AmbulanceDetailsInput{ID: 31, VehicleNumber: "DHK-1122", VehicleType: "ICU"},
	}
}

func TestAssignBookingDetailsHappyPath(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)
	if _, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, req.ID, hospitalCaller(7)); err != nil {
		t.Fatalf("RespondToBooking returned error: %v", err)
	}

	result, err := env.engine.AssignBookingDetails(validAssignInput(), req.ID, hospitalCaller(7))
	if err != nil {
		t.Fatalf("AssignBookingDetails returned error: %v", err)
	}
	if result.AlreadyAssigned {
		t.Error("fresh assignment flagged AlreadyAssigned")
	}

	b := result.Booking
	if b.RequestID != req.ID {
		t.Errorf("booking request id = %d, want %d", b.RequestID, req.ID)
	}
	if b.DriverDetails.Name != "Salam" || b.AmbulanceDetails.VehicleNumber != "DHK-1122" {
		t.Errorf("snapshots not stored: %+v %+v", b.DriverDetails, b.AmbulanceDetails)
	}
	if b.OTP == nil {
		t.Fatal("no OTP issued with the booking")
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(b.OTP.OTPCode) {
		t.Errorf("OTP code %q is not 6 digits", b.OTP.OTPCode)
	}
	if want := env.now.Add(10 * time.Minute); !b.OTP.ExpiresAt.Equal(want) {
		t.Errorf("OTP expiry = %v, want %v", b.OTP.ExpiresAt, want)
	}

	row, _ := env.requests.FindByID(req.ID)
	if row.Status != bookingModel.RequestStatusCompleted {
		t.Errorf("request status = %s after assignment, want completed", row.Status)
	}
	if _, armed := env.sched.armed[AutoRejectActionID(req.ID)]; armed {
		t.Error("deadline still armed after assignment")
	}
}

func TestAssignBookingDetailsIdempotent(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)
	if _, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, req.ID, hospitalCaller(7)); err != nil {
		t.Fatalf("RespondToBooking returned error: %v", err)
	}

	first, err := env.engine.AssignBookingDetails(validAssignInput(), req.ID, hospitalCaller(7))
	if err != nil {
		t.Fatalf("first assign returned error: %v", err)
	}

	// The request is completed now; the repeat call must still succeed.
	if got, _ := env.requests.FindByID(req.ID); got.Status != bookingModel.RequestStatusCompleted {
		t.Fatalf("request status after assign = %s, want completed", got.Status)
	}

	second, err := env.engine.AssignBookingDetails(validAssignInput(), req.ID, hospitalCaller(7))
	if err != nil {
		t.Fatalf("second assign returned error: %v", err)
	}
	if !second.AlreadyAssigned {
		t.Error("repeat assignment not flagged AlreadyAssigned")
	}
	if second.Booking.ID != first.Booking.ID {
		t.Errorf("repeat assignment returned booking %d, want %d", second.Booking.ID, first.Booking.ID)
	}
}

func TestAssignBookingDetailsRequiresAcceptedState(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)

	_, err := env.engine.AssignBookingDetails(validAssignInput(), req.ID, hospitalCaller(7))
	if kindOf(t, err) != apperr.KindConflict {
		t.Fatalf("assign on pending request error = %v, want conflict", err)
	}
}

func TestAssignBookingDetailsValidation(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)
	if _, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, req.ID, hospitalCaller(7)); err != nil {
		t.Fatalf("RespondToBooking returned error: %v", err)
	}

	in := validAssignInput()
	in.Driver.Phone = ""
	_, err := env.engine.AssignBookingDetails(in, req.ID, hospitalCaller(7))
	if kindOf(t, err) != apperr.KindValidation {
		t.Fatalf("incomplete details error = %v, want validation", err)
	}
}

func TestAssignBookingDetailsForeignHospitalForbidden(t *testing.T) {
	env := newTestEnv()
	req, _, _ := env.engine.CreateOrderRequest(validOrderInput(), 3)
	if _, err := env.engine.RespondToBooking(bookingTypes.RespondInput{Status: accepted()}, req.ID, hospitalCaller(7)); err != nil {
		t.Fatalf("RespondToBooking returned error: %v", err)
	}

	_, err := env.engine.AssignBookingDetails(validAssignInput(), req.ID, hospitalCaller(8))
	if kindOf(t, err) != apperr.KindForbidden {
		t.Fatalf("foreign hospital assign error = %v, want forbidden", err)
	}
}

func TestGetOrderRequestsByRole(t *testing.T) {
	env := newTestEnv()
	if _, _, err := env.engine.CreateOrderRequest(validOrderInput(), 3); err != nil {
		t.Fatalf("CreateOrderRequest returned error: %v", err)
	}

	byUser, err := env.engine.GetOrderRequests(3, constants.RoleUser)
	if err != nil {
		t.Fatalf("GetOrderRequests(user) returned error: %v", err)
	}
	if len(byUser) != 1 {
		t.Errorf("user sees %d requests, want 1", len(byUser))
	}

	byHospital, err := env.engine.GetOrderRequests(7, constants.RoleHospital)
	if err != nil {
		t.Fatalf("GetOrderRequests(hospital) returned error: %v", err)
	}
	if len(byHospital) != 1 {
		t.Errorf("hospital sees %d requests, want 1", len(byHospital))
	}

	if _, err := env.engine.GetOrderRequests(1, constants.RoleDriver); kindOf(t, err) != apperr.KindForbidden {
		t.Errorf("driver listing error = %v, want forbidden", err)
	}
}
