package geo

import (
	"math"
	"testing"

	"lifeline-backend/apperr"
	driverModel "lifeline-backend/models/driver"
	hospitalModel "lifeline-backend/models/hospital"
)

func ptr(f float64) *float64 { return &f }

type fakeRepo struct {
	drivers   map[uint]*driverModel.Driver
	hospitals map[uint]*hospitalModel.Hospital
	// connections, keyed by driver id / hospital id
	driverHospitals map[uint]map[uint]bool
	hospitalDrivers map[uint]map[uint]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		drivers:         map[uint]*driverModel.Driver{},
		hospitals:       map[uint]*hospitalModel.Hospital{},
		driverHospitals: map[uint]map[uint]bool{},
		hospitalDrivers: map[uint]map[uint]bool{},
	}
}

func (r *fakeRepo) FindDriver(id uint) (*driverModel.Driver, error) {
	return r.drivers[id], nil
}

func (r *fakeRepo) FindHospital(id uint) (*hospitalModel.Hospital, error) {
	return r.hospitals[id], nil
}

func (r *fakeRepo) HospitalsInBox(minLat, maxLat, minLon, maxLon float64) ([]hospitalModel.Hospital, error) {
	var out []hospitalModel.Hospital
	for _, h := range r.hospitals {
		if !h.HasLocation() {
			continue
		}
		if *h.Latitude >= minLat && *h.Latitude <= maxLat && *h.Longitude >= minLon && *h.Longitude <= maxLon {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *fakeRepo) DriversInBox(minLat, maxLat, minLon, maxLon float64) ([]driverModel.Driver, error) {
	var out []driverModel.Driver
	for _, d := range r.drivers {
		if !d.HasLocation() {
			continue
		}
		if *d.Latitude >= minLat && *d.Latitude <= maxLat && *d.Longitude >= minLon && *d.Longitude <= maxLon {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeRepo) ConnectedHospitalIDs(driverID uint) (map[uint]bool, error) {
	return r.driverHospitals[driverID], nil
}

func (r *fakeRepo) ConnectedDriverIDs(hospitalID uint) (map[uint]bool, error) {
	return r.hospitalDrivers[hospitalID], nil
}

func TestHaversineKnownDistance(t *testing.T) {
	// Dhaka to Chittagong, roughly 215 km great-circle.
	got := Haversine(23.8103, 90.4125, 22.3569, 91.7832)
	if math.Abs(got-215) > 5 {
		t.Errorf("Haversine(Dhaka, Chittagong) = %.2f km, want ~215 km", got)
	}
}

func TestHaversineZeroDistance(t *testing.T) {
	if got := Haversine(23.8103, 90.4125, 23.8103, 90.4125); got != 0 {
		t.Errorf("Haversine(same point) = %f, want 0", got)
	}
}

func TestNearbyHospitalsFiltersByRadius(t *testing.T) {
	repo := newFakeRepo()
	repo.drivers[1] = &driverModel.Driver{ID: 1, Latitude: ptr(23.0), Longitude: ptr(90.0)}

	// About 0.5 degree north: ~55.5 km away.
	repo.hospitals[10] = &hospitalModel.Hospital{ID: 10, Latitude: ptr(23.5), Longitude: ptr(90.0)}
	// About 1.5 degrees north: ~166 km away, outside the default radius.
	repo.hospitals[11] = &hospitalModel.Hospital{ID: 11, Latitude: ptr(24.5), Longitude: ptr(90.0)}
	// No coordinates on file: skipped, not an error.
	repo.hospitals[12] = &hospitalModel.Hospital{ID: 12}

	svc := NewService(repo)
	got, err := svc.NearbyHospitals(1, DefaultRadiusKm)
	if err != nil {
		t.Fatalf("NearbyHospitals returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("NearbyHospitals returned %d results, want 1", len(got))
	}
	if got[0].Hospital.ID != 10 {
		t.Errorf("NearbyHospitals returned hospital %d, want 10", got[0].Hospital.ID)
	}
	if math.Abs(got[0].DistanceKm-55.5) > 1 {
		t.Errorf("DistanceKm = %.2f, want ~55.5", got[0].DistanceKm)
	}
}

func TestNearbyHospitalsBoundaryInclusive(t *testing.T) {
	repo := newFakeRepo()
	repo.drivers[1] = &driverModel.Driver{ID: 1, Latitude: ptr(0.0), Longitude: ptr(0.0)}
	repo.hospitals[10] = &hospitalModel.Hospital{ID: 10, Latitude: ptr(0.5), Longitude: ptr(0.0)}

	svc := NewService(repo)

	exact := Haversine(0, 0, 0.5, 0)
	got, err := svc.NearbyHospitals(1, exact)
	if err != nil {
		t.Fatalf("NearbyHospitals returned error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("hospital at exactly the radius excluded; want inclusive compare")
	}
}

func TestNearbyHospitalsRadiusStraddle(t *testing.T) {
	repo := newFakeRepo()
	repo.drivers[1] = &driverModel.Driver{ID: 1, Latitude: ptr(0.0), Longitude: ptr(0.0)}
	// 0.72 degrees of latitude is roughly 80 km.
	repo.hospitals[10] = &hospitalModel.Hospital{ID: 10, Latitude: ptr(0.72), Longitude: ptr(0.0)}

	svc := NewService(repo)

	within75, err := svc.NearbyHospitals(1, 75)
	if err != nil {
		t.Fatalf("NearbyHospitals(75) returned error: %v", err)
	}
	if len(within75) != 0 {
		t.Errorf("80 km hospital returned inside a 75 km radius")
	}

	within85, err := svc.NearbyHospitals(1, 85)
	if err != nil {
		t.Fatalf("NearbyHospitals(85) returned error: %v", err)
	}
	if len(within85) != 1 {
		t.Errorf("80 km hospital missing from an 85 km radius")
	}
}

func TestNearbyHospitalsEmptyIsSuccess(t *testing.T) {
	repo := newFakeRepo()
	repo.drivers[1] = &driverModel.Driver{ID: 1, Latitude: ptr(23.0), Longitude: ptr(90.0)}

	svc := NewService(repo)
	got, err := svc.NearbyHospitals(1, DefaultRadiusKm)
	if err != nil {
		t.Fatalf("NearbyHospitals returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("NearbyHospitals = %v, want empty non-nil slice", got)
	}
}

func TestNearbyHospitalsMissingDriver(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.NearbyHospitals(99, DefaultRadiusKm)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindNotFound {
		t.Fatalf("NearbyHospitals(absent driver) error = %v, want not-found", err)
	}
}

func TestNearbyHospitalsDriverWithoutLocation(t *testing.T) {
	repo := newFakeRepo()
	repo.drivers[1] = &driverModel.Driver{ID: 1}

	svc := NewService(repo)
	_, err := svc.NearbyHospitals(1, DefaultRadiusKm)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindValidation {
		t.Fatalf("NearbyHospitals(driver without coords) error = %v, want validation", err)
	}
}

func TestNearbyHospitalsConnectedFlag(t *testing.T) {
	repo := newFakeRepo()
	repo.drivers[1] = &driverModel.Driver{ID: 1, Latitude: ptr(23.0), Longitude: ptr(90.0)}
	repo.hospitals[10] = &hospitalModel.Hospital{ID: 10, Latitude: ptr(23.1), Longitude: ptr(90.0)}
	repo.hospitals[11] = &hospitalModel.Hospital{ID: 11, Latitude: ptr(23.2), Longitude: ptr(90.0)}
	repo.driverHospitals[1] = map[uint]bool{10: true}

	svc := NewService(repo)
	got, err := svc.NearbyHospitals(1, DefaultRadiusKm)
	if err != nil {
		t.Fatalf("NearbyHospitals returned error: %v", err)
	}
	flags := map[uint]bool{}
	for _, nh := range got {
		flags[nh.Hospital.ID] = nh.IsConnected
	}
	if !flags[10] || flags[11] {
		t.Errorf("IsConnected flags = %v, want hospital 10 connected and 11 not", flags)
	}
}

func TestNearbyDriversFiltersByRadius(t *testing.T) {
	repo := newFakeRepo()
	repo.hospitals[5] = &hospitalModel.Hospital{ID: 5, Latitude: ptr(23.0), Longitude: ptr(90.0)}
	repo.drivers[1] = &driverModel.Driver{ID: 1, Latitude: ptr(23.3), Longitude: ptr(90.0)}
	repo.drivers[2] = &driverModel.Driver{ID: 2, Latitude: ptr(25.0), Longitude: ptr(90.0)}

	svc := NewService(repo)
	got, err := svc.NearbyDrivers(5, DefaultRadiusKm)
	if err != nil {
		t.Fatalf("NearbyDrivers returned error: %v", err)
	}
	if len(got) != 1 || got[0].Driver.ID != 1 {
		t.Fatalf("NearbyDrivers = %v, want only driver 1", got)
	}
}

func TestBoundingBoxOverSelects(t *testing.T) {
	minLat, maxLat, minLon, maxLon := boundingBox(10, 20, 111)
	if minLat != 9 || maxLat != 11 || minLon != 19 || maxLon != 21 {
		t.Errorf("boundingBox(10, 20, 111) = (%f, %f, %f, %f), want (9, 11, 19, 21)",
			minLat, maxLat, minLon, maxLon)
	}
}
