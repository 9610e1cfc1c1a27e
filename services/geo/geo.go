package geo

import (
	"math"

	"lifeline-backend/apperr"
	driverModel "lifeline-backend/models/driver"
	hospitalModel "lifeline-backend/models/hospital"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// KmPerDegree approximates one degree of latitude/longitude for the
	// coarse rectangular prefilter.
	KmPerDegree = 111.0

	// DefaultRadiusKm is the search radius when the caller specifies none.
	DefaultRadiusKm = 75.0
)

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func roundKm(d float64) float64 {
	return math.Round(d*100) / 100
}

// NearbyHospital is a hospital within range of a driver, annotated with its
// distance and whether the driver is already connected to it.
type NearbyHospital struct {
	Hospital    hospitalModel.Hospital `json:"hospital"`
	DistanceKm  float64                `json:"distance_km"`
	IsConnected bool                   `json:"isConnected"`
}

// NearbyDriver is a driver within range of a hospital.
type NearbyDriver struct {
	Driver      driverModel.Driver `json:"driver"`
	DistanceKm  float64            `json:"distance_km"`
	IsConnected bool               `json:"isConnected"`
}

// Repository is the persistence port for proximity queries. The *InBox
// queries implement the coarse rectangular prefilter in SQL so the whole
// table is never scanned in Go.
type Repository interface {
	// FindDriver returns (nil, nil) when absent.
	FindDriver(id uint) (*driverModel.Driver, error)
	// FindHospital returns (nil, nil) when absent.
	FindHospital(id uint) (*hospitalModel.Hospital, error)
	HospitalsInBox(minLat, maxLat, minLon, maxLon float64) ([]hospitalModel.Hospital, error)
	DriversInBox(minLat, maxLat, minLon, maxLon float64) ([]driverModel.Driver, error)
	ConnectedHospitalIDs(driverID uint) (map[uint]bool, error)
	ConnectedDriverIDs(hospitalID uint) (map[uint]bool, error)
}

// Service computes radius searches for drivers and hospitals.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NearbyHospitals returns every hospital within radiusKm of the driver's
// stored location. "No nearby hospitals" is an empty list, not an error.
func (s *Service) NearbyHospitals(driverID uint, radiusKm float64) ([]NearbyHospital, error) {
	d, err := s.repo.FindDriver(driverID)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while looking up the driver.", err)
	}
	if d == nil {
		return nil, apperr.NotFound("Driver not found.")
	}
	if !d.HasLocation() {
		return nil, apperr.Validation("Driver's address must have latitude and longitude.")
	}

	connected, err := s.repo.ConnectedHospitalIDs(driverID)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while loading connections.", err)
	}

	minLat, maxLat, minLon, maxLon := boundingBox(*d.Latitude, *d.Longitude, radiusKm)
	candidates, err := s.repo.HospitalsInBox(minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while searching nearby hospitals.", err)
	}

	results := make([]NearbyHospital, 0, len(candidates))
	for _, h := range candidates {
		if !h.HasLocation() {
			continue
		}
		dist := Haversine(*d.Latitude, *d.Longitude, *h.Latitude, *h.Longitude)
		if dist <= radiusKm {
			results = append(results, NearbyHospital{
				Hospital:    h,
				DistanceKm:  roundKm(dist),
				IsConnected: connected[h.ID],
			})
		}
	}
	return results, nil
}

// NearbyDrivers returns every driver within radiusKm of the hospital's
// stored location.
func (s *Service) NearbyDrivers(hospitalID uint, radiusKm float64) ([]NearbyDriver, error) {
	h, err := s.repo.FindHospital(hospitalID)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while looking up the hospital.", err)
	}
	if h == nil {
		return nil, apperr.NotFound("Hospital not found.")
	}
	if !h.HasLocation() {
		return nil, apperr.Validation("Hospital's address must have latitude and longitude.")
	}

	connected, err := s.repo.ConnectedDriverIDs(hospitalID)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while loading connections.", err)
	}

	minLat, maxLat, minLon, maxLon := boundingBox(*h.Latitude, *h.Longitude, radiusKm)
	candidates, err := s.repo.DriversInBox(minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while searching nearby drivers.", err)
	}

	results := make([]NearbyDriver, 0, len(candidates))
	for _, d := range candidates {
		if !d.HasLocation() {
			continue
		}
		dist := Haversine(*h.Latitude, *h.Longitude, *d.Latitude, *d.Longitude)
		if dist <= radiusKm {
			results = append(results, NearbyDriver{
				Driver:      d,
				DistanceKm:  roundKm(dist),
				IsConnected: connected[d.ID],
			})
		}
	}
	return results, nil
}

// boundingBox converts a radius to a degree box. The 1° ≈ 111 km
// approximation over-selects; the haversine refine discards the corners.
func boundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	radiusDeg := radiusKm / KmPerDegree
	return lat - radiusDeg, lat + radiusDeg, lon - radiusDeg, lon + radiusDeg
}
