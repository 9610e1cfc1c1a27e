package geo

import (
	driverModel "lifeline-backend/models/driver"
	hospitalModel "lifeline-backend/models/hospital"

	"gorm.io/gorm"
)

// GormRepository implements Repository against PostgreSQL.
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) FindDriver(id uint) (*driverModel.Driver, error) {
	var d driverModel.Driver
	err := r.DB.Preload("CityState").First(&d, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *GormRepository) FindHospital(id uint) (*hospitalModel.Hospital, error) {
	var h hospitalModel.Hospital
	err := r.DB.Preload("CityState").First(&h, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *GormRepository) HospitalsInBox(minLat, maxLat, minLon, maxLon float64) ([]hospitalModel.Hospital, error) {
	var hospitals []hospitalModel.Hospital
	err := r.DB.Preload("CityState").
		Where("latitude >= ? AND latitude <= ? AND longitude >= ? AND longitude <= ?",
			minLat, maxLat, minLon, maxLon).
		Find(&hospitals).Error
	return hospitals, err
}

func (r *GormRepository) DriversInBox(minLat, maxLat, minLon, maxLon float64) ([]driverModel.Driver, error) {
	var drivers []driverModel.Driver
	err := r.DB.Preload("CityState").
		Where("latitude >= ? AND latitude <= ? AND longitude >= ? AND longitude <= ?",
			minLat, maxLat, minLon, maxLon).
		Find(&drivers).Error
	return drivers, err
}

func (r *GormRepository) ConnectedHospitalIDs(driverID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Table("hospital_drivers").
		Where("driver_id = ?", driverID).
		Pluck("hospital_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *GormRepository) ConnectedDriverIDs(hospitalID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Table("hospital_drivers").
		Where("hospital_id = ?", hospitalID).
		Pluck("driver_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
