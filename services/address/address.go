package address

import (
	"lifeline-backend/apperr"
	"lifeline-backend/models/citystate"
	bookingTypes "lifeline-backend/types/booking"

	"gorm.io/gorm"
)

// CityStateStore is the persistence port for the shared city/state lookup
// table.
type CityStateStore interface {
	// FindByPostalCode returns (nil, nil) when the code is unknown.
	FindByPostalCode(code string) (*citystate.CityState, error)
	Create(cs *citystate.CityState) error
}

// GormStore backs the lookup table with the city_states table.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) FindByPostalCode(code string) (*citystate.CityState, error) {
	var cs citystate.CityState
	err := s.DB.Where("postal_code = ?", code).First(&cs).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *GormStore) Create(cs *citystate.CityState) error {
	return s.DB.Create(cs).Error
}

// GetOrCreate resolves the postal-code/city/state triple to the shared
// CityState row, creating it on first sight. If a concurrent insert wins the
// race, the unique constraint on postal_code rejects ours and we fall back
// to the existing row.
func GetOrCreate(store CityStateStore, in bookingTypes.AddressInput) (*citystate.CityState, error) {
	if in.PostalCode == "" {
		return nil, apperr.Validation("Address postal_code is required.")
	}

	existing, err := store.FindByPostalCode(in.PostalCode)
	if err != nil {
		return nil, apperr.Dependency("An error occurred while resolving the address.", err)
	}
	if existing != nil {
		return existing, nil
	}

	cs := &citystate.CityState{
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
	}
	if createErr := store.Create(cs); createErr != nil {
		// Concurrent first-insert race: the unique index is the authority.
		existing, err = store.FindByPostalCode(in.PostalCode)
		if err == nil && existing != nil {
			return existing, nil
		}
		return nil, apperr.Dependency("An error occurred while saving the address.", createErr)
	}
	return cs, nil
}
