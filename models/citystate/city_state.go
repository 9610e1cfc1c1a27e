package citystate

// CityState is the shared city/state lookup table, deduplicated by postal
// code. Rows are created lazily the first time a postal code is seen.
type CityState struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	City       string `gorm:"type:varchar(100);not null" json:"city"`
	State      string `gorm:"type:varchar(100);not null" json:"state"`
	PostalCode string `gorm:"type:varchar(20);not null;unique" json:"postal_code"`
}

// TableName sets the table name for the CityState model
func (CityState) TableName() string {
	return "city_states"
}
