package scheduler

import (
	schedulerModel "lifeline-backend/models/scheduler"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists armed deferred actions so deadlines survive a restart.
type Store interface {
	// Save upserts by action id: re-arming replaces the existing entry.
	Save(action *schedulerModel.DeferredAction) error
	// Delete removes an entry; deleting an absent id is not an error.
	Delete(actionID string) error
	// List returns every armed entry.
	List() ([]schedulerModel.DeferredAction, error)
}

// GormStore keeps armed actions in the deferred_actions table.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Save(action *schedulerModel.DeferredAction) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "action_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"request_id", "reason", "fire_at"}),
	}).Create(action).Error
}

func (s *GormStore) Delete(actionID string) error {
	return s.DB.Where("action_id = ?", actionID).Delete(&schedulerModel.DeferredAction{}).Error
}

func (s *GormStore) List() ([]schedulerModel.DeferredAction, error) {
	var actions []schedulerModel.DeferredAction
	if err := s.DB.Order("fire_at").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
