package scheduler

import (
	"fmt"
	"sync"
	"time"

	"lifeline-backend/logger"
	schedulerModel "lifeline-backend/models/scheduler"
	"lifeline-backend/observability"
)

// FireFunc runs when a deferred action's deadline passes. It must tolerate
// stale state: the booking it refers to may already have been resolved by a
// human response.
type FireFunc func(requestID uint, reason string)

type entry struct {
	timer     *time.Timer
	requestID uint
	reason    string
}

// Scheduler arms one-shot deferred actions keyed by action id. Entries fire
// at most once: the in-memory entry is removed under the lock before the
// callback runs, so a concurrent Cancel either prevents execution or is a
// benign no-op. Armed entries are persisted through the Store and restored
// on boot.
type Scheduler struct {
	mu      sync.Mutex
	store   Store
	entries map[string]*entry
	fire    FireFunc
}

func New(store Store) *Scheduler {
	return &Scheduler{
		store:   store,
		entries: make(map[string]*entry),
	}
}

// OnFire sets the callback invoked when an action fires. Must be called
// before Restore or the first Arm.
func (s *Scheduler) OnFire(fn FireFunc) {
	s.fire = fn
}

// Arm schedules the action to fire at fireAt, replacing any existing entry
// with the same id (the replaced entry will not fire).
func (s *Scheduler) Arm(actionID string, fireAt time.Time, requestID uint, reason string) error {
	if err := s.store.Save(&schedulerModel.DeferredAction{
		ActionID:  actionID,
		RequestID: requestID,
		Reason:    reason,
		FireAt:    fireAt,
	}); err != nil {
		return err
	}

	s.armTimer(actionID, fireAt, requestID, reason)
	return nil
}

// armTimer installs the in-process timer without touching the store.
func (s *Scheduler) armTimer(actionID string, fireAt time.Time, requestID uint, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[actionID]; ok {
		old.timer.Stop()
	}

	delay := time.Until(fireAt)
	if delay < 0 {
		delay = 0
	}

	e := &entry{requestID: requestID, reason: reason}
	e.timer = time.AfterFunc(delay, func() { s.trigger(actionID, e) })
	s.entries[actionID] = e
}

// Cancel removes the action if it is still armed. Cancelling an absent or
// already-fired id is a benign no-op; correctness against a lost race comes
// from the callback's own status recheck, not from this call succeeding.
func (s *Scheduler) Cancel(actionID string) {
	s.mu.Lock()
	e, ok := s.entries[actionID]
	if ok {
		e.timer.Stop()
		delete(s.entries, actionID)
	}
	s.mu.Unlock()

	if !ok {
		logger.Info(fmt.Sprintf("No armed deferred action %s to cancel", actionID))
	} else {
		observability.SchedulerCancels.Inc()
	}

	if err := s.store.Delete(actionID); err != nil {
		logger.Error(fmt.Sprintf("Failed to delete deferred action %s", actionID), err)
	}
}

// trigger runs when armed's timer elapses. Claiming the entry under the lock
// guarantees at-most-once execution; the identity check keeps a timer that
// elapsed just as its id was re-armed from claiming the replacement entry.
func (s *Scheduler) trigger(actionID string, armed *entry) {
	s.mu.Lock()
	claimed := s.entries[actionID] == armed
	if claimed {
		delete(s.entries, actionID)
	}
	s.mu.Unlock()

	if !claimed {
		// A cancel or replacement won the race.
		return
	}

	if err := s.store.Delete(actionID); err != nil {
		logger.Error(fmt.Sprintf("Failed to delete fired deferred action %s", actionID), err)
	}

	observability.SchedulerFires.Inc()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Deferred action %s panicked: %v", actionID, r), nil)
		}
	}()

	if s.fire != nil {
		s.fire(armed.requestID, armed.reason)
	}
}

// Restore re-arms every persisted entry. Past-due entries fire immediately.
func (s *Scheduler) Restore() error {
	actions, err := s.store.List()
	if err != nil {
		return err
	}

	for _, a := range actions {
		s.armTimer(a.ActionID, a.FireAt, a.RequestID, a.Reason)
	}

	if len(actions) > 0 {
		logger.Info(fmt.Sprintf("Restored %d deferred action(s)", len(actions)))
	}
	return nil
}

// Stop cancels all in-process timers without touching the store; armed rows
// remain durable for the next boot.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, id)
	}
}
