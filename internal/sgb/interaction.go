package sgb

import (
	"errors"
	"sync"

	"sgb-go/internal/model"
)

// Delta is the counter change that accompanies a set-membership toggle.
type Delta int

const (
	Decrement Delta = -1
	Increment Delta = 1
)

// ApplyDelta adds d to count, never going below zero.
func ApplyDelta(count int, d Delta) int {
	n := count + int(d)
	if n < 0 {
		return 0
	}
	return n
}

// ToggleLike flips id in state.LikedIDs and reports the matching counter change.
func ToggleLike(id string, state *model.InteractionState) Delta {
	return toggle(state.LikedIDs, id)
}

// ToggleSave flips id in state.SavedIDs and reports the matching counter change.
func ToggleSave(id string, state *model.InteractionState) Delta {
	return toggle(state.SavedIDs, id)
}

func toggle(set model.IDSet, id string) Delta {
	if set.Has(id) {
		set.Delete(id)
		return Decrement
	}
	set.Add(id)
	return Increment
}

// InteractionTracker loads and saves the local user's interaction state
// under its own key, so toggling a like never rewrites record data.
type InteractionTracker struct {
	store  Store
	logger Logger
	key    string
	mu     sync.Mutex
}

// NewInteractionTracker creates a tracker over store using KeyInteraction.
func NewInteractionTracker(store Store, logger Logger) *InteractionTracker {
	return &InteractionTracker{
		store:  store,
		logger: logger,
		key:    KeyInteraction,
	}
}

// Load returns the persisted state, or empty sets if absent or unreadable.
func (t *InteractionTracker) Load() model.InteractionState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, _ := t.load()
	return state
}

// Save overwrites the persisted state. Failures are logged.
func (t *InteractionTracker) Save(state model.InteractionState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.save(state)
}

// Modify runs fn against the current state and persists the result, holding
// the tracker lock for the whole cycle. If the state cannot be read from the
// store, fn is not called, nothing is written and ok is false.
func (t *InteractionTracker) Modify(fn func(*model.InteractionState)) (state model.InteractionState, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok = t.load()
	if !ok {
		return state, false
	}
	fn(&state)
	t.save(state)
	return state, true
}

// load reports ok=false only when the store itself failed. Absent or
// unreadable data is an empty state that may be overwritten.
func (t *InteractionTracker) load() (model.InteractionState, bool) {
	data, found, err := t.store.Get(t.key)
	if err != nil {
		t.logger.Error("storage error", "op", "LoadInteraction", "key", t.key, "error", err)
		return model.NewInteractionState(), false
	}
	if !found {
		return model.NewInteractionState(), true
	}

	state, err := Decode(data, model.NewInteractionState())
	if err != nil {
		var de *DeserializationError
		if errors.As(err, &de) {
			de.Key = t.key
		}
		t.logger.Error("discarding unreadable interaction state", "error", err)
		return model.NewInteractionState(), true
	}
	state.Normalize()
	return state, true
}

func (t *InteractionTracker) save(state model.InteractionState) {
	state.Normalize()
	data, err := Encode(state)
	if err != nil {
		t.logger.Error("serialization error", "op", "SaveInteraction", "error", err)
		return
	}
	if err := t.store.Set(t.key, data); err != nil {
		t.logger.Error("storage error", "op", "SaveInteraction", "key", t.key, "quota_exceeded", errors.Is(err, ErrQuotaExceeded), "error", err)
	}
}
