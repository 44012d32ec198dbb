package sharing

import "sync"

// Model identifies the currently served model: display name, on-disk
// resource, and the engine that runs it.
type Model struct {
	Name   string
	Path   string
	Engine string
}

// ModelState is the mutable cell holding the served model identity. The
// triple is guarded by one lock and replaced as a unit, so a reader can
// never observe a name from one generation paired with a path from another.
type ModelState struct {
	mu    sync.RWMutex
	model Model
}

// NewModelState creates model state from initial values.
func NewModelState(name, path, engine string) *ModelState {
	return &ModelState{model: Model{Name: name, Path: path, Engine: engine}}
}

// Update replaces the served model atomically. Requests already in flight
// keep the snapshot they read; only subsequent requests see the new model.
func (s *ModelState) Update(name, path, engine string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = Model{Name: name, Path: path, Engine: engine}
}

// Snapshot returns the current model triple.
func (s *ModelState) Snapshot() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// ModelName returns the current model name.
func (s *ModelState) ModelName() string {
	return s.Snapshot().Name
}
