// Package engine tracks the conversion engine's launch state and the
// drives attached for the current run.
//
// The engine has a single one-way state transition: it starts in the
// config state, during which drive configuration is mutable, and moves to
// launched when active operation begins. Provisioning and registration
// are only legal before that transition.
package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// State is the engine lifecycle phase.
type State int

const (
	// StateConfig is the pre-launch phase; drives may still be added.
	StateConfig State = iota
	// StateLaunched means active operation has begun; the drive set is
	// frozen.
	StateLaunched
)

// Drive is a disk image registered with the engine for the current run.
type Drive struct {
	Path string
}

// Engine holds the state for a single conversion run.
//
// An Engine is not safe for concurrent use. A run owns its engine and
// drives it sequentially.
type Engine struct {
	runID   uuid.UUID
	backend string
	state   State
	drives  []Drive
}

// New returns an engine in the config state using the named storage
// backend.
func New(backend string) *Engine {
	return &Engine{
		runID:   uuid.New(),
		backend: backend,
		state:   StateConfig,
	}
}

// RunID returns the identifier for this conversion run.
func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

// Backend returns the active storage backend name.
func (e *Engine) Backend() string {
	return e.backend
}

// IsConfig reports whether the engine is still in its pre-launch
// configuration state.
func (e *Engine) IsConfig() bool {
	return e.state == StateConfig
}

// Launch moves the engine out of the config state. The transition happens
// at most once.
func (e *Engine) Launch() error {
	if e.state != StateConfig {
		return fmt.Errorf("engine already launched")
	}
	e.state = StateLaunched
	return nil
}

// AddDrive registers a disk image with the engine. Registration fails
// after launch and for paths that are already registered.
func (e *Engine) AddDrive(path string) error {
	if e.state != StateConfig {
		return fmt.Errorf("cannot add drive %s: engine already launched", path)
	}
	for _, d := range e.drives {
		if d.Path == path {
			return fmt.Errorf("drive %s is already registered", path)
		}
	}
	e.drives = append(e.drives, Drive{Path: path})
	return nil
}

// Drives returns the registered drives in registration order.
func (e *Engine) Drives() []Drive {
	out := make([]Drive, len(e.drives))
	copy(out, e.drives)
	return out
}
