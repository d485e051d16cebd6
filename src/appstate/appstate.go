// Package appstate holds the mutable application state shared by the GUI,
// the capture loop and the control server.
package appstate

import (
	"slices"
	"sync"

	"vr-dimension/src/settings"
)

// Snapshot is an immutable copy of the state handed to observers.
type Snapshot struct {
	Window    string
	Capturing bool
	Settings  settings.Settings
	Status    string
}

// State is safe for concurrent use. Observers run synchronously on the
// goroutine that made the change and must not call back into State while
// blocking; GUI observers should hop to the UI thread.
type State struct {
	mu        sync.RWMutex
	window    string
	capturing bool
	settings  settings.Settings
	status    string

	obsMu     sync.Mutex
	observers []func(Snapshot)
}

func New(s *settings.Settings) *State {
	if s == nil {
		s = settings.Default()
	}
	return &State{settings: *s, status: "Ready"}
}

// Subscribe registers fn to be called after every change.
func (st *State) Subscribe(fn func(Snapshot)) {
	st.obsMu.Lock()
	st.observers = append(st.observers, fn)
	st.obsMu.Unlock()
}

func (st *State) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return Snapshot{Window: st.window, Capturing: st.capturing, Settings: st.settings, Status: st.status}
}

func (st *State) SelectedWindow() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.window
}

func (st *State) SelectWindow(title string) {
	st.update(func() bool {
		if st.window == title {
			return false
		}
		st.window = title
		return true
	})
}

func (st *State) Capturing() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.capturing
}

// SetCapturing flips the capture flag and sets the matching status text.
func (st *State) SetCapturing(on bool, status string) {
	st.update(func() bool {
		if st.capturing == on && (status == "" || st.status == status) {
			return false
		}
		st.capturing = on
		if status != "" {
			st.status = status
		}
		return true
	})
}

func (st *State) Status() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.status
}

func (st *State) SetStatus(status string) {
	st.update(func() bool {
		if st.status == status {
			return false
		}
		st.status = status
		return true
	})
}

func (st *State) Settings() settings.Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings
}

// ReplaceSettings installs s wholesale, e.g. after a reload from disk.
func (st *State) ReplaceSettings(s settings.Settings) {
	st.update(func() bool {
		if st.settings == s {
			return false
		}
		st.settings = s
		return true
	})
}

// UpdateSettings applies fn to a copy and keeps it only if it validates.
func (st *State) UpdateSettings(fn func(*settings.Settings)) error {
	var err error
	st.update(func() bool {
		next := st.settings
		fn(&next)
		if err = next.Validate(); err != nil {
			return false
		}
		if next == st.settings {
			return false
		}
		st.settings = next
		return true
	})
	return err
}

func (st *State) update(mutate func() bool) {
	st.mu.Lock()
	changed := mutate()
	snap := Snapshot{Window: st.window, Capturing: st.capturing, Settings: st.settings, Status: st.status}
	st.mu.Unlock()
	if !changed {
		return
	}

	st.obsMu.Lock()
	observers := slices.Clone(st.observers)
	st.obsMu.Unlock()
	for _, fn := range observers {
		fn(snap)
	}
}
