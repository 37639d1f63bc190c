package config

import (
	"errors"
	"fmt"
	"sync"
)

// Section is one named group of settings persisted by a Store.
type Section interface {
	// ID is the key the section is stored under
	ID() string

	// Title is a short human readable name
	Title() string

	// Description explains what the section controls
	Description() string

	// Data returns the section's current values
	Data() map[string]any

	// SetData applies stored values to the section
	SetData(data map[string]any) error

	// Validate checks the current values
	Validate() error

	// Reset restores the defaults
	Reset()
}

// Manager binds registered sections to a Store.
type Manager struct {
	store    Store
	sections map[string]Section
	order    []string
	mu       sync.RWMutex
}

// NewManager creates a manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := section.ID()
	if id == "" {
		return fmt.Errorf("section ID cannot be empty")
	}
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("section %q already registered", id)
	}

	m.sections[id] = section
	m.order = append(m.order, id)
	return nil
}

// GetSection returns the section registered under id.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	section, ok := m.sections[id]
	return section, ok
}

// Sections returns the registered sections in registration order.
func (m *Manager) Sections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sections[id])
	}
	return out
}

// InvalidSectionError reports stored values that failed validation. The
// section has been reset to its defaults.
type InvalidSectionError struct {
	Section string
	Err     error
}

func (e *InvalidSectionError) Error() string {
	return fmt.Sprintf("section %q reset to defaults: %v", e.Section, e.Err)
}

func (e *InvalidSectionError) Unwrap() error {
	return e.Err
}

// LoadAll loads the store and applies stored values to every section.
// A section whose stored values fail validation is reset to defaults and
// reported as an *InvalidSectionError once every section has been loaded.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	var invalid []error
	for _, section := range m.Sections() {
		data, err := m.store.GetSection(section.ID())
		if err != nil {
			return fmt.Errorf("failed to read section %q: %w", section.ID(), err)
		}
		if len(data) == 0 {
			continue
		}
		if err := section.SetData(data); err != nil {
			return fmt.Errorf("failed to apply section %q: %w", section.ID(), err)
		}
		if err := section.Validate(); err != nil {
			section.Reset()
			invalid = append(invalid, &InvalidSectionError{Section: section.ID(), Err: err})
		}
	}

	return errors.Join(invalid...)
}

// SaveAll validates every section and writes them to the store.
func (m *Manager) SaveAll() error {
	for _, section := range m.Sections() {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("invalid section %q: %w", section.ID(), err)
		}
		if err := m.store.SetSection(section.ID(), section.Data()); err != nil {
			return fmt.Errorf("failed to store section %q: %w", section.ID(), err)
		}
	}

	if err := m.store.Save(); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}
