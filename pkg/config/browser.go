package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"

	// DefaultWaitTimeout bounds every explicit wait
	DefaultWaitTimeout = 60 * time.Second

	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	defaultSchemePolicy = SchemePreserveExplicit
	defaultEngine       = EngineChromium

	minWaitTimeout = 100 * time.Millisecond
	maxWaitTimeout = 10 * time.Minute
)

// BrowserSection holds the settings a Session is built from.
// An empty Mode defers the headless decision to the environment (see ResolveMode).
type BrowserSection struct {
	Mode           Mode          `json:"mode"`
	WaitTimeout    time.Duration `json:"wait_timeout"`
	SchemePolicy   SchemePolicy  `json:"scheme_policy"`
	Engine         Engine        `json:"browser"`
	ViewportWidth  int           `json:"viewport_width"`
	ViewportHeight int           `json:"viewport_height"`
	mu             sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser Settings"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Configure the automated browser: window mode, wait timeout, URL scheme handling and engine."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"mode":            string(s.Mode),
		"wait_timeout":    s.WaitTimeout.String(),
		"scheme_policy":   string(s.SchemePolicy),
		"browser":         string(s.Engine),
		"viewport_width":  s.ViewportWidth,
		"viewport_height": s.ViewportHeight,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "mode":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for mode: expected string, got %T", value)
			}
			if str == "" {
				s.Mode = ""
				continue
			}
			mode, err := ParseMode(str)
			if err != nil {
				return err
			}
			s.Mode = mode

		case "wait_timeout":
			// JSON numbers decode as float64 nanoseconds
			switch v := value.(type) {
			case string:
				d, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("invalid duration string for wait_timeout: %w", err)
				}
				s.WaitTimeout = d
			case float64:
				s.WaitTimeout = time.Duration(v)
			case int64:
				s.WaitTimeout = time.Duration(v)
			case time.Duration:
				s.WaitTimeout = v
			default:
				return fmt.Errorf("invalid value type for wait_timeout: expected string or number, got %T", value)
			}

		case "scheme_policy":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for scheme_policy: expected string, got %T", value)
			}
			policy, err := ParseSchemePolicy(str)
			if err != nil {
				return err
			}
			s.SchemePolicy = policy

		case "browser":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for browser: expected string, got %T", value)
			}
			engine, err := ParseEngine(str)
			if err != nil {
				return err
			}
			s.Engine = engine

		case "viewport_width", "viewport_height":
			n, err := toInt(value)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			if key == "viewport_width" {
				s.ViewportWidth = n
			} else {
				s.ViewportHeight = n
			}

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.WaitTimeout < minWaitTimeout || s.WaitTimeout > maxWaitTimeout {
		return fmt.Errorf("wait_timeout must be between %v and %v, got %v", minWaitTimeout, maxWaitTimeout, s.WaitTimeout)
	}
	if s.ViewportWidth < 100 || s.ViewportWidth > 5000 {
		return fmt.Errorf("viewport_width must be between 100 and 5000 pixels")
	}
	if s.ViewportHeight < 100 || s.ViewportHeight > 5000 {
		return fmt.Errorf("viewport_height must be between 100 and 5000 pixels")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Mode = ""
	s.WaitTimeout = DefaultWaitTimeout
	s.SchemePolicy = defaultSchemePolicy
	s.Engine = defaultEngine
	s.ViewportWidth = DefaultViewportWidth
	s.ViewportHeight = DefaultViewportHeight
}

// GetMode returns the configured mode, empty when it is left to the environment.
func (s *BrowserSection) GetMode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Mode
}

// SetMode sets the window mode. Pass "" to defer to the environment.
func (s *BrowserSection) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Mode = mode
}

// GetWaitTimeout returns the explicit wait timeout.
func (s *BrowserSection) GetWaitTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.WaitTimeout
}

// SetWaitTimeout sets the explicit wait timeout.
func (s *BrowserSection) SetWaitTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WaitTimeout = d
}

// GetSchemePolicy returns the URL scheme policy.
func (s *BrowserSection) GetSchemePolicy() SchemePolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SchemePolicy
}

// GetEngine returns the browser engine.
func (s *BrowserSection) GetEngine() Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Engine
}

// GetViewport returns the viewport width and height.
func (s *BrowserSection) GetViewport() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ViewportWidth, s.ViewportHeight
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
