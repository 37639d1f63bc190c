package config

import (
	"fmt"
	"strings"
)

// Mode selects whether the browser window is shown.
type Mode string

const (
	// ModeHeadless runs the browser without a window
	ModeHeadless Mode = "headless"

	// ModeHeaded runs the browser with a visible window
	ModeHeaded Mode = "headed"
)

// Environment variables consulted by ResolveMode.
const (
	// EnvMode holds "headless" or "headed"
	EnvMode = "BROWSERKIT_MODE"

	// EnvLegacy selects headless when it equals LegacyProductionValue
	EnvLegacy = "PYTHON_ENV"

	// LegacyProductionValue is the EnvLegacy value that selects headless
	LegacyProductionValue = "production"
)

// ParseMode parses "headless" or "headed". Matching ignores case and surrounding space.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeHeadless:
		return ModeHeadless, nil
	case ModeHeaded:
		return ModeHeaded, nil
	default:
		return "", fmt.Errorf("invalid mode %q (must be 'headless' or 'headed')", s)
	}
}

// Headless reports whether the mode hides the browser window.
func (m Mode) Headless() bool {
	return m == ModeHeadless
}

// ResolveMode picks the browser mode once, in precedence order:
// an explicit mode, then BROWSERKIT_MODE, then PYTHON_ENV == "production".
// Anything else, including an unset environment, selects headed.
// An invalid BROWSERKIT_MODE is reported instead of silently ignored.
func ResolveMode(explicit Mode, getenv func(string) string) (Mode, error) {
	if explicit != "" {
		return ParseMode(string(explicit))
	}

	if v := getenv(EnvMode); v != "" {
		mode, err := ParseMode(v)
		if err != nil {
			return "", fmt.Errorf("%s: %w", EnvMode, err)
		}
		return mode, nil
	}

	if getenv(EnvLegacy) == LegacyProductionValue {
		return ModeHeadless, nil
	}
	return ModeHeaded, nil
}

// SchemePolicy controls how navigation targets without https:// are rewritten.
type SchemePolicy string

const (
	// SchemePreserveExplicit prepends https:// only when the URL has no scheme
	SchemePreserveExplicit SchemePolicy = "preserve"

	// SchemeForceHTTPS prepends https:// to anything not starting with it,
	// including URLs with an explicit http:// scheme
	SchemeForceHTTPS SchemePolicy = "force_https"
)

// ParseSchemePolicy parses "preserve" or "force_https".
func ParseSchemePolicy(s string) (SchemePolicy, error) {
	switch SchemePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case SchemePreserveExplicit:
		return SchemePreserveExplicit, nil
	case SchemeForceHTTPS:
		return SchemeForceHTTPS, nil
	default:
		return "", fmt.Errorf("invalid scheme policy %q (must be 'preserve' or 'force_https')", s)
	}
}

// Engine names the browser the driver launches.
type Engine string

const (
	EngineChromium Engine = "chromium"
	EngineFirefox  Engine = "firefox"
	EngineWebKit   Engine = "webkit"
)

// ParseEngine parses a browser engine name.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case EngineChromium:
		return EngineChromium, nil
	case EngineFirefox:
		return EngineFirefox, nil
	case EngineWebKit:
		return EngineWebKit, nil
	default:
		return "", fmt.Errorf("invalid browser %q (must be 'chromium', 'firefox' or 'webkit')", s)
	}
}
