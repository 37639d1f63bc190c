package browser

import (
	"time"

	"github.com/entrhq/browserkit/pkg/config"
)

// LaunchOptions configures a new browser process.
type LaunchOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Engine selects chromium, firefox or webkit
	Engine config.Engine

	// ViewportWidth and ViewportHeight set the initial page size in pixels
	ViewportWidth  int
	ViewportHeight int

	// Args are extra command line switches passed to the browser
	Args []string
}

// Launcher starts browser processes.
type Launcher interface {
	Launch(opts LaunchOptions) (Driver, error)
}

// Driver is a handle to one running browser with one page.
// Lookups and waits run against the active browsing context, which is the
// top-level document until WaitForFrame enters a frame.
type Driver interface {
	// Navigate loads url in the top-level document
	Navigate(url string) error

	// QueryAll returns every element matching a CSS selector, in document order
	QueryAll(selector string) ([]Element, error)

	// WaitForPresent blocks until an element matching selector is attached
	// to the DOM or timeout elapses
	WaitForPresent(selector string, timeout time.Duration) (Element, error)

	// WaitForFrame blocks until a frame matching selector is available, then
	// makes it the active browsing context
	WaitForFrame(selector string, timeout time.Duration) error

	// SwitchToDefault makes the top-level document the active browsing context
	SwitchToDefault() error

	// Close terminates the browser process
	Close() error
}

// Element is a DOM element located by a Driver.
type Element interface {
	TextContent() (string, error)
	InnerHTML() (string, error)
}
