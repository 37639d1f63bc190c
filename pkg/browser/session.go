package browser

import (
	"fmt"
	"os"
	"time"

	"github.com/entrhq/browserkit/pkg/config"
	"github.com/entrhq/browserkit/pkg/logging"
	"github.com/entrhq/browserkit/pkg/result"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session owns one browser driver and runs every call against it once,
// closing the browser on any captured failure.
type Session struct {
	launcher Launcher
	driver   Driver
	state    State

	explicitMode config.Mode
	mode         config.Mode
	timeout      time.Duration
	policy       config.SchemePolicy
	launchOpts   LaunchOptions
	getenv       func(string) string
	logger       *logging.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithMode fixes the window mode instead of resolving it from the environment.
func WithMode(mode config.Mode) Option {
	return func(s *Session) { s.explicitMode = mode }
}

// WithTimeout overrides the explicit wait timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithSchemePolicy selects how Goto rewrites URLs.
func WithSchemePolicy(policy config.SchemePolicy) Option {
	return func(s *Session) { s.policy = policy }
}

// WithEngine selects the browser engine.
func WithEngine(engine config.Engine) Option {
	return func(s *Session) { s.launchOpts.Engine = engine }
}

// WithViewport sets the page size.
func WithViewport(width, height int) Option {
	return func(s *Session) {
		s.launchOpts.ViewportWidth = width
		s.launchOpts.ViewportHeight = height
	}
}

// WithBrowserArgs adds command line switches for the browser process.
func WithBrowserArgs(args ...string) Option {
	return func(s *Session) { s.launchOpts.Args = append(s.launchOpts.Args, args...) }
}

// WithSettings applies a stored browser section. Options after it override it.
func WithSettings(settings *config.BrowserSection) Option {
	return func(s *Session) {
		if settings == nil {
			return
		}
		if mode := settings.GetMode(); mode != "" {
			s.explicitMode = mode
		}
		s.timeout = settings.GetWaitTimeout()
		s.policy = settings.GetSchemePolicy()
		s.launchOpts.Engine = settings.GetEngine()
		s.launchOpts.ViewportWidth, s.launchOpts.ViewportHeight = settings.GetViewport()
	}
}

// WithGetenv replaces os.Getenv for mode resolution.
func WithGetenv(getenv func(string) string) Option {
	return func(s *Session) { s.getenv = getenv }
}

// WithLogger sets the session logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates an uninitialized session. The window mode is resolved
// here, once: an explicit mode, then BROWSERKIT_MODE, then PYTHON_ENV.
func NewSession(launcher Launcher, opts ...Option) (*Session, error) {
	if launcher == nil {
		return nil, fmt.Errorf("launcher is required")
	}

	s := &Session{
		launcher: launcher,
		timeout:  config.DefaultWaitTimeout,
		policy:   config.SchemePreserveExplicit,
		launchOpts: LaunchOptions{
			Engine:         config.EngineChromium,
			ViewportWidth:  config.DefaultViewportWidth,
			ViewportHeight: config.DefaultViewportHeight,
		},
		getenv: os.Getenv,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mode, err := config.ResolveMode(s.explicitMode, s.getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve browser mode: %w", err)
	}
	s.mode = mode
	s.launchOpts.Headless = mode.Headless()

	return s, nil
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Mode returns the resolved window mode.
func (s *Session) Mode() config.Mode {
	return s.mode
}

// Timeout returns the explicit wait timeout.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// ResolveURL returns the URL Goto would navigate to for raw.
func (s *Session) ResolveURL(raw string) string {
	return NormalizeURL(raw, s.policy)
}

// Start launches the browser. A launch failure is returned as is and leaves
// the session uninitialized; it does not go through the teardown path.
func (s *Session) Start() (Driver, error) {
	switch s.state {
	case StateActive:
		return nil, ErrSessionActive
	case StateClosed:
		return nil, ErrSessionClosed
	}

	driver, err := result.Attempt(func() (Driver, error) {
		return s.launcher.Launch(s.launchOpts)
	}).Unpack()
	if err == nil && driver == nil {
		err = fmt.Errorf("launcher returned no driver")
	}
	if err != nil {
		s.logger.Errorf("failed to start %s browser (%s): %v", s.launchOpts.Engine, s.mode, err)
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s.driver = driver
	s.state = StateActive
	s.logger.Infof("started %s browser (%s, wait timeout %v)", s.launchOpts.Engine, s.mode, s.timeout)
	return driver, nil
}

// Stop closes the browser. A close failure is returned directly; the session
// is closed either way.
func (s *Session) Stop() error {
	if err := s.ensureActive(); err != nil {
		return err
	}

	driver := s.driver
	s.driver = nil
	s.state = StateClosed

	if err := driver.Close(); err != nil {
		s.logger.Warnf("browser close failed: %v", err)
		return fmt.Errorf("failed to close browser: %w", err)
	}
	s.logger.Infof("browser closed")
	return nil
}

// Goto navigates to url after normalizing its scheme (see NormalizeURL).
func (s *Session) Goto(url string) error {
	if err := s.ensureActive(); err != nil {
		return err
	}

	target := s.ResolveURL(url)
	res := result.AttemptErr(func() error {
		return s.driver.Navigate(target)
	})
	if res.Failed() {
		return s.handleError("goto", target, res.Err())
	}

	s.logger.Debugf("navigated to %s", target)
	return nil
}

// QuerySelector returns the elements matching a CSS selector.
// An empty match is a failure and closes the session like any other.
func (s *Session) QuerySelector(selector string) (Selection, error) {
	if err := s.ensureActive(); err != nil {
		return Selection{}, err
	}

	elements, err := result.Attempt(func() ([]Element, error) {
		return s.driver.QueryAll(selector)
	}).Unpack()
	if err != nil {
		return Selection{}, s.handleError("query_selector", selector, err)
	}
	if len(elements) == 0 {
		return Selection{}, s.handleError("query_selector", selector, &noElementError{selector: selector})
	}

	s.logger.Debugf("query %q matched %d element(s)", selector, len(elements))
	return Selection{elements: elements}, nil
}

// WaitFor blocks until an element matching selector is present or the wait
// timeout elapses.
func (s *Session) WaitFor(selector string) (Element, error) {
	if err := s.ensureActive(); err != nil {
		return nil, err
	}

	element, err := result.Attempt(func() (Element, error) {
		return s.driver.WaitForPresent(selector, s.timeout)
	}).Unpack()
	if err != nil {
		return nil, s.handleError("wait_for", selector, err)
	}
	return element, nil
}

// WaitForAndSwitchToIframe blocks until a frame matching selector is
// available and makes it the active browsing context.
func (s *Session) WaitForAndSwitchToIframe(selector string) error {
	if err := s.ensureActive(); err != nil {
		return err
	}

	res := result.AttemptErr(func() error {
		return s.driver.WaitForFrame(selector, s.timeout)
	})
	if res.Failed() {
		return s.handleError("wait_for_iframe", selector, res.Err())
	}

	s.logger.Debugf("switched to frame %q", selector)
	return nil
}

// SwitchDefault returns to the top-level document. Its error is not captured
// and does not close the session.
func (s *Session) SwitchDefault() error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	return s.driver.SwitchToDefault()
}

// handleError closes the session after a captured failure and reports both.
func (s *Session) handleError(op, target string, cause error) error {
	s.logger.Errorf("%s %q failed, closing session: %v", op, target, cause)
	return &OperationError{
		Op:          op,
		Target:      target,
		Err:         cause,
		TeardownErr: s.Stop(),
	}
}

func (s *Session) ensureActive() error {
	switch s.state {
	case StateUninitialized:
		return ErrSessionNotStarted
	case StateClosed:
		return ErrSessionClosed
	}
	return nil
}
