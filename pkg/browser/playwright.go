package browser

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/browserkit/pkg/config"
)

// PlaywrightLauncher launches browsers through playwright-go. Each launched
// Driver owns its own playwright runtime, browser, context and page.
type PlaywrightLauncher struct {
	install bool
	stdout  io.Writer
	stderr  io.Writer
}

// PlaywrightOption configures a PlaywrightLauncher.
type PlaywrightOption func(*PlaywrightLauncher)

// WithInstall downloads the playwright driver and browser before the first
// launch when they are missing.
func WithInstall(install bool) PlaywrightOption {
	return func(l *PlaywrightLauncher) { l.install = install }
}

// WithDriverOutput redirects the playwright driver's own output.
// Both default to io.Discard.
func WithDriverOutput(stdout, stderr io.Writer) PlaywrightOption {
	return func(l *PlaywrightLauncher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// NewPlaywrightLauncher creates a launcher.
func NewPlaywrightLauncher(opts ...PlaywrightOption) *PlaywrightLauncher {
	l := &PlaywrightLauncher{
		stdout: io.Discard,
		stderr: io.Discard,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *PlaywrightLauncher) runOptions(engine config.Engine) *playwright.RunOptions {
	return &playwright.RunOptions{
		Browsers: []string{string(engine)},
		Verbose:  false,
		Stdout:   l.stdout,
		Stderr:   l.stderr,
	}
}

// Launch starts playwright and opens one page in a new browser.
func (l *PlaywrightLauncher) Launch(opts LaunchOptions) (Driver, error) {
	if opts.Engine == "" {
		opts.Engine = config.EngineChromium
	}
	runOpts := l.runOptions(opts.Engine)

	if l.install {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserType, err := selectBrowserType(pw, opts.Engine)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	browser, err := browserType.Launch(buildLaunchOptions(opts))
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", opts.Engine, err)
	}

	bctx, err := browser.NewContext(buildContextOptions(opts))
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &playwrightDriver{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		frame:   page.MainFrame(),
	}, nil
}

func selectBrowserType(pw *playwright.Playwright, engine config.Engine) (playwright.BrowserType, error) {
	switch engine {
	case config.EngineChromium:
		return pw.Chromium, nil
	case config.EngineFirefox:
		return pw.Firefox, nil
	case config.EngineWebKit:
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported browser %q", engine)
	}
}

func buildLaunchOptions(opts LaunchOptions) playwright.BrowserTypeLaunchOptions {
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if len(opts.Args) > 0 {
		launchOpts.Args = opts.Args
	}
	return launchOpts
}

func buildContextOptions(opts LaunchOptions) playwright.BrowserNewContextOptions {
	contextOpts := playwright.BrowserNewContextOptions{}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		contextOpts.Viewport = &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		}
	}
	return contextOpts
}

// playwrightDriver implements Driver. frame is the active browsing context.
type playwrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	frame   playwright.Frame
}

func (d *playwrightDriver) Navigate(url string) error {
	// Navigation always targets the top-level document.
	d.frame = d.page.MainFrame()
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (d *playwrightDriver) QueryAll(selector string) ([]Element, error) {
	handles, err := d.frame.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}

	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{handle: h})
	}
	return elements, nil
}

func (d *playwrightDriver) WaitForPresent(selector string, timeout time.Duration) (Element, error) {
	handle, err := d.waitAttached(selector, timeout)
	if err != nil {
		return nil, err
	}
	return &playwrightElement{handle: handle}, nil
}

func (d *playwrightDriver) WaitForFrame(selector string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	handle, err := d.waitAttached(frameSelector(selector), timeout)
	if err != nil {
		return err
	}

	frame, err := pollContentFrame(handle.ContentFrame, deadline, framePollInterval)
	if err != nil {
		return fmt.Errorf("failed to enter frame %q: %w", selector, err)
	}

	d.frame = frame
	return nil
}

const framePollInterval = 100 * time.Millisecond

// pollContentFrame calls contentFrame until it yields a frame or deadline
// passes. An attached iframe has no content frame until its document starts
// loading.
func pollContentFrame(contentFrame func() (playwright.Frame, error), deadline time.Time, interval time.Duration) (playwright.Frame, error) {
	for {
		frame, err := contentFrame()
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("element has no content frame")
		}
		time.Sleep(min(interval, remaining))
	}
}

func (d *playwrightDriver) SwitchToDefault() error {
	d.frame = d.page.MainFrame()
	return nil
}

// Close releases page, context, browser and the playwright runtime, in that
// order, and reports every failure.
func (d *playwrightDriver) Close() error {
	var errs []error
	if err := d.page.Close(); err != nil {
		errs = append(errs, fmt.Errorf("page: %w", err))
	}
	if err := d.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("context: %w", err))
	}
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("browser: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("playwright: %w", err))
	}
	return errors.Join(errs...)
}

func (d *playwrightDriver) waitAttached(selector string, timeout time.Duration) (playwright.ElementHandle, error) {
	state := playwright.WaitForSelectorState("attached")
	handle, err := d.frame.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
		State:   &state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("wait for %q failed: %w", selector, err)
	}
	if handle == nil {
		return nil, fmt.Errorf("wait for %q returned no element", selector)
	}
	return handle, nil
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) TextContent() (string, error) {
	return e.handle.TextContent()
}

func (e *playwrightElement) InnerHTML() (string, error) {
	return e.handle.InnerHTML()
}
