package script

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/browserkit/pkg/browser"
)

// fakeLauncher hands out one fakeDriver.
type fakeLauncher struct {
	driver    *fakeDriver
	launchErr error
}

func (l *fakeLauncher) Launch(browser.LaunchOptions) (browser.Driver, error) {
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	return l.driver, nil
}

// fakeDriver serves a fixed DOM: selector -> matching elements. Selectors
// listed in frames can be entered with WaitForFrame.
type fakeDriver struct {
	elements map[string][]browser.Element
	frames   map[string]bool

	navigated []string
	inFrame   string
	closed    int
	navErr    error

	// onWait runs at the start of WaitForPresent
	onWait func()
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		elements: map[string][]browser.Element{},
		frames:   map[string]bool{},
	}
}

func (d *fakeDriver) Navigate(url string) error {
	if d.navErr != nil {
		return d.navErr
	}
	d.navigated = append(d.navigated, url)
	d.inFrame = ""
	return nil
}

func (d *fakeDriver) QueryAll(selector string) ([]browser.Element, error) {
	return d.elements[selector], nil
}

func (d *fakeDriver) WaitForPresent(selector string, timeout time.Duration) (browser.Element, error) {
	if d.onWait != nil {
		d.onWait()
	}
	if els := d.elements[selector]; len(els) > 0 {
		return els[0], nil
	}
	return nil, fmt.Errorf("timeout %v exceeded waiting for %q", timeout, selector)
}

func (d *fakeDriver) WaitForFrame(selector string, timeout time.Duration) error {
	if !d.frames[selector] {
		return fmt.Errorf("timeout %v exceeded waiting for frame %q", timeout, selector)
	}
	d.inFrame = selector
	return nil
}

func (d *fakeDriver) SwitchToDefault() error {
	d.inFrame = ""
	return nil
}

func (d *fakeDriver) Close() error {
	d.closed++
	return nil
}

type fakeElement struct {
	html string
}

func (e *fakeElement) TextContent() (string, error) { return e.html, nil }

func (e *fakeElement) InnerHTML() (string, error) {
	if e.html == "" {
		return "", errors.New("no html")
	}
	return e.html, nil
}

func newTestSession(launcher browser.Launcher) (*browser.Session, error) {
	return browser.NewSession(launcher, browser.WithGetenv(func(string) string { return "" }))
}
