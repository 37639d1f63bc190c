// Package browser wraps a browser-automation library behind a small Session
// facade with a uniform failure policy.
//
// # Architecture
//
// The package is built around three concepts:
//
//  1. Launcher/Driver/Element: the capabilities the facade needs from an
//     automation library (launch, navigate, CSS lookup, explicit waits, frame
//     switching). PlaywrightLauncher provides them through playwright-go.
//  2. Session: owns exactly one Driver and exposes Goto, QuerySelector,
//     WaitFor, WaitForAndSwitchToIframe and SwitchDefault.
//  3. result.Attempt: every delegated call runs once through Attempt, which
//     turns a failure (or panic) into an explicit value-or-error result.
//
// # Session Lifecycle
//
// A Session moves through three states:
//
//	Uninitialized --Start--> Active --Stop / any captured failure--> Closed
//
// Any captured failure in Goto, QuerySelector, WaitFor or
// WaitForAndSwitchToIframe tears the session down, including a query that
// matched nothing. The failing call returns an *OperationError carrying the
// original cause. Once closed, every call returns ErrSessionClosed; there is
// no way back to Active. Start and Stop report their own errors directly and
// SwitchDefault never triggers teardown.
//
// A Session is not safe for concurrent use. Use one Session per goroutine.
//
// # Example Usage
//
//	session, err := browser.NewSession(browser.NewPlaywrightLauncher())
//	if err != nil {
//	    return err
//	}
//	if _, err := session.Start(); err != nil {
//	    return err
//	}
//	defer session.Stop()
//
//	if err := session.Goto("example.com"); err != nil {
//	    return err // session already closed
//	}
//	heading, err := session.WaitFor("h1")
package browser
