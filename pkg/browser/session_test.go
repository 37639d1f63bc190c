package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/browserkit/pkg/config"
)

func noEnv(string) string { return "" }

// startedSession returns an active session over a mock driver.
func startedSession(t *testing.T, opts ...Option) (*Session, *mockDriver) {
	t.Helper()

	driver := &mockDriver{}
	launcher := &mockLauncher{}
	launcher.On("Launch", mock.Anything).Return(driver, nil).Once()

	session, err := NewSession(launcher, append([]Option{WithGetenv(noEnv)}, opts...)...)
	require.NoError(t, err)

	handle, err := session.Start()
	require.NoError(t, err)
	require.Same(t, driver, handle)
	require.Equal(t, StateActive, session.State())

	return session, driver
}

func TestNewSession(t *testing.T) {
	t.Run("requires launcher", func(t *testing.T) {
		_, err := NewSession(nil)
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		session, err := NewSession(&mockLauncher{}, WithGetenv(noEnv))
		require.NoError(t, err)

		assert.Equal(t, StateUninitialized, session.State())
		assert.Equal(t, 60*time.Second, session.Timeout())
		assert.Equal(t, config.ModeHeaded, session.Mode())
	})

	t.Run("invalid BROWSERKIT_MODE is rejected", func(t *testing.T) {
		getenv := func(key string) string {
			if key == config.EnvMode {
				return "sideways"
			}
			return ""
		}
		_, err := NewSession(&mockLauncher{}, WithGetenv(getenv))
		assert.Error(t, err)
	})
}

func TestSession_ModeResolvedOnceAtConstruction(t *testing.T) {
	env := map[string]string{"PYTHON_ENV": "production"}
	getenv := func(key string) string { return env[key] }

	driver := &mockDriver{}
	launcher := &mockLauncher{}
	launcher.On("Launch", mock.MatchedBy(func(opts LaunchOptions) bool {
		return opts.Headless
	})).Return(driver, nil).Once()

	session, err := NewSession(launcher, WithGetenv(getenv))
	require.NoError(t, err)
	assert.Equal(t, config.ModeHeadless, session.Mode())

	// Changing the environment after construction has no effect
	env["PYTHON_ENV"] = "development"

	_, err = session.Start()
	require.NoError(t, err)
	launcher.AssertExpectations(t)
}

func TestSession_StartPassesLaunchOptions(t *testing.T) {
	settings := config.NewBrowserSection()
	settings.SetMode(config.ModeHeaded)
	require.NoError(t, settings.SetData(map[string]any{"browser": "webkit", "viewport_width": 1024, "viewport_height": 768}))

	driver := &mockDriver{}
	launcher := &mockLauncher{}
	launcher.On("Launch", LaunchOptions{
		Headless:       false,
		Engine:         config.EngineWebKit,
		ViewportWidth:  1024,
		ViewportHeight: 768,
		Args:           []string{"--lang=en"},
	}).Return(driver, nil).Once()

	session, err := NewSession(launcher,
		WithGetenv(func(key string) string {
			if key == config.EnvLegacy {
				return config.LegacyProductionValue
			}
			return ""
		}),
		WithSettings(settings),
		WithBrowserArgs("--lang=en"),
	)
	require.NoError(t, err)

	_, err = session.Start()
	require.NoError(t, err)
	launcher.AssertExpectations(t)
}

func TestSession_StartFailurePropagates(t *testing.T) {
	launchErr := errors.New("chrome not found")
	launcher := &mockLauncher{}
	launcher.On("Launch", mock.Anything).Return(nil, launchErr).Once()

	session, err := NewSession(launcher, WithGetenv(noEnv))
	require.NoError(t, err)

	handle, err := session.Start()
	assert.Nil(t, handle)
	assert.ErrorIs(t, err, launchErr)
	assert.Equal(t, StateUninitialized, session.State())

	var opErr *OperationError
	assert.False(t, errors.As(err, &opErr), "start failure must not go through teardown")
}

func TestSession_StartCapturesLauncherPanic(t *testing.T) {
	launcher := &mockLauncher{}
	launcher.On("Launch", mock.Anything).Run(func(mock.Arguments) {
		panic("driver binary corrupt")
	}).Once()

	session, err := NewSession(launcher, WithGetenv(noEnv))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, err = session.Start()
	})
	assert.Error(t, err)
	assert.Equal(t, StateUninitialized, session.State())
}

func TestSession_StartTwice(t *testing.T) {
	session, _ := startedSession(t)

	_, err := session.Start()
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestSession_OperationsBeforeStart(t *testing.T) {
	session, err := NewSession(&mockLauncher{}, WithGetenv(noEnv))
	require.NoError(t, err)

	assert.ErrorIs(t, session.Goto("example.com"), ErrSessionNotStarted)
	_, err = session.QuerySelector("h1")
	assert.ErrorIs(t, err, ErrSessionNotStarted)
	_, err = session.WaitFor("h1")
	assert.ErrorIs(t, err, ErrSessionNotStarted)
	assert.ErrorIs(t, session.WaitForAndSwitchToIframe("iframe"), ErrSessionNotStarted)
	assert.ErrorIs(t, session.SwitchDefault(), ErrSessionNotStarted)
	assert.ErrorIs(t, session.Stop(), ErrSessionNotStarted)
}

func TestSession_Stop(t *testing.T) {
	t.Run("closes driver", func(t *testing.T) {
		session, driver := startedSession(t)
		driver.On("Close").Return(nil).Once()

		require.NoError(t, session.Stop())
		assert.Equal(t, StateClosed, session.State())
		driver.AssertExpectations(t)
	})

	t.Run("close failure is returned and session still closes", func(t *testing.T) {
		session, driver := startedSession(t)
		closeErr := errors.New("browser hung")
		driver.On("Close").Return(closeErr).Once()

		assert.ErrorIs(t, session.Stop(), closeErr)
		assert.Equal(t, StateClosed, session.State())
	})

	t.Run("closed session rejects every call", func(t *testing.T) {
		session, driver := startedSession(t)
		driver.On("Close").Return(nil).Once()
		require.NoError(t, session.Stop())

		assert.ErrorIs(t, session.Stop(), ErrSessionClosed)
		_, err := session.Start()
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.ErrorIs(t, session.Goto("example.com"), ErrSessionClosed)
		_, err = session.QuerySelector("h1")
		assert.ErrorIs(t, err, ErrSessionClosed)
		_, err = session.WaitFor("h1")
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.ErrorIs(t, session.WaitForAndSwitchToIframe("frame"), ErrSessionClosed)
		assert.ErrorIs(t, session.SwitchDefault(), ErrSessionClosed)

		driver.AssertNumberOfCalls(t, "Close", 1)
	})
}

func TestSession_Goto(t *testing.T) {
	tests := []struct {
		name   string
		policy config.SchemePolicy
		input  string
		want   string
	}{
		{name: "bare host gets https", input: "example.com", want: "https://example.com"},
		{name: "https unchanged", input: "https://example.com", want: "https://example.com"},
		{name: "explicit http preserved", input: "http://example.com", want: "http://example.com"},
		{
			// Known fix: the force_https policy keeps the historical double scheme.
			name:   "known fix: force_https prefixes explicit http",
			policy: config.SchemeForceHTTPS,
			input:  "http://example.com",
			want:   "https://http://example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.policy != "" {
				opts = append(opts, WithSchemePolicy(tt.policy))
			}
			session, driver := startedSession(t, opts...)
			driver.On("Navigate", tt.want).Return(nil).Once()

			require.NoError(t, session.Goto(tt.input))
			assert.Equal(t, StateActive, session.State())
			driver.AssertExpectations(t)
		})
	}
}

func TestSession_GotoFailureTearsDown(t *testing.T) {
	session, driver := startedSession(t)
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	driver.On("Navigate", "https://nowhere.invalid").Return(navErr).Once()
	driver.On("Close").Return(nil).Once()

	err := session.Goto("nowhere.invalid")

	require.Error(t, err)
	assert.ErrorIs(t, err, navErr)
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "goto", opErr.Op)
	assert.Equal(t, "https://nowhere.invalid", opErr.Target)
	assert.NoError(t, opErr.TeardownErr)

	assert.Equal(t, StateClosed, session.State())
	assert.ErrorIs(t, session.Goto("example.com"), ErrSessionClosed)
	driver.AssertExpectations(t)
}

func TestSession_TeardownFailureIsReported(t *testing.T) {
	session, driver := startedSession(t)
	navErr := errors.New("navigation timeout")
	closeErr := errors.New("process already gone")
	driver.On("Navigate", mock.Anything).Return(navErr).Once()
	driver.On("Close").Return(closeErr).Once()

	err := session.Goto("example.com")

	assert.ErrorIs(t, err, navErr)
	assert.ErrorIs(t, err, closeErr)
	assert.Contains(t, err.Error(), "teardown failed")
	assert.Equal(t, StateClosed, session.State())
}

func TestSession_DriverPanicIsCaptured(t *testing.T) {
	session, driver := startedSession(t)
	driver.On("Navigate", mock.Anything).Run(func(mock.Arguments) {
		panic("nil page")
	}).Once()
	driver.On("Close").Return(nil).Once()

	var err error
	require.NotPanics(t, func() {
		err = session.Goto("example.com")
	})
	assert.Error(t, err)
	assert.Equal(t, StateClosed, session.State())
}

func TestSession_QuerySelector(t *testing.T) {
	t.Run("single match returns the element", func(t *testing.T) {
		session, driver := startedSession(t)
		only := &fakeElement{name: "only"}
		driver.On("QueryAll", "#main").Return([]Element{only}, nil).Once()

		sel, err := session.QuerySelector("#main")
		require.NoError(t, err)

		el, ok := sel.One()
		require.True(t, ok)
		assert.Same(t, only, el)
		assert.Equal(t, 1, sel.Len())
		assert.Equal(t, StateActive, session.State())
	})

	t.Run("multiple matches keep engine order", func(t *testing.T) {
		session, driver := startedSession(t)
		a, b, c := &fakeElement{name: "a"}, &fakeElement{name: "b"}, &fakeElement{name: "c"}
		driver.On("QueryAll", ".item").Return([]Element{a, b, c}, nil).Once()

		sel, err := session.QuerySelector(".item")
		require.NoError(t, err)

		_, ok := sel.One()
		assert.False(t, ok)
		all := sel.All()
		require.Len(t, all, 3)
		assert.Same(t, a, all[0])
		assert.Same(t, b, all[1])
		assert.Same(t, c, all[2])
		assert.Same(t, a, sel.First())
	})

	t.Run("no match tears down session", func(t *testing.T) {
		session, driver := startedSession(t)
		driver.On("QueryAll", ".missing").Return([]Element{}, nil).Once()
		driver.On("Close").Return(nil).Once()

		sel, err := session.QuerySelector(".missing")

		assert.Equal(t, 0, sel.Len())
		assert.ErrorIs(t, err, ErrNoElement)
		assert.Contains(t, err.Error(), "no element with '.missing' query found")
		assert.Equal(t, StateClosed, session.State())
		driver.AssertExpectations(t)

		_, err = session.QuerySelector(".missing")
		assert.ErrorIs(t, err, ErrSessionClosed)
	})

	t.Run("driver failure tears down session", func(t *testing.T) {
		session, driver := startedSession(t)
		queryErr := errors.New("invalid selector")
		driver.On("QueryAll", "###").Return(nil, queryErr).Once()
		driver.On("Close").Return(nil).Once()

		_, err := session.QuerySelector("###")

		assert.ErrorIs(t, err, queryErr)
		assert.False(t, errors.Is(err, ErrNoElement))
		assert.Equal(t, StateClosed, session.State())
	})
}

func TestSession_WaitFor(t *testing.T) {
	t.Run("returns element within default timeout", func(t *testing.T) {
		session, driver := startedSession(t)
		el := &fakeElement{name: "login"}
		driver.On("WaitForPresent", "#login", 60*time.Second).Return(el, nil).Once()

		got, err := session.WaitFor("#login")
		require.NoError(t, err)
		assert.Same(t, el, got)
		assert.Equal(t, StateActive, session.State())
	})

	t.Run("custom timeout is passed through", func(t *testing.T) {
		session, driver := startedSession(t, WithTimeout(5*time.Second))
		driver.On("WaitForPresent", "#login", 5*time.Second).Return(&fakeElement{}, nil).Once()

		_, err := session.WaitFor("#login")
		require.NoError(t, err)
		driver.AssertExpectations(t)
	})

	t.Run("timeout tears down session", func(t *testing.T) {
		session, driver := startedSession(t)
		timeoutErr := errors.New("Timeout 60000ms exceeded")
		driver.On("WaitForPresent", "#never", 60*time.Second).Return(nil, timeoutErr).Once()
		driver.On("Close").Return(nil).Once()

		got, err := session.WaitFor("#never")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, timeoutErr)
		assert.Equal(t, StateClosed, session.State())
		driver.AssertExpectations(t)
	})
}

func TestSession_WaitForAndSwitchToIframe(t *testing.T) {
	t.Run("switches into frame", func(t *testing.T) {
		session, driver := startedSession(t)
		driver.On("WaitForFrame", "iframe#pay", 60*time.Second).Return(nil).Once()
		driver.On("SwitchToDefault").Return(nil).Once()

		require.NoError(t, session.WaitForAndSwitchToIframe("iframe#pay"))
		require.NoError(t, session.SwitchDefault())
		driver.AssertExpectations(t)
	})

	t.Run("missing frame tears down session", func(t *testing.T) {
		session, driver := startedSession(t)
		frameErr := errors.New("frame never attached")
		driver.On("WaitForFrame", "iframe#pay", 60*time.Second).Return(frameErr).Once()
		driver.On("Close").Return(nil).Once()

		err := session.WaitForAndSwitchToIframe("iframe#pay")

		var opErr *OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "wait_for_iframe", opErr.Op)
		assert.ErrorIs(t, err, frameErr)
		assert.Equal(t, StateClosed, session.State())
	})
}

func TestSession_SwitchDefaultErrorIsNotCaptured(t *testing.T) {
	session, driver := startedSession(t)
	switchErr := errors.New("detached frame")
	driver.On("SwitchToDefault").Return(switchErr).Once()

	err := session.SwitchDefault()

	assert.Same(t, switchErr, err)
	assert.Equal(t, StateActive, session.State())
	driver.AssertNotCalled(t, "Close")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
