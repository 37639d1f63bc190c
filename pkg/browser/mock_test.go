package browser

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type mockLauncher struct {
	mock.Mock
}

func (m *mockLauncher) Launch(opts LaunchOptions) (Driver, error) {
	args := m.Called(opts)
	driver, _ := args.Get(0).(Driver)
	return driver, args.Error(1)
}

type mockDriver struct {
	mock.Mock
}

func (m *mockDriver) Navigate(url string) error {
	return m.Called(url).Error(0)
}

func (m *mockDriver) QueryAll(selector string) ([]Element, error) {
	args := m.Called(selector)
	elements, _ := args.Get(0).([]Element)
	return elements, args.Error(1)
}

func (m *mockDriver) WaitForPresent(selector string, timeout time.Duration) (Element, error) {
	args := m.Called(selector, timeout)
	element, _ := args.Get(0).(Element)
	return element, args.Error(1)
}

func (m *mockDriver) WaitForFrame(selector string, timeout time.Duration) error {
	return m.Called(selector, timeout).Error(0)
}

func (m *mockDriver) SwitchToDefault() error {
	return m.Called().Error(0)
}

func (m *mockDriver) Close() error {
	return m.Called().Error(0)
}

// fakeElement is a static Element.
type fakeElement struct {
	name    string
	html    string
	text    string
	htmlErr error
	textErr error
}

func (e *fakeElement) TextContent() (string, error) { return e.text, e.textErr }
func (e *fakeElement) InnerHTML() (string, error)   { return e.html, e.htmlErr }
