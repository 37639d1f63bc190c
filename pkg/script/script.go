// Package script runs YAML browser scripts against a browser.Session.
//
// A script is a named list of steps. Each step performs exactly one session
// operation:
//
//	name: login-check
//	allowed_urls: ["https://*.example.com/*"]
//	steps:
//	  - goto: example.com
//	  - wait_for: "#login"
//	  - wait_for_iframe: "iframe#captcha"
//	  - query: ".challenge"
//	  - switch_default: true
//	  - text: "h1"
//
// Run executes the steps in order and stops at the first failure. The
// result is a Summary that can be written as JSON.
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Action names a step operation.
type Action string

const (
	ActionGoto          Action = "goto"
	ActionWaitFor       Action = "wait_for"
	ActionWaitForIframe Action = "wait_for_iframe"
	ActionQuery         Action = "query"
	ActionSwitchDefault Action = "switch_default"
	ActionText          Action = "text"
)

// Script is a parsed browser script.
type Script struct {
	Name string `yaml:"name" json:"name"`

	// AllowedURLs are glob patterns a goto target must match after scheme
	// normalization. An empty list allows every URL.
	AllowedURLs []string `yaml:"allowed_urls" json:"allowed_urls"`

	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one script instruction. Exactly one field is set.
type Step struct {
	Goto          string `yaml:"goto,omitempty" json:"goto,omitempty"`
	WaitFor       string `yaml:"wait_for,omitempty" json:"wait_for,omitempty"`
	WaitForIframe string `yaml:"wait_for_iframe,omitempty" json:"wait_for_iframe,omitempty"`
	Query         string `yaml:"query,omitempty" json:"query,omitempty"`
	SwitchDefault bool   `yaml:"switch_default,omitempty" json:"switch_default,omitempty"`
	Text          string `yaml:"text,omitempty" json:"text,omitempty"`
}

// Action returns the step's operation and its argument. ok is false unless
// exactly one operation is set.
func (s Step) Action() (action Action, arg string, ok bool) {
	count := 0
	set := func(a Action, v string) {
		count++
		action, arg = a, v
	}

	if s.Goto != "" {
		set(ActionGoto, s.Goto)
	}
	if s.WaitFor != "" {
		set(ActionWaitFor, s.WaitFor)
	}
	if s.WaitForIframe != "" {
		set(ActionWaitForIframe, s.WaitForIframe)
	}
	if s.Query != "" {
		set(ActionQuery, s.Query)
	}
	if s.SwitchDefault {
		set(ActionSwitchDefault, "")
	}
	if s.Text != "" {
		set(ActionText, s.Text)
	}

	if count != 1 {
		return "", "", false
	}
	return action, arg, true
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return s, nil
}

// Validate checks that the script has steps, every step has exactly one
// action and every allowed URL pattern compiles.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script has no steps")
	}

	for i, step := range s.Steps {
		if _, _, ok := step.Action(); !ok {
			return fmt.Errorf("step %d must set exactly one of goto, wait_for, wait_for_iframe, query, switch_default or text", i+1)
		}
	}

	if _, err := NewURLMatcher(s.AllowedURLs); err != nil {
		return err
	}
	return nil
}
