package script

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/browserkit/pkg/browser"
	"github.com/entrhq/browserkit/pkg/logging"
)

// Step and run statuses recorded in a Summary.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// RunOption configures Run.
type RunOption func(*runner)

// WithLogger sets the logger used for step progress.
func WithLogger(logger *logging.Logger) RunOption {
	return func(r *runner) { r.logger = logger }
}

// WithMaxTextLength caps text captured by text steps.
func WithMaxTextLength(n int) RunOption {
	return func(r *runner) { r.maxText = n }
}

type runner struct {
	logger  *logging.Logger
	maxText int
	now     func() time.Time
}

// Run starts session, executes every step in order and stops the session
// when it is still active afterwards. The first failing step ends the run;
// later steps are recorded as skipped. The returned error is the first
// failure, and the Summary is returned either way.
//
// ctx is checked before each step. A step already running is not
// interrupted; cancellation takes effect when it returns, and the session
// is stopped from Run's own goroutine.
func (s *Script) Run(ctx context.Context, session *browser.Session, opts ...RunOption) (*Summary, error) {
	r := &runner{
		logger:  logging.Discard(),
		maxText: browser.DefaultMaxTextLength,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	summary := &Summary{
		RunID:     uuid.New().String(),
		Script:    s.Name,
		Mode:      string(session.Mode()),
		StartTime: r.now(),
		Steps:     make([]StepResult, 0, len(s.Steps)),
	}

	runErr := r.run(ctx, s, session, summary)

	if session.State() == browser.StateActive {
		if err := session.Stop(); err != nil && runErr == nil {
			runErr = err
		}
	}

	summary.EndTime = r.now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	if runErr != nil {
		summary.Status = StatusFailed
		summary.Error = runErr.Error()
		r.logger.Errorf("script %q failed: %v", s.Name, runErr)
	} else {
		summary.Status = StatusSuccess
		r.logger.Infof("script %q completed %d step(s) in %v", s.Name, len(s.Steps), summary.Duration)
	}
	return summary, runErr
}

func (r *runner) run(ctx context.Context, s *Script, session *browser.Session, summary *Summary) error {
	matcher, err := NewURLMatcher(s.AllowedURLs)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled before start: %w", err)
	}

	if _, err := session.Start(); err != nil {
		return err
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			r.skipRemaining(s, i, summary)
			return fmt.Errorf("run cancelled before step %d: %w", i+1, err)
		}

		action, arg, ok := step.Action()
		result := StepResult{Index: i + 1, Action: action, Target: arg}
		if !ok {
			result.Status = StatusFailed
			result.Error = "step must set exactly one action"
			summary.Steps = append(summary.Steps, result)
			r.skipRemaining(s, i+1, summary)
			return fmt.Errorf("step %d: invalid step", i+1)
		}

		r.logger.Infof("step %d: %s %s", i+1, action, arg)
		started := r.now()
		err := r.execute(session, matcher, action, arg, &result)
		result.Duration = r.now().Sub(started)

		if err != nil {
			result.Status = StatusFailed
			result.Error = err.Error()
			summary.Steps = append(summary.Steps, result)
			r.skipRemaining(s, i+1, summary)
			return fmt.Errorf("step %d (%s): %w", i+1, action, err)
		}

		result.Status = StatusSuccess
		summary.Steps = append(summary.Steps, result)
	}
	return nil
}

func (r *runner) execute(session *browser.Session, matcher *URLMatcher, action Action, arg string, result *StepResult) error {
	switch action {
	case ActionGoto:
		target := session.ResolveURL(arg)
		result.Target = target
		if err := matcher.Check(target); err != nil {
			return err
		}
		return session.Goto(arg)

	case ActionWaitFor:
		if _, err := session.WaitFor(arg); err != nil {
			return err
		}
		result.Matched = 1
		return nil

	case ActionWaitForIframe:
		return session.WaitForAndSwitchToIframe(arg)

	case ActionQuery:
		sel, err := session.QuerySelector(arg)
		if err != nil {
			return err
		}
		result.Matched = sel.Len()
		return nil

	case ActionSwitchDefault:
		return session.SwitchDefault()

	case ActionText:
		el, err := session.WaitFor(arg)
		if err != nil {
			return err
		}
		result.Matched = 1
		snapshot, err := browser.ElementText(el, r.maxText)
		if err != nil {
			return err
		}
		result.Text = snapshot.Text
		result.Truncated = snapshot.Truncated
		return nil
	}

	return fmt.Errorf("unknown action %q", action)
}

func (r *runner) skipRemaining(s *Script, from int, summary *Summary) {
	for i := from; i < len(s.Steps); i++ {
		action, arg, _ := s.Steps[i].Action()
		summary.Steps = append(summary.Steps, StepResult{
			Index:  i + 1,
			Action: action,
			Target: arg,
			Status: StatusSkipped,
		})
	}
}
