// Package trigger executes the actions bound to detected gestures:
// capturing a screenshot, querying the assistant, or speaking a phrase.
package trigger

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/pkg/logger"
)

// Trigger is an action fired when a gesture event is emitted.
type Trigger interface {
	Name() string
	Fire(ctx context.Context, ev *gesture.Event) error
}

// Chain runs several triggers in order under a single binding, so one
// gesture can capture a screenshot and then ask the assistant about it.
type Chain struct {
	steps []Trigger
}

// NewChain creates a chain over the given steps.
func NewChain(steps ...Trigger) *Chain {
	return &Chain{steps: steps}
}

// Name joins the step names with "+".
func (c *Chain) Name() string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

// Fire runs each step in order and stops at the first failure, so a
// later step never acts on a missing earlier result.
func (c *Chain) Fire(ctx context.Context, ev *gesture.Event) error {
	for _, s := range c.steps {
		if err := s.Fire(ctx, ev); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return nil
}

// Dispatcher routes gesture events to their configured triggers.
type Dispatcher struct {
	triggers map[gesture.Kind]Trigger
	timeout  time.Duration
	log      logger.Logger
}

// NewDispatcher creates a dispatcher with the given per-execution
// timeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		triggers: make(map[gesture.Kind]Trigger),
		timeout:  timeout,
		log:      logger.Named("trigger"),
	}
}

// Bind assigns a trigger to a gesture kind. A nil trigger unbinds it.
func (d *Dispatcher) Bind(kind gesture.Kind, t Trigger) {
	if t == nil {
		delete(d.triggers, kind)
		return
	}
	d.triggers[kind] = t
}

// Dispatch fires the trigger bound to the event's kind, bounded by the
// dispatcher timeout. It returns the trigger's name and the execution
// error; an unbound kind returns an empty name and no error.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *gesture.Event) (string, error) {
	t, ok := d.triggers[ev.Kind]
	if !ok {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := t.Fire(ctx, ev)

	metrics.RecordTriggerRun(t.Name())
	if err != nil {
		metrics.RecordTriggerError(t.Name())
		d.log.Error(ctx, "trigger failed",
			logger.String("trigger", t.Name()),
			logger.String("kind", ev.KindName),
			logger.Error(err))
		return t.Name(), err
	}

	d.log.Info(ctx, "trigger completed",
		logger.String("trigger", t.Name()),
		logger.String("kind", ev.KindName),
		logger.Duration("elapsed", time.Since(start)))
	return t.Name(), nil
}

// runCommand executes a command and returns its stdout. Timeouts and
// stderr output are folded into the error.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s timed out", name)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, s)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.Bytes(), nil
}
