package globus

import (
	"context"
	"time"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func timerFromJSON(doc gjson.Result) *Timer {
	t := &Timer{
		Name:        doc.Get("name").String(),
		Inactive:    doc.Get("inactive").Bool(),
		CallbackURL: doc.Get("callback_url").String(),
		Start:       doc.Get("start").String(),
		StopAfter:   doc.Get("stop_after").String(),
		StopAfterN:  int(doc.Get("stop_after_n").Int()),
	}

	// Older responses carry job_id, newer ones timer_id.
	t.ID = doc.Get("timer_id").String()
	if t.ID == "" {
		t.ID = doc.Get("job_id").String()
	}

	if interval := doc.Get("interval"); interval.Exists() {
		t.IntervalSeconds = int(interval.Int())
	}
	if t.IntervalSeconds > 0 {
		t.ScheduleType = "recurring"
	} else {
		t.ScheduleType = "once"
	}
	return t
}

// intervalSeconds flattens the schedule interval fields to seconds.
func intervalSeconds(s config.ScheduleSpec) int {
	switch {
	case s.IntervalSeconds > 0:
		return s.IntervalSeconds
	case s.IntervalMinutes > 0:
		return s.IntervalMinutes * 60
	case s.IntervalHours > 0:
		return s.IntervalHours * 3600
	case s.IntervalDays > 0:
		return s.IntervalDays * 86400
	default:
		return 0
	}
}

// getTimer finds a timer by name among the caller's jobs.
func (c *RealClient) getTimer(ctx context.Context, name string) (*Timer, error) {
	timers, err := c.service(ctx, ServiceTimers)
	if err != nil {
		return nil, err
	}

	doc, err := timers.get(ctx, "/jobs", nil)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, job := range doc.Get("jobs").Array() {
		if job.Get("name").String() == name {
			return timerFromJSON(job), nil
		}
	}
	return nil, nil
}

// getTimerByID fetches a timer by id. Returns nil when absent.
func (c *RealClient) getTimerByID(ctx context.Context, id string) (*Timer, error) {
	timers, err := c.service(ctx, ServiceTimers)
	if err != nil {
		return nil, err
	}

	doc, err := timers.get(ctx, "/jobs/"+id, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, FriendlyError(err)
	}
	return timerFromJSON(doc), nil
}

func (c *RealClient) timerGetter(spec config.TimerSpec) func(context.Context, string) (*Timer, error) {
	if spec.ID != "" {
		return func(ctx context.Context, _ string) (*Timer, error) {
			return c.getTimerByID(ctx, spec.ID)
		}
	}
	return c.getTimer
}

// EnsureTimer creates a timer when missing and reconciles the
// active/inactive state when the declared state asks for it.
func (c *RealClient) EnsureTimer(ctx context.Context, spec config.TimerSpec) (*Timer, Outcome, error) {
	timers, err := c.service(ctx, ServiceTimers)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	wantInactive := spec.State == config.StateInactive

	timer, outcome, err := reconcileResource(ctx, spec.Name, c.dryRun, ReconcileFuncs[Timer]{
		Get: c.timerGetter(spec),
		Create: func(ctx context.Context) (*Timer, error) {
			start := spec.Start
			if start == "" {
				if spec.Schedule.Type == "once" && spec.Schedule.Datetime != "" {
					start = spec.Schedule.Datetime
				} else {
					start = time.Now().UTC().Format(time.RFC3339)
				}
			}

			body := map[string]any{
				"name":          spec.Name,
				"callback_url":  spec.CallbackURL,
				"callback_body": spec.CallbackBody,
				"start":         start,
			}
			if spec.Schedule.Type == "recurring" {
				body["interval"] = intervalSeconds(spec.Schedule)
			}
			if spec.StopAfter != "" {
				body["stop_after"] = spec.StopAfter
			}
			if spec.StopAfterN > 0 {
				body["stop_after_n"] = spec.StopAfterN
			}
			if spec.Scope != "" {
				body["scope"] = spec.Scope
			}

			doc, err := timers.post(ctx, "/jobs", body)
			if err != nil {
				return nil, FriendlyError(err)
			}
			return timerFromJSON(doc), nil
		},
		NeedsUpdate: func(t *Timer) bool {
			if spec.State == config.StateActive || spec.State == config.StateInactive {
				return t.Inactive != wantInactive
			}
			return false
		},
		Update: func(ctx context.Context, t *Timer) (*Timer, error) {
			// Pausing and resuming flips the inactive flag in place.
			body := map[string]any{"inactive": wantInactive}
			doc, err := timers.patch(ctx, "/jobs/"+t.ID, body)
			if err != nil {
				return nil, FriendlyError(err)
			}
			updated := timerFromJSON(doc)
			if updated.ID == "" {
				updated = t
				updated.Inactive = wantInactive
			}
			return updated, nil
		},
	})

	return timer, outcome, err
}

// DeleteTimer deletes a timer by name or id.
func (c *RealClient) DeleteTimer(ctx context.Context, spec config.TimerSpec) (Outcome, error) {
	timers, err := c.service(ctx, ServiceTimers)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, spec.Name, c.dryRun, DeleteFuncs[Timer]{
		Get: c.timerGetter(spec),
		Delete: func(ctx context.Context, t *Timer) error {
			_, err := timers.delete(ctx, "/jobs/"+t.ID)
			return err
		},
	})
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}
