package provisioning

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
)

type recordingObserver struct {
	events []Event
	lines  []string
}

func (o *recordingObserver) Printf(format string, v ...interface{}) {
	o.lines = append(o.lines, fmt.Sprintf(format, v...))
}

func (o *recordingObserver) Event(e Event) { o.events = append(o.events, e) }

func (o *recordingObserver) Progress(phase string, current, total int) {}

func (o *recordingObserver) WithFields(fields map[string]string) Observer { return o }

func (o *recordingObserver) eventTypes() []EventType {
	types := make([]EventType, 0, len(o.events))
	for _, e := range o.events {
		types = append(types, e.Type)
	}
	return types
}

type fakePhase struct {
	name string
	err  error
	runs *[]string
}

func (p *fakePhase) Name() string { return p.name }

func (p *fakePhase) Provision(ctx *Context) error {
	*p.runs = append(*p.runs, p.name)
	return p.err
}

func testContext(t *testing.T, client globus.Client) (*Context, *recordingObserver) {
	t.Helper()
	observer := &recordingObserver{}
	ctx := NewContext(t.Context(), &config.Config{}, client, nil)
	ctx.Observer = observer
	ctx.Logger = observer
	return ctx, observer
}

func TestRunPhasesInOrder(t *testing.T) {
	ctx, _ := testContext(t, &globus.MockClient{})
	var runs []string

	err := RunPhases(ctx, []Phase{
		&fakePhase{name: "first", runs: &runs},
		&fakePhase{name: "second", runs: &runs},
		&fakePhase{name: "third", runs: &runs},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, runs)
}

func TestRunPhasesStopsOnFailure(t *testing.T) {
	ctx, observer := testContext(t, &globus.MockClient{})
	var runs []string

	err := RunPhases(ctx, []Phase{
		&fakePhase{name: "first", runs: &runs},
		&fakePhase{name: "second", runs: &runs, err: errors.New("boom")},
		&fakePhase{name: "third", runs: &runs},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "second phase failed")
	assert.Equal(t, []string{"first", "second"}, runs)
	assert.Contains(t, observer.eventTypes(), EventPhaseFailed)
}

func TestRunPhasesDrainsClientWarnings(t *testing.T) {
	warned := false
	client := &globus.MockClient{
		WarningsFunc: func() []string {
			if warned {
				return nil
			}
			warned = true
			return []string{"project p1: update skipped, requires a high-assurance session"}
		},
	}
	ctx, observer := testContext(t, client)
	var runs []string

	err := RunPhases(ctx, []Phase{&fakePhase{name: "identity", runs: &runs}})

	require.NoError(t, err)
	var warnings []Event
	for _, e := range observer.events {
		if e.Type == EventValidationWarning {
			warnings = append(warnings, e)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "high-assurance")
}

func TestStateChanged(t *testing.T) {
	state := NewState()
	state.Record(Result{Resource: "project", Name: "a", Outcome: globus.OutcomeCreated})
	state.Record(Result{Resource: "project", Name: "b", Outcome: globus.OutcomeUnchanged})
	state.Record(Result{Resource: "group", Name: "c", Outcome: globus.OutcomeSkipped})
	state.Record(Result{Resource: "flow", Name: "d", Outcome: globus.OutcomeDeleted})

	assert.Equal(t, 2, state.Changed())
	assert.Len(t, state.Results, 4)
}

func TestContextReport(t *testing.T) {
	ctx, observer := testContext(t, &globus.MockClient{})

	ctx.Report("identity", "project", "research", "proj-1", globus.OutcomeCreated)

	require.Len(t, ctx.State.Results, 1)
	assert.Equal(t, "proj-1", ctx.State.Results[0].ID)
	require.Len(t, observer.events, 1)
	assert.Equal(t, EventResourceCreated, observer.events[0].Type)
	assert.Equal(t, "research", observer.events[0].Resource)
}
