package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jardilio/august-guesty-integration/internal/reservation"
)

// fakeProvider records every call with the batch generation it arrived in.
type fakeProvider struct {
	mu       sync.Mutex
	calls    []recordedCall
	failKeys map[string]error
}

type recordedCall struct {
	op  string
	key string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{failKeys: map[string]error{}}
}

func (p *fakeProvider) record(op, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, recordedCall{op: op, key: key})
	if err, ok := p.failKeys[key]; ok {
		return err
	}
	return nil
}

func (p *fakeProvider) InsertEvent(_ context.Context, ev Event) error {
	return p.record("insert", ev.SourceID)
}

func (p *fakeProvider) UpdateEvent(_ context.Context, id string, _ Event) error {
	return p.record("update", id)
}

func (p *fakeProvider) DeleteEvent(_ context.Context, id string) error {
	return p.record("delete", id)
}

func (p *fakeProvider) ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.op
	}
	return out
}

func entry(action Action, key string) PlanEntry {
	e := PlanEntry{
		Key:    key,
		Action: action,
		Source: Source{
			ID:     key,
			Status: reservation.StatusConfirmed,
			Payload: EventPayload{
				Start:   time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC),
				End:     time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC),
				Summary: "Guest stay",
			},
		},
	}
	if action == ActionUpdate || action == ActionDelete {
		e.Existing = &DownstreamRecord{ID: key}
	}
	return e
}

func TestApply_CreateOnly(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()

	result := Apply(context.Background(), []PlanEntry{entry(ActionCreate, "res-1")}, provider)

	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Failures)
	assert.Equal(t, []string{"insert"}, provider.ops(), "insert called once, no update/delete")
}

func TestApply_SkipIssuesNoCalls(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()

	result := Apply(context.Background(), []PlanEntry{entry(ActionSkip, "res-1")}, provider)

	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, provider.ops())
}

func TestApply_DeleteUsesExistingID(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	e := entry(ActionDelete, "res-1")
	e.Existing = &DownstreamRecord{ID: "ev-42"}

	result := Apply(context.Background(), []PlanEntry{e}, provider)

	assert.Equal(t, 1, result.Deleted)
	require.Len(t, provider.calls, 1)
	assert.Equal(t, recordedCall{op: "delete", key: "ev-42"}, provider.calls[0])
}

func TestApply_BatchOrdering(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	plan := []PlanEntry{
		entry(ActionDelete, "d-1"),
		entry(ActionCreate, "c-1"),
		entry(ActionUpdate, "u-1"),
		entry(ActionCreate, "c-2"),
	}

	result := Apply(context.Background(), plan, provider)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Deleted)

	ops := provider.ops()
	require.Len(t, ops, 4)
	assert.ElementsMatch(t, []string{"insert", "insert"}, ops[:2], "all creates first")
	assert.Equal(t, "update", ops[2])
	assert.Equal(t, "delete", ops[3])
}

func TestApply_FailureIsolatedToBatchMember(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	provider.failKeys["c-1"] = errors.New("quota exceeded")
	plan := []PlanEntry{
		entry(ActionCreate, "c-1"),
		entry(ActionCreate, "c-2"),
		entry(ActionUpdate, "u-1"),
	}

	result := Apply(context.Background(), plan, provider)

	assert.Equal(t, 1, result.Created, "sibling create still succeeds")
	assert.Equal(t, 1, result.Updated, "later batches still run")
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "c-1", result.Failures[0].Key)
	assert.Equal(t, ActionCreate, result.Failures[0].Action)
	assert.ErrorContains(t, result.Err(), "quota exceeded")
}

func TestApply_Idempotence(t *testing.T) {
	t.Parallel()
	// Apply a plan, then re-plan against the provider's post-apply state:
	// every originally CREATE/UPDATE-resolved record must now resolve SKIP.
	sources := []Source{
		confirmedSource("res-1", "janedoe"),
		confirmedSource("res-2", "johnsmith"),
	}
	existing := []DownstreamRecord{{ID: "ev-2", SourceID: "res-2", Fingerprint: "stale"}}

	plan := Plan(sources, existing)
	require.Len(t, plan, 2)

	// Simulate the provider's post-apply state.
	var postApply []DownstreamRecord
	for _, e := range plan {
		rec := DownstreamRecord{
			ID:          "ev-" + e.Key,
			SourceID:    e.Source.ID,
			NameKey:     e.Source.NameKey,
			Fingerprint: Fingerprint(e.Source.Payload),
		}
		postApply = append(postApply, rec)
	}

	replan := Plan(sources, postApply)
	require.Len(t, replan, 2)
	for _, e := range replan {
		assert.Equal(t, ActionSkip, e.Action, "post-apply re-plan must be all SKIP")
	}
}
