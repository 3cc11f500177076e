package sync

import (
	"context"
	"fmt"

	"github.com/jardilio/august-guesty-integration/internal/util/async"
)

// Event is the full downstream write for one plan entry: the rendered
// payload plus the identity and fingerprint metadata the provider stores
// alongside it for future runs to match against.
type Event struct {
	Payload     EventPayload
	SourceID    string
	NameKey     string
	Fingerprint string
}

// Provider is the downstream mutation surface the executor drives.
type Provider interface {
	InsertEvent(ctx context.Context, ev Event) error
	UpdateEvent(ctx context.Context, id string, ev Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// Failure records one plan entry whose provider call failed.
type Failure struct {
	Key    string
	Action Action
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Action, f.Key, f.Err)
}

// Result summarizes one Apply run.
type Result struct {
	Created  int
	Updated  int
	Deleted  int
	Skipped  int
	Failures []Failure
}

// Err returns the first failure as an error, or nil if the run was clean.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return r.Failures[0]
}

// Apply executes a reconciliation plan against the provider. Entries are
// grouped by action and issued as three concurrent batches in strict
// order: every CREATE completes (or fails) before the first UPDATE is
// issued, and every UPDATE before the first DELETE. The ordering keeps a
// freshly created record from being immediately re-written and keeps
// deletes from racing an in-flight create for the same identity.
//
// Within a batch, a failing operation does not cancel its siblings; all
// failures are collected in the Result.
func Apply(ctx context.Context, plan []PlanEntry, provider Provider) Result {
	var result Result

	var creates, updates, deletes []PlanEntry
	for _, entry := range plan {
		switch entry.Action {
		case ActionCreate:
			creates = append(creates, entry)
		case ActionUpdate:
			updates = append(updates, entry)
		case ActionDelete:
			deletes = append(deletes, entry)
		default:
			result.Skipped++
		}
	}

	result.Created = runBatch(ctx, creates, provider, &result)
	result.Updated = runBatch(ctx, updates, provider, &result)
	result.Deleted = runBatch(ctx, deletes, provider, &result)

	return result
}

// runBatch issues one concurrent batch of same-action entries and returns
// the number that succeeded.
func runBatch(ctx context.Context, entries []PlanEntry, provider Provider, result *Result) int {
	if len(entries) == 0 {
		return 0
	}

	byKey := make(map[string]PlanEntry, len(entries))
	tasks := make([]async.Task, 0, len(entries))
	for _, entry := range entries {
		byKey[entry.Key] = entry
		tasks = append(tasks, async.Task{Name: entry.Key, Func: operation(entry, provider)})
	}

	failures := async.RunAll(ctx, tasks)
	for _, f := range failures {
		result.Failures = append(result.Failures, Failure{
			Key:    f.Name,
			Action: byKey[f.Name].Action,
			Err:    f.Err,
		})
	}

	return len(entries) - len(failures)
}

func operation(entry PlanEntry, provider Provider) func(context.Context) error {
	ev := Event{
		Payload:     entry.Source.Payload,
		SourceID:    entry.Source.ID,
		NameKey:     entry.Source.NameKey,
		Fingerprint: Fingerprint(entry.Source.Payload),
	}

	switch entry.Action {
	case ActionCreate:
		return func(ctx context.Context) error {
			return provider.InsertEvent(ctx, ev)
		}
	case ActionUpdate:
		return func(ctx context.Context) error {
			return provider.UpdateEvent(ctx, entry.Existing.ID, ev)
		}
	default: // ActionDelete, the only other action runBatch receives
		return func(ctx context.Context) error {
			return provider.DeleteEvent(ctx, entry.Existing.ID)
		}
	}
}
