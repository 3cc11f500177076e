package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jardilio/august-guesty-integration/internal/observability"
	"github.com/jardilio/august-guesty-integration/internal/reservation"
	"github.com/jardilio/august-guesty-integration/internal/sync"
)

func TestReconcileEvents_CreatesNewReservation(t *testing.T) {
	saveAndRestoreFactories(t)

	source := &fakeSource{reservations: []reservation.Reservation{
		confirmedReservation("r1", "Jane Doe"),
	}}
	store := &fakeStore{}

	err := reconcileEvents(context.Background(), testConfig(), source, store, observability.NopObserver{}, nil)
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	ev := store.inserted[0]
	assert.Equal(t, "r1", ev.SourceID)
	assert.Equal(t, "janedoe", ev.NameKey)
	assert.Equal(t, "Guest stay: Jane Doe", ev.Payload.Summary)
	assert.Contains(t, ev.Payload.Description, "CONF-r1")
	assert.NotEmpty(t, ev.Fingerprint)
	assert.Empty(t, store.updated)
	assert.Empty(t, store.deleted)
}

func TestReconcileEvents_SkipsUnchanged(t *testing.T) {
	saveAndRestoreFactories(t)

	r := confirmedReservation("r1", "Jane Doe")
	source := &fakeSource{reservations: []reservation.Reservation{r}}

	fp := sync.Fingerprint(buildSources([]reservation.Reservation{r})[0].Payload)
	store := &fakeStore{existing: []sync.DownstreamRecord{
		{ID: "ev-1", SourceID: "r1", NameKey: "janedoe", Fingerprint: fp},
	}}

	err := reconcileEvents(context.Background(), testConfig(), source, store, observability.NopObserver{}, nil)
	require.NoError(t, err)
	assert.Empty(t, store.inserted)
	assert.Empty(t, store.updated)
	assert.Empty(t, store.deleted)
}

func TestReconcileEvents_UpdatesStaleAndDeletesCancelled(t *testing.T) {
	saveAndRestoreFactories(t)

	changed := confirmedReservation("r1", "Jane Doe")
	cancelled := confirmedReservation("r2", "John Roe")
	cancelled.RawStatus = "canceled"
	source := &fakeSource{reservations: []reservation.Reservation{changed, cancelled}}

	store := &fakeStore{existing: []sync.DownstreamRecord{
		{ID: "ev-1", SourceID: "r1", NameKey: "janedoe", Fingerprint: "stale"},
		{ID: "ev-2", SourceID: "r2", NameKey: "johnroe", Fingerprint: "whatever"},
	}}

	err := reconcileEvents(context.Background(), testConfig(), source, store, observability.NopObserver{}, nil)
	require.NoError(t, err)
	assert.Empty(t, store.inserted)
	assert.Equal(t, []string{"ev-1"}, store.updated)
	assert.Equal(t, []string{"ev-2"}, store.deleted)
}

func TestReconcileEvents_RecordsMetrics(t *testing.T) {
	saveAndRestoreFactories(t)

	source := &fakeSource{reservations: []reservation.Reservation{
		confirmedReservation("r1", "Jane Doe"),
	}}
	store := &fakeStore{}
	metrics := observability.NewMetrics()

	err := reconcileEvents(context.Background(), testConfig(), source, store, observability.NopObserver{}, metrics)
	require.NoError(t, err)
}

func TestBuildSources_Projection(t *testing.T) {
	r := confirmedReservation("r1", "Jane van der Berg")
	sources := buildSources([]reservation.Reservation{r})

	require.Len(t, sources, 1)
	assert.Equal(t, "r1", sources[0].ID)
	assert.Equal(t, "janevanderberg", sources[0].NameKey)
	assert.Equal(t, reservation.StatusConfirmed, sources[0].Status)
	assert.Equal(t, r.CheckIn, sources[0].Payload.Start)
	assert.Equal(t, r.CheckOut, sources[0].Payload.End)
}
