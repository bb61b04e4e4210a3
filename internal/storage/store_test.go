package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/stochlab/internal/session"
	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poissonResult() *session.Result {
	events := []stochastic.Event{
		{Seq: 1, Time: 0, Outcome: stochastic.Open},
		{Seq: 2, Time: 0.05, Outcome: stochastic.Open},
		{Seq: 3, Time: 0.07, Outcome: stochastic.Open},
		{Seq: 4, Time: 0.2, Outcome: stochastic.Open},
	}
	return &session.Result{
		Mode:   stochastic.Poisson,
		Rate:   0.5,
		Steps:  15,
		Events: events,
		Final:  stats.Poisson(events),
	}
}

func fixedClock(st *Store) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st.now = func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	fixedClock(st)

	cfg := session.RunConfig{Dt: 1.0 / 60, Duration: 0.25}
	runID, err := st.Save(42, cfg, poissonResult())
	require.NoError(t, err)
	assert.Contains(t, runID, "poisson_")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, stochastic.Poisson, meta.Mode)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, 4, meta.Events)
	assert.Equal(t, 15, meta.Steps)
	assert.InDelta(t, 27.5, meta.Metrics["lambda"], 1e-9)
	assert.InDelta(t, 4, meta.Metrics["spike_count"], 1e-9)
	assert.InDelta(t, 0.2/3, meta.Metrics["mean_isi"], 1e-9)

	events, err := st.LoadEvents(runID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, uint64(3), events[2].Seq)
	assert.InDelta(t, 0.07, events[2].Time, 1e-9)
	assert.Equal(t, stochastic.Open, events[3].Outcome)
}

func TestStoreEventTimesRoundTripExactly(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	// host clock of a dt = 1/60 run: intervals land on ISI bin edges
	dt := 1.0 / 60
	var events []stochastic.Event
	for i := 1; i <= 600; i += 7 {
		events = append(events, stochastic.Event{Seq: uint64(len(events) + 1), Time: float64(i) * dt, Outcome: stochastic.Open})
	}
	res := &session.Result{Mode: stochastic.Poisson, Rate: 0.5, Steps: 600, Events: events, Final: stats.Poisson(events)}

	runID, err := st.Save(3, session.RunConfig{Dt: dt, Duration: 10}, res)
	require.NoError(t, err)

	loaded, err := st.LoadEvents(runID)
	require.NoError(t, err)
	require.Len(t, loaded, len(events))
	for i := range events {
		assert.Equal(t, events[i].Time, loaded[i].Time, "event %d", i)
	}
	assert.Equal(t,
		stats.BuildHistogram(stats.InterArrivals(events), stats.DefaultBins, stats.DefaultMaxISI).Bins,
		stats.BuildHistogram(stats.InterArrivals(loaded), stats.DefaultBins, stats.DefaultMaxISI).Bins)
}

func TestStoreBernoulliMetrics(t *testing.T) {
	events := []stochastic.Event{{Seq: 1, Outcome: stochastic.Open}, {Seq: 2}, {Seq: 3, Outcome: stochastic.Open}}
	res := &session.Result{Mode: stochastic.Bernoulli, Rate: 0.5, Events: events, Final: stats.Bernoulli(events)}

	m := Metrics(res)
	assert.Equal(t, 2.0, m["open"])
	assert.Equal(t, 3.0, m["total"])
	assert.InDelta(t, 2.0/3, m["probability"], 1e-12)
	assert.NotContains(t, m, "lambda")
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	fixedClock(st)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Init())
	first, err := st.Save(1, session.RunConfig{Dt: 0.1, Duration: 1}, poissonResult())
	require.NoError(t, err)
	second, err := st.Save(2, session.RunConfig{Dt: 0.1, Duration: 1}, poissonResult())
	require.NoError(t, err)

	// stray entries are ignored
	require.NoError(t, os.Mkdir(filepath.Join(dir, "junk"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(42, session.RunConfig{Dt: 0.1, Duration: 1}, &session.Result{Mode: stochastic.Bernoulli})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, runID, "events.csv"))

	events, err := st.LoadEvents(runID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = st.LoadEvents("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLoadEventsSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "r1"), 0755))
	csv := "seq,time,outcome\n1,0.5,1\nx,0.6,1\n3,0.7,7\n4,0.8\n5,0.9,0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "r1", "events.csv"), []byte(csv), 0644))

	events, err := st.LoadEvents("r1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, stochastic.Closed, events[1].Outcome)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, session.RunConfig{Dt: 0.01, Duration: 0.25}, poissonResult()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "poisson", got["mode"])
	assert.Len(t, got["times"], 4)
	assert.Len(t, got["outcomes"], 4)
	assert.Contains(t, got["metrics"], "cv")
}
