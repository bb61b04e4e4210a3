package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/stochlab/internal/session"
	"github.com/san-kum/stochlab/internal/stochastic"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	eventsFile   = "events.csv"
)

// Store keeps finished runs under baseDir, one directory per run. Runs are
// written once and never loaded back into a live session.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Mode      stochastic.Mode    `json:"mode"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Rate      float64            `json:"rate"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Events    int                `json:"events"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Metrics flattens the final readout of a run into named values.
func Metrics(res *session.Result) map[string]float64 {
	live := res.Final
	if res.Mode == stochastic.Poisson {
		return map[string]float64{
			"lambda":      stochastic.EffectiveRate(res.Rate),
			"spike_count": float64(live.SpikeCount),
			"mean_isi":    live.MeanISI,
			"cv":          live.CV,
			"rate_hz":     live.Rate,
		}
	}
	return map[string]float64{
		"open":        float64(live.Open),
		"total":       float64(live.Total),
		"probability": live.Probability,
	}
}

// Save writes the metadata and the full event log of res and returns the
// new run ID.
func (s *Store) Save(seed int64, cfg session.RunConfig, res *session.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", res.Mode, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	meta := RunMetadata{
		ID:        runID,
		Mode:      res.Mode,
		Timestamp: ts,
		Seed:      seed,
		Rate:      res.Rate,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Steps:     res.Steps,
		Events:    len(res.Events),
		Metrics:   Metrics(res),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeEvents(filepath.Join(runDir, eventsFile), res.Events); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeEvents(path string, events []stochastic.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"seq", "time", "outcome"}); err != nil {
		return err
	}
	for _, ev := range events {
		row := []string{
			strconv.FormatUint(ev.Seq, 10),
			strconv.FormatFloat(ev.Time, 'g', -1, 64),
			strconv.Itoa(int(ev.Outcome)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns saved runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadEvents reads the event log of a run. Malformed rows are skipped.
func (s *Store) LoadEvents(runID string) ([]stochastic.Event, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read events for %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []stochastic.Event{}, nil
	}

	events := make([]stochastic.Event, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		seq, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		o, err := strconv.Atoi(record[2])
		if err != nil || (o != int(stochastic.Closed) && o != int(stochastic.Open)) {
			continue
		}
		events = append(events, stochastic.Event{Seq: seq, Time: t, Outcome: stochastic.Outcome(o)})
	}
	return events, nil
}
