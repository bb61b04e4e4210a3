package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/stochlab/internal/session"
	"github.com/san-kum/stochlab/internal/stochastic"
)

type ExportData struct {
	Mode     stochastic.Mode    `json:"mode"`
	Rate     float64            `json:"rate"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Outcomes []int              `json:"outcomes"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run as a single JSON document to w.
func ExportJSON(w io.Writer, cfg session.RunConfig, res *session.Result) error {
	data := ExportData{
		Mode:     res.Mode,
		Rate:     res.Rate,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Steps:    res.Steps,
		Times:    make([]float64, len(res.Events)),
		Outcomes: make([]int, len(res.Events)),
		Metrics:  Metrics(res),
	}
	for i, ev := range res.Events {
		data.Times[i] = ev.Time
		data.Outcomes[i] = int(ev.Outcome)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
