package store

import (
	"encoding/json"
	"io"

	"github.com/san-kum/krotov/internal/result"
)

type ExportData struct {
	Model             string      `json:"model"`
	Objectives        int         `json:"objectives"`
	Iterations        int         `json:"iterations"`
	LambdaA           float64     `json:"lambda_a"`
	Times             []float64   `json:"times"`
	GuessControls     [][]float64 `json:"guess_controls"`
	OptimizedControls [][]float64 `json:"optimized_controls"`
	JT                []float64   `json:"jt"`
	Started           string      `json:"started"`
	Ended             string      `json:"ended"`
}

// ExportJSON writes a run as indented JSON for downstream tooling. The
// metadata supplies what a restored result blob no longer carries.
func ExportJSON(w io.Writer, meta RunMetadata, res *result.Result) error {
	jt := functionalValues(res)
	if len(jt) == 0 {
		jt = meta.JT
	}
	data := ExportData{
		Model:             meta.Model,
		Objectives:        meta.Objectives,
		Iterations:        res.Iterations(),
		LambdaA:           meta.LambdaA,
		Times:             res.Tlist,
		GuessControls:     make([][]float64, len(res.GuessControls)),
		OptimizedControls: make([][]float64, len(res.OptimizedControls)),
		JT:                jt,
		Started:           res.StartLocalTimeString(),
		Ended:             res.EndLocalTimeString(),
	}
	for k, c := range res.GuessControls {
		data.GuessControls[k] = c
	}
	for k, c := range res.OptimizedControls {
		data.OptimizedControls[k] = c
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
