package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/krotov/internal/result"
)

// Store persists optimization runs under a base directory, one
// subdirectory per run: metadata.json, controls.csv and result.gob.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	Objectives int       `json:"objectives"`
	Iterations int       `json:"iterations"`
	LambdaA    float64   `json:"lambda_a"`
	JT         []float64 `json:"jt"`
	FinalJT    float64   `json:"final_jt"`
	Started    string    `json:"started"`
	Ended      string    `json:"ended"`
}

func (s *Store) Save(model string, lambdaA float64, res *result.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	jt := functionalValues(res)
	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Timestamp:  time.Now(),
		Objectives: len(res.Objectives),
		Iterations: res.Iterations(),
		LambdaA:    lambdaA,
		JT:         jt,
		Started:    res.StartLocalTimeString(),
		Ended:      res.EndLocalTimeString(),
	}
	if len(jt) > 0 {
		meta.FinalJT = jt[len(jt)-1]
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeControls(runDir, res); err != nil {
		return "", err
	}

	blob, err := os.Create(filepath.Join(runDir, "result.gob"))
	if err != nil {
		return "", err
	}
	defer blob.Close()
	if err := res.Dump(blob); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeControls(runDir string, res *result.Result) error {
	f, err := os.Create(filepath.Join(runDir, "controls.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time"}
	for k := range res.GuessControls {
		header = append(header, fmt.Sprintf("guess%d", k))
	}
	for k := range res.OptimizedControls {
		header = append(header, fmt.Sprintf("opt%d", k))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range res.Tlist {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, c := range res.GuessControls {
			row = append(row, strconv.FormatFloat(c[i], 'f', 6, 64))
		}
		for _, c := range res.OptimizedControls {
			row = append(row, strconv.FormatFloat(c[i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadResult restores the dumped result blob of a run. Its Objectives
// are empty and must be reattached before reconstruction; see
// result.Dump.
func (s *Store) LoadResult(runID string) (*result.Result, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "result.gob"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return result.Load(f)
}

// LoadControls reads back the controls table: the time grid plus one
// column per guess and per optimized control.
func (s *Store) LoadControls(runID string) (times []float64, guess, opt [][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "controls.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, nil, nil
	}

	nGuess, nOpt := 0, 0
	for _, col := range records[0][1:] {
		if len(col) > 5 && col[:5] == "guess" {
			nGuess++
		} else {
			nOpt++
		}
	}
	guess = make([][]float64, nGuess)
	opt = make([][]float64, nOpt)

	for _, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for k := 0; k < nGuess; k++ {
			v, _ := strconv.ParseFloat(rec[1+k], 64)
			guess[k] = append(guess[k], v)
		}
		for k := 0; k < nOpt; k++ {
			v, _ := strconv.ParseFloat(rec[1+nGuess+k], 64)
			opt[k] = append(opt[k], v)
		}
	}
	return times, guess, opt, nil
}

// functionalValues extracts the per-iteration functional from InfoVals,
// which the default info hook fills with float64 values.
func functionalValues(res *result.Result) []float64 {
	out := make([]float64, 0, len(res.InfoVals))
	for _, v := range res.InfoVals {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}
