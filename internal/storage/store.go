// Package storage persists completed runs as per-run directories
// holding metadata, the summary table, and the raw trajectory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/virosim/internal/model"
	"github.com/san-kum/virosim/internal/sim"
	"github.com/san-kum/virosim/internal/summary"
)

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
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	DeathType string             `json:"deathtype"`
	NT        int                `json:"nT"`
	NEE       int                `json:"nEE"`
	NER       int                `json:"nER"`
	NEI       int                `json:"nEI"`
	NP        int                `json:"nP"`
	Params    map[string]string  `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes one run and returns its ID.
func (s *Store) Save(p model.Params, traj *sim.Trajectory, rows []summary.Row, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%s", p.DeathType, uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	params := make(map[string]string)
	for _, info := range p.Describe() {
		params[info.Name] = info.Value
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		DeathType: p.DeathType,
		NT:        p.NT,
		NEE:       p.NEE,
		NER:       p.NER,
		NEI:       p.NEI,
		NP:        p.NP,
		Params:    params,
		Metrics:   metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeSummaryCSV(filepath.Join(runDir, "summary.csv"), traj.Times, rows); err != nil {
		return "", err
	}
	if err := writeStatesCSV(filepath.Join(runDir, "states.csv"), traj); err != nil {
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
	return enc.Encode(v)
}

func writeSummaryCSV(path string, times []float64, rows []summary.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "total", "dead", "frac_inf", "dead_frac_of_inf"}); err != nil {
		return err
	}
	for i, row := range rows {
		rec := []string{
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(row.Total, 'g', -1, 64),
			strconv.FormatFloat(row.Dead, 'g', -1, 64),
			strconv.FormatFloat(row.FracInfected, 'g', -1, 64),
			strconv.FormatFloat(row.DeadFracOfInfected, 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeStatesCSV(path string, traj *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for i, x := range traj.States {
		rec := make([]string, 0, len(x)+1)
		rec = append(rec, strconv.FormatFloat(traj.Times[i], 'g', -1, 64))
		for _, v := range x {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

// List returns metadata for every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue // skip partial or foreign directories
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (RunMetadata, error) {
	var meta RunMetadata
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// LoadSummary reads back the summary table of a stored run.
func (s *Store) LoadSummary(runID string) ([]float64, []summary.Row, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "summary.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("storage: empty summary for run %s", runID)
	}

	times := make([]float64, 0, len(records)-1)
	rows := make([]summary.Row, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		if len(rec) != 5 {
			return nil, nil, fmt.Errorf("storage: malformed summary row in run %s", runID)
		}
		vals := make([]float64, 5)
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: run %s: %w", runID, err)
			}
			vals[i] = v
		}
		times = append(times, vals[0])
		rows = append(rows, summary.Row{
			Total:              vals[1],
			Dead:               vals[2],
			FracInfected:       vals[3],
			DeadFracOfInfected: vals[4],
		})
	}
	return times, rows, nil
}
