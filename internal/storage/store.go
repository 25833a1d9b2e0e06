package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	historyFile  = "history.npy"
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

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Preset     string    `json:"preset,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Seed       int64     `json:"seed,omitempty"`
	Dt         float64   `json:"dt"`
	Runtime    float64   `json:"runtime"`
	Integrator string    `json:"integrator"`
	Bodies     []string  `json:"bodies"`
	Columns    []string  `json:"columns"`
	// Shape of the joint-state dump, (ticks, bodies, 2, 2) for n-body runs.
	Shape   []int              `json:"shape,omitempty"`
	Metrics map[string]float64 `json:"metrics"`
}

// Save writes metadata and the table into a fresh run directory and returns
// the run ID.
func (s *Store) Save(meta RunMetadata, table *Table) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Model, now.UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Columns = table.Columns

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTable(filepath.Join(runDir, statesFile), table); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(path string, table *Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)

	header := append([]string{"time"}, table.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.FormatFloat(table.Times[i], 'g', -1, 64))
		for _, val := range row {
			record = append(record, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStates reads the table of a run back.
func (s *Store) LoadStates(runID string) (*Table, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return &Table{}, nil
	}

	table := &Table{
		Columns: records[0][1:],
		Times:   make([]float64, 0, len(records)-1),
		Rows:    make([][]float64, 0, len(records)-1),
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statesFile, i+1, err)
		}

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", statesFile, i+1, err)
			}
			row = append(row, val)
		}

		table.Times = append(table.Times, t)
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
