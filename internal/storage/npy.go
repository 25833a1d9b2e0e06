package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/mechsim/internal/analysis"
	"github.com/san-kum/mechsim/internal/physics"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// HistoryMatrix flattens a joint-state history to one row per tick, each row
// being x, y, vx, vy for every body in order.
func HistoryMatrix(history []physics.JointState) (*mat.Dense, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("empty history")
	}
	cols := len(history[0]) * 4
	m := mat.NewDense(len(history), cols, nil)
	for i, joint := range history {
		if len(joint)*4 != cols {
			return nil, fmt.Errorf("tick %d has %d bodies, expected %d", i, len(joint), cols/4)
		}
		m.SetRow(i, joint.Flatten())
	}
	return m, nil
}

// HistoryFromMatrix rebuilds the joint states stored by HistoryMatrix.
func HistoryFromMatrix(m *mat.Dense) ([]physics.JointState, error) {
	rows, _ := m.Dims()
	history := make([]physics.JointState, rows)
	for i := range history {
		joint, err := physics.JointStateFrom(m.RawRowView(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		history[i] = joint
	}
	return history, nil
}

func SaveNPY(path string, m mat.Matrix) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return npyio.Write(f, m)
}

func LoadNPY(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// SaveHistory dumps the joint-state history of a run as history.npy and
// returns the matrix shape.
func (s *Store) SaveHistory(runID string, history []physics.JointState) ([]int, error) {
	m, err := HistoryMatrix(history)
	if err != nil {
		return nil, err
	}
	if err := SaveNPY(filepath.Join(s.Dir(runID), historyFile), m); err != nil {
		return nil, err
	}
	return []int{len(history), len(history[0]), 2, 2}, nil
}

func (s *Store) LoadHistory(runID string) ([]physics.JointState, error) {
	m, err := LoadNPY(filepath.Join(s.Dir(runID), historyFile))
	if err != nil {
		return nil, err
	}
	return HistoryFromMatrix(m)
}

// SaveSweep writes a two-column (param, value) array.
func SaveSweep(path string, points []analysis.SweepPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("empty sweep")
	}
	m := mat.NewDense(len(points), 2, nil)
	for i, p := range points {
		m.Set(i, 0, p.Param)
		m.Set(i, 1, p.Value)
	}
	return SaveNPY(path, m)
}

func LoadSweep(path string) ([]analysis.SweepPoint, error) {
	m, err := LoadNPY(path)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	if cols != 2 {
		return nil, fmt.Errorf("%s: expected 2 columns, got %d", path, cols)
	}
	points := make([]analysis.SweepPoint, rows)
	for i := range points {
		points[i] = analysis.SweepPoint{Param: m.At(i, 0), Value: m.At(i, 1)}
	}
	return points, nil
}
