package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/config"
	"github.com/san-kum/etrack/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	configFile     = "config.yaml"
)

// ErrMalformed reports a stored trajectory that cannot be read back.
var ErrMalformed = errors.New("storage: malformed trajectory file")

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
	Model     string             `json:"model"`
	Method    string             `json:"method"`
	Field     string             `json:"field"`
	Timestamp time.Time          `json:"timestamp"`
	CFL       float64            `json:"cfl"`
	Rotations float64            `json:"rotations"`
	StepSize  float64            `json:"step_size"`
	Steps     int                `json:"steps"`
	Samples   int                `json:"samples"`
	Duration  float64            `json:"duration"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes the run under a new directory: its metadata, the trajectory
// as CSV and the configuration that produced it.
func (s *Store) Save(cfg *config.Config, tr *dynamo.Trajectory) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s_%d", cfg.Solver.Kind, cfg.Solver.Method, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     cfg.Solver.Kind,
		Method:    cfg.Solver.Method,
		Field:     cfg.Field.Type,
		Timestamp: now,
		CFL:       cfg.Solver.CFL,
		Rotations: cfg.Solver.Rotations,
		StepSize:  tr.StepSize,
		Steps:     tr.Steps,
		Samples:   tr.Len(),
		Metrics:   tr.Metrics,
	}
	if tr.Len() > 0 {
		meta.Duration = tr.Times[tr.Len()-1]
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteCSV(f, tr); err != nil {
		return "", err
	}
	return runID, f.Close()
}

// WriteCSV writes one row per sample: time, position, velocity and, for
// radiating runs, the cumulative radiated energy.
func WriteCSV(out io.Writer, tr *dynamo.Trajectory) error {
	w := csv.NewWriter(out)

	header := []string{"time", "x", "y", "z", "vx", "vy", "vz"}
	if tr.Radiated != nil {
		header = append(header, "energy")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range tr.Times {
		row := make([]string, 0, len(header))
		row = append(row, format(tr.Times[i]))
		for _, val := range tr.Sample(i) {
			row = append(row, format(val))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadConfig returns the configuration stored with a run.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadTrajectory reads a stored trajectory back. Metrics come from the
// metadata.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	tr.StepSize = meta.StepSize
	tr.Steps = meta.Steps
	tr.Metrics = meta.Metrics
	return tr, nil
}

// ReadCSV parses the format written by WriteCSV.
func ReadCSV(in io.Reader) (*dynamo.Trajectory, error) {
	r := csv.NewReader(in)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}

	width := len(records[0])
	if width != 7 && width != 8 {
		return nil, fmt.Errorf("%w: %d columns", ErrMalformed, width)
	}

	tr := dynamo.NewTrajectory(len(records)-1, width == 8)
	vals := make([]float64, width)
	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, i+1, err)
			}
			vals[j] = v
		}
		var energy float64
		if width == 8 {
			energy = vals[7]
		}
		tr.Append(vals[0],
			r3.Vec{X: vals[1], Y: vals[2], Z: vals[3]},
			r3.Vec{X: vals[4], Y: vals[5], Z: vals[6]},
			energy)
	}
	return tr, nil
}
