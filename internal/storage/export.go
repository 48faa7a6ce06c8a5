package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/etrack/internal/dynamo"
)

type ExportData struct {
	Model    string             `json:"model"`
	Method   string             `json:"method"`
	Field    string             `json:"field"`
	StepSize float64            `json:"step_size"`
	Steps    int                `json:"steps"`
	Samples  int                `json:"samples"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
}

// NewExport flattens tr into rows laid out [x y z vx vy vz (E)].
func NewExport(meta RunMetadata, tr *dynamo.Trajectory) ExportData {
	data := ExportData{
		Model:    meta.Model,
		Method:   meta.Method,
		Field:    meta.Field,
		StepSize: tr.StepSize,
		Steps:    tr.Steps,
		Samples:  tr.Len(),
		Times:    tr.Times,
		States:   make([][]float64, tr.Len()),
		Metrics:  tr.Metrics,
	}
	for i := range tr.Times {
		data.States[i] = tr.Sample(i)
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, tr *dynamo.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := EncodeJSON(file, meta, tr); err != nil {
		return err
	}
	return file.Close()
}

// EncodeJSON writes the export to w, e.g. os.Stdout.
func EncodeJSON(w io.Writer, meta RunMetadata, tr *dynamo.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExport(meta, tr))
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return file.Close()
}
