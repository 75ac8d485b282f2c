// Package store persists run results: one directory per run holding
// metadata.json and a checkpoints.csv whose row order mirrors the
// series contract (header first, recorded checkpoints, final row last).
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/arshan-h/kinsim/internal/kinet"
)

// endTag marks the final row of a run stopped externally rather than
// by a fixed horizon.
const endTag = "end"

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
	ID        string    `json:"id"`
	Network   string    `json:"network"`
	Timestamp time.Time `json:"timestamp"`
	Dt        float64   `json:"dt"`
	Duration  float64   `json:"duration"`
	Policy    string    `json:"policy"`
	Compounds []string  `json:"compounds"`
	Stopped   bool      `json:"stopped"`
}

// Save writes the run to a fresh directory and returns its id.
func (s *Store) Save(network string, dt float64, policy kinet.Policy, series *kinet.Series) (string, error) {
	runID := fmt.Sprintf("%s_%d", network, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Network:   network,
		Timestamp: time.Now(),
		Dt:        dt,
		Duration:  series.Final.Time,
		Policy:    policy.String(),
		Compounds: series.Labels,
		Stopped:   series.Stopped,
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

	csvFile, err := os.Create(filepath.Join(runDir, "checkpoints.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := append([]string{"time"}, series.Labels...)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, cp := range series.Checkpoints {
		if err := w.Write(row(formatTime(cp.Time), cp.Conc)); err != nil {
			return "", err
		}
	}
	finalTag := formatTime(series.Final.Time)
	if series.Stopped {
		finalTag = endTag
	}
	if err := w.Write(row(finalTag, series.Final.Conc)); err != nil {
		return "", err
	}

	return runID, nil
}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}

func row(tag string, conc kinet.Concentrations) []string {
	out := make([]string, 0, len(conc)+1)
	out = append(out, tag)
	for _, v := range conc {
		out = append(out, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return out
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

// LoadSeries reads a stored run back into a series. The last CSV row
// is the final snapshot; an "end" time column restores the Stopped flag.
func (s *Store) LoadSeries(runID string) (*kinet.Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "checkpoints.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s: checkpoints.csv has no data rows", runID)
	}

	series := &kinet.Series{Labels: records[0][1:]}
	for i, record := range records[1:] {
		last := i == len(records)-2
		snap := kinet.Snapshot{Conc: make(kinet.Concentrations, 0, len(record)-1)}
		if record[0] == endTag {
			if !last {
				return nil, fmt.Errorf("run %s: %q tag before final row", runID, endTag)
			}
			series.Stopped = true
		} else {
			snap.Time, err = strconv.ParseFloat(record[0], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
			}
		}
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
			}
			snap.Conc = append(snap.Conc, v)
		}
		if last {
			series.Final = snap
		} else {
			series.Checkpoints = append(series.Checkpoints, snap)
		}
	}
	return series, nil
}
