// Package storage persists simulation runs under a data directory: one
// subdirectory per run holding metadata.json, a time series CSV, and
// the final latitude profile CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/ebmlab/internal/driver"
	"github.com/san-kum/ebmlab/internal/ebm"
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

// Sample is one point of the run's scalar time series.
type Sample struct {
	Time     float64 `json:"time"`
	MeanTemp float64 `json:"mean_temp"`
	NetFlux  float64 `json:"net_flux"`
	IceEdge  float64 `json:"ice_edge"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Bands      int                `json:"bands"`
	Duration   float64            `json:"duration"`
	SolarScale float64            `json:"solar_scale"`
	Greenhouse float64            `json:"greenhouse"`
	Params     ebm.Params         `json:"params"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run and returns its generated id.
func (s *Store) Save(meta RunMetadata, series []Sample, final driver.Snapshot) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, "series.csv"), series); err != nil {
		return "", err
	}
	if err := writeProfile(filepath.Join(runDir, "profile.csv"), final); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeSeries(path string, series []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "mean_temp", "net_flux", "ice_edge"}); err != nil {
		return err
	}
	for _, p := range series {
		row := []string{
			formatFloat(p.Time),
			formatFloat(p.MeanTemp),
			formatFloat(p.NetFlux),
			formatFloat(p.IceEdge),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeProfile(path string, snap driver.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"lat", "temp", "albedo", "insol", "asr", "olr", "transport"}); err != nil {
		return err
	}
	for i := range snap.Lat {
		row := []string{
			formatFloat(snap.Lat[i]),
			formatFloat(snap.Temp[i]),
			formatFloat(snap.Albedo[i]),
			formatFloat(snap.Insol[i]),
			formatFloat(snap.ASR[i]),
			formatFloat(snap.OLR[i]),
			formatFloat(snap.Transport[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
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
		return nil, fmt.Errorf("decode metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSeries reads the scalar time series back from series.csv.
func (s *Store) LoadSeries(runID string) ([]Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}

	series := make([]Sample, 0, len(records))
	for _, rec := range records {
		if len(rec) < 4 {
			continue
		}
		var p Sample
		if p.Time, err = strconv.ParseFloat(rec[0], 64); err != nil {
			continue
		}
		p.MeanTemp, _ = strconv.ParseFloat(rec[1], 64)
		p.NetFlux, _ = strconv.ParseFloat(rec[2], 64)
		p.IceEdge, _ = strconv.ParseFloat(rec[3], 64)
		series = append(series, p)
	}
	return series, nil
}

// LoadProfile reads the final latitude profile as column vectors keyed
// by header name.
func (s *Store) LoadProfile(runID string) (map[string][]float64, error) {
	path := filepath.Join(s.baseDir, runID, "profile.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return map[string][]float64{}, nil
	}

	header := records[0]
	cols := make(map[string][]float64, len(header))
	for _, name := range header {
		cols[name] = make([]float64, 0, len(records)-1)
	}
	for _, rec := range records[1:] {
		for j, name := range header {
			if j >= len(rec) {
				continue
			}
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				continue
			}
			cols[name] = append(cols[name], v)
		}
	}
	return cols, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, nil
	}
	return records[1:], nil
}

// ExportJSONStdout streams the run metadata and series as one JSON
// document to stdout.
func (s *Store) ExportJSONStdout(runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	doc := struct {
		Meta   *RunMetadata `json:"meta"`
		Series []Sample     `json:"series"`
	}{meta, series}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
