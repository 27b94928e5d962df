// Package netmon supplies network/tariff condition snapshots to the
// scheduler. The daemon has no platform connectivity hooks of its own; it
// reads a conditions file maintained by the system's network tooling and
// re-reads it on demand (the daemon triggers a reload on SIGHUP).
package netmon

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/shiftdl/shiftdl/internal/scheduler"
	"github.com/shiftdl/shiftdl/pkg/logger"
	"github.com/shiftdl/shiftdl/pkg/tariff"
)

// Source produces the current network/tariff conditions.
type Source interface {
	Conditions() (scheduler.Conditions, error)
}

// conditionsFile is the on-disk JSON shape.
type conditionsFile struct {
	Connected bool   `json:"connected"`
	Metered   bool   `json:"metered"`
	Tariff    string `json:"tariff,omitempty"`
}

// FileSource reads conditions from a JSON file. A missing conditions file
// means "connected, unmetered, no tariff"; a corrupt tariff file degrades
// to "no tariff" rather than failing the whole snapshot.
type FileSource struct {
	fs   afero.Fs
	path string
	log  logger.Logger
}

func NewFileSource(fs afero.Fs, path string, log logger.Logger) *FileSource {
	return &FileSource{fs: fs, path: path, log: log}
}

func (f *FileSource) Conditions() (scheduler.Conditions, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if exists, _ := afero.Exists(f.fs, f.path); !exists {
			return scheduler.Conditions{Connected: true}, nil
		}
		return scheduler.Conditions{}, fmt.Errorf("error reading conditions file: %w", err)
	}

	var cf conditionsFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return scheduler.Conditions{}, fmt.Errorf("error parsing conditions file %s: %w", f.path, err)
	}

	c := scheduler.Conditions{Connected: cf.Connected, Metered: cf.Metered}
	if cf.Tariff == "" {
		return c, nil
	}

	t, err := tariff.Load(f.fs, cf.Tariff)
	if err != nil {
		var pe *tariff.ParseError
		if errors.As(err, &pe) {
			f.log.Warning("Ignoring corrupt tariff file %s: %v", cf.Tariff, err)
			return c, nil
		}
		return scheduler.Conditions{}, err
	}
	c.Tariff = t
	return c, nil
}

// StaticSource returns a fixed snapshot. Test helper, also used for the
// daemon's --tariff override flag.
type StaticSource struct {
	C scheduler.Conditions
}

func (s *StaticSource) Conditions() (scheduler.Conditions, error) {
	return s.C, nil
}

var (
	_ Source = (*FileSource)(nil)
	_ Source = (*StaticSource)(nil)
)
