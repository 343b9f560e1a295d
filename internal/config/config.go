// Package config loads alignment profiles from YAML files.
//
// A profile names every knob of an alignment; missing keys keep their
// defaults:
//
//	type: global
//	steps: 3
//	scoring:
//	  matrix: blosum62
//	  tolerance: 10 ppm
//	  gap_start: -5
//	  gap_extend: -1
//	search:
//	  type: global-a
//	  k: 3
//	  min_shared_kmers: 1
//	  min_normalised_score: 0.4
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/chemistry"
	"github.com/rusteomics/mzalign/internal/index"
	"github.com/rusteomics/mzalign/internal/quality"
	"gopkg.in/yaml.v3"
)

// Scoring mirrors alignment.Scoring with the matrix and tolerance as text.
type Scoring struct {
	Matrix       string `yaml:"matrix"`
	MatrixFile   string `yaml:"matrix_file,omitempty"`
	Tolerance    string `yaml:"tolerance"`
	GapStart     int    `yaml:"gap_start"`
	GapExtend    int    `yaml:"gap_extend"`
	MassMismatch int    `yaml:"mass_mismatch"`
	Isobaric     int    `yaml:"isobaric"`
	Mismatch     int    `yaml:"mismatch"`
	Rotated      int    `yaml:"rotated"`
	Identity     int    `yaml:"identity"`
}

// Search holds the index search settings.
type Search struct {
	// Type is the alignment type of query against entry.
	Type               string  `yaml:"type"`
	K                  int     `yaml:"k"`
	MinSharedKMers     int     `yaml:"min_shared_kmers"`
	MinNormalisedScore float64 `yaml:"min_normalised_score"`
	Limit              int     `yaml:"limit"`
}

// Config is an alignment profile.
type Config struct {
	Type        string  `yaml:"type"`
	Steps       int     `yaml:"steps"`
	Scoring     Scoring `yaml:"scoring"`
	Search      Search  `yaml:"search"`
	MaxDistance float64 `yaml:"max_distance,omitempty"`
	Database    string  `yaml:"database,omitempty"`
}

// Default returns the profile matching alignment.DefaultOptions.
func Default() *Config {
	sc := alignment.DefaultScoring()
	return &Config{
		Type:  alignment.Global.String(),
		Steps: alignment.DefaultSteps,
		Scoring: Scoring{
			Matrix:       sc.Matrix.Name,
			Tolerance:    sc.Tolerance.String(),
			GapStart:     sc.GapStart,
			GapExtend:    sc.GapExtend,
			MassMismatch: sc.MassMismatch,
			Isobaric:     sc.Isobaric,
			Mismatch:     sc.Mismatch,
			Rotated:      sc.Rotated,
			Identity:     sc.Identity,
		},
		Search: Search{
			Type:               alignment.GlobalA.String(),
			K:                  3,
			MinSharedKMers:     1,
			MinNormalisedScore: 0.4,
		},
	}
}

// Load reads a profile from path. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a profile over the defaults. Unknown keys are rejected.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if _, err := cfg.SearchOptions(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write encodes the profile as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// String returns the YAML form of the profile.
func (c *Config) String() string {
	var b bytes.Buffer
	if err := c.Write(&b); err != nil {
		return err.Error()
	}
	return b.String()
}

func (c *Config) matrix() (*alignment.SubstitutionMatrix, error) {
	if c.Scoring.MatrixFile == "" {
		return alignment.MatrixByName(c.Scoring.Matrix)
	}
	text, err := os.ReadFile(c.Scoring.MatrixFile)
	if err != nil {
		return nil, fmt.Errorf("reading matrix: %w", err)
	}
	name := c.Scoring.Matrix
	if name == "" {
		name = c.Scoring.MatrixFile
	}
	return alignment.ParseSubstitutionMatrix(name, string(text))
}

// Options builds validated alignment options from the profile.
func (c *Config) Options() (alignment.Options, error) {
	t, err := alignment.ParseAlignType(c.Type)
	if err != nil {
		return alignment.Options{}, &alignment.ConfigError{Field: "type", Reason: err.Error()}
	}
	matrix, err := c.matrix()
	if err != nil {
		return alignment.Options{}, &alignment.ConfigError{Field: "matrix", Reason: err.Error()}
	}
	tolerance, err := chemistry.ParseTolerance(c.Scoring.Tolerance)
	if err != nil {
		return alignment.Options{}, &alignment.ConfigError{Field: "tolerance", Reason: err.Error()}
	}

	opts := alignment.Options{
		Steps: c.Steps,
		Type:  t,
		Scoring: alignment.Scoring{
			GapExtend:    c.Scoring.GapExtend,
			GapStart:     c.Scoring.GapStart,
			MassMismatch: c.Scoring.MassMismatch,
			Isobaric:     c.Scoring.Isobaric,
			Mismatch:     c.Scoring.Mismatch,
			Rotated:      c.Scoring.Rotated,
			Identity:     c.Scoring.Identity,
			Matrix:       matrix,
			Tolerance:    tolerance,
		},
	}
	if err := opts.Validate(); err != nil {
		return alignment.Options{}, err
	}
	return opts, nil
}

// SearchOptions builds index search options: the profile's scoring with the
// search type, k-mer prefilter, score filter and limit.
func (c *Config) SearchOptions() (index.SearchOptions, error) {
	opts, err := c.Options()
	if err != nil {
		return index.SearchOptions{}, err
	}
	t, err := alignment.ParseAlignType(c.Search.Type)
	if err != nil {
		return index.SearchOptions{}, &alignment.ConfigError{Field: "search.type", Reason: err.Error()}
	}
	opts.Type = t

	if c.Search.K <= 0 {
		return index.SearchOptions{}, &alignment.ConfigError{Field: "search.k", Reason: "must be positive"}
	}
	if c.Search.MinSharedKMers < 0 {
		return index.SearchOptions{}, &alignment.ConfigError{Field: "search.min_shared_kmers", Reason: "cannot be negative"}
	}
	if c.Search.Limit < 0 {
		return index.SearchOptions{}, &alignment.ConfigError{Field: "search.limit", Reason: "cannot be negative"}
	}

	filter := quality.DefaultFilter()
	filter.MinNormalisedScore = c.Search.MinNormalisedScore
	if err := filter.Validate(); err != nil {
		return index.SearchOptions{}, &alignment.ConfigError{Field: "search.min_normalised_score", Reason: err.Error()}
	}

	return index.SearchOptions{
		Alignment:      opts,
		MinSharedKMers: c.Search.MinSharedKMers,
		Filter:         filter,
		Limit:          c.Search.Limit,
	}, nil
}
