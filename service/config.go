package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/chunking"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/quality"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/tokenizer"
)

// Config defines a chunking run: where the corpus lives, how to cut and
// score it, and where the artifacts go.
type Config struct {
	Corpus      CorpusConfig    `yaml:"corpus"`
	Chunking    ChunkingConfig  `yaml:"chunking"`
	Quality     QualityConfig   `yaml:"quality"`
	Tokenizer   TokenizerConfig `yaml:"tokenizer"`
	Output      OutputConfig    `yaml:"output"`
	Concurrency int             `yaml:"concurrency"`
}

// CorpusConfig defines the corpus location and file selection rules.
type CorpusConfig struct {
	Location     string   `yaml:"location"`
	Include      []string `yaml:"include"`
	Exclude      []string `yaml:"exclude"`
	MaxSizeBytes int64    `yaml:"max_size_bytes"`
}

// ChunkingConfig defines segmentation geometry.
type ChunkingConfig struct {
	TargetLength int `yaml:"target_length"`
	Overlap      int `yaml:"overlap"`
	Lookback     int `yaml:"lookback"`
}

// QualityConfig defines scoring weights and admission thresholds.
type QualityConfig struct {
	Weights    quality.Weights    `yaml:"weights"`
	Thresholds quality.Thresholds `yaml:",inline"`
}

// TokenizerConfig selects the token counting encoding.
type TokenizerConfig struct {
	Encoding string `yaml:"encoding"`
}

// OutputConfig defines where run artifacts are written. Empty entries are
// skipped.
type OutputConfig struct {
	Chunks     string `yaml:"chunks"`
	Report     string `yaml:"report"`
	ReportCSV  string `yaml:"report_csv"`
	ReportXLSX string `yaml:"report_xlsx"`
	Snapshot   string `yaml:"snapshot"`
	CatalogDSN string `yaml:"catalog_dsn"`
}

// DefaultConfig returns the settings tuned on the El Universo OCR corpus.
func DefaultConfig() Config {
	return Config{
		Chunking: ChunkingConfig{
			TargetLength: chunking.DefaultTargetLength,
			Overlap:      chunking.DefaultOverlap,
		},
		Quality: QualityConfig{
			Weights:    quality.DefaultWeights(),
			Thresholds: quality.DefaultThresholds(),
		},
		Tokenizer: TokenizerConfig{Encoding: tokenizer.DefaultEncoding},
	}
}

// LoadConfig reads a yaml config, overlaying it on the defaults.
func LoadConfig(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("service: failed to parse config %s: %w", path, err)
	}
	if cfg.Corpus.Location != "" {
		expanded, err := expandUserPath(cfg.Corpus.Location)
		if err != nil {
			return nil, err
		}
		cfg.Corpus.Location = expanded
	}
	for _, target := range []*string{&cfg.Output.Chunks, &cfg.Output.Report, &cfg.Output.ReportCSV, &cfg.Output.ReportXLSX, &cfg.Output.Snapshot, &cfg.Output.CatalogDSN} {
		if *target == "" {
			continue
		}
		expanded, err := expandUserPath(*target)
		if err != nil {
			return nil, err
		}
		*target = expanded
	}
	return &cfg, nil
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if trimmed == "~" {
		return home, nil
	}
	if !strings.HasPrefix(trimmed, "~/") {
		return "", fmt.Errorf("service: unsupported ~user path: %s", path)
	}
	return filepath.Join(home, trimmed[2:]), nil
}
