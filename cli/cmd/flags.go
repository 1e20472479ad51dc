// Package cmd provides the lintstream CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	lodelibrary "github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/config"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/reader"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/lode"
)

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for inspect and stats.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (inspect, stats only)",
	}

	// ConfigFlag points at a lintstream.yaml. Defaults to ./lintstream.yaml when present.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to lintstream.yaml",
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can reject it explicitly
// instead of failing with "flag provided but not defined".
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// TUIReadOnlyFlags returns flags for commands that support TUI mode.
func TUIReadOnlyFlags() []cli.Flag {
	return ReadOnlyFlags()
}

// StorageFlags select the dataset read or written. They override the
// storage section of the config file.
func StorageFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		&cli.StringFlag{Name: "storage-backend", Usage: "Storage backend: fs or s3"},
		&cli.StringFlag{Name: "storage-path", Usage: "Storage path (fs: directory, s3: bucket/prefix)"},
		&cli.StringFlag{Name: "storage-dataset", Usage: "Lode dataset ID"},
		&cli.StringFlag{Name: "storage-region", Usage: "AWS region for the S3 backend"},
		&cli.StringFlag{Name: "storage-endpoint", Usage: "Custom S3 endpoint (R2, MinIO)"},
		&cli.BoolFlag{Name: "storage-path-style", Usage: "Force S3 path-style addressing"},
	}
}

// loadConfig reads --config, or lintstream.yaml in the working directory
// if it exists. No file yields an empty config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err != nil {
			return &config.Config{}, nil
		}
		path = config.DefaultFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// storageChoice is the resolved storage selection.
type storageChoice struct {
	dataset   string
	backend   string // "fs" or "s3"
	path      string // fs: directory, s3: bucket/prefix
	region    string
	endpoint  string
	pathStyle bool
}

// resolveStorage merges storage flags over the config file section.
func resolveStorage(c *cli.Context, cfg config.StorageConfig) storageChoice {
	choice := storageChoice{
		dataset:   cfg.Dataset,
		backend:   cfg.Backend,
		path:      cfg.Path,
		region:    cfg.Region,
		endpoint:  cfg.Endpoint,
		pathStyle: cfg.S3PathStyle,
	}
	if v := c.String("storage-dataset"); v != "" {
		choice.dataset = v
	}
	if v := c.String("storage-backend"); v != "" {
		choice.backend = v
	}
	if v := c.String("storage-path"); v != "" {
		choice.path = v
	}
	if v := c.String("storage-region"); v != "" {
		choice.region = v
	}
	if v := c.String("storage-endpoint"); v != "" {
		choice.endpoint = v
	}
	if c.IsSet("storage-path-style") {
		choice.pathStyle = c.Bool("storage-path-style")
	}
	if choice.dataset == "" {
		choice.dataset = lode.DefaultDataset
	}
	if choice.backend == "" && choice.path != "" {
		choice.backend = "fs"
	}
	return choice
}

func (s storageChoice) enabled() bool {
	return s.path != ""
}

func (s storageChoice) s3Config() lode.S3Config {
	bucket, prefix := lode.ParseS3Path(s.path)
	return lode.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       s.region,
		Endpoint:     s.endpoint,
		UsePathStyle: s.pathStyle,
	}
}

// location is the human-readable storage location for events and logs.
func (s storageChoice) location() string {
	if !s.enabled() {
		return ""
	}
	if s.backend == "s3" {
		return "s3://" + s.path
	}
	return s.path
}

// buildReadDataset opens the dataset for reading.
func buildReadDataset(ctx context.Context, s storageChoice) (lodelibrary.Dataset, error) {
	switch s.backend {
	case "fs":
		return lode.NewReadDatasetFS(s.dataset, s.path)
	case "s3":
		return lode.NewReadDatasetS3(ctx, s.dataset, s.s3Config())
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (must be fs or s3)", s.backend)
	}
}

// openReader resolves storage from flags and config and opens a reader.
func openReader(c *cli.Context) (reader.Reader, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	storage := resolveStorage(c, cfg.Storage)
	if !storage.enabled() {
		return nil, errors.New("no storage configured: set --storage-path or storage.path in lintstream.yaml")
	}
	ds, err := buildReadDataset(c.Context, storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage reader: %w", err)
	}
	return reader.NewLodeReader(ds), nil
}

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
