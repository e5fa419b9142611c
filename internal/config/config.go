// Package config builds the validated Config the CLI front-end runs with:
// a single Load() entrypoint that returns a validated struct and aborts
// the process with one diagnostic line on a bad value. Flags, not
// environment variables, are the CLI surface here.
package config

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
)

// Config is the fully validated set of parameters the pipeline runs with.
type Config struct {
	TimeUnitsSec int     // --time-units, 1..60
	MaxDistanceM float64 // --max-distance, 1.0..5.0 metres

	StreamPath   string // --stream, required
	MetadataPath string // --metadata, required
	OutputPath   string // --output, "" means stdout

	Threads   int // --threads, 0 means GOMAXPROCS
	BatchSize int // --batch-size, default 1500

	MetacachePath string // --metacache, "" disables the SQLite registry cache
	BroadcastAddr string // --broadcast, "" disables the websocket fan-out
	NotifyURL     string // --notify, "" disables the webhook sink

	LogLevel string // --log-level
}

// argError is returned by Load on a bad flag value; the CLI exits 1 on it.
type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }

// Load parses args, applies any --defaults YAML overrides (see
// LoadDefaults), validates the result, and returns it. On error it prints
// one diagnostic line to stderr and calls os.Exit(1).
func Load(args []string) *Config {
	cfg, err := ParseForTest(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "possession: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// ParseForTest parses and validates args exactly as Load does, but returns
// the error instead of printing it and calling os.Exit(1). It exists so
// tests can drive bad and good fixtures through the real flag/validation
// path without killing the test binary.
func ParseForTest(args []string) (*Config, error) {
	return parse(args)
}

func parse(args []string) (*Config, error) {
	// Best-effort .env load into the process environment; a missing .env
	// is not an error. No flag takes its value from the environment.
	_ = godotenv.Load()

	var defaultsPath string
	fs := flag.NewFlagSet("possession", flag.ContinueOnError)

	timeUnits := fs.Int("time-units", 0, "period length in whole seconds (1..60, required)")
	maxDistance := fs.Float64("max-distance", 0, "maximum ball-to-player distance in metres (1.0..5.0, required)")
	stream := fs.String("stream", "", "path to the event stream file (required)")
	metadata := fs.String("metadata", "", "path to the metadata file (required)")
	output := fs.String("output", "", "path to write the rendered tables (default stdout)")
	threads := fs.Int("threads", 0, "worker count for per-batch sampling (0 = all cores)")
	batchSize := fs.Int("batch-size", 1500, "events per non-boundary batch")
	metacache := fs.String("metacache", "", "path to an optional SQLite metadata cache")
	broadcast := fs.String("broadcast", "", "listen address for an optional websocket partial feed")
	notify := fs.String("notify", "", "webhook URL notified on every period boundary")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")
	fs.StringVar(&defaultsPath, "defaults", "", "optional YAML file of flag defaults")

	if err := fs.Parse(args); err != nil {
		return nil, &argError{msg: err.Error()}
	}

	if defaultsPath != "" {
		d, err := LoadDefaults(defaultsPath)
		if err != nil {
			return nil, &argError{msg: err.Error()}
		}
		applyDefaults(fs, d, timeUnits, maxDistance, batchSize, threads)
	}

	cfg := &Config{
		TimeUnitsSec:  *timeUnits,
		MaxDistanceM:  *maxDistance,
		StreamPath:    *stream,
		MetadataPath:  *metadata,
		OutputPath:    *output,
		Threads:       *threads,
		BatchSize:     *batchSize,
		MetacachePath: *metacache,
		BroadcastAddr: *broadcast,
		NotifyURL:     *notify,
		LogLevel:      *logLevel,
	}
	if cfg.Threads == 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}
	return cfg, validate(cfg)
}

// applyDefaults fills any flag not set on the command line from a non-zero
// value in the YAML defaults file; a flag explicitly set on the command
// line always wins.
func applyDefaults(fs *flag.FlagSet, d *Defaults, timeUnits *int, maxDistance *float64, batchSize, threads *int) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["time-units"] && d.TimeUnitsSec != 0 {
		*timeUnits = d.TimeUnitsSec
	}
	if !set["max-distance"] && d.MaxDistanceM != 0 {
		*maxDistance = d.MaxDistanceM
	}
	if !set["batch-size"] && d.BatchSize != 0 {
		*batchSize = d.BatchSize
	}
	if !set["threads"] && d.Threads != 0 {
		*threads = d.Threads
	}
}

func validate(cfg *Config) error {
	if cfg.TimeUnitsSec < 1 || cfg.TimeUnitsSec > 60 {
		return &argError{msg: fmt.Sprintf("--time-units must be 1..60, got %d", cfg.TimeUnitsSec)}
	}
	if cfg.MaxDistanceM < 1.0 || cfg.MaxDistanceM > 5.0 {
		return &argError{msg: fmt.Sprintf("--max-distance must be 1.0..5.0, got %g", cfg.MaxDistanceM)}
	}
	if cfg.StreamPath == "" {
		return &argError{msg: "--stream is required"}
	}
	if cfg.MetadataPath == "" {
		return &argError{msg: "--metadata is required"}
	}
	if err := requireRegularFile(cfg.StreamPath); err != nil {
		return err
	}
	if err := requireRegularFile(cfg.MetadataPath); err != nil {
		return err
	}
	if cfg.Threads < 0 {
		return &argError{msg: fmt.Sprintf("--threads must be >= 0, got %d", cfg.Threads)}
	}
	if cfg.BatchSize < 1 {
		return &argError{msg: fmt.Sprintf("--batch-size must be positive, got %d", cfg.BatchSize)}
	}
	return nil
}

// requireRegularFile checks that path exists and is a regular file.
// Emptiness is a pipeline concern, not an argument error.
func requireRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &argError{msg: fmt.Sprintf("%s: %v", path, err)}
	}
	if !info.Mode().IsRegular() {
		return &argError{msg: fmt.Sprintf("%s: not a regular file", path)}
	}
	return nil
}
