// Package config resolves autocrop settings from flags, environment variables
// and an optional YAML job file.
//
// Precedence follows viper: explicit flags, then AUTOCROP_* environment
// variables, then the job file, then built-in defaults. Per-job fields in the
// job file override the resolved defaults for that job only.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ironsheep/autocrop/internal/batch"
	"github.com/ironsheep/autocrop/internal/imaging"
)

// EnvPrefix is prepended to every environment variable, e.g. AUTOCROP_PADDING.
const EnvPrefix = "AUTOCROP"

// Setting keys. Flags, environment variables and job file keys share them.
const (
	KeyConfig         = "config"
	KeyOutput         = "output"
	KeySuffix         = "suffix"
	KeyThreshold      = "threshold"
	KeyPadding        = "padding"
	KeyFlatten        = "flatten"
	KeyMode           = "mode"
	KeyMetric         = "metric"
	KeyCorner         = "corner"
	KeyBackground     = "background"
	KeyAlphaThreshold = "alpha-threshold"
	KeyWorkers        = "workers"
	KeyDryRun         = "dry-run"
	KeyLogLevel       = "log-level"
	KeyJobs           = "jobs"
)

// Config is the resolved configuration for one autocrop invocation.
type Config struct {
	// Defaults are the options applied to jobs that do not override them.
	Defaults imaging.Options

	Jobs []batch.Job

	// Single is true when exactly one image was named on the command line
	// and no job file was used. A single image with no content is a failure.
	Single bool

	Workers  int
	DryRun   bool
	LogLevel string
}

// RegisterFlags adds the autocrop flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := imaging.DefaultOptions()
	fs.String(KeyConfig, "", "YAML job file")
	fs.StringP(KeyOutput, "o", "", "output path (single input only; default: overwrite input)")
	fs.String(KeySuffix, "", "write <name><suffix>.<ext> next to each input instead of overwriting")
	fs.Int(KeyThreshold, d.Threshold, "color distance above which a pixel is content")
	fs.Int(KeyPadding, d.Padding, "pixels of padding around the content box")
	fs.Bool(KeyFlatten, d.Flatten, "make near-background pixels transparent")
	fs.String(KeyMode, string(d.Mode), "content detection: color or alpha (alpha keeps --padding; use --padding 0 for an exact alpha bounding box)")
	fs.String(KeyMetric, string(d.Metric), "color distance: rgb or lab")
	fs.String(KeyCorner, string(d.Corner), "corner sampled for the background color")
	fs.String(KeyBackground, "", "explicit background color (#RRGGBB), overrides --corner")
	fs.Int(KeyAlphaThreshold, 0, "alpha above which a pixel is content in alpha mode")
	fs.Int(KeyWorkers, 1, "images processed concurrently")
	fs.Bool(KeyDryRun, false, "report boxes without writing files")
	fs.String(KeyLogLevel, "info", "log level: debug, info, warn, error")
}

// New returns a viper instance with defaults, environment binding and the
// flags of fs bound.
func New(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	d := imaging.DefaultOptions()
	v.SetDefault(KeyThreshold, d.Threshold)
	v.SetDefault(KeyPadding, d.Padding)
	v.SetDefault(KeyFlatten, d.Flatten)
	v.SetDefault(KeyMode, string(d.Mode))
	v.SetDefault(KeyMetric, string(d.Metric))
	v.SetDefault(KeyCorner, string(d.Corner))
	v.SetDefault(KeyAlphaThreshold, 0)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return v, nil
}

// Load resolves the configuration for the positional image paths in args.
func Load(v *viper.Viper, args []string) (*Config, error) {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	defaults, err := optionsFrom(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Defaults: defaults,
		Workers:  v.GetInt(KeyWorkers),
		DryRun:   v.GetBool(KeyDryRun),
		LogLevel: v.GetString(KeyLogLevel),
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be >= 1, got %d", cfg.Workers)
	}

	fileJobs, err := jobsFrom(v, defaults)
	if err != nil {
		return nil, err
	}

	output := v.GetString(KeyOutput)
	suffix := v.GetString(KeySuffix)
	if output != "" && len(args) != 1 {
		return nil, fmt.Errorf("--%s needs exactly one input, got %d", KeyOutput, len(args))
	}

	for _, in := range args {
		out := output
		if out == "" {
			out = batch.WithSuffix(in, suffix)
		}
		cfg.Jobs = append(cfg.Jobs, batch.Job{Input: in, Output: out, Options: defaults})
	}
	cfg.Single = len(args) == 1 && len(fileJobs) == 0
	cfg.Jobs = append(cfg.Jobs, fileJobs...)

	if len(cfg.Jobs) == 0 {
		return nil, fmt.Errorf("no images given: pass paths or a --%s job file", KeyConfig)
	}
	return cfg, nil
}

// optionsFrom reads crop options from the top level of v.
func optionsFrom(v *viper.Viper) (imaging.Options, error) {
	o := imaging.Options{
		Threshold: v.GetInt(KeyThreshold),
		Padding:   v.GetInt(KeyPadding),
		Flatten:   v.GetBool(KeyFlatten),
		Mode:      imaging.Mode(v.GetString(KeyMode)),
		Metric:    imaging.Metric(v.GetString(KeyMetric)),
		Corner:    imaging.Corner(v.GetString(KeyCorner)),
	}

	at := v.GetInt(KeyAlphaThreshold)
	if at < 0 || at > 255 {
		return o, fmt.Errorf("alpha-threshold must be 0-255, got %d", at)
	}
	o.AlphaThreshold = uint8(at)

	if hex := v.GetString(KeyBackground); hex != "" {
		bg, err := imaging.ParseHexColor(hex)
		if err != nil {
			return o, fmt.Errorf("invalid background: %w", err)
		}
		o.Background = &bg
	}

	if err := o.Validate(); err != nil {
		return o, fmt.Errorf("invalid options: %w", err)
	}
	return o, nil
}

// jobSpec is one entry of the job file's jobs list. Nil fields inherit.
type jobSpec struct {
	Input          string  `mapstructure:"input"`
	Output         string  `mapstructure:"output"`
	Threshold      *int    `mapstructure:"threshold"`
	Padding        *int    `mapstructure:"padding"`
	Flatten        *bool   `mapstructure:"flatten"`
	Mode           *string `mapstructure:"mode"`
	Metric         *string `mapstructure:"metric"`
	Corner         *string `mapstructure:"corner"`
	Background     *string `mapstructure:"background"`
	AlphaThreshold *int    `mapstructure:"alpha-threshold"`
}

func jobsFrom(v *viper.Viper, defaults imaging.Options) ([]batch.Job, error) {
	var specs []jobSpec
	if err := v.UnmarshalKey(KeyJobs, &specs); err != nil {
		return nil, fmt.Errorf("invalid jobs: %w", err)
	}

	suffix := v.GetString(KeySuffix)
	jobs := make([]batch.Job, 0, len(specs))
	for i, s := range specs {
		if s.Input == "" {
			return nil, fmt.Errorf("job %d: input is required", i+1)
		}
		o, err := s.apply(defaults)
		if err != nil {
			return nil, fmt.Errorf("job %d (%s): %w", i+1, s.Input, err)
		}
		out := s.Output
		if out == "" {
			out = batch.WithSuffix(s.Input, suffix)
		}
		jobs = append(jobs, batch.Job{Input: s.Input, Output: out, Options: o})
	}
	return jobs, nil
}

func (s jobSpec) apply(o imaging.Options) (imaging.Options, error) {
	if s.Threshold != nil {
		o.Threshold = *s.Threshold
	}
	if s.Padding != nil {
		o.Padding = *s.Padding
	}
	if s.Flatten != nil {
		o.Flatten = *s.Flatten
	}
	if s.Mode != nil {
		o.Mode = imaging.Mode(*s.Mode)
	}
	if s.Metric != nil {
		o.Metric = imaging.Metric(*s.Metric)
	}
	if s.Corner != nil {
		o.Corner = imaging.Corner(*s.Corner)
	}
	if s.Background != nil {
		bg, err := imaging.ParseHexColor(*s.Background)
		if err != nil {
			return o, fmt.Errorf("invalid background: %w", err)
		}
		o.Background = &bg
	}
	if s.AlphaThreshold != nil {
		if *s.AlphaThreshold < 0 || *s.AlphaThreshold > 255 {
			return o, fmt.Errorf("alpha-threshold must be 0-255, got %d", *s.AlphaThreshold)
		}
		o.AlphaThreshold = uint8(*s.AlphaThreshold)
	}
	return o, o.Validate()
}
