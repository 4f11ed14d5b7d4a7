// Package config loads the application configuration from a YAML file or
// the environment.
package config

import (
	"slices"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"

	"github.com/apivet/apivet/internal/notes"
	"github.com/apivet/apivet/internal/provider"
	"github.com/apivet/apivet/internal/server"
	"github.com/apivet/apivet/model"
)

var supportedFormats = []string{"text", "markdown", "md", "json"}

// DiffConfig tunes the differ. The skip flags are inverted so the zero
// value keeps every feature on.
type DiffConfig struct {
	RenameThreshold      float64 `yaml:"rename_threshold" env:"DIFF_RENAME_THRESHOLD"`
	MaxNestingDepth      int     `yaml:"max_nesting_depth" env:"DIFF_MAX_NESTING_DEPTH"`
	SkipNestedChanges    bool    `yaml:"skip_nested_changes" env:"DIFF_SKIP_NESTED_CHANGES"`
	SkipTypeResolution   bool    `yaml:"skip_type_resolution" env:"DIFF_SKIP_TYPE_RESOLUTION"`
	SkipReorderDetection bool    `yaml:"skip_reorder_detection" env:"DIFF_SKIP_REORDER_DETECTION"`
}

// ParseConfig tunes the front end.
type ParseConfig struct {
	SkipDocMetadata bool `yaml:"skip_doc_metadata" env:"PARSE_SKIP_DOC_METADATA"`
}

// Config represents the main application configuration.
type Config struct {
	Policy string `yaml:"policy" env:"APIVET_POLICY"`
	Format string `yaml:"format" env:"APIVET_FORMAT"`
	// FailOn raises the exit-code gate: a verdict less severe than this
	// exits 0; any other verdict keeps its normal exit code.
	FailOn string `yaml:"fail_on" env:"APIVET_FAIL_ON"`

	Diff  DiffConfig  `yaml:"diff"`
	Parse ParseConfig `yaml:"parse"`

	Provider provider.Config `yaml:"provider"`
	Server   server.Config   `yaml:"server"`
	Notes    notes.Config    `yaml:"notes"`

	// Policies are custom policies compiled into the registry next to the
	// built-ins, addressable by bare name.
	Policies []model.PolicySpec `yaml:"policies"`
}

// Load reads the configuration from a file, or from the environment when
// no path is given.
func Load(path string) (Config, error) {
	cfg := Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, errm.Wrap(err, "failed to load config from env")
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, errm.Wrap(err, "failed to load config")
	}

	if err := cfg.PrepareAndValidate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) PrepareAndValidate() error {
	c.Policy = lang.Check(c.Policy, "semver-default")
	c.Format = lang.Check(c.Format, "text")
	c.Diff.RenameThreshold = lang.Check(c.Diff.RenameThreshold, 0.8)
	c.Diff.MaxNestingDepth = lang.Check(c.Diff.MaxNestingDepth, 10)

	if !slices.Contains(supportedFormats, c.Format) {
		return errm.New("invalid report format: %s", c.Format)
	}
	if c.FailOn != "" && !model.ReleaseType(c.FailOn).IsValid() {
		return errm.New("invalid fail_on release type: %s", c.FailOn)
	}

	if err := c.Provider.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "provider config")
	}
	if err := c.Server.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "server config")
	}
	return nil
}
