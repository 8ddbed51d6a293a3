// Package config builds the immutable configuration of a sync run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/example/monosync/internal/core/syncerr"
)

// Target selects the bridge to the target system.
type Target string

const (
	TargetP4  Target = "p4"
	TargetSVN Target = "svn"
)

// RepoConfigFile is the repository-level config file, relative to the top level.
const RepoConfigFile = ".monosync.yaml"

// userConfigRelPath is looked up under the XDG config directories.
const userConfigRelPath = "monosync/config.yaml"

// Config is the configuration of one invocation. It is built once and passed by
// value; nothing below the CLI reads flags or files on its own.
type Config struct {
	Remote       string `yaml:"remote"`
	MainBranch   string `yaml:"main_branch"`
	MarkerBranch string `yaml:"marker_branch"`
	TrackingRef  string `yaml:"tracking_ref"`
	MirrorBranch string `yaml:"mirror_branch"`
	ExportBranch string `yaml:"export_branch"`
	Target       Target `yaml:"target"`
	Automation   bool   `yaml:"automation"`
	PushMain     bool   `yaml:"push_main"`

	// Command-line only.
	Simulate bool `yaml:"-"`
	Verbose  bool `yaml:"-"`
	Quiet    bool `yaml:"-"`
	Debug    bool `yaml:"-"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Remote:       "origin",
		MainBranch:   "main",
		MarkerBranch: "monosync/exported",
		MirrorBranch: "monosync/mirror",
		ExportBranch: "monosync/export",
		Target:       TargetP4,
	}
}

// DefaultTrackingRef returns where the bridge keeps the target system's state.
func DefaultTrackingRef(t Target) string {
	if t == TargetSVN {
		return "refs/remotes/git-svn"
	}
	return "refs/remotes/p4/master"
}

// LoadOptions controls where Load looks for config files.
type LoadOptions struct {
	// TopLevel is the repository top level; empty skips the repository file.
	TopLevel string
	// UserFile overrides the XDG lookup of the user file.
	UserFile string
}

// Load layers defaults, the user file and the repository file.
// Missing files are not an error; unreadable or malformed ones are.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	userFile := opts.UserFile
	if userFile == "" {
		if path, err := xdg.SearchConfigFile(userConfigRelPath); err == nil {
			userFile = path
		}
	}
	if userFile != "" {
		if err := overlay(&cfg, userFile); err != nil {
			return Config{}, err
		}
	}

	if opts.TopLevel != "" {
		if err := overlay(&cfg, filepath.Join(opts.TopLevel, RepoConfigFile)); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func overlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return syncerr.E("config.load", syncerr.Configuration, fmt.Errorf("failed to read %s: %w", path, err))
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return syncerr.E("config.load", syncerr.Configuration, fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return nil
}

// Resolved fills values that depend on other values.
func (c Config) Resolved() Config {
	if c.TrackingRef == "" {
		c.TrackingRef = DefaultTrackingRef(c.Target)
	}
	return c
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	const op syncerr.Op = "config.validate"
	if c.Target != TargetP4 && c.Target != TargetSVN {
		return syncerr.E(op, syncerr.Configuration, fmt.Errorf("unknown target %q (want p4 or svn)", c.Target))
	}
	named := []struct{ name, value string }{
		{"remote", c.Remote},
		{"main branch", c.MainBranch},
		{"marker branch", c.MarkerBranch},
		{"tracking ref", c.TrackingRef},
		{"mirror branch", c.MirrorBranch},
		{"export branch", c.ExportBranch},
	}
	for _, n := range named {
		if n.value == "" {
			return syncerr.E(op, syncerr.Configuration, fmt.Errorf("%s must not be empty", n.name))
		}
	}
	if c.ExportBranch == c.MainBranch || c.ExportBranch == c.MirrorBranch {
		return syncerr.E(op, syncerr.Configuration, fmt.Errorf("export branch %q must differ from the main and mirror branches", c.ExportBranch))
	}
	if c.MirrorBranch == c.MainBranch {
		return syncerr.E(op, syncerr.Configuration, fmt.Errorf("mirror branch %q must differ from the main branch", c.MirrorBranch))
	}
	if c.Verbose && c.Quiet {
		return syncerr.E(op, syncerr.Configuration, errors.New("--verbose and --quiet are mutually exclusive"))
	}
	return nil
}

// RemoteMainRef is the published monorepo tip.
func (c Config) RemoteMainRef() string {
	return "refs/remotes/" + c.Remote + "/" + c.MainBranch
}

// RemoteMarkerRef is the local remote-tracking copy of the marker.
func (c Config) RemoteMarkerRef() string {
	return "refs/remotes/" + c.Remote + "/" + c.MarkerBranch
}

// MarkerRef is the ref the marker is published under on the remote.
func (c Config) MarkerRef() string {
	return "refs/heads/" + c.MarkerBranch
}

// BranchRef returns the full ref of a local branch.
func BranchRef(branch string) string {
	return "refs/heads/" + branch
}

// Save writes the repository-level config file.
func Save(topLevel string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(topLevel, RepoConfigFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
