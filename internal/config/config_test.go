package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/monosync/internal/core/syncerr"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadOptions{
		TopLevel: t.TempDir(),
		UserFile: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_Layering(t *testing.T) {
	userDir := t.TempDir()
	userFile := filepath.Join(userDir, "config.yaml")
	writeFile(t, userFile, "remote: upstream\nmain_branch: trunk\nautomation: true\n")

	top := t.TempDir()
	writeFile(t, filepath.Join(top, RepoConfigFile), "main_branch: master\ntarget: svn\n")

	cfg, err := Load(LoadOptions{TopLevel: top, UserFile: userFile})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Remote != "upstream" {
		t.Errorf("Remote = %q, want user value upstream", cfg.Remote)
	}
	if cfg.MainBranch != "master" {
		t.Errorf("MainBranch = %q, want repository value master", cfg.MainBranch)
	}
	if !cfg.Automation {
		t.Error("Automation should come from the user file")
	}
	if cfg.Target != TargetSVN {
		t.Errorf("Target = %q, want svn", cfg.Target)
	}
	if cfg.MirrorBranch != "monosync/mirror" {
		t.Errorf("MirrorBranch = %q, want default", cfg.MirrorBranch)
	}
}

func TestLoad_Malformed(t *testing.T) {
	top := t.TempDir()
	writeFile(t, filepath.Join(top, RepoConfigFile), "remote: [unterminated\n")

	_, err := Load(LoadOptions{TopLevel: top, UserFile: filepath.Join(t.TempDir(), "none.yaml")})
	if err == nil {
		t.Fatal("expected error for malformed file")
	}
	if !syncerr.Is(err, syncerr.Configuration) {
		t.Errorf("kind = %v, want configuration", syncerr.KindOf(err))
	}
}

func TestResolved_TrackingRef(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		ref    string
		want   string
	}{
		{"p4 default", TargetP4, "", "refs/remotes/p4/master"},
		{"svn default", TargetSVN, "", "refs/remotes/git-svn"},
		{"explicit ref kept", TargetP4, "refs/remotes/p4/dev", "refs/remotes/p4/dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Target = tt.target
			cfg.TrackingRef = tt.ref
			if got := cfg.Resolved().TrackingRef; got != tt.want {
				t.Errorf("TrackingRef = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown target", func(c *Config) { c.Target = "cvs" }, true},
		{"empty remote", func(c *Config) { c.Remote = "" }, true},
		{"export equals main", func(c *Config) { c.ExportBranch = c.MainBranch }, true},
		{"mirror equals main", func(c *Config) { c.MirrorBranch = c.MainBranch }, true},
		{"verbose and quiet", func(c *Config) { c.Verbose = true; c.Quiet = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Resolved().Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !syncerr.Is(err, syncerr.Configuration) {
				t.Errorf("kind = %v, want configuration", syncerr.KindOf(err))
			}
		})
	}
}

func TestRefs(t *testing.T) {
	cfg := Default()
	if got := cfg.RemoteMainRef(); got != "refs/remotes/origin/main" {
		t.Errorf("RemoteMainRef() = %q", got)
	}
	if got := cfg.RemoteMarkerRef(); got != "refs/remotes/origin/monosync/exported" {
		t.Errorf("RemoteMarkerRef() = %q", got)
	}
	if got := cfg.MarkerRef(); got != "refs/heads/monosync/exported" {
		t.Errorf("MarkerRef() = %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	top := t.TempDir()
	cfg := Default()
	cfg.Remote = "upstream"
	cfg.Simulate = true

	if err := Save(top, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(LoadOptions{TopLevel: top, UserFile: filepath.Join(t.TempDir(), "none.yaml")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Remote != "upstream" {
		t.Errorf("Remote = %q, want upstream", loaded.Remote)
	}
	if loaded.Simulate {
		t.Error("Simulate is command-line only and must not be persisted")
	}
}
