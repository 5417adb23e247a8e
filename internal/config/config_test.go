// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/bakebuild/bake/internal/issue"
	"github.com/bakebuild/bake/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Bakefile != "Bakefile" {
		t.Errorf("expected default bakefile to be Bakefile, got %q", cfg.Bakefile)
	}
	if cfg.Runtime != RuntimeNative {
		t.Errorf("expected default runtime to be native, got %s", cfg.Runtime)
	}
	if cfg.Execution.Once {
		t.Error("expected once to be false by default")
	}
	if cfg.Include.Timeout != 0 {
		t.Errorf("expected no include timeout by default, got %s", cfg.Include.Timeout)
	}
	if cfg.Include.UserAgent != AppName {
		t.Errorf("expected user agent %q, got %q", AppName, cfg.Include.UserAgent)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected default color scheme to be auto, got %s", cfg.UI.ColorScheme)
	}
	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config should be valid, got %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup only applies on Linux")
	}

	testXDGPath := filepath.Join(t.TempDir(), "xdg")
	restoreXDG := testutil.MustSetenv(t, "XDG_CONFIG_HOME", testXDGPath)
	defer restoreXDG()

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if expected := filepath.Join(testXDGPath, AppName); dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}

	restoreXDG()
	defer testutil.MustUnsetenv(t, "XDG_CONFIG_HOME")()
	home := t.TempDir()
	defer testutil.SetHomeDir(t, home)()

	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if expected := filepath.Join(home, ".config", AppName); dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %s, want %s", got, dir)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir, BaseDir: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != "" {
		t.Errorf("expected no resolved path, got %q", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("cfg differs from defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_ConfigDirFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "config.cue", `
runtime: "virtual"
execution: once: true
include: {
	timeout:    "2s"
	user_agent: "bake-test"
}
ui: verbose: true
`)

	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir, BaseDir: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Runtime != RuntimeVirtual {
		t.Errorf("runtime = %s, want virtual", cfg.Runtime)
	}
	if !cfg.Execution.Once {
		t.Error("expected once = true")
	}
	if cfg.Include.Timeout != 2*time.Second {
		t.Errorf("timeout = %s, want 2s", cfg.Include.Timeout)
	}
	if cfg.Include.UserAgent != "bake-test" {
		t.Errorf("user agent = %q", cfg.Include.UserAgent)
	}
	if !cfg.UI.Verbose {
		t.Error("expected verbose = true")
	}
	// Unset keys keep their defaults.
	if cfg.Bakefile != "Bakefile" {
		t.Errorf("bakefile = %q, want default", cfg.Bakefile)
	}
}

func TestLoad_LocalFileFallback(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	base := t.TempDir()
	path := testutil.MustWriteFile(t, base, LocalConfigFileName, `bakefile: "build.bake"`+"\n")

	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: cfgDir, BaseDir: base})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Bakefile != "build.bake" {
		t.Errorf("bakefile = %q, want build.bake", cfg.Bakefile)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown runtime", `runtime: "container"`, "runtime"},
		{"wrong type", `ui: verbose: "yes"`, "verbose"},
		{"unknown field", `jobs: 4`, "jobs"},
		{"bad duration", `include: timeout: "soon"`, "timeout"},
		{"bad debounce", `watch: debounce: "later"`, "debounce"},
		{"bad ignore", `watch: ignore: "out"`, "ignore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := testutil.MustWriteFile(t, dir, "custom.cue", tt.content+"\n")

			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("expected schema error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T", err)
			}
			if ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("issue = %v, want ConfigLoadFailedId", ae.Issue)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "config.cue", `runtime: "virtual"`+"\n")

	defer testutil.MustSetenv(t, "BAKE_RUNTIME", "native")()
	defer testutil.MustSetenv(t, "BAKE_EXECUTION_ONCE", "true")()
	defer testutil.MustSetenv(t, "BAKE_INCLUDE_TIMEOUT", "750ms")()

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir, BaseDir: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Runtime != RuntimeNative {
		t.Errorf("runtime = %s, env should win over file", cfg.Runtime)
	}
	if !cfg.Execution.Once {
		t.Error("expected once from env")
	}
	if cfg.Include.Timeout != 750*time.Millisecond {
		t.Errorf("timeout = %s, want 750ms", cfg.Include.Timeout)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	dir := t.TempDir()
	defer testutil.MustSetenv(t, "BAKE_RUNTIME", "container")()

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir, BaseDir: dir})
	if !errors.Is(err, ErrInvalidConfigRuntimeMode) {
		t.Fatalf("expected ErrInvalidConfigRuntimeMode, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := loadWithOptions(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_RoundTrips(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Runtime = RuntimeVirtual
	want.Include.Timeout = 3 * time.Second
	want.Watch.Debounce = 2 * time.Second
	want.Watch.Ignore = []string{"out/**", "**/*.o"}
	want.UI.ColorScheme = ColorSchemeDark

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "gen.cue", GenerateCUE(want))

	got, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated CUE does not load: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bake")
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	// A second call leaves the existing file alone.
	if err := os.WriteFile(path, []byte(`runtime: "virtual"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "virtual") {
		t.Errorf("existing config was overwritten: %s", data)
	}
}

func TestProvider_Path(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewProvider()

	path, err := p.Path(LoadOptions{ConfigDirPath: dir, BaseDir: dir})
	if err != nil || path != "" {
		t.Fatalf("Path() = %q, %v; want empty", path, err)
	}

	want := testutil.MustWriteFile(t, dir, "config.cue", "\n")
	path, err = p.Path(LoadOptions{ConfigDirPath: dir, BaseDir: dir})
	if err != nil || path != want {
		t.Fatalf("Path() = %q, %v; want %q", path, err, want)
	}
}
