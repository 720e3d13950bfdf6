package instacrawl

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	if cfg.BaseURL != "https://www.instagram.com" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.AppVersionToken == "" || cfg.FollowingHashtagsDocID == "" {
		t.Error("protocol tokens must have defaults")
	}
	if cfg.WaitTimeout <= 0 || cfg.PollInterval <= 0 || cfg.ElementTimeout <= 0 {
		t.Errorf("timing defaults must be positive: %+v", cfg)
	}
}

func TestLoadConfigMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file is not an error: %v", err)
	}
	if cfg.BaseURL != DefaultConfig().BaseURL {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "base_url: https://ig.example.test\napp_version_token: \"42\"\nwait_timeout: 3s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "https://ig.example.test" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.AppVersionToken != "42" {
		t.Errorf("app version token = %q", cfg.AppVersionToken)
	}
	if cfg.WaitTimeout != 3*time.Second {
		t.Errorf("wait timeout = %v", cfg.WaitTimeout)
	}
	// Unset fields fall back to defaults.
	if cfg.FollowingHashtagsDocID != DefaultConfig().FollowingHashtagsDocID {
		t.Errorf("doc id = %q", cfg.FollowingHashtagsDocID)
	}
	if cfg.PollInterval != DefaultConfig().PollInterval {
		t.Errorf("poll interval = %v", cfg.PollInterval)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app_version_token: \"from-file\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INSTACRAWL_APP_VERSION_TOKEN", "from-env")
	t.Setenv("INSTACRAWL_WAIT_TIMEOUT", "7s")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppVersionToken != "from-env" {
		t.Errorf("env must win over file, got %q", cfg.AppVersionToken)
	}
	if cfg.WaitTimeout != 7*time.Second {
		t.Errorf("wait timeout = %v", cfg.WaitTimeout)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("INSTACRAWL_WAIT_TIMEOUT", "soon")
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected an error for an unparsable duration")
	}
}
