package instacrawl

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL = "https://www.instagram.com"
	apiVersion     = "api/v1"

	jsonContentType       = "application/json; charset=utf-8"
	javascriptContentType = "text/javascript; charset=utf-8"
)

// Config carries the parts of Instagram's internal protocol that rot across
// platform releases. Document ids and the app version token are known to
// change without notice; treat the defaults as a snapshot, not as constants.
type Config struct {
	// BaseURL is the Instagram web origin. Overridable for tests.
	BaseURL string `yaml:"base_url"`

	// AppVersionToken is the "av" form field the web client sends with every
	// GraphQL call. Rots across releases.
	AppVersionToken string `yaml:"app_version_token"`

	// FollowingHashtagsDocID selects the GraphQL query template for the
	// hashtags a user follows. Rots across releases.
	FollowingHashtagsDocID string `yaml:"following_hashtags_doc_id"`

	// WaitTimeout bounds how long a collection step waits for the response
	// of a triggered request to show up in the capture buffer.
	WaitTimeout time.Duration `yaml:"wait_timeout"`

	// PollInterval is the capture-buffer polling cadence within WaitTimeout.
	PollInterval time.Duration `yaml:"poll_interval"`

	// ElementTimeout bounds waits for UI elements to appear.
	ElementTimeout time.Duration `yaml:"element_timeout"`
}

// DefaultConfig returns a config with the current protocol snapshot.
func DefaultConfig() Config {
	return Config{
		BaseURL:                defaultBaseURL,
		AppVersionToken:        "17841461911219001",
		FollowingHashtagsDocID: "17901966028246171",
		WaitTimeout:            20 * time.Second,
		PollInterval:           250 * time.Millisecond,
		ElementTimeout:         10 * time.Second,
	}
}

// LoadConfig reads a YAML config file and applies environment overrides on
// top of the defaults. A missing file is not an error — env vars alone are a
// valid way to refresh rotted tokens.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".instacrawl.env"))

	if v := os.Getenv("INSTACRAWL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("INSTACRAWL_APP_VERSION_TOKEN"); v != "" {
		cfg.AppVersionToken = v
	}
	if v := os.Getenv("INSTACRAWL_FOLLOWING_HASHTAGS_DOC_ID"); v != "" {
		cfg.FollowingHashtagsDocID = v
	}
	if v := os.Getenv("INSTACRAWL_WAIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parse INSTACRAWL_WAIT_TIMEOUT: %w", err)
		}
		cfg.WaitTimeout = d
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 20 * time.Second
	}
	if cfg.ElementTimeout <= 0 {
		cfg.ElementTimeout = 10 * time.Second
	}
	return cfg, nil
}
