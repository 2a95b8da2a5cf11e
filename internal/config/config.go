package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration. InputDir holds the pending
// work-list, OutputDir the outcome ledgers, LogDir the run log and process
// logs, StateDir the done list, seen-set database, and lock file.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Group describes the monitored group feed.
type Group struct {
	URL           string `toml:"url"`
	UseMobile     bool   `toml:"use_mobile"`
	Chronological bool   `toml:"chronological"`
	StaffFile     string `toml:"staff_file"`
}

// Targets configures the species patterns. Empty means the built-in lists.
type Targets struct {
	Patterns []string `toml:"patterns"`
}

// Crawler contains the convergence knobs and the feed driver command.
type Crawler struct {
	DriverCommand []string `toml:"driver_command"`

	TargetNew    int `toml:"target_new"`
	WarmupRounds int `toml:"warmup_rounds"`
	MaxRounds    int `toml:"max_rounds"`
	StallLimit   int `toml:"stall_limit"`

	PauseSeconds     float64 `toml:"pause_seconds"`
	IdleLimitSeconds float64 `toml:"idle_limit_seconds"`
	PollIntervalMS   int     `toml:"poll_interval_ms"`
	NudgeTries       int     `toml:"nudge_tries"`
	NudgePauseMS     int     `toml:"nudge_pause_ms"`

	PruneKeepLast           int `toml:"prune_keep_last"`
	MaxArticlesBeforeReload int `toml:"max_articles_before_reload"`
	ReloadEveryRounds       int `toml:"reload_every_rounds"`

	SessionRetries             int `toml:"session_retries"`
	SessionRetryBackoffSeconds int `toml:"session_retry_backoff_seconds"`
}

// Collaborators configures the external fetch commands.
type Collaborators struct {
	CommentsCommand []string `toml:"comments_command"`
	DetailsCommand  []string `toml:"details_command"`
	TimeoutSeconds  int      `toml:"timeout_seconds"`
}

// Workflow contains orchestrator timing.
type Workflow struct {
	DelaySeconds float64 `toml:"delay_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Group         Group         `toml:"group"`
	Targets       Targets       `toml:"targets"`
	Crawler       Crawler       `toml:"crawler"`
	Collaborators Collaborators `toml:"collaborators"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/snakewatch/config.toml")
}

// Load locates, parses, and validates a configuration file. Returns the
// config, the resolved path, and whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("snakewatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// normalize expands every path field.
func (c *Config) normalize() error {
	fields := []*string{
		&c.Paths.InputDir, &c.Paths.OutputDir, &c.Paths.LogDir, &c.Paths.StateDir,
		&c.Group.StaffFile,
	}
	for _, field := range fields {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

// EnsureDirectories creates the directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InputDir, c.Paths.OutputDir, c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the pending work-list lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "pending.lock")
}

// SeenDBPath is the crawler's persisted seen-set database.
func (c *Config) SeenDBPath() string {
	return filepath.Join(c.Paths.StateDir, "seen_urls.db")
}

// CollaboratorTimeout returns the per-invocation bound for fetch commands.
func (c *Config) CollaboratorTimeout() time.Duration {
	return time.Duration(c.Collaborators.TimeoutSeconds) * time.Second
}

// WorkflowDelay returns the pause between processed candidates.
func (c *Config) WorkflowDelay() time.Duration {
	return time.Duration(c.Workflow.DelaySeconds * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
