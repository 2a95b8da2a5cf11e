package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGroup(); err != nil {
		return err
	}
	if err := c.validateTargets(); err != nil {
		return err
	}
	if err := c.validateCrawler(); err != nil {
		return err
	}
	if err := c.validateCollaborators(); err != nil {
		return err
	}
	if c.Workflow.DelaySeconds < 0 {
		return errors.New("workflow.delay_seconds must be >= 0")
	}
	return c.validateLogging()
}

func (c *Config) validateGroup() error {
	if strings.TrimSpace(c.Group.URL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/snakewatch/config.toml"
		}
		return fmt.Errorf("group.url is required. Edit %s (create with 'snakewatch config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateTargets() error {
	for _, expr := range c.Targets.Patterns {
		if _, err := regexp.Compile("(?i)" + expr); err != nil {
			return fmt.Errorf("targets.patterns entry %q does not compile: %w", expr, err)
		}
	}
	return nil
}

func (c *Config) validateCrawler() error {
	if len(c.Crawler.DriverCommand) == 0 || strings.TrimSpace(c.Crawler.DriverCommand[0]) == "" {
		return errors.New("crawler.driver_command must name an executable")
	}
	if err := ensurePositiveMap(map[string]int{
		"crawler.target_new":                 c.Crawler.TargetNew,
		"crawler.max_rounds":                 c.Crawler.MaxRounds,
		"crawler.stall_limit":                c.Crawler.StallLimit,
		"crawler.poll_interval_ms":           c.Crawler.PollIntervalMS,
		"crawler.nudge_tries":                c.Crawler.NudgeTries,
		"crawler.nudge_pause_ms":             c.Crawler.NudgePauseMS,
		"crawler.prune_keep_last":            c.Crawler.PruneKeepLast,
		"crawler.max_articles_before_reload": c.Crawler.MaxArticlesBeforeReload,
		"crawler.reload_every_rounds":        c.Crawler.ReloadEveryRounds,
		"crawler.session_retries":            c.Crawler.SessionRetries,
	}); err != nil {
		return err
	}
	if c.Crawler.PauseSeconds <= 0 {
		return errors.New("crawler.pause_seconds must be positive")
	}
	if c.Crawler.IdleLimitSeconds <= 0 {
		return errors.New("crawler.idle_limit_seconds must be positive")
	}
	if c.Crawler.WarmupRounds < 0 {
		return errors.New("crawler.warmup_rounds must be >= 0")
	}
	return nil
}

func (c *Config) validateCollaborators() error {
	if len(c.Collaborators.CommentsCommand) == 0 || strings.TrimSpace(c.Collaborators.CommentsCommand[0]) == "" {
		return errors.New("collaborators.comments_command must name an executable")
	}
	if len(c.Collaborators.DetailsCommand) == 0 || strings.TrimSpace(c.Collaborators.DetailsCommand[0]) == "" {
		return errors.New("collaborators.details_command must name an executable")
	}
	if c.Collaborators.TimeoutSeconds <= 0 {
		return errors.New("collaborators.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
