package config

const (
	defaultInputDir  = "~/.local/share/snakewatch/input"
	defaultOutputDir = "~/.local/share/snakewatch/output"
	defaultLogDir    = "~/.local/share/snakewatch/logs"
	defaultStateDir  = "~/.local/share/snakewatch/state"

	defaultStaffFile = "~/.config/snakewatch/staff_names.txt"

	defaultTargetNew               = 5000
	defaultMaxRounds               = 6000
	defaultStallLimit              = 8
	defaultPauseSeconds            = 1.0
	defaultIdleLimitSeconds        = 18.0
	defaultPollIntervalMS          = 500
	defaultNudgeTries              = 16
	defaultNudgePauseMS            = 600
	defaultPruneKeepLast           = 160
	defaultMaxArticlesBeforeReload = 900
	defaultReloadEveryRounds       = 1000
	defaultSessionRetries          = 3
	defaultSessionRetryBackoff     = 2

	defaultCollaboratorTimeout = 600
	defaultWorkflowDelay       = 2.0

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Group: Group{
			UseMobile:     true,
			Chronological: true,
			StaffFile:     defaultStaffFile,
		},
		Crawler: Crawler{
			DriverCommand:              []string{"python3", "feed_driver.py"},
			TargetNew:                  defaultTargetNew,
			MaxRounds:                  defaultMaxRounds,
			StallLimit:                 defaultStallLimit,
			PauseSeconds:               defaultPauseSeconds,
			IdleLimitSeconds:           defaultIdleLimitSeconds,
			PollIntervalMS:             defaultPollIntervalMS,
			NudgeTries:                 defaultNudgeTries,
			NudgePauseMS:               defaultNudgePauseMS,
			PruneKeepLast:              defaultPruneKeepLast,
			MaxArticlesBeforeReload:    defaultMaxArticlesBeforeReload,
			ReloadEveryRounds:          defaultReloadEveryRounds,
			SessionRetries:             defaultSessionRetries,
			SessionRetryBackoffSeconds: defaultSessionRetryBackoff,
		},
		Collaborators: Collaborators{
			CommentsCommand: []string{"python3", "post_comments.py"},
			DetailsCommand:  []string{"python3", "post_details.py"},
			TimeoutSeconds:  defaultCollaboratorTimeout,
		},
		Workflow: Workflow{
			DelaySeconds: defaultWorkflowDelay,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
