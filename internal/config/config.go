package config

import (
	"fmt"
	"time"
)

// Config is the full lawgiver configuration.
type Config struct {
	// DryRun suppresses every mutation: rules report skipped and
	// nothing is committed.
	DryRun bool `koanf:"dry_run"`
	// RuleCanAbort makes a failing rule abort the remaining rules of
	// its law. Default: continue.
	RuleCanAbort bool `koanf:"rule_can_abort"`

	Git    GitConfig    `koanf:"git"`
	GitHub GitHubConfig `koanf:"github"`
	Report ReportConfig `koanf:"report"`
	Log    LogConfig    `koanf:"log"`
	Slack  SlackConfig  `koanf:"slack"`
}

// GitConfig configures the working copy and the enforcement branch.
type GitConfig struct {
	// WorkingDir is the root of the checked-out repository the rules
	// mutate. Default: current directory.
	WorkingDir string `koanf:"working_dir"`
	// Branch is the enforcement branch commits land on.
	Branch string `koanf:"branch"`
	// BaseBranch is the branch pull requests target.
	BaseBranch string `koanf:"base_branch"`
	// Remote is the push target.
	Remote string `koanf:"remote"`

	AuthorName  string `koanf:"author_name"`
	AuthorEmail string `koanf:"author_email"`
}

// GitHubConfig configures pull request creation.
type GitHubConfig struct {
	// Owner and Repo identify the repository on GitHub. Both empty
	// disables pull requests; pushes still happen.
	Owner string `koanf:"owner"`
	Repo  string `koanf:"repo"`
	Token Secret `koanf:"token"`
}

// ReportConfig configures the JSON report artifact.
type ReportConfig struct {
	// Path is where the report is written. Empty disables reporting.
	Path string `koanf:"path"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SlackConfig configures change notifications.
type SlackConfig struct {
	// WebhookURL is the incoming webhook endpoint. Empty disables
	// notifications.
	WebhookURL Secret `koanf:"webhook_url"`
	// Repository is the human-readable repository name used in the
	// notification text.
	Repository string `koanf:"repository"`
	// Channel overrides the webhook's default channel.
	Channel string `koanf:"channel"`
	// Owner is the author name shown on the notification attachment.
	Owner string `koanf:"owner"`
	// MessageTemplate is the notification text. The {repository} and
	// {changes_link} placeholders expand before sending.
	MessageTemplate string   `koanf:"message_template"`
	Timeout         Duration `koanf:"timeout"`
}

// PullRequestsEnabled reports whether enough GitHub configuration is
// present to open pull requests.
func (c *GitHubConfig) PullRequestsEnabled() bool {
	return c.Owner != "" && c.Repo != ""
}

func applyDefaults(cfg *Config) {
	if cfg.Git.WorkingDir == "" {
		cfg.Git.WorkingDir = "."
	}
	if cfg.Git.Branch == "" {
		cfg.Git.Branch = "lawgiver"
	}
	if cfg.Git.BaseBranch == "" {
		cfg.Git.BaseBranch = "main"
	}
	if cfg.Git.Remote == "" {
		cfg.Git.Remote = "origin"
	}
	if cfg.Git.AuthorName == "" {
		cfg.Git.AuthorName = "lawgiver"
	}
	if cfg.Git.AuthorEmail == "" {
		cfg.Git.AuthorEmail = "lawgiver@localhost"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Slack.Owner == "" {
		cfg.Slack.Owner = "lawgiver"
	}
	if cfg.Slack.MessageTemplate == "" {
		cfg.Slack.MessageTemplate = "lawgiver proposed changes to {repository}: {changes_link}"
	}
	if cfg.Slack.Timeout == 0 {
		cfg.Slack.Timeout = Duration(10 * time.Second)
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.Log.Format)
	}

	if (c.GitHub.Owner == "") != (c.GitHub.Repo == "") {
		return fmt.Errorf("github owner and repo must be set together")
	}
	if c.GitHub.PullRequestsEnabled() && !c.GitHub.Token.IsSet() {
		return fmt.Errorf("github token is required when owner/repo are set")
	}
	if c.Git.Branch == c.Git.BaseBranch {
		return fmt.Errorf("enforcement branch %q must differ from base branch", c.Git.Branch)
	}
	return nil
}
