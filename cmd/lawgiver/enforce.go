package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/internal/config"
	"github.com/fyrsmithlabs/lawgiver/internal/loader"
	"github.com/fyrsmithlabs/lawgiver/internal/logging"
	"github.com/fyrsmithlabs/lawgiver/internal/notify"
	"github.com/fyrsmithlabs/lawgiver/internal/report"
	"github.com/fyrsmithlabs/lawgiver/internal/telemetry"
	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
	"github.com/fyrsmithlabs/lawgiver/pkg/vcs"
)

var (
	enforceDryRun     bool
	enforceStrict     bool
	enforceNoPublish  bool
	enforceReportPath string
	enforceWorkingDir string
	enforceToken      string
)

var enforceCmd = &cobra.Command{
	Use:   "enforce <pillar-definition>",
	Short: "Enforce a pillar definition against a working copy",
	Long: `Enforce loads the laws of a YAML pillar definition and executes them
in order against the configured working copy. Changes are committed to
the enforcement branch, pushed and proposed as a pull request when
GitHub credentials are configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnforce,
}

func init() {
	enforceCmd.Flags().BoolVar(&enforceDryRun, "dry-run", false, "report what every rule would do without touching anything")
	enforceCmd.Flags().BoolVar(&enforceStrict, "strict", false, "exit non-zero when any rule fails")
	enforceCmd.Flags().BoolVar(&enforceNoPublish, "no-publish", false, "apply changes locally without committing or pushing")
	enforceCmd.Flags().StringVar(&enforceReportPath, "report", "", "write a JSON report to this path (\"-\" for stdout)")
	enforceCmd.Flags().StringVar(&enforceWorkingDir, "working-dir", "", "override the configured working copy root")
	enforceCmd.Flags().StringVar(&enforceToken, "token", "", "GitHub token, overriding configuration and environment")
}

func runEnforce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// Flags win over file and environment.
	if enforceDryRun {
		cfg.DryRun = true
	}
	if enforceWorkingDir != "" {
		cfg.Git.WorkingDir = enforceWorkingDir
	}
	if enforceReportPath != "" {
		cfg.Report.Path = enforceReportPath
	}
	if enforceToken != "" {
		cfg.GitHub.Token = config.Secret(enforceToken)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer logging.Sync(log) //nolint:errcheck

	laws, err := loader.Load(args[0])
	if err != nil {
		return err
	}

	// Relative rule paths resolve inside the working copy.
	if cfg.Git.WorkingDir != "" && cfg.Git.WorkingDir != "." {
		if err := os.Chdir(cfg.Git.WorkingDir); err != nil {
			return fmt.Errorf("enter working copy: %w", err)
		}
	}

	ctx := cmd.Context()

	opts := []engine.PillarOption{
		engine.WithLogger(log),
		engine.WithDryRun(cfg.DryRun),
		engine.WithAbortOnRuleFailure(cfg.RuleCanAbort),
		engine.WithStats(telemetry.Default()),
	}
	if !cfg.DryRun && !enforceNoPublish {
		publisher, err := buildPublisher(ctx, cfg, log)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithPublisher(publisher))
	}
	if cfg.Report.Path != "" {
		reporter, err := report.NewJSONReporter(cfg.Report.Path, log)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithReporter(reporter))
	}

	pillar := engine.NewPillar(opts...)
	for _, law := range laws {
		if err := pillar.Register(law); err != nil {
			return err
		}
	}

	result, enforceErr := pillar.Enforce(ctx)

	if notifier := buildNotifier(cfg, log); notifier != nil && result.PullRequest != nil {
		if err := notifier.Notify(ctx, cfg.Slack.MessageTemplate, result.PullRequest.URL); err != nil {
			log.Warn("slack notification failed", zap.Error(err))
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), summarize(result))

	if enforceErr != nil {
		return enforceErr
	}
	if enforceStrict && result.Failed() {
		if failed := result.FailedRules(); len(failed) > 0 {
			return fmt.Errorf("%d rule(s) failed", len(failed))
		}
		return fmt.Errorf("a law hook failed")
	}
	return nil
}

func buildPublisher(ctx context.Context, cfg *config.Config, log *zap.Logger) (*vcs.Publisher, error) {
	// runEnforce already entered the working copy.
	workspace, err := vcs.OpenWorkspace(vcs.WorkspaceConfig{
		Path:        ".",
		Remote:      cfg.Git.Remote,
		Token:       cfg.GitHub.Token.Value(),
		AuthorName:  cfg.Git.AuthorName,
		AuthorEmail: cfg.Git.AuthorEmail,
	}, log)
	if err != nil {
		return nil, err
	}
	if err := workspace.CheckoutBranch(cfg.Git.Branch); err != nil {
		return nil, err
	}

	var opener vcs.PullRequestOpener
	if cfg.GitHub.PullRequestsEnabled() {
		client, err := vcs.NewGitHubClient(ctx, cfg.GitHub.Token.Value())
		if err != nil {
			return nil, err
		}
		opener = vcs.NewPullRequestService(client, cfg.GitHub.Owner, cfg.GitHub.Repo, log)
	}
	return vcs.NewPublisher(workspace, opener, cfg.Git.Branch, cfg.Git.BaseBranch, log), nil
}

// buildNotifier returns the configured notifier, or nil when
// notifications are disabled. Notification failures never fail the run.
func buildNotifier(cfg *config.Config, log *zap.Logger) engine.Notifier {
	if !cfg.Slack.WebhookURL.IsSet() {
		return nil
	}
	notifier, err := notify.NewSlackNotifier(notify.Config{
		WebhookURL: cfg.Slack.WebhookURL.Value(),
		Repository: cfg.Slack.Repository,
		Channel:    cfg.Slack.Channel,
		Owner:      cfg.Slack.Owner,
		Timeout:    time.Duration(cfg.Slack.Timeout),
	}, log)
	if err != nil {
		log.Warn("slack notifier misconfigured", zap.Error(err))
		return nil
	}
	return notifier
}

func summarize(result *engine.Result) string {
	var changed, skipped int
	for _, outcome := range result.Outcomes {
		if outcome.Changed {
			changed++
		}
		if outcome.Skipped {
			skipped++
		}
	}
	summary := fmt.Sprintf("%d law(s) enforced: %d changed, %d skipped, %d failed rule(s)",
		len(result.Outcomes), changed, skipped, len(result.FailedRules()))
	if result.PullRequest != nil {
		summary += "\npull request: " + result.PullRequest.URL
	}
	return summary
}
