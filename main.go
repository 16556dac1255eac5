// Package main provides the entry point for Maestral GTK, a desktop and
// terminal front-end for the Maestral Dropbox daemon.
//
// Features:
//   - Tray indicator with live sync status
//   - Selective sync with a lazily loaded folder tree
//   - Local history of selective sync changes
//   - Command-line interface for scripting and automation
//
// Usage:
//
//	maestral-gtk [options]
//
// Environment:
//
//	The Maestral daemon must be running on the session bus.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yllada/maestral-gtk/cli"
	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/config"
	"github.com/yllada/maestral-gtk/ui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

// pathList collects a repeatable path flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

var (
	// GUI/General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	configName  = flag.String("config-name", "", "Daemon config to control")

	// CLI flags
	listConfigs  = flag.Bool("configs", false, "List configured daemon instances")
	showStatus   = flag.Bool("status", false, "Show sync status and account")
	pauseSync    = flag.Bool("pause", false, "Pause syncing")
	resumeSync   = flag.Bool("resume", false, "Resume syncing")
	showExcluded = flag.Bool("excluded", false, "List excluded folders")
	selectTUI    = flag.Bool("select", false, "Choose synced folders in the terminal")
	setupTUI     = flag.Bool("setup", false, "With --select, start from a fully synced tree")
	showHistory  = flag.Bool("history", false, "Show recent selective sync changes")
	showIssues   = flag.Bool("issues", false, "List files that could not be synced")
	showActivity = flag.Bool("activity", false, "Show recently synced changes")
	unlinkAcct   = flag.Bool("unlink", false, "Unlink the Dropbox account")
	rebuildIndex = flag.Bool("rebuild-index", false, "Rebuild the daemon's sync index")
	excludePaths pathList
	includePaths pathList
)

func init() {
	flag.Var(&excludePaths, "exclude", "Exclude a folder from syncing (repeatable)")
	flag.Var(&includePaths, "include", "Include a folder again (repeatable)")
}

func main() {
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s GTK v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	if *configName != "" {
		cfg.ConfigName = *configName
	}

	logLevel := common.ParseLogLevel(cfg.LogLevel)
	if *verbose {
		logLevel = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	if cliRequested() {
		os.Exit(runCLI(ctx, cfg))
	}

	common.LogInfo("Starting %s v%s for config %s", common.AppName, appVersion, cfg.ConfigName)
	app := ui.NewApplication(common.AppID, appVersion, cfg)
	exitCode := app.Run([]string{os.Args[0]})

	if exitCode != 0 {
		common.LogWarn("Application exited with code %d", exitCode)
	}
	os.Exit(exitCode)
}

func cliRequested() bool {
	return *listConfigs || *showStatus || *pauseSync || *resumeSync || *showExcluded ||
		*selectTUI || *showHistory || *showIssues || *showActivity || *unlinkAcct || *rebuildIndex ||
		len(excludePaths) > 0 || len(includePaths) > 0
}

// runCLI handles command-line interface operations and returns the exit code.
func runCLI(ctx context.Context, cfg *config.Config) int {
	cliApp, err := cli.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cliApp.Close()

	select {
	case <-ctx.Done():
		common.LogInfo("Operation cancelled before execution")
		return 1
	default:
	}

	var cliErr error

	switch {
	case *listConfigs:
		cliErr = cliApp.ListConfigs()
	case *showStatus:
		cliErr = cliApp.Status(ctx)
	case *pauseSync:
		cliErr = cliApp.Pause(ctx)
	case *resumeSync:
		cliErr = cliApp.Resume(ctx)
	case *showExcluded:
		cliErr = cliApp.Excluded(ctx)
	case *showHistory:
		cliErr = cliApp.History(ctx, 20)
	case *showIssues:
		cliErr = cliApp.Issues(ctx)
	case *showActivity:
		cliErr = cliApp.Activity(ctx, 30)
	case *unlinkAcct:
		cliErr = cliApp.Unlink(ctx)
	case *rebuildIndex:
		cliErr = cliApp.RebuildIndex(ctx)
	case *selectTUI:
		cliErr = cliApp.SelectInteractive(ctx, *setupTUI)
	default:
		if len(excludePaths) > 0 {
			cliErr = cliApp.Select(ctx, excludePaths, false)
		}
		if cliErr == nil && len(includePaths) > 0 {
			cliErr = cliApp.Select(ctx, includePaths, true)
		}
	}

	if cliErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cliErr)
		return 1
	}
	return 0
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}
