// Package cli provides command-line interface functionality for Maestral.
// This allows users to inspect and control the sync daemon from the
// terminal without launching the GUI application.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/config"
	"github.com/yllada/maestral-gtk/daemon"
	"github.com/yllada/maestral-gtk/journal"
	"github.com/yllada/maestral-gtk/keyring"
	"github.com/yllada/maestral-gtk/selsync"
	"github.com/yllada/maestral-gtk/tui"
)

// CLI represents the command-line interface.
type CLI struct {
	cfg     *config.Config
	client  daemon.Client
	dial    daemon.Dialer
	journal *journal.Journal
	out     io.Writer
}

// New connects to the daemon named in cfg.
func New(ctx context.Context, cfg *config.Config) (*CLI, error) {
	opts := daemon.DialOptions{ConfigName: cfg.ConfigName, BusAddress: cfg.BusAddress}
	client, err := daemon.Dial(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	j, err := journal.OpenDefault()
	if err != nil {
		common.LogWarn("Selection history unavailable: %v", err)
	}

	return NewWithClient(cfg, client, daemon.NewDialer(opts), j, os.Stdout), nil
}

// NewWithClient creates a CLI on an existing connection. j may be nil.
func NewWithClient(cfg *config.Config, client daemon.Client, dial daemon.Dialer, j *journal.Journal, out io.Writer) *CLI {
	return &CLI{
		cfg:     cfg,
		client:  client,
		dial:    dial,
		journal: j,
		out:     out,
	}
}

// Client returns the primary daemon connection.
func (c *CLI) Client() daemon.Client {
	return c.client
}

// Dialer returns the dialer used for listing connections.
func (c *CLI) Dialer() daemon.Dialer {
	return c.dial
}

// Journal returns the selection history, or nil if it could not be opened.
func (c *CLI) Journal() *journal.Journal {
	return c.journal
}

// Close releases the daemon connection and the journal.
func (c *CLI) Close() error {
	if c.journal != nil {
		c.journal.Close()
	}
	return c.client.Close()
}

func callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, common.DaemonCallTimeout)
}

// Status shows the daemon state and the linked account.
func (c *CLI) Status(ctx context.Context) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	status, err := c.client.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	account, err := c.client.AccountInfo(ctx)
	if err != nil {
		common.LogWarn("Could not get account info: %v", err)
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Config:\t%s\n", c.client.ConfigName())
	fmt.Fprintf(w, "State:\t%s\n", status.State)
	fmt.Fprintf(w, "Status:\t%s\n", status.Text)
	fmt.Fprintf(w, "Sync errors:\t%d\n", status.SyncErrors)
	if account.Email != "" {
		fmt.Fprintf(w, "Account:\t%s (%s)\n", account.DisplayName, account.Email)
		if account.Usage != "" {
			fmt.Fprintf(w, "Usage:\t%s\n", account.Usage)
		}
	}
	fmt.Fprintf(w, "Credentials:\t%s\n", keyring.Describe(account.ID))
	return w.Flush()
}

// ListConfigs lists the configured daemon instances.
func (c *CLI) ListConfigs() error {
	configs, err := daemon.ListConfigs()
	if err != nil {
		return err
	}
	return c.printConfigs(configs)
}

func (c *CLI) printConfigs(configs []daemon.ConfigInfo) error {
	if len(configs) == 0 {
		fmt.Fprintln(c.out, "No Maestral configurations found.")
		fmt.Fprintln(c.out, "Link an account with: maestral start")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONFIG\tFOLDER\tACCOUNT\tACTIVE")
	fmt.Fprintln(w, "------\t------\t-------\t------")
	for _, cfg := range configs {
		account := cfg.AccountID
		if account == "" {
			account = "-"
		}
		active := ""
		if cfg.Name == c.cfg.ConfigName {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.Name, cfg.Path, account, active)
	}
	return w.Flush()
}

// Pause pauses syncing.
func (c *CLI) Pause(ctx context.Context) error {
	ctx, cancel := callContext(ctx)
	defer cancel()
	if err := c.client.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	fmt.Fprintln(c.out, "✓ Syncing paused")
	return nil
}

// Resume resumes syncing.
func (c *CLI) Resume(ctx context.Context) error {
	ctx, cancel := callContext(ctx)
	defer cancel()
	if err := c.client.Resume(ctx); err != nil {
		return fmt.Errorf("failed to resume: %w", err)
	}
	fmt.Fprintln(c.out, "✓ Syncing resumed")
	return nil
}

// Excluded prints the excluded paths.
func (c *CLI) Excluded(ctx context.Context) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	items, err := c.client.ExcludedItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to get excluded items: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No excluded folders.")
		return nil
	}
	for _, item := range common.SortedKeys(common.StringSet(items)) {
		fmt.Fprintln(c.out, item)
	}
	return nil
}

// Issues prints the items the daemon could not sync.
func (c *CLI) Issues(ctx context.Context) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	issues, err := c.client.SyncErrors(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sync issues: %w", err)
	}
	if len(issues) == 0 {
		fmt.Fprintln(c.out, "No sync issues.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tPROBLEM")
	fmt.Fprintln(w, "----\t-------")
	for _, issue := range issues {
		fmt.Fprintf(w, "%s\t%s\n", issue.DbxPath, issue.Summary())
	}
	return w.Flush()
}

// Activity prints the most recent sync events, newest first.
func (c *CLI) Activity(ctx context.Context, limit int) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	history, err := c.client.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to get activity: %w", err)
	}
	events := daemon.NewActivityFeed().Update(history)
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No recent changes.")
		return nil
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\n", e.Name(), e.Summary())
	}
	return w.Flush()
}

// Unlink asks the daemon to unlink the Dropbox account.
func (c *CLI) Unlink(ctx context.Context) error {
	ctx, cancel := callContext(ctx)
	defer cancel()
	if err := c.client.Unlink(ctx); err != nil {
		return fmt.Errorf("failed to unlink: %w", err)
	}
	fmt.Fprintln(c.out, "✓ Account unlinked")
	return nil
}

// RebuildIndex asks the daemon to rebuild its index.
func (c *CLI) RebuildIndex(ctx context.Context) error {
	ctx, cancel := callContext(ctx)
	defer cancel()
	if err := c.client.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	fmt.Fprintln(c.out, "✓ Rebuilding index. Syncing resumes when it completes.")
	return nil
}

// Select includes or excludes remote paths through a selective sync
// session and commits the result.
func (c *CLI) Select(ctx context.Context, paths []string, include bool) error {
	queue := selsync.NewQueue()
	session, err := selsync.BuildSession(ctx, c.client, c.dial, queue.Dispatch,
		selsync.Options{Workers: c.cfg.ListingWorkers})
	if err != nil {
		return err
	}
	defer session.Close()

	state := selsync.Unchecked
	if include {
		state = selsync.Checked
	}

	for _, p := range paths {
		node, err := resolve(ctx, session, queue, p)
		if err != nil {
			return err
		}
		session.Model().SetCheckState(node, state)
	}

	if !session.SelectionModified() {
		fmt.Fprintln(c.out, "Nothing to change.")
		return nil
	}

	commitCtx, cancel := callContext(ctx)
	defer cancel()
	items, err := session.Commit(commitCtx)
	if err != nil {
		return fmt.Errorf("failed to update selective sync: %w", err)
	}

	c.record(ctx, journal.NewSessionID(), session.Original(), items)
	fmt.Fprintf(c.out, "✓ Selective sync updated (%d excluded)\n", len(items))
	return nil
}

// SelectInteractive runs the terminal folder picker and commits its result.
// With setup the picker ignores the current excluded set and starts with
// everything included, as on first run.
func (c *CLI) SelectInteractive(ctx context.Context, setup bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("--select needs an interactive terminal; use --include or --exclude")
	}

	queue := selsync.NewQueue()
	session, err := selsync.BuildSession(ctx, c.client, c.dial, queue.Dispatch,
		selsync.Options{Workers: c.cfg.ListingWorkers, Setup: setup})
	if err != nil {
		return err
	}
	defer session.Close()

	result, err := tui.Run(ctx, session, queue)
	if err != nil {
		return err
	}
	if !result.Committed {
		fmt.Fprintln(c.out, "Selective sync unchanged.")
		return nil
	}

	c.record(ctx, journal.NewSessionID(), session.Original(), result.Excluded)
	fmt.Fprintf(c.out, "✓ Selective sync updated (%d excluded)\n", len(result.Excluded))
	return nil
}

func (c *CLI) record(ctx context.Context, sessionID string, before, after []string) {
	if c.journal == nil {
		return
	}
	if _, err := c.journal.Record(ctx, sessionID, c.client.ConfigName(), before, after); err != nil {
		common.LogWarn("Could not record selection change: %v", err)
	}
}

// resolve loads the ancestors of p and returns its node.
func resolve(ctx context.Context, session *selsync.Session, queue *selsync.Queue, p string) (*selsync.Node, error) {
	target := strings.ToLower("/" + strings.Trim(p, "/"))
	if target == "/" {
		return nil, fmt.Errorf("cannot select the Dropbox root")
	}

	node := session.Root()
	for node.PathLower() != target {
		if err := waitLoaded(ctx, session, queue, node); err != nil {
			return nil, err
		}

		var next *selsync.Node
		for _, child := range node.LoadedChildren() {
			if child.Kind() == selsync.KindPath && common.IsEqualOrChild(target, child.PathLower()) {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, p)
		}
		if next.PathLower() != target && !next.IsFolder() {
			return nil, fmt.Errorf("%w: %s", common.ErrNotAFolder, next.PathDisplay())
		}
		node = next
	}
	return node, nil
}

// waitLoaded lists n and runs dispatched results until it has loaded.
func waitLoaded(ctx context.Context, session *selsync.Session, queue *selsync.Queue, n *selsync.Node) error {
	n.Children()
	for n.LoadState() == selsync.Loading {
		select {
		case <-queue.Ready():
			queue.Drain()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if msg, failed := session.Model().DisplayedMessage(); failed {
		return fmt.Errorf("%w: %s", common.ErrDaemonUnavailable, msg)
	}
	return nil
}

// History prints recent selective sync changes.
func (c *CLI) History(ctx context.Context, limit int) error {
	if c.journal == nil {
		return fmt.Errorf("selection history is unavailable")
	}
	changes, err := c.journal.List(ctx, c.client.ConfigName(), limit)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Fprintln(c.out, "No selective sync changes recorded.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tEXCLUDED\tADDED\tREMOVED\tFINGERPRINT")
	fmt.Fprintln(w, "----\t--------\t-----\t-------\t-----------")
	for _, ch := range changes {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			ch.CommittedAt.Local().Format(time.DateTime),
			ch.Excluded,
			joinOrDash(ch.Added),
			joinOrDash(ch.Removed),
			ch.Fingerprint[:12])
	}
	return w.Flush()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`Maestral - Command Line Interface

Usage:
  maestral-gtk [OPTIONS]

Options:
  --version          Show version and exit
  --verbose          Enable verbose logging
  --config-name NAME Daemon config to control (default from config.yaml)
  --configs          List configured daemon instances
  --status           Show sync status and account
  --pause            Pause syncing
  --resume           Resume syncing
  --excluded         List excluded folders
  --exclude PATH     Exclude a folder from syncing (repeatable)
  --include PATH     Include a folder again (repeatable)
  --select           Choose synced folders in the terminal
  --setup            With --select, start with every folder included
  --history          Show recent selective sync changes
  --issues           List files that could not be synced
  --activity         Show recently synced changes
  --unlink           Unlink the Dropbox account
  --rebuild-index    Rebuild the daemon's sync index
  --help             Show this help message

Examples:
  maestral-gtk --status
  maestral-gtk --exclude /Photos --exclude "/Work/Old Projects"
  maestral-gtk --select

Notes:
  - The Maestral daemon must be running
  - Run without options to launch the tray application`)
}
