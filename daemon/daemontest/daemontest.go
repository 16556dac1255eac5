// Package daemontest provides an in-memory daemon for tests.
//
// A Daemon holds a remote folder tree, an excluded set and a few switches for
// injecting failures. Its Dialer hands out clients that behave like private
// daemon connections and are counted so tests can check that every
// connection was closed.
package daemontest

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon"
)

// Stats counts the requests a Daemon has served.
type Stats struct {
	Dials       int
	OpenClients int
	ListCalls   int
	PagesServed int
	Commits     int
	Unlinks     int
	Rebuilds    int
}

// Daemon is a fake Maestral daemon.
type Daemon struct {
	mu         sync.Mutex
	configName string
	entries    map[string]daemon.Entry
	children   map[string][]string
	excluded   []string
	status     daemon.Status
	account    daemon.Account
	issues     []daemon.SyncIssue
	history    []daemon.SyncEvent
	linked     bool
	pageSize   int
	listErrors map[string]error
	statusErr  error
	commitErr  error
	dialErr    error
	gate       chan struct{}
	stats      Stats
}

// New returns an empty, connected daemon.
func New(configName string) *Daemon {
	return &Daemon{
		configName: configName,
		entries:    make(map[string]daemon.Entry),
		children:   make(map[string][]string),
		status:     daemon.Status{Connected: true, Text: daemon.IdleStatusText},
		account:    daemon.Account{ID: "dbid:test", Email: "user@example.com", DisplayName: "Test User"},
		linked:     true,
		pageSize:   100,
		listErrors: make(map[string]error),
	}
}

// AddFolder adds a folder and any missing parents.
func (d *Daemon) AddFolder(p string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.add(p, true)
}

// AddFile adds a file and any missing parent folders.
func (d *Daemon) AddFile(p string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.add(p, false)
}

func (d *Daemon) add(display string, isFolder bool) {
	display = path.Clean("/" + display)
	if display == "/" {
		return
	}
	lower := strings.ToLower(display)
	if _, ok := d.entries[lower]; ok {
		return
	}
	parent := path.Dir(display)
	d.add(parent, true)

	d.entries[lower] = daemon.Entry{
		Name:        path.Base(display),
		PathLower:   lower,
		PathDisplay: display,
		IsFolder:    isFolder,
	}
	parentLower := strings.ToLower(parent)
	d.children[parentLower] = append(d.children[parentLower], lower)
}

// SetExcluded replaces the excluded set.
func (d *Daemon) SetExcluded(paths ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.excluded = append([]string(nil), paths...)
}

// Excluded returns the current excluded set.
func (d *Daemon) Excluded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.excluded...)
}

// SetConnected sets whether the daemon reports a Dropbox connection.
func (d *Daemon) SetConnected(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status.Connected = connected
}

// SetStatus replaces the reported status. State is derived from the flags.
func (d *Daemon) SetStatus(s daemon.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = s
}

// SetSyncIssues replaces the reported sync issues and the error count.
func (d *Daemon) SetSyncIssues(issues ...daemon.SyncIssue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.issues = append([]daemon.SyncIssue(nil), issues...)
	d.status.SyncErrors = len(issues)
}

// AddEvent appends to the sync history.
func (d *Daemon) AddEvent(e daemon.SyncEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = append(d.history, e)
}

// Linked reports whether an account is linked.
func (d *Daemon) Linked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.linked
}

// SetPageSize sets how many entries each listing page holds.
func (d *Daemon) SetPageSize(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 1 {
		n = 1
	}
	d.pageSize = n
}

// FailListing makes listings of p fail with err.
func (d *Daemon) FailListing(p string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listErrors[strings.ToLower(p)] = err
}

// FailStatus makes status requests fail with err until called with nil.
func (d *Daemon) FailStatus(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statusErr = err
}

// FailCommit makes SetExcludedItems fail with err until called with nil.
func (d *Daemon) FailCommit(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commitErr = err
}

// FailDial makes the Dialer fail with err until called with nil.
func (d *Daemon) FailDial(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialErr = err
}

// Hold blocks every listing page request until release is called or the
// request's context ends.
func (d *Daemon) Hold() (release func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	gate := make(chan struct{})
	d.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			if d.gate == gate {
				d.gate = nil
			}
			d.mu.Unlock()
			close(gate)
		})
	}
}

// Stats returns the request counters.
func (d *Daemon) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Client returns a new connection without counting it as a dial.
func (d *Daemon) Client() *Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.OpenClients++
	return &Client{d: d}
}

// Dialer returns a daemon.Dialer handing out counted clients.
func (d *Daemon) Dialer() daemon.Dialer {
	return func(ctx context.Context) (daemon.Client, error) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.dialErr != nil {
			return nil, d.dialErr
		}
		d.stats.Dials++
		d.stats.OpenClients++
		return &Client{d: d}, nil
	}
}

// Client is one connection to a fake Daemon.
type Client struct {
	d      *Daemon
	mu     sync.Mutex
	closed bool
}

func (c *Client) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("%w: connection closed", common.ErrDaemonUnavailable)
	}
	return nil
}

// ConfigName returns the fake daemon's config name.
func (c *Client) ConfigName() string {
	return c.d.configName
}

// Close releases the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.d.mu.Lock()
	c.d.stats.OpenClients--
	c.d.mu.Unlock()
	return nil
}

// Status returns the configured status.
func (c *Client) Status(ctx context.Context) (daemon.Status, error) {
	if err := c.check(ctx); err != nil {
		return daemon.Status{}, err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.d.statusErr != nil {
		return daemon.Status{}, c.d.statusErr
	}
	s := c.d.status
	s.State = daemon.DeriveState(s)
	return s, nil
}

// Connected reports the configured connection flag.
func (c *Client) Connected(ctx context.Context) (bool, error) {
	if err := c.check(ctx); err != nil {
		return false, err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	return c.d.status.Connected, nil
}

// ExcludedItems returns a copy of the excluded set.
func (c *Client) ExcludedItems(ctx context.Context) ([]string, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	return c.d.Excluded(), nil
}

// SetExcludedItems stores items unless a commit failure is configured.
func (c *Client) SetExcludedItems(ctx context.Context, items []string) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.stats.Commits++
	if c.d.commitErr != nil {
		return c.d.commitErr
	}
	c.d.excluded = append([]string(nil), items...)
	return nil
}

// Pause sets the paused flag.
func (c *Client) Pause(ctx context.Context) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.status.Paused = true
	return nil
}

// Resume clears the paused flag.
func (c *Client) Resume(ctx context.Context) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.status.Paused = false
	return nil
}

// AccountInfo returns the fake account.
func (c *Client) AccountInfo(ctx context.Context) (daemon.Account, error) {
	if err := c.check(ctx); err != nil {
		return daemon.Account{}, err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	return c.d.account, nil
}

// SyncErrors returns the configured sync issues. It fails like Status.
func (c *Client) SyncErrors(ctx context.Context) ([]daemon.SyncIssue, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.d.statusErr != nil {
		return nil, c.d.statusErr
	}
	return append([]daemon.SyncIssue(nil), c.d.issues...), nil
}

// History returns the recorded events. It fails like Status.
func (c *Client) History(ctx context.Context) ([]daemon.SyncEvent, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.d.statusErr != nil {
		return nil, c.d.statusErr
	}
	return append([]daemon.SyncEvent(nil), c.d.history...), nil
}

// Unlink forgets the account and disconnects from Dropbox.
func (c *Client) Unlink(ctx context.Context) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.stats.Unlinks++
	c.d.linked = false
	c.d.account = daemon.Account{}
	c.d.status.Connected = false
	return nil
}

// RebuildIndex counts the request and reports the daemon as syncing.
func (c *Client) RebuildIndex(ctx context.Context) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.stats.Rebuilds++
	c.d.status.Text = "Rebuilding index..."
	return nil
}

// ListFolderIterator starts a paginated listing of p.
func (c *Client) ListFolderIterator(ctx context.Context, p string) (daemon.FolderIterator, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	c.d.mu.Lock()
	c.d.stats.ListCalls++
	c.d.mu.Unlock()
	return &iterator{client: c, path: strings.ToLower(p)}, nil
}

type iterator struct {
	client  *Client
	path    string
	started bool
	pending []daemon.Entry
}

func (it *iterator) Next(ctx context.Context) ([]daemon.Entry, error) {
	d := it.client.d

	d.mu.Lock()
	gate := d.gate
	d.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := it.client.check(ctx); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !it.started {
		if err := d.listErrors[it.path]; err != nil {
			return nil, err
		}
		if it.path != "/" {
			e, ok := d.entries[it.path]
			if !ok {
				return nil, fmt.Errorf("%w: %s", common.ErrNotFound, it.path)
			}
			if !e.IsFolder {
				return nil, fmt.Errorf("%w: %s", common.ErrNotAFolder, it.path)
			}
		}
		for _, child := range d.children[it.path] {
			it.pending = append(it.pending, d.entries[child])
		}
		it.started = true
	} else if len(it.pending) == 0 {
		return nil, io.EOF
	}

	n := d.pageSize
	if n > len(it.pending) {
		n = len(it.pending)
	}
	page := append([]daemon.Entry(nil), it.pending[:n]...)
	it.pending = it.pending[n:]
	d.stats.PagesServed++
	return page, nil
}
