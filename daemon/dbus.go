package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/maestral-gtk/common"
)

// D-Bus names exported by the daemon.
const (
	busNamePrefix = "org.maestral.Daemon."
	objectPath    = dbus.ObjectPath("/org/maestral/Daemon")
	iface         = "org.maestral.Daemon1"

	errNameNotAFolder = "org.maestral.Error.NotAFolder"
	errNameNotFound   = "org.maestral.Error.NotFound"
	errNameBusy       = "org.maestral.Error.Busy"
	errNameNoDropbox  = "org.maestral.Error.NotConnected"
)

// DialOptions selects the daemon instance and the bus to reach it on.
type DialOptions struct {
	// ConfigName is the daemon's config name, e.g. "maestral".
	ConfigName string
	// BusAddress overrides the session bus address when set.
	BusAddress string
}

// DBusClient talks to one daemon instance over its own bus connection.
type DBusClient struct {
	conn       *dbus.Conn
	obj        dbus.BusObject
	configName string
	log        *common.ComponentLogger
}

// Dial opens a private bus connection to the daemon named in opts.
func Dial(ctx context.Context, opts DialOptions) (*DBusClient, error) {
	if opts.ConfigName == "" {
		opts.ConfigName = common.DefaultDaemonConfig
	}

	var (
		conn *dbus.Conn
		err  error
	)
	if opts.BusAddress != "" {
		conn, err = dbus.Connect(opts.BusAddress, dbus.WithContext(ctx))
	} else {
		conn, err = dbus.ConnectSessionBus(dbus.WithContext(ctx))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDaemonUnavailable, err)
	}

	return &DBusClient{
		conn:       conn,
		obj:        conn.Object(busNamePrefix+opts.ConfigName, objectPath),
		configName: opts.ConfigName,
		log:        common.GetLogger().Named("daemon"),
	}, nil
}

// NewDialer returns a Dialer that opens a fresh DBusClient on every call.
func NewDialer(opts DialOptions) Dialer {
	return func(ctx context.Context) (Client, error) {
		return Dial(ctx, opts)
	}
}

// ConfigName returns the daemon config name.
func (c *DBusClient) ConfigName() string {
	return c.configName
}

// Close closes the bus connection.
func (c *DBusClient) Close() error {
	return c.conn.Close()
}

func (c *DBusClient) call(ctx context.Context, method string, args ...interface{}) *dbus.Call {
	return c.obj.CallWithContext(ctx, iface+"."+method, 0, args...)
}

// Status returns the daemon's current state.
func (c *DBusClient) Status(ctx context.Context) (Status, error) {
	var (
		s       Status
		nErrors int32
	)
	err := c.call(ctx, "GetStatus").Store(&s.Connected, &s.Paused, &s.Text, &nErrors)
	if err != nil {
		return Status{}, mapError(err)
	}
	s.SyncErrors = int(nErrors)
	s.State = DeriveState(s)
	return s, nil
}

// Connected reports whether the daemon can reach Dropbox.
func (c *DBusClient) Connected(ctx context.Context) (bool, error) {
	var connected bool
	if err := c.call(ctx, "GetConnected").Store(&connected); err != nil {
		return false, mapError(err)
	}
	return connected, nil
}

// ExcludedItems returns the lowercased excluded paths.
func (c *DBusClient) ExcludedItems(ctx context.Context) ([]string, error) {
	var items []string
	if err := c.call(ctx, "GetExcludedItems").Store(&items); err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// SetExcludedItems replaces the daemon's excluded set in one call.
func (c *DBusClient) SetExcludedItems(ctx context.Context, items []string) error {
	if items == nil {
		items = []string{}
	}
	c.log.Info("setting %d excluded items on %s", len(items), c.configName)
	return mapError(c.call(ctx, "SetExcludedItems", items).Err)
}

// Pause pauses syncing.
func (c *DBusClient) Pause(ctx context.Context) error {
	return mapError(c.call(ctx, "Pause").Err)
}

// Resume resumes syncing.
func (c *DBusClient) Resume(ctx context.Context) error {
	return mapError(c.call(ctx, "Resume").Err)
}

// AccountInfo returns the linked account.
func (c *DBusClient) AccountInfo(ctx context.Context) (Account, error) {
	var a Account
	err := c.call(ctx, "GetAccountInfo").Store(&a.ID, &a.Email, &a.DisplayName, &a.Usage)
	if err != nil {
		return Account{}, mapError(err)
	}
	return a, nil
}

type wireSyncEvent struct {
	ID         string
	ChangeType string
	IsFolder   bool
	LocalPath  string
	DbxPath    string
	Time       int64
}

// SyncErrors returns the items the daemon could not sync.
func (c *DBusClient) SyncErrors(ctx context.Context) ([]SyncIssue, error) {
	var issues []SyncIssue
	if err := c.call(ctx, "GetSyncErrors").Store(&issues); err != nil {
		return nil, mapError(err)
	}
	return issues, nil
}

// History returns recent sync events. Times arrive as Unix seconds.
func (c *DBusClient) History(ctx context.Context) ([]SyncEvent, error) {
	var wire []wireSyncEvent
	if err := c.call(ctx, "GetHistory").Store(&wire); err != nil {
		return nil, mapError(err)
	}
	events := make([]SyncEvent, 0, len(wire))
	for _, w := range wire {
		events = append(events, SyncEvent{
			ID:         w.ID,
			ChangeType: w.ChangeType,
			IsFolder:   w.IsFolder,
			LocalPath:  w.LocalPath,
			DbxPath:    w.DbxPath,
			Time:       time.Unix(w.Time, 0),
		})
	}
	return events, nil
}

// Unlink unlinks the Dropbox account from this daemon instance.
func (c *DBusClient) Unlink(ctx context.Context) error {
	c.log.Info("unlinking account on %s", c.configName)
	return mapError(c.call(ctx, "Unlink").Err)
}

// RebuildIndex starts a rebuild of the daemon's index.
func (c *DBusClient) RebuildIndex(ctx context.Context) error {
	c.log.Info("rebuilding index on %s", c.configName)
	return mapError(c.call(ctx, "RebuildIndex").Err)
}

// ListFolderIterator starts a paginated listing of path. The first page is
// requested by the first call to Next.
func (c *DBusClient) ListFolderIterator(ctx context.Context, path string) (FolderIterator, error) {
	return &dbusFolderIterator{client: c, path: path}, nil
}

type dbusFolderIterator struct {
	client  *DBusClient
	path    string
	cursor  string
	started bool
	hasMore bool
}

func (it *dbusFolderIterator) Next(ctx context.Context) ([]Entry, error) {
	var call *dbus.Call
	switch {
	case !it.started:
		call = it.client.call(ctx, "ListFolder", it.path)
	case it.hasMore:
		call = it.client.call(ctx, "ListFolderContinue", it.cursor)
	default:
		return nil, io.EOF
	}

	var entries []Entry
	if err := call.Store(&it.cursor, &entries, &it.hasMore); err != nil {
		return nil, mapError(err)
	}
	it.started = true
	return entries, nil
}

// mapError translates D-Bus error replies into the common sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var name string
	var ptrErr *dbus.Error
	var valErr dbus.Error
	switch {
	case errors.As(err, &ptrErr):
		name = ptrErr.Name
	case errors.As(err, &valErr):
		name = valErr.Name
	}

	switch name {
	case errNameNotAFolder:
		return fmt.Errorf("%w: %v", common.ErrNotAFolder, err)
	case errNameNotFound:
		return fmt.Errorf("%w: %v", common.ErrNotFound, err)
	case errNameBusy:
		return fmt.Errorf("%w: %v", common.ErrBusy, err)
	case errNameNoDropbox:
		return fmt.Errorf("%w: %v", common.ErrNotConnected, err)
	case "org.freedesktop.DBus.Error.ServiceUnknown",
		"org.freedesktop.DBus.Error.NameHasNoOwner",
		"org.freedesktop.DBus.Error.NoReply",
		"org.freedesktop.DBus.Error.Disconnected":
		return fmt.Errorf("%w: %v", common.ErrDaemonUnavailable, err)
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", common.ErrCancelled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	return common.WrapError(err, "daemon call failed")
}
