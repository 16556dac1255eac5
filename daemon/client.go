package daemon

import (
	"context"
	"time"

	"github.com/yllada/maestral-gtk/common"
)

// Entry is one item of a remote folder listing.
type Entry struct {
	// Name is the last path component as displayed by Dropbox.
	Name string
	// PathLower is the case-folded canonical path.
	PathLower string
	// PathDisplay is the path with the user's capitalisation.
	PathDisplay string
	// IsFolder is true for folders, false for files.
	IsFolder bool
}

// Status is a snapshot of the daemon's sync state.
type Status struct {
	State      common.SyncState
	Connected  bool
	Paused     bool
	Text       string
	SyncErrors int
}

// Account describes the linked Dropbox account.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	Usage       string
}

// SyncIssue is an item the daemon failed to sync.
type SyncIssue struct {
	Title     string
	Message   string
	LocalPath string
	DbxPath   string
}

// SyncEvent is one entry of the daemon's recent activity.
type SyncEvent struct {
	ID         string
	ChangeType string // added, changed, removed or moved
	IsFolder   bool
	LocalPath  string
	DbxPath    string
	Time       time.Time
}

// FolderIterator yields successive pages of a folder listing.
type FolderIterator interface {
	// Next fetches the next page. It returns io.EOF once the listing is
	// exhausted, common.ErrNotAFolder or common.ErrNotFound for domain
	// errors, and any other error for transport failures.
	Next(ctx context.Context) ([]Entry, error)
}

// Client is the set of daemon requests this application makes.
type Client interface {
	Status(ctx context.Context) (Status, error)
	Connected(ctx context.Context) (bool, error)
	ExcludedItems(ctx context.Context) ([]string, error)
	// SetExcludedItems replaces the excluded set. It returns an error
	// wrapping common.ErrBusy when the daemon cannot apply it right now.
	SetExcludedItems(ctx context.Context, items []string) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	AccountInfo(ctx context.Context) (Account, error)
	SyncErrors(ctx context.Context) ([]SyncIssue, error)
	// History returns recent sync events, oldest first.
	History(ctx context.Context) ([]SyncEvent, error)
	// Unlink asks the daemon to unlink the account and drop its token.
	Unlink(ctx context.Context) error
	// RebuildIndex asks the daemon to rebuild its sync index.
	RebuildIndex(ctx context.Context) error
	ListFolderIterator(ctx context.Context, path string) (FolderIterator, error)
	// ConfigName is the daemon instance this client talks to.
	ConfigName() string
	Close() error
}

// Dialer opens a new private connection to the daemon.
type Dialer func(ctx context.Context) (Client, error)

// DeriveState folds the daemon's flags into a single SyncState.
func DeriveState(s Status) common.SyncState {
	switch {
	case !s.Connected:
		return common.StateDisconnected
	case s.Paused:
		return common.StatePaused
	case s.SyncErrors > 0:
		return common.StateError
	case s.Text == IdleStatusText:
		return common.StateIdle
	default:
		return common.StateSyncing
	}
}

// IdleStatusText is the status line the daemon reports when nothing is pending.
const IdleStatusText = "Up to date"
