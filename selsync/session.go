package selsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon"
)

// Options configures a Session.
type Options struct {
	// Workers bounds concurrent listings. Zero uses the default.
	Workers int
	// Setup starts from a fully included tree instead of the daemon's
	// excluded set, as on first run.
	Setup bool
}

// Session is one run of the selective sync dialog.
type Session struct {
	client   daemon.Client
	fetcher  *Fetcher
	root     *Node
	model    *Model
	original []string
	setup    bool
	closed   bool
}

// BuildSession reads the excluded set once and builds the tree for it.
// client is the primary connection; listings dial their own through dial.
func BuildSession(ctx context.Context, client daemon.Client, dial daemon.Dialer, dispatch Dispatcher, opts Options) (*Session, error) {
	var original []string
	if !opts.Setup {
		items, err := client.ExcludedItems(ctx)
		if err != nil {
			return nil, common.WrapError(err, "failed to read excluded items")
		}
		original = common.SortedKeys(common.StringSet(items))
	}

	fetcher := NewFetcher(dial, dispatch, opts.Workers)
	root := NewRoot(fetcher, original)

	common.LogInfo("Selective sync session for %s started with %d excluded items",
		client.ConfigName(), len(original))

	return &Session{
		client:   client,
		fetcher:  fetcher,
		root:     root,
		model:    NewModel(root),
		original: original,
		setup:    opts.Setup,
	}, nil
}

// Model returns the tree model.
func (s *Session) Model() *Model { return s.model }

// Root returns the root node.
func (s *Session) Root() *Node { return s.root }

// Fetcher returns the session's fetcher.
func (s *Session) Fetcher() *Fetcher { return s.fetcher }

// ConfigName returns the daemon config this session edits.
func (s *Session) ConfigName() string { return s.client.ConfigName() }

// Original returns the excluded set the session started from.
func (s *Session) Original() []string {
	return append([]string(nil), s.original...)
}

// SelectAll checks or unchecks every loaded top-level row.
func (s *Session) SelectAll(checked bool) {
	state := Unchecked
	if checked {
		state = Checked
	}
	for _, n := range s.model.TopLevel() {
		s.model.SetCheckState(n, state)
	}
}

// AllTopLevelChecked reports whether every loaded top-level row is checked.
// It is false while a message row is shown.
func (s *Session) AllTopLevelChecked() bool {
	for _, n := range s.model.TopLevel() {
		if state, ok := s.model.CheckState(n); !ok || state != Checked {
			return false
		}
	}
	return true
}

// SelectionModified reports whether the user changed anything. A setup
// session always has something to commit.
func (s *Session) SelectionModified() bool {
	return s.setup || s.root.SelectionModified()
}

// ExcludedItems returns the sorted excluded set that Commit would write.
func (s *Session) ExcludedItems() []string {
	if s.setup {
		return common.SortedKeys(common.StringSet(CollectUnchecked(s.root)))
	}
	return common.SortedKeys(CollectExcluded(s.root, s.original))
}

// Commit writes the excluded set to the daemon in a single call and returns it.
// Nothing is written while the model shows a message instead of the tree.
// When the daemon is offline the model shows the connection message and
// ErrNotConnected is returned. A busy daemon leaves the session open so the
// commit can be retried.
func (s *Session) Commit(ctx context.Context) ([]string, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: session closed", common.ErrCancelled)
	}
	if msg, failed := s.model.DisplayedMessage(); failed {
		return nil, fmt.Errorf("%w: %s", common.ErrDaemonUnavailable, msg)
	}

	connected, err := s.client.Connected(ctx)
	if err != nil {
		s.model.DisplayMessage(FailureMessage)
		return nil, common.WrapError(err, "failed to query connection")
	}
	if !connected {
		s.model.DisplayMessage(FailureMessage)
		return nil, common.ErrNotConnected
	}

	items := s.ExcludedItems()
	if err := s.client.SetExcludedItems(ctx, items); err != nil {
		if errors.Is(err, common.ErrBusy) {
			common.LogWarn("Daemon busy, excluded items not updated: %v", err)
			return nil, err
		}
		return nil, common.WrapError(err, "failed to update excluded items")
	}

	common.LogInfo("Excluded items for %s updated (%d items)", s.client.ConfigName(), len(items))
	return items, nil
}

// Close aborts outstanding listings and waits for their workers.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.fetcher.Close()
}
