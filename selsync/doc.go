// Package selsync implements the selective sync folder tree.
//
// The tree is built lazily from remote folder listings. Each folder node
// starts with a "Loading..." placeholder row and asks the session's Fetcher
// for its children the first time they are requested. Listings run on a
// bounded pool of workers, each with a private daemon connection, and their
// pages are handed back to the goroutine that owns the tree through a
// Dispatcher. Nothing in this package locks: every Node and Model method must
// be called from that owning goroutine.
//
// Nodes carry a tri-state check state. Checking or unchecking a folder
// pushes the state into its loaded children, and every change recomputes
// the ancestors as max(PartiallyChecked, min(children)). Children that
// arrive after an edit inherit their parent's state.
//
// When the user accepts, CollectExcluded merges the tree with the excluded
// set the session started from, so exclusions under folders that were never
// opened survive.
//
// Session ties the pieces together for a dialog:
//
//	s, err := selsync.BuildSession(ctx, client, dialer, dispatch, selsync.Options{})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	s.Model().Subscribe(func(e selsync.Event) { redraw() })
package selsync
