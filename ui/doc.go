// Package ui provides the GTK4 desktop front-end for the Maestral daemon.
//
// The application has no main window. It runs a system tray indicator
// showing the daemon's sync state, with entries to pause or resume
// syncing, to list sync issues and recent changes, to rebuild the index,
// and to open the settings window and the selective sync dialog.
//
// # Thread Safety
//
// GTK operations must execute on the main thread. Status polling and
// tray clicks happen on other goroutines and hop back with glib.IdleAdd.
// The selective sync tree is owned by the main thread as well: its
// listing workers deliver results through glib.IdleAdd.
//
//	go func() {
//	    status, err := client.Status(ctx)
//	    glib.IdleAdd(func() {
//	        label.SetText(status.Text)
//	    })
//	}()
//
// # File Organization
//
//   - app.go: application lifecycle and daemon connection
//   - tray.go: system tray indicator
//   - selective_sync_dialog.go: folder tree with tri-state check buttons
//   - settings_window.go: account and application settings
//   - list_window.go: sync issues and recent activity windows
//   - dialogs.go: error, info, confirmation and about dialogs
//   - notifications.go: desktop notifications
//   - icons.go: tray icon generation
//   - styles.go: CSS styling
package ui
