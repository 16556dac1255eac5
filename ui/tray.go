package ui

import (
	"fmt"
	"sync"

	"fyne.io/systray"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon"
)

// TrayIndicator manages the system tray icon and menu.
type TrayIndicator struct {
	app *Application

	mu         sync.Mutex
	ready      bool
	status     daemon.Status
	available  bool
	statusItem *systray.MenuItem
	errorsItem *systray.MenuItem
	pauseItem  *systray.MenuItem
	syncItem   *systray.MenuItem
}

// NewTrayIndicator creates a new system tray indicator.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{app: app}
}

// Run starts the system tray indicator.
// This should be called from a goroutine as it blocks.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the systray is ready.
func (t *TrayIndicator) onReady() {
	systray.SetIcon(IconForState(common.StateDisconnected))
	systray.SetTitle(common.AppName)
	systray.SetTooltip(common.AppName + " - " + common.StateDisconnected.String())

	t.statusItem = systray.AddMenuItem(common.StateDisconnected.String(), "Current sync status")
	t.statusItem.Disable()

	t.errorsItem = systray.AddMenuItem("", "Files that could not be synced")
	t.errorsItem.Hide()
	go func() {
		for range t.errorsItem.ClickedCh {
			glib.IdleAdd(t.app.showSyncIssues)
		}
	}()

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause Syncing", "Pause or resume syncing")
	go func() {
		for range t.pauseItem.ClickedCh {
			t.togglePause()
		}
	}()

	t.syncItem = systray.AddMenuItem("Selective Sync...", "Choose folders to sync")
	go func() {
		for range t.syncItem.ClickedCh {
			glib.IdleAdd(t.app.showSelectiveSync)
		}
	}()

	activityItem := systray.AddMenuItem("Recent Changes...", "Show recently synced files")
	go func() {
		for range activityItem.ClickedCh {
			glib.IdleAdd(t.app.showActivity)
		}
	}()

	systray.AddSeparator()

	settingsItem := systray.AddMenuItem("Settings...", "Open Maestral settings")
	go func() {
		for range settingsItem.ClickedCh {
			glib.IdleAdd(t.app.showSettings)
		}
	}()

	rebuildItem := systray.AddMenuItem("Rebuild Index...", "Compare all local files with Dropbox again")
	go func() {
		for range rebuildItem.ClickedCh {
			glib.IdleAdd(t.app.confirmRebuildIndex)
		}
	}()

	aboutItem := systray.AddMenuItem("About "+common.AppName, "")
	go func() {
		for range aboutItem.ClickedCh {
			glib.IdleAdd(func() {
				showAbout(nil, t.app.version)
			})
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Close "+common.AppName)
	go func() {
		for range quitItem.ClickedCh {
			glib.IdleAdd(t.app.Quit)
			systray.Quit()
		}
	}()

	t.mu.Lock()
	t.ready = true
	status, available := t.status, t.available
	t.mu.Unlock()

	if available {
		t.render(status)
	} else {
		t.renderUnavailable()
	}
}

// onExit is called when the systray is about to exit.
func (t *TrayIndicator) onExit() {
	common.LogInfo("Tray indicator cleanup completed")
}

// SetStatus shows a daemon status in the tray.
func (t *TrayIndicator) SetStatus(s daemon.Status) {
	t.mu.Lock()
	t.status = s
	t.available = true
	ready := t.ready
	t.mu.Unlock()

	if ready {
		t.render(s)
	}
}

// SetUnavailable shows that the daemon cannot be reached.
func (t *TrayIndicator) SetUnavailable() {
	t.mu.Lock()
	t.available = false
	ready := t.ready
	t.mu.Unlock()

	if ready {
		t.renderUnavailable()
	}
}

func (t *TrayIndicator) render(s daemon.Status) {
	systray.SetIcon(IconForState(s.State))
	systray.SetTooltip(fmt.Sprintf("%s - %s", common.AppName, s.Text))
	t.statusItem.SetTitle(s.Text)

	if s.SyncErrors > 0 {
		t.errorsItem.SetTitle(fmt.Sprintf("Show Sync Issues (%d)...", s.SyncErrors))
		t.errorsItem.Show()
	} else {
		t.errorsItem.Hide()
	}

	if s.Paused {
		t.pauseItem.SetTitle("Resume Syncing")
	} else {
		t.pauseItem.SetTitle("Pause Syncing")
	}
	t.pauseItem.Enable()
	t.syncItem.Enable()
}

func (t *TrayIndicator) renderUnavailable() {
	systray.SetIcon(IconForState(common.StateDisconnected))
	systray.SetTooltip(common.AppName + " - daemon not running")
	t.statusItem.SetTitle("Maestral daemon not running")
	t.errorsItem.Hide()
	t.pauseItem.Disable()
	t.syncItem.Disable()
}

// togglePause pauses a running daemon and resumes a paused one.
func (t *TrayIndicator) togglePause() {
	t.mu.Lock()
	paused := t.status.Paused
	t.mu.Unlock()

	t.app.setPaused(!paused)
}
