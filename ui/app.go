package ui

import (
	"context"
	"os"
	"path/filepath"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/config"
	"github.com/yllada/maestral-gtk/daemon"
	"github.com/yllada/maestral-gtk/journal"
)

// Application represents the main application
type Application struct {
	app      *gtk.Application
	config   *config.Config
	version  string
	client   daemon.Client
	dial     daemon.Dialer
	monitor  *daemon.StatusMonitor
	journal  *journal.Journal
	notifier *Notifier
	tray     *TrayIndicator

	settings       *SettingsWindow
	syncDialog     *SelectiveSyncDialog
	issuesWindow   *listWindow
	activityWindow *listWindow
}

// NewApplication creates a new application
func NewApplication(appID, version string, cfg *config.Config) *Application {
	app := gtk.NewApplication(appID, gio.ApplicationFlagsNone)

	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	application := &Application{
		app:      app,
		config:   cfg,
		version:  version,
		notifier: NewNotifier(),
	}

	app.ConnectActivate(application.onActivate)
	app.ConnectShutdown(application.onShutdown)

	return application
}

// Run runs the application
func (a *Application) Run(args []string) int {
	return a.app.Run(args)
}

// onActivate is called when the application is activated
func (a *Application) onActivate() {
	if a.tray != nil {
		a.showSettings()
		return
	}

	a.ApplyTheme(a.config.Theme)
	a.setupAppIcon()
	LoadStyles()

	// The tray is the only permanent surface.
	a.app.Hold()

	if j, err := journal.OpenDefault(); err != nil {
		common.LogWarn("Selection history unavailable: %v", err)
	} else {
		a.journal = j
	}

	a.tray = NewTrayIndicator(a)
	go a.tray.Run()

	a.connectDaemon()
}

// connectDaemon opens the primary connection and starts status polling.
func (a *Application) connectDaemon() {
	opts := daemon.DialOptions{ConfigName: a.config.ConfigName, BusAddress: a.config.BusAddress}
	a.dial = daemon.NewDialer(opts)

	ctx, cancel := context.WithTimeout(context.Background(), common.DaemonCallTimeout)
	defer cancel()

	client, err := daemon.Dial(ctx, opts)
	if err != nil {
		common.LogError("Could not connect to Maestral daemon: %v", err)
		a.tray.SetUnavailable()
		showError(nil, "Maestral Unavailable", "Could not reach the Maestral daemon on the session bus.")
		return
	}
	a.client = client
	a.setupStatusMonitor()
}

// setupStatusMonitor configures and starts the status monitor.
func (a *Application) setupStatusMonitor() {
	cfg := daemon.DefaultMonitorConfig()
	cfg.Interval = a.config.StatusInterval

	a.monitor = daemon.NewStatusMonitor(a.client, cfg)

	a.monitor.SetOnStatus(func(s daemon.Status) {
		glib.IdleAdd(func() {
			a.tray.SetStatus(s)
			if a.settings != nil {
				a.settings.SetStatus(s)
			}
			if a.issuesWindow != nil {
				a.issuesWindow.Refresh()
			}
			if a.activityWindow != nil {
				a.activityWindow.Refresh()
			}
		})
	})

	announced := false
	a.monitor.SetOnStateChange(func(oldState, newState common.SyncState) {
		if newState == common.StateDisconnected {
			glib.IdleAdd(func() {
				a.tray.SetUnavailable()
			})
		}
		// The first poll reports the initial state, not a transition.
		if !announced {
			announced = true
			return
		}
		if a.config.ShowNotifications {
			a.notifier.NotifyStateChange(oldState, newState)
		}
	})

	a.monitor.SetOnError(func(err error) {
		common.LogDebug("Status poll error: %v", err)
	})

	a.monitor.Start()
}

// setupAppIcon sets up the application icon
func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	if execPath, err := os.Executable(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(filepath.Dir(execPath), "assets", "icons"))
	}
	if cwd, err := os.Getwd(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(cwd, "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName("maestral")
}

// GetConfig returns the configuration
func (a *Application) GetConfig() *config.Config {
	return a.config
}

// GetVersion returns the application version
func (a *Application) GetVersion() string {
	return a.version
}

// ApplyTheme applies the specified theme to the application.
// Supported values: "auto" (system default), "light", "dark"
func (a *Application) ApplyTheme(theme string) {
	settings := gtk.SettingsGetDefault()
	if settings == nil {
		return
	}

	switch theme {
	case common.ThemeLight:
		settings.SetObjectProperty("gtk-application-prefer-dark-theme", false)
	case common.ThemeDark:
		settings.SetObjectProperty("gtk-application-prefer-dark-theme", true)
	default:
		// auto: follow the system scheme
	}
}

// showSettings presents the settings window, creating it on first use.
func (a *Application) showSettings() {
	if a.settings == nil {
		a.settings = NewSettingsWindow(a)
		a.settings.ConnectClosed(func() { a.settings = nil })
	}
	a.settings.Show()
}

// showSelectiveSync opens the selective sync dialog unless one is open.
func (a *Application) showSelectiveSync() {
	if a.syncDialog != nil {
		a.syncDialog.Present()
		return
	}
	if a.client == nil {
		showError(nil, "Maestral Unavailable", "Could not reach the Maestral daemon on the session bus.")
		return
	}

	dialog, err := NewSelectiveSyncDialog(a)
	if err != nil {
		common.LogError("Could not open selective sync: %v", err)
		showError(nil, "Selective Sync", "Could not load the excluded folders: "+err.Error())
		return
	}
	a.syncDialog = dialog
	dialog.ConnectClosed(func() { a.syncDialog = nil })
	dialog.Show()
}

// showSyncIssues presents the list of items that failed to sync.
func (a *Application) showSyncIssues() {
	if a.issuesWindow == nil {
		a.issuesWindow = newSyncIssuesWindow(a)
		a.issuesWindow.ConnectClosed(func() { a.issuesWindow = nil })
	}
	a.issuesWindow.Show()
}

// showActivity presents the recent changes window.
func (a *Application) showActivity() {
	if a.activityWindow == nil {
		a.activityWindow = newActivityWindow(a)
		a.activityWindow.ConnectClosed(func() { a.activityWindow = nil })
	}
	a.activityWindow.Show()
}

// confirmRebuildIndex asks before rebuilding the daemon's index.
func (a *Application) confirmRebuildIndex() {
	if a.client == nil {
		showError(nil, "Maestral Unavailable", "Could not reach the Maestral daemon on the session bus.")
		return
	}
	showConfirm(nil, "Rebuild the index?",
		"Maestral compares every local file with Dropbox again. This can take a while. Syncing is paused until it completes.",
		"Rebuild", func() {
			go a.rebuildIndex()
		})
}

// rebuildIndex must not run on the GTK thread.
func (a *Application) rebuildIndex() {
	ctx, cancel := context.WithTimeout(context.Background(), common.DaemonCallTimeout)
	defer cancel()

	if err := a.client.RebuildIndex(ctx); err != nil {
		common.LogError("Could not rebuild index: %v", err)
		glib.IdleAdd(func() {
			showError(nil, "Rebuild Index", "Could not start rebuilding the index: "+err.Error())
		})
		return
	}
	a.monitor.CheckNow(ctx)
}

// unlink asks the daemon to unlink the account. It blocks on the daemon
// and must not run on the GTK thread.
func (a *Application) unlink() error {
	if a.client == nil {
		return common.ErrDaemonUnavailable
	}
	ctx, cancel := context.WithTimeout(context.Background(), common.DaemonCallTimeout)
	defer cancel()

	if err := a.client.Unlink(ctx); err != nil {
		common.LogError("Could not unlink account: %v", err)
		return err
	}
	common.LogInfo("Account unlinked from %s", a.client.ConfigName())
	a.monitor.CheckNow(ctx)
	return nil
}

// setPaused pauses or resumes syncing. It blocks on the daemon and must
// not run on the GTK thread.
func (a *Application) setPaused(paused bool) {
	if a.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), common.DaemonCallTimeout)
	defer cancel()

	var err error
	if paused {
		err = a.client.Pause(ctx)
	} else {
		err = a.client.Resume(ctx)
	}
	if err != nil {
		common.LogError("Could not change pause state: %v", err)
		return
	}
	a.monitor.CheckNow(ctx)
}

// Quit closes the application
func (a *Application) Quit() {
	a.app.Quit()
}

// onShutdown releases the daemon connection and stops polling.
func (a *Application) onShutdown() {
	if a.syncDialog != nil {
		a.syncDialog.Abort()
	}
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.client != nil {
		a.client.Close()
	}
	if a.journal != nil {
		a.journal.Close()
	}
	a.notifier.Close()
	common.LogInfo("Application shutdown completed")
}
