package ui

import (
	"context"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/config"
	"github.com/yllada/maestral-gtk/daemon"
	"github.com/yllada/maestral-gtk/keyring"
)

// SettingsWindow shows the linked account and the application settings.
type SettingsWindow struct {
	app    *Application
	window *gtk.Window
	config *config.Config

	accountLabel *gtk.Label
	emailLabel   *gtk.Label
	usageLabel   *gtk.Label
	credsLabel   *gtk.Label
	statusLabel  *gtk.Label
	unlinkBtn    *gtk.Button

	configDropDown *gtk.DropDown
	configNames    []string
	notifySwitch   *gtk.Switch
	themeDropDown  *gtk.DropDown
	themeIDs       []string
	workersSpin    *gtk.SpinButton

	onClosed []func()
}

// NewSettingsWindow creates the settings window.
func NewSettingsWindow(app *Application) *SettingsWindow {
	sw := &SettingsWindow{
		app:    app,
		config: app.config,
	}
	sw.build()
	sw.loadAccount()
	if s, ok := sw.lastStatus(); ok {
		sw.SetStatus(s)
	}
	return sw
}

func (sw *SettingsWindow) lastStatus() (daemon.Status, bool) {
	if sw.app.monitor == nil {
		return daemon.Status{}, false
	}
	return sw.app.monitor.Last()
}

// build constructs the window.
func (sw *SettingsWindow) build() {
	sw.window = gtk.NewWindow()
	sw.window.SetTitle(common.AppName + " Settings")
	sw.window.SetDefaultSize(500, 620)
	sw.window.SetResizable(false)
	sw.app.app.AddWindow(sw.window)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 20)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(16)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)

	// Account
	accountSection := sw.createSection("Account", "avatar-default-symbolic")
	accountCard := sw.createCard()

	sw.accountLabel = gtk.NewLabel("Loading account...")
	sw.emailLabel = gtk.NewLabel("")
	accountCard.Append(sw.createInfoRow(sw.accountLabel, sw.emailLabel))
	accountCard.Append(sw.createSeparator())

	sw.usageLabel = gtk.NewLabel("")
	accountCard.Append(sw.createSettingRow("Space Usage", "", sw.usageLabel))
	accountCard.Append(sw.createSeparator())

	sw.credsLabel = gtk.NewLabel("")
	accountCard.Append(sw.createSettingRow("Credentials", "Access token in the system keyring", sw.credsLabel))
	accountCard.Append(sw.createSeparator())

	sw.unlinkBtn = gtk.NewButtonWithLabel("Unlink...")
	sw.unlinkBtn.AddCSSClass("destructive-action")
	sw.unlinkBtn.SetVAlign(gtk.AlignCenter)
	sw.unlinkBtn.SetSensitive(false)
	sw.unlinkBtn.ConnectClicked(sw.onUnlink)
	accountCard.Append(sw.createSettingRow(
		"Unlink Account",
		"Stop syncing and remove this computer from the account",
		sw.unlinkBtn,
	))

	accountSection.Append(accountCard)
	mainBox.Append(accountSection)

	// Sync
	syncSection := sw.createSection("Sync", "emblem-synchronizing-symbolic")
	syncCard := sw.createCard()

	sw.statusLabel = gtk.NewLabel(common.StateDisconnected.String())
	sw.statusLabel.AddCSSClass("dim-label")
	syncCard.Append(sw.createSettingRow("Status", "", sw.statusLabel))
	syncCard.Append(sw.createSeparator())

	selectiveBtn := gtk.NewButtonWithLabel("Select...")
	selectiveBtn.SetVAlign(gtk.AlignCenter)
	selectiveBtn.ConnectClicked(sw.app.showSelectiveSync)
	syncCard.Append(sw.createSettingRow(
		"Selective Sync",
		"Choose which folders are synced to this computer",
		selectiveBtn,
	))
	syncCard.Append(sw.createSeparator())

	sw.configNames = []string{sw.config.ConfigName}
	if configs, err := daemon.ListConfigs(); err == nil {
		sw.configNames = sw.configNames[:0]
		for _, c := range configs {
			sw.configNames = append(sw.configNames, c.Name)
		}
		if sw.findIndex(sw.configNames, sw.config.ConfigName) < 0 {
			sw.configNames = append(sw.configNames, sw.config.ConfigName)
		}
	} else {
		common.LogWarn("Could not list daemon configs: %v", err)
	}
	sw.configDropDown = gtk.NewDropDown(gtk.NewStringList(sw.configNames), nil)
	sw.configDropDown.SetSelected(uint(max(sw.findIndex(sw.configNames, sw.config.ConfigName), 0)))
	sw.configDropDown.SetVAlign(gtk.AlignCenter)
	sw.configDropDown.AddCSSClass("flat")
	syncCard.Append(sw.createSettingRow(
		"Daemon Config",
		"Maestral instance controlled by this app",
		sw.configDropDown,
	))
	syncCard.Append(sw.createSeparator())

	sw.workersSpin = gtk.NewSpinButtonWithRange(1, common.MaxListingWorkers, 1)
	sw.workersSpin.SetValue(float64(sw.config.ListingWorkers))
	sw.workersSpin.SetVAlign(gtk.AlignCenter)
	syncCard.Append(sw.createSettingRow(
		"Folder Listings",
		"Folders loaded at the same time in Selective Sync",
		sw.workersSpin,
	))

	syncSection.Append(syncCard)
	mainBox.Append(syncSection)

	// Notifications
	notifySection := sw.createSection("Notifications", "preferences-system-notifications-symbolic")
	notifyCard := sw.createCard()

	sw.notifySwitch = gtk.NewSwitch()
	sw.notifySwitch.SetActive(sw.config.ShowNotifications)
	sw.notifySwitch.SetVAlign(gtk.AlignCenter)
	notifyCard.Append(sw.createSettingRow(
		"Sync Alerts",
		"Show notifications for connection changes and sync errors",
		sw.notifySwitch,
	))

	notifySection.Append(notifyCard)
	mainBox.Append(notifySection)

	// Appearance
	appearSection := sw.createSection("Appearance", "preferences-desktop-theme-symbolic")
	appearCard := sw.createCard()

	sw.themeIDs = []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark}
	sw.themeDropDown = gtk.NewDropDown(gtk.NewStringList([]string{"System Default", "Light", "Dark"}), nil)
	sw.themeDropDown.SetSelected(uint(max(sw.findIndex(sw.themeIDs, sw.config.Theme), 0)))
	sw.themeDropDown.SetVAlign(gtk.AlignCenter)
	sw.themeDropDown.AddCSSClass("flat")
	appearCard.Append(sw.createSettingRow(
		"Theme",
		"Choose the visual appearance of the application",
		sw.themeDropDown,
	))

	appearSection.Append(appearCard)
	mainBox.Append(appearSection)

	scrolled.SetChild(mainBox)
	rootBox.Append(scrolled)

	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(16)
	buttonBar.SetMarginBottom(20)
	buttonBar.SetMarginStart(common.DialogMargin)
	buttonBar.SetMarginEnd(common.DialogMargin)
	buttonBar.AddCSSClass("dialog-action-area")

	cancelBtn := gtk.NewButtonWithLabel("Close")
	cancelBtn.AddCSSClass("dialog-button")
	cancelBtn.ConnectClicked(func() {
		sw.window.Close()
	})
	buttonBar.Append(cancelBtn)

	saveBtn := gtk.NewButtonWithLabel("Save")
	saveBtn.AddCSSClass("suggested-action")
	saveBtn.AddCSSClass("dialog-button")
	saveBtn.ConnectClicked(func() {
		if sw.saveSettings() {
			sw.window.Close()
		}
	})
	buttonBar.Append(saveBtn)

	rootBox.Append(buttonBar)
	sw.window.SetChild(rootBox)

	sw.window.ConnectCloseRequest(func() bool {
		for _, fn := range sw.onClosed {
			fn()
		}
		return false
	})
}

// loadAccount fetches account details off the GTK thread.
func (sw *SettingsWindow) loadAccount() {
	client := sw.app.client
	if client == nil {
		sw.accountLabel.SetText("Maestral daemon not running")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), common.DaemonCallTimeout)
		defer cancel()

		account, err := client.AccountInfo(ctx)
		creds := keyring.Describe(account.ID)

		glib.IdleAdd(func() {
			if err != nil {
				common.LogWarn("Could not get account info: %v", err)
				sw.accountLabel.SetText("Account unavailable")
				return
			}
			sw.accountLabel.SetText(account.DisplayName)
			sw.emailLabel.SetText(account.Email)
			sw.usageLabel.SetText(account.Usage)
			sw.credsLabel.SetText(creds)
			sw.unlinkBtn.SetSensitive(account.ID != "")
		})
	}()
}

// onUnlink asks the daemon to unlink the account after confirmation.
func (sw *SettingsWindow) onUnlink() {
	showConfirm(sw.window, "Unlink this computer?",
		"Maestral will stop syncing. Files already on this computer are kept.",
		"Unlink", func() {
			sw.unlinkBtn.SetSensitive(false)
			go func() {
				err := sw.app.unlink()
				glib.IdleAdd(func() {
					if err != nil {
						sw.unlinkBtn.SetSensitive(true)
						showError(sw.window, "Error", "Could not unlink the account: "+err.Error())
						return
					}
					sw.accountLabel.SetText("Not linked")
					sw.emailLabel.SetText("")
					sw.usageLabel.SetText("")
					sw.credsLabel.SetText(keyring.Describe(""))
					showInfo(sw.window, "Account Unlinked",
						"Run \"maestral start\" to link an account again.")
				})
			}()
		})
}

// SetStatus shows the daemon status.
func (sw *SettingsWindow) SetStatus(s daemon.Status) {
	sw.statusLabel.SetText(s.Text)
	for _, class := range []string{"status-idle", "status-paused", "status-error"} {
		sw.statusLabel.RemoveCSSClass(class)
	}
	switch s.State {
	case common.StateIdle:
		sw.statusLabel.AddCSSClass("status-idle")
	case common.StatePaused:
		sw.statusLabel.AddCSSClass("status-paused")
	case common.StateError:
		sw.statusLabel.AddCSSClass("status-error")
	}
}

// createSection creates a section with icon and title.
func (sw *SettingsWindow) createSection(title string, iconName string) *gtk.Box {
	section := gtk.NewBox(gtk.OrientationVertical, 8)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(18)
	icon.AddCSSClass("dim-label")
	headerBox.Append(icon)

	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	headerBox.Append(label)

	section.Append(headerBox)
	return section
}

// createCard creates a styled card container for settings.
func (sw *SettingsWindow) createCard() *gtk.Box {
	card := gtk.NewBox(gtk.OrientationVertical, 0)
	card.AddCSSClass("card")
	card.AddCSSClass("preferences-card")
	return card
}

// createInfoRow creates a two-line row of labels.
func (sw *SettingsWindow) createInfoRow(title, subtitle *gtk.Label) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationVertical, 4)
	row.SetMarginTop(14)
	row.SetMarginBottom(14)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	title.SetXAlign(0)
	title.AddCSSClass("settings-title")
	row.Append(title)

	subtitle.SetXAlign(0)
	subtitle.AddCSSClass("dim-label")
	row.Append(subtitle)
	return row
}

// createSettingRow creates a row with title, description, and widget.
func (sw *SettingsWindow) createSettingRow(title string, description string, widget gtk.Widgetter) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(14)
	row.SetMarginBottom(14)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	textBox := gtk.NewBox(gtk.OrientationVertical, 4)
	textBox.SetHExpand(true)

	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	titleLabel.AddCSSClass("settings-title")
	textBox.Append(titleLabel)

	if description != "" {
		descLabel := gtk.NewLabel(description)
		descLabel.SetXAlign(0)
		descLabel.AddCSSClass("dim-label")
		descLabel.AddCSSClass("caption")
		descLabel.SetWrap(true)
		descLabel.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
		textBox.Append(descLabel)
	}

	row.Append(textBox)
	row.Append(widget)
	return row
}

// createSeparator creates a styled separator for cards.
func (sw *SettingsWindow) createSeparator() *gtk.Separator {
	sep := gtk.NewSeparator(gtk.OrientationHorizontal)
	sep.SetMarginStart(16)
	sep.SetMarginEnd(16)
	return sep
}

func (sw *SettingsWindow) findIndex(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// saveSettings writes the config file. It reports whether saving succeeded.
func (sw *SettingsWindow) saveSettings() bool {
	oldConfig := sw.config.ConfigName

	if idx := int(sw.configDropDown.Selected()); idx < len(sw.configNames) {
		sw.config.ConfigName = sw.configNames[idx]
	}
	if idx := int(sw.themeDropDown.Selected()); idx < len(sw.themeIDs) {
		sw.config.Theme = sw.themeIDs[idx]
	}
	sw.config.ShowNotifications = sw.notifySwitch.Active()
	sw.config.ListingWorkers = sw.workersSpin.ValueAsInt()

	if err := sw.config.Save(); err != nil {
		showError(sw.window, "Error", "Could not save settings: "+err.Error())
		return false
	}

	sw.app.ApplyTheme(sw.config.Theme)
	if sw.config.ConfigName != oldConfig {
		showInfo(nil, "Restart Required",
			"Restart "+common.AppName+" to control the "+sw.config.ConfigName+" instance.")
	}
	return true
}

// ConnectClosed registers fn to run when the window closes.
func (sw *SettingsWindow) ConnectClosed(fn func()) {
	sw.onClosed = append(sw.onClosed, fn)
}

// Show displays the window.
func (sw *SettingsWindow) Show() {
	sw.window.Present()
}
