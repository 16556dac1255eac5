package ui

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/maestral-gtk/common"
)

// showError displays an error dialog. parent may be nil.
func showError(parent *gtk.Window, title, message string) {
	showMessage(parent, "dialog-error-symbolic", title, message)
}

// showInfo displays an information dialog. parent may be nil.
func showInfo(parent *gtk.Window, title, message string) {
	showMessage(parent, "dialog-information-symbolic", title, message)
}

func showMessage(parent *gtk.Window, iconName, title, message string) {
	window := gtk.NewWindow()
	window.SetTitle(title)
	if parent != nil {
		window.SetTransientFor(parent)
		window.SetModal(true)
	}
	window.SetDefaultSize(350, 150)
	window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 12)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(common.DialogMargin)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)
	mainBox.SetHAlign(gtk.AlignCenter)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(48)
	mainBox.Append(icon)

	titleLabel := gtk.NewLabel(title)
	titleLabel.AddCSSClass("heading")
	mainBox.Append(titleLabel)

	msgLabel := gtk.NewLabel(message)
	msgLabel.SetWrap(true)
	msgLabel.SetMaxWidthChars(40)
	mainBox.Append(msgLabel)

	okBtn := gtk.NewButtonWithLabel("OK")
	okBtn.SetHAlign(gtk.AlignCenter)
	okBtn.SetMarginTop(12)
	okBtn.ConnectClicked(func() {
		window.Close()
	})
	mainBox.Append(okBtn)

	window.SetChild(mainBox)
	window.Show()
}

// showConfirm asks before a destructive action. onConfirm runs on the
// GTK thread after the dialog closed.
func showConfirm(parent *gtk.Window, title, detail, action string, onConfirm func()) {
	window := gtk.NewWindow()
	window.SetTitle(title)
	if parent != nil {
		window.SetTransientFor(parent)
		window.SetModal(true)
	}
	window.SetDefaultSize(350, 180)
	window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 0)

	contentBox := gtk.NewBox(gtk.OrientationVertical, 12)
	contentBox.SetMarginTop(common.DialogMargin)
	contentBox.SetMarginBottom(12)
	contentBox.SetMarginStart(common.DialogMargin)
	contentBox.SetMarginEnd(common.DialogMargin)
	contentBox.SetHAlign(gtk.AlignCenter)

	icon := gtk.NewImage()
	icon.SetFromIconName("dialog-warning-symbolic")
	icon.SetPixelSize(48)
	contentBox.Append(icon)

	titleLabel := gtk.NewLabel(title)
	titleLabel.AddCSSClass("heading")
	contentBox.Append(titleLabel)

	detailLabel := gtk.NewLabel(detail)
	detailLabel.AddCSSClass("dim-label")
	detailLabel.SetWrap(true)
	detailLabel.SetMaxWidthChars(40)
	contentBox.Append(detailLabel)

	mainBox.Append(contentBox)

	buttonBox := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBox.SetHAlign(gtk.AlignCenter)
	buttonBox.SetMarginTop(12)
	buttonBox.SetMarginBottom(common.DialogMargin)

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.ConnectClicked(func() {
		window.Close()
	})
	buttonBox.Append(cancelBtn)

	actionBtn := gtk.NewButtonWithLabel(action)
	actionBtn.AddCSSClass("destructive-action")
	actionBtn.ConnectClicked(func() {
		window.Close()
		onConfirm()
	})
	buttonBox.Append(actionBtn)

	mainBox.Append(buttonBox)

	window.SetChild(mainBox)
	window.Show()
}

// showAbout displays the about dialog.
func showAbout(parent *gtk.Window, version string) {
	about := gtk.NewAboutDialog()
	if parent != nil {
		about.SetTransientFor(parent)
		about.SetModal(true)
	}

	about.SetProgramName(common.AppName)
	about.SetLogoIconName("maestral")
	about.SetVersion(version)
	about.SetComments("Desktop front-end for the Maestral Dropbox client.")
	about.SetWebsite("https://maestral.app")
	about.SetWebsiteLabel("maestral.app")
	about.SetLicenseType(gtk.LicenseMITX11)

	about.Show()
}
