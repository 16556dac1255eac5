package ui

import (
	"context"
	"errors"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/journal"
	"github.com/yllada/maestral-gtk/selsync"
)

// SelectiveSyncDialog lets the user choose which remote folders to sync.
// The tree is owned by the GTK thread: listing results arrive through
// glib.IdleAdd.
type SelectiveSyncDialog struct {
	app       *Application
	window    *gtk.Window
	session   *selsync.Session
	sessionID string

	listBox   *gtk.ListBox
	selectAll *gtk.CheckButton
	updateBtn *gtk.Button

	expanded    map[string]bool
	sortColumn  int
	sortOrder   selsync.SortOrder
	refreshing  bool
	updating    bool
	unsubscribe func()
	onClosed    []func()
}

// glibDispatch runs fn on the GTK main loop.
func glibDispatch(fn func()) {
	glib.IdleAdd(fn)
}

// NewSelectiveSyncDialog reads the excluded folders and builds the dialog.
func NewSelectiveSyncDialog(app *Application) (*SelectiveSyncDialog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), common.DaemonCallTimeout)
	defer cancel()

	session, err := selsync.BuildSession(ctx, app.client, app.dial, glibDispatch,
		selsync.Options{Workers: app.config.ListingWorkers})
	if err != nil {
		return nil, err
	}

	d := &SelectiveSyncDialog{
		app:       app,
		session:   session,
		sessionID: journal.NewSessionID(),
		expanded:  make(map[string]bool),
	}
	d.unsubscribe = session.Model().Subscribe(d.onModelEvent)
	d.build()
	d.refresh()
	return d, nil
}

// build constructs the dialog UI.
func (d *SelectiveSyncDialog) build() {
	d.window = gtk.NewWindow()
	d.window.SetTitle("Selective Sync")
	d.window.SetDefaultSize(480, 560)
	d.window.SetResizable(true)
	d.app.app.AddWindow(d.window)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 12)
	rootBox.SetMarginTop(common.DialogMargin)
	rootBox.SetMarginBottom(16)
	rootBox.SetMarginStart(common.DialogMargin)
	rootBox.SetMarginEnd(common.DialogMargin)

	titleLabel := gtk.NewLabel("Selective Sync")
	titleLabel.AddCSSClass("title-2")
	titleLabel.SetXAlign(0)
	rootBox.Append(titleLabel)

	descLabel := gtk.NewLabel("Select which folders to sync to this computer. Folders that are not selected will be removed from your local Dropbox.")
	descLabel.SetXAlign(0)
	descLabel.SetWrap(true)
	descLabel.AddCSSClass("dim-label")
	rootBox.Append(descLabel)

	// Header: select-all and sort buttons.
	header := gtk.NewBox(gtk.OrientationHorizontal, 8)
	d.selectAll = gtk.NewCheckButtonWithLabel("Select all")
	d.selectAll.SetHExpand(true)
	d.selectAll.ConnectToggled(func() {
		if d.updating {
			return
		}
		d.session.SelectAll(d.selectAll.Active())
	})
	header.Append(d.selectAll)

	nameTitle, _ := d.session.Model().HeaderData(selsync.ColumnName)
	nameSort := gtk.NewButtonWithLabel(nameTitle)
	nameSort.AddCSSClass("flat")
	nameSort.ConnectClicked(func() { d.resort(selsync.ColumnName) })
	header.Append(nameSort)

	stateTitle, _ := d.session.Model().HeaderData(selsync.ColumnIncluded)
	stateSort := gtk.NewButtonWithLabel(stateTitle)
	stateSort.AddCSSClass("flat")
	stateSort.ConnectClicked(func() { d.resort(selsync.ColumnIncluded) })
	header.Append(stateSort)
	rootBox.Append(header)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	d.listBox = gtk.NewListBox()
	d.listBox.AddCSSClass("boxed-list")
	d.listBox.AddCSSClass("sync-tree")
	d.listBox.SetSelectionMode(gtk.SelectionNone)
	scrolled.SetChild(d.listBox)

	frame := gtk.NewFrame("")
	frame.SetChild(scrolled)
	rootBox.Append(frame)

	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(8)
	buttonBar.AddCSSClass("dialog-action-area")

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.AddCSSClass("dialog-button")
	cancelBtn.ConnectClicked(func() {
		d.window.Close()
	})
	buttonBar.Append(cancelBtn)

	d.updateBtn = gtk.NewButtonWithLabel("Update")
	d.updateBtn.AddCSSClass("suggested-action")
	d.updateBtn.AddCSSClass("dialog-button")
	d.updateBtn.SetSensitive(false)
	d.updateBtn.ConnectClicked(d.onUpdate)
	buttonBar.Append(d.updateBtn)

	rootBox.Append(buttonBar)
	d.window.SetChild(rootBox)

	d.window.ConnectCloseRequest(func() bool {
		d.Abort()
		for _, fn := range d.onClosed {
			fn()
		}
		return false
	})
}

// onModelEvent coalesces model notifications into one redraw.
func (d *SelectiveSyncDialog) onModelEvent(e selsync.Event) {
	if d.refreshing {
		return
	}
	d.refreshing = true
	glib.IdleAdd(func() {
		d.refreshing = false
		d.refresh()
	})
}

// refresh rebuilds the rows from the model.
func (d *SelectiveSyncDialog) refresh() {
	if d.session == nil {
		return
	}

	for d.listBox.FirstChild() != nil {
		d.listBox.Remove(d.listBox.FirstChild())
	}
	for _, row := range selsync.VisibleRows(d.session.Model(), d.expanded) {
		d.listBox.Append(d.createRow(row))
	}

	_, failed := d.session.Model().DisplayedMessage()

	d.updating = true
	d.selectAll.SetActive(d.session.AllTopLevelChecked())
	d.updating = false
	d.selectAll.SetSensitive(!failed)
	d.updateBtn.SetSensitive(!failed && d.session.SelectionModified())
}

// createRow creates the widget for one visible row.
func (d *SelectiveSyncDialog) createRow(row selsync.VisibleRow) *gtk.ListBoxRow {
	lbRow := gtk.NewListBoxRow()
	lbRow.SetSelectable(false)
	lbRow.SetActivatable(false)

	box := gtk.NewBox(gtk.OrientationHorizontal, 8)
	box.SetMarginTop(4)
	box.SetMarginBottom(4)
	box.SetMarginStart(8 + row.Depth*common.TreeIndent)
	box.SetMarginEnd(8)
	n := row.Node

	if n.Kind() == selsync.KindMessage {
		if n.Message() == selsync.LoadingMessage {
			spinner := gtk.NewSpinner()
			spinner.Start()
			box.Append(spinner)
		}
		label := gtk.NewLabel(n.Message())
		label.SetXAlign(0)
		label.SetWrap(true)
		label.AddCSSClass("dim-label")
		box.Append(label)
		lbRow.SetChild(box)
		return lbRow
	}

	if n.IsFolder() {
		expander := gtk.NewButton()
		expander.AddCSSClass("flat")
		expander.AddCSSClass("tree-expander")
		if row.Expanded {
			expander.SetIconName("pan-down-symbolic")
		} else {
			expander.SetIconName("pan-end-symbolic")
		}
		key := n.PathLower()
		open := row.Expanded
		expander.ConnectClicked(func() {
			d.expanded[key] = !open
			d.refresh()
		})
		box.Append(expander)
	} else {
		spacer := gtk.NewBox(gtk.OrientationHorizontal, 0)
		spacer.SetSizeRequest(34, -1)
		box.Append(spacer)
	}

	check := gtk.NewCheckButton()
	state := n.CheckState()
	check.SetActive(state == selsync.Checked)
	check.SetInconsistent(state == selsync.PartiallyChecked)
	check.ConnectToggled(func() {
		d.session.Model().SetCheckState(n, n.CheckState().Toggled())
	})
	box.Append(check)

	icon := gtk.NewImage()
	if n.IsFolder() {
		icon.SetFromIconName("folder-symbolic")
	} else {
		icon.SetFromIconName("text-x-generic-symbolic")
	}
	box.Append(icon)

	label := gtk.NewLabel(d.session.Model().Data(n, selsync.ColumnName))
	label.SetXAlign(0)
	label.SetHExpand(true)
	box.Append(label)

	lbRow.SetChild(box)
	return lbRow
}

func (d *SelectiveSyncDialog) resort(column int) {
	if d.sortColumn == column && d.sortOrder == selsync.Ascending {
		d.sortOrder = selsync.Descending
	} else {
		d.sortOrder = selsync.Ascending
	}
	d.sortColumn = column
	d.session.Model().Sort(column, d.sortOrder)
}

// onUpdate commits the selection.
func (d *SelectiveSyncDialog) onUpdate() {
	ctx, cancel := context.WithTimeout(context.Background(), common.DaemonCallTimeout)
	defer cancel()

	original := d.session.Original()
	items, err := d.session.Commit(ctx)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrBusy):
		showError(d.window, "Maestral is busy",
			"Please try again when syncing has finished.")
		return
	case errors.Is(err, common.ErrNotConnected):
		// The tree now shows the connection message.
		return
	default:
		showError(d.window, "Could not update Selective Sync", err.Error())
		return
	}

	if d.app.journal != nil {
		if _, err := d.app.journal.Record(ctx, d.sessionID, d.session.ConfigName(), original, items); err != nil {
			common.LogWarn("Could not record selection change: %v", err)
		}
	}
	if d.app.config.ShowNotifications {
		go d.app.notifier.NotifySelectionUpdated(len(items))
	}
	d.window.Close()
}

// Abort stops outstanding listings and releases the session.
func (d *SelectiveSyncDialog) Abort() {
	if d.session == nil {
		return
	}
	d.unsubscribe()
	d.session.Close()
	d.session = nil
}

// ConnectClosed registers fn to run when the dialog closes.
func (d *SelectiveSyncDialog) ConnectClosed(fn func()) {
	d.onClosed = append(d.onClosed, fn)
}

// Present raises the dialog.
func (d *SelectiveSyncDialog) Present() {
	d.window.Present()
}

// Show displays the dialog.
func (d *SelectiveSyncDialog) Show() {
	d.window.Show()
}
