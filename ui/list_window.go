package ui

import (
	"context"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon"
)

// listItem is one row of the sync issues or activity list.
type listItem struct {
	iconName string
	title    string
	detail   string
	url      string
}

// listLoader fetches rows from the daemon. It runs off the GTK thread.
// With replace set the list is rebuilt, otherwise the rows are put on top.
type listLoader func(ctx context.Context, client daemon.Client) (items []listItem, replace bool, err error)

// listWindow shows daemon-reported items and reloads them on every status poll.
type listWindow struct {
	app     *Application
	window  *gtk.Window
	listBox *gtk.ListBox
	empty   *gtk.Label
	load    listLoader
	loading bool
	count   int

	onClosed []func()
}

func newListWindow(app *Application, title, emptyText string, load listLoader) *listWindow {
	lw := &listWindow{app: app, load: load}

	lw.window = gtk.NewWindow()
	lw.window.SetTitle(title)
	lw.window.SetDefaultSize(460, 520)
	app.app.AddWindow(lw.window)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 12)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(common.DialogMargin)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)

	lw.empty = gtk.NewLabel(emptyText)
	lw.empty.AddCSSClass("dim-label")
	lw.empty.SetVExpand(true)
	mainBox.Append(lw.empty)

	lw.listBox = gtk.NewListBox()
	lw.listBox.SetSelectionMode(gtk.SelectionNone)
	lw.listBox.AddCSSClass("event-list")

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scrolled.SetChild(lw.listBox)
	mainBox.Append(scrolled)

	lw.window.SetChild(mainBox)
	lw.window.ConnectCloseRequest(func() bool {
		for _, fn := range lw.onClosed {
			fn()
		}
		return false
	})
	return lw
}

// Refresh reloads the items unless a load is already running.
func (lw *listWindow) Refresh() {
	client := lw.app.client
	if lw.loading || client == nil {
		return
	}
	lw.loading = true

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), common.DaemonCallTimeout)
		defer cancel()
		items, replace, err := lw.load(ctx, client)

		glib.IdleAdd(func() {
			lw.loading = false
			if err != nil {
				common.LogWarn("Could not load %s: %v", lw.window.Title(), err)
				return
			}
			lw.render(items, replace)
		})
	}()
}

func (lw *listWindow) render(items []listItem, replace bool) {
	if replace {
		for lw.listBox.FirstChild() != nil {
			lw.listBox.Remove(lw.listBox.FirstChild())
		}
		lw.count = 0
	}
	for i, item := range items {
		lw.listBox.Insert(lw.createRow(item), i)
		lw.count++
	}
	lw.empty.SetVisible(lw.count == 0)
}

func (lw *listWindow) createRow(item listItem) *gtk.ListBoxRow {
	row := gtk.NewListBoxRow()
	row.SetActivatable(false)

	box := gtk.NewBox(gtk.OrientationHorizontal, 12)
	box.SetMarginTop(8)
	box.SetMarginBottom(8)
	box.SetMarginStart(8)
	box.SetMarginEnd(8)

	icon := gtk.NewImage()
	icon.SetFromIconName(item.iconName)
	icon.SetPixelSize(32)
	box.Append(icon)

	textBox := gtk.NewBox(gtk.OrientationVertical, 2)
	textBox.SetHExpand(true)

	title := gtk.NewLabel(item.title)
	title.SetXAlign(0)
	title.AddCSSClass("heading")
	textBox.Append(title)

	detail := gtk.NewLabel(item.detail)
	detail.SetXAlign(0)
	detail.SetWrap(true)
	detail.AddCSSClass("dim-label")
	textBox.Append(detail)
	box.Append(textBox)

	if item.url != "" {
		link := gtk.NewLinkButtonWithLabel(item.url, "View online")
		link.SetVAlign(gtk.AlignCenter)
		box.Append(link)
	}

	row.SetChild(box)
	return row
}

// ConnectClosed registers fn to run when the window closes.
func (lw *listWindow) ConnectClosed(fn func()) {
	lw.onClosed = append(lw.onClosed, fn)
}

// Show presents the window and loads its items.
func (lw *listWindow) Show() {
	lw.window.Present()
	lw.Refresh()
}

func itemIcon(isFolder bool) string {
	if isFolder {
		return "folder-symbolic"
	}
	return "text-x-generic-symbolic"
}

// newSyncIssuesWindow lists the items the daemon could not sync.
func newSyncIssuesWindow(app *Application) *listWindow {
	return newListWindow(app, common.AppName+" Sync Issues", "No sync issues.",
		func(ctx context.Context, client daemon.Client) ([]listItem, bool, error) {
			issues, err := client.SyncErrors(ctx)
			if err != nil {
				return nil, false, err
			}
			items := make([]listItem, 0, len(issues))
			for _, issue := range issues {
				items = append(items, listItem{
					iconName: "dialog-warning-symbolic",
					title:    issue.Name(),
					detail:   issue.Summary(),
					url:      daemon.PreviewURL(issue.DbxPath),
				})
			}
			return items, true, nil
		})
}

// newActivityWindow lists recent sync events, newest first. Events already
// shown stay in place and new ones are added on top.
func newActivityWindow(app *Application) *listWindow {
	feed := daemon.NewActivityFeed()
	return newListWindow(app, common.AppName+" Activity", "No recent changes.",
		func(ctx context.Context, client daemon.Client) ([]listItem, bool, error) {
			history, err := client.History(ctx)
			if err != nil {
				return nil, false, err
			}
			events := feed.Update(history)
			items := make([]listItem, 0, len(events))
			for _, e := range events {
				url := ""
				if e.ChangeType != "removed" {
					url = daemon.PreviewURL(e.DbxPath)
				}
				items = append(items, listItem{
					iconName: itemIcon(e.IsFolder),
					title:    e.Name(),
					detail:   e.Summary(),
					url:      url,
				})
			}
			return items, false, nil
		})
}
