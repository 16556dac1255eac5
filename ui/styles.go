package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Theme-aware styles; colors derive from currentColor where possible.
const appCSS = `
/* Settings cards */
.preferences-card {
    border-radius: 12px;
    border: 1px solid alpha(currentColor, 0.15);
}

.settings-title {
    font-weight: 600;
}

/* Dialog buttons */
.dialog-action-area {
    border-top: 1px solid alpha(currentColor, 0.1);
    padding-top: 12px;
}

.dialog-button {
    min-width: 96px;
    border-radius: 6px;
}

button.suggested-action {
    background-color: #0061fe;
    color: white;
}

button.suggested-action:hover {
    background-color: #0050d4;
}

button.suggested-action:disabled {
    background-color: alpha(#0061fe, 0.4);
}

/* Selective sync tree */
.sync-tree > row {
    min-height: 32px;
    border-bottom: 1px solid alpha(currentColor, 0.06);
}

.sync-tree > row:hover {
    background-color: alpha(currentColor, 0.04);
}

.sync-tree checkbutton:indeterminate check {
    background-color: alpha(#0061fe, 0.6);
}

.event-list > row {
    border-radius: 8px;
    margin-bottom: 6px;
    border: 1px solid alpha(currentColor, 0.1);
}

button.tree-expander {
    min-width: 26px;
    min-height: 26px;
    padding: 0;
}

/* Status */
.status-idle {
    color: #2ec27e;
}

.status-paused {
    color: #e5a50a;
}

.status-error {
    color: #e01b24;
}

list {
    background-color: transparent;
}

/* Flat button */
button.flat {
    background-color: transparent;
}

button.flat:hover {
    background-color: alpha(currentColor, 0.1);
}
`

// LoadStyles loads the custom CSS styles for the application.
// Should be called during application startup.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS)

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}
