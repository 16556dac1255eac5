package ui

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/maestral-gtk/common"
)

const (
	notifyBusName = "org.freedesktop.Notifications"
	notifyPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod  = "org.freedesktop.Notifications.Notify"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// Notification represents a system notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Icon    string
}

func (n Notification) icon() string {
	if n.Icon != "" {
		return n.Icon
	}
	switch n.Type {
	case NotificationWarning:
		return "dialog-warning"
	case NotificationError:
		return "dialog-error"
	default:
		return "maestral"
	}
}

// urgency returns the freedesktop urgency level and its notify-send name.
func (n Notification) urgency() (byte, string) {
	switch n.Type {
	case NotificationError:
		return 2, "critical"
	case NotificationWarning:
		return 1, "normal"
	default:
		return 0, "low"
	}
}

// Notifier sends desktop notifications through the notification
// service on the session bus, falling back to notify-send.
type Notifier struct {
	mu   sync.Mutex
	conn *dbus.Conn
	log  *common.ComponentLogger
}

var _ common.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier. The bus connection is opened on first use.
func NewNotifier() *Notifier {
	return &Notifier{log: common.GetLogger().Named("notify")}
}

// Notify sends an informational notification.
func (n *Notifier) Notify(title, message string) error {
	return n.Show(Notification{Title: title, Message: message, Type: NotificationInfo})
}

// Show displays a notification.
func (n *Notifier) Show(no Notification) error {
	err := n.showDBus(no)
	if err == nil {
		return nil
	}
	n.log.Debug("notification service unavailable, using notify-send: %v", err)
	return n.showCommand(no)
}

func (n *Notifier) connection() (*dbus.Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn != nil && n.conn.Connected() {
		return n.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	n.conn = conn
	return conn, nil
}

func (n *Notifier) showDBus(no Notification) error {
	conn, err := n.connection()
	if err != nil {
		return err
	}
	level, _ := no.urgency()
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(level),
	}
	call := conn.Object(notifyBusName, notifyPath).Call(notifyMethod, 0,
		common.AppName, uint32(0), no.icon(), no.Title, no.Message,
		[]string{}, hints, int32(-1))
	return call.Err
}

func (n *Notifier) showCommand(no Notification) error {
	_, urgency := no.urgency()
	cmd := exec.Command("notify-send",
		"--app-name="+common.AppName,
		"--icon="+no.icon(),
		"--urgency="+urgency,
		no.Title,
		no.Message,
	)
	if err := cmd.Run(); err != nil {
		n.log.Warn("Error showing notification: %v", err)
		return err
	}
	return nil
}

// Close releases the bus connection.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
}

// NotifyStateChange announces sync state transitions worth a popup.
func (n *Notifier) NotifyStateChange(oldState, newState common.SyncState) {
	var no Notification
	switch {
	case newState == common.StateError:
		no = Notification{Title: "Sync Error", Message: "Maestral could not sync some files.", Type: NotificationError}
	case newState == common.StateDisconnected && oldState != common.StateDisconnected:
		no = Notification{Title: "Connection Lost", Message: "Maestral is offline. Syncing will resume when the connection is back.", Type: NotificationWarning}
	case newState == common.StateIdle && oldState == common.StateDisconnected:
		no = Notification{Title: "Connected", Message: "Maestral is back online.", Type: NotificationSuccess}
	case newState == common.StatePaused:
		no = Notification{Title: "Syncing Paused", Message: "Changes will not be synced until you resume.", Type: NotificationInfo}
	default:
		return
	}
	n.Show(no)
}

// NotifySelectionUpdated confirms a committed selective sync change.
func (n *Notifier) NotifySelectionUpdated(excluded int) {
	n.Show(Notification{
		Title:   "Selective Sync Updated",
		Message: fmt.Sprintf("%d folders excluded from syncing.", excluded),
		Type:    NotificationSuccess,
	})
}
