// Package daemon provides access to a running Maestral sync daemon.
//
// The daemon owns every sync decision; this package only relays requests to it
// over the session bus and reports what it says back:
//
//   - Client is the request surface used by the tray, the CLI and the
//     selective sync dialog.
//   - DBusClient implements Client on a private D-Bus connection, so each
//     listing worker can hold its own connection while status polling keeps
//     using the primary one.
//   - StatusMonitor polls the primary client and reports state changes.
//   - ListConfigs discovers the daemon instances configured for this user.
//
// Usage:
//
//	client, err := daemon.Dial(ctx, daemon.DialOptions{ConfigName: "maestral"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	status, err := client.Status(ctx)
package daemon
