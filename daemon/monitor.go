package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/yllada/maestral-gtk/common"
)

// MonitorConfig holds configuration for the status monitor.
type MonitorConfig struct {
	// Interval is how often to poll the daemon.
	Interval time.Duration
	// CallTimeout bounds a single status request.
	CallTimeout time.Duration
	// FailureThreshold is how many consecutive failed polls mark the daemon offline.
	FailureThreshold int
}

// DefaultMonitorConfig returns the default polling configuration.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:         common.StatusInterval,
		CallTimeout:      common.DaemonCallTimeout,
		FailureThreshold: 2,
	}
}

// StatusMonitor polls the primary daemon connection and reports changes.
type StatusMonitor struct {
	mu            sync.RWMutex
	config        MonitorConfig
	client        Client
	running       bool
	stopChan      chan struct{}
	doneChan      chan struct{}
	last          Status
	hasLast       bool
	failures      int
	onStateChange func(oldState, newState common.SyncState)
	onStatus      func(Status)
	onError       func(error)
}

// NewStatusMonitor creates a monitor for the given client.
func NewStatusMonitor(client Client, config MonitorConfig) *StatusMonitor {
	if config.Interval <= 0 {
		config.Interval = common.StatusInterval
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = common.DaemonCallTimeout
	}
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 1
	}
	return &StatusMonitor{
		config:   config,
		client:   client,
		stopChan: make(chan struct{}),
	}
}

// SetOnStateChange sets a callback for sync state transitions.
func (m *StatusMonitor) SetOnStateChange(callback func(oldState, newState common.SyncState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = callback
}

// SetOnStatus sets a callback invoked after every successful poll.
func (m *StatusMonitor) SetOnStatus(callback func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatus = callback
}

// SetOnError sets a callback for failed polls.
func (m *StatusMonitor) SetOnError(callback func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = callback
}

// Start begins the polling loop.
func (m *StatusMonitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	m.mu.Unlock()

	common.LogInfo("Status monitor started (interval: %v)", m.config.Interval)

	go m.runLoop(m.stopChan, m.doneChan)
}

// Stop stops the polling loop and waits for an in-flight poll to finish.
func (m *StatusMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	done := m.doneChan
	m.mu.Unlock()

	<-done
	common.LogInfo("Status monitor stopped")
}

// IsRunning returns whether the monitor is currently polling.
func (m *StatusMonitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Last returns the most recent status, if any poll has succeeded.
func (m *StatusMonitor) Last() (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.hasLast
}

func (m *StatusMonitor) runLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	m.CheckNow(ctx)

	m.mu.RLock()
	interval := m.config.Interval
	m.mu.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow polls the daemon once and fires the callbacks.
func (m *StatusMonitor) CheckNow(ctx context.Context) {
	m.mu.RLock()
	timeout := m.config.CallTimeout
	threshold := m.config.FailureThreshold
	m.mu.RUnlock()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	status, err := m.client.Status(callCtx)
	cancel()

	m.mu.Lock()
	oldState := common.StateDisconnected
	if m.hasLast {
		oldState = m.last.State
	}

	if err != nil {
		m.failures++
		common.LogWarn("Status poll failed (attempt %d/%d): %v",
			m.failures, threshold, err)
		onError := m.onError
		var changed bool
		if m.failures >= threshold && m.hasLast && m.last.State != common.StateDisconnected {
			m.last = Status{State: common.StateDisconnected}
			changed = true
		}
		onStateChange := m.onStateChange
		m.mu.Unlock()

		if onError != nil {
			onError(err)
		}
		if changed && onStateChange != nil {
			onStateChange(oldState, common.StateDisconnected)
		}
		return
	}

	m.failures = 0
	first := !m.hasLast
	m.last = status
	m.hasLast = true
	onStatus := m.onStatus
	onStateChange := m.onStateChange
	m.mu.Unlock()

	if first || oldState != status.State {
		common.LogInfo("Daemon state changed: %s -> %s", oldState, status.State)
		if onStateChange != nil {
			onStateChange(oldState, status.State)
		}
	}
	if onStatus != nil {
		onStatus(status)
	}
}
