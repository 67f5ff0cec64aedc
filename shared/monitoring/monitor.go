package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// AlertSender notifies an operator about critical failures. Implemented by
// the email sender; nil means alerts are disabled.
type AlertSender interface {
	SendAlert(subject, body string) error
}

// Monitor keeps the outcome of the most recent run for the health endpoint.
type Monitor struct {
	mu                  sync.Mutex
	lastRunSuccess      bool
	lastRunTime         time.Time
	lastSummary         string
	consecutiveFailures int
	alerts              AlertSender
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// SetAlertSender enables critical-failure alert delivery.
func (m *Monitor) SetAlertSender(sender AlertSender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = sender
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.consecutiveFailures = 0

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	// Partial failures don't change health status
	log.Printf("⚠️  PARTIAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.consecutiveFailures++
	failures := m.consecutiveFailures
	alerts := m.alerts
	m.mu.Unlock()

	log.Printf("🚨 CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)

	if alerts != nil {
		subject := fmt.Sprintf("Autoposter critical failure (%d consecutive)", failures)
		body := fmt.Sprintf("Run failed after %v:\n\n%s\n", duration, err.Error())
		if sendErr := alerts.SendAlert(subject, body); sendErr != nil {
			log.Printf("Warning: failed to send failure alert: %v", sendErr)
		}
	}
}

func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run %s: %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("❌ Last run failed %s (%d consecutive): %s",
		m.lastRunTime.Format("Jan 2 15:04"), m.consecutiveFailures, m.lastSummary)
}
