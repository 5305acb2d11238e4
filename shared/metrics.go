package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceMetrics tracks performance and success metrics for services
type ServiceMetrics struct {
	ServiceName           string                 `json:"service_name"`
	TotalRequests         int64                  `json:"total_requests"`
	SuccessfulRequests    int64                  `json:"successful_requests"`
	FailedRequests        int64                  `json:"failed_requests"`
	TotalProcessingTime   time.Duration          `json:"total_processing_time"`
	AverageProcessingTime time.Duration          `json:"average_processing_time"`
	LastUpdated           time.Time              `json:"last_updated"`
	CustomMetrics         map[string]interface{} `json:"custom_metrics"`
	mutex                 sync.RWMutex
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		ServiceName:   serviceName,
		LastUpdated:   time.Now(),
		CustomMetrics: make(map[string]interface{}),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRequests++
	m.TotalProcessingTime += processingTime
	m.AverageProcessingTime = time.Duration(int64(m.TotalProcessingTime) / m.TotalRequests)

	if success {
		m.SuccessfulRequests++
	} else {
		m.FailedRequests++
	}

	m.LastUpdated = time.Now()
}

// GetSuccessRate returns the success rate as a percentage
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalRequests == 0 {
		return 0.0
	}

	return float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100.0
}

// SetCustomMetric sets a custom metric value
func (m *ServiceMetrics) SetCustomMetric(key string, value interface{}) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.CustomMetrics[key] = value
	m.LastUpdated = time.Now()
}

// IncrementCustomCounter increments a custom counter metric
func (m *ServiceMetrics) IncrementCustomCounter(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current, exists := m.CustomMetrics[key]; exists {
		if counter, ok := current.(int64); ok {
			m.CustomMetrics[key] = counter + 1
		} else {
			m.CustomMetrics[key] = int64(1)
		}
	} else {
		m.CustomMetrics[key] = int64(1)
	}

	m.LastUpdated = time.Now()
}

// GetSnapshot returns a thread-safe snapshot of current metrics
func (m *ServiceMetrics) GetSnapshot() ServiceMetrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	customMetricsCopy := make(map[string]interface{})
	for k, v := range m.CustomMetrics {
		customMetricsCopy[k] = v
	}

	return ServiceMetrics{
		ServiceName:           m.ServiceName,
		TotalRequests:         m.TotalRequests,
		SuccessfulRequests:    m.SuccessfulRequests,
		FailedRequests:        m.FailedRequests,
		TotalProcessingTime:   m.TotalProcessingTime,
		AverageProcessingTime: m.AverageProcessingTime,
		LastUpdated:           m.LastUpdated,
		CustomMetrics:         customMetricsCopy,
	}
}

// LogSummary logs a comprehensive metrics summary
func (m *ServiceMetrics) LogSummary() {
	snapshot := m.GetSnapshot()

	logrus.WithFields(logrus.Fields{
		"service_name":            snapshot.ServiceName,
		"total_requests":          snapshot.TotalRequests,
		"successful_requests":     snapshot.SuccessfulRequests,
		"failed_requests":         snapshot.FailedRequests,
		"success_rate":            snapshot.GetSuccessRate(),
		"average_processing_time": snapshot.AverageProcessingTime,
		"total_processing_time":   snapshot.TotalProcessingTime,
		"last_updated":            snapshot.LastUpdated,
		"custom_metrics":          snapshot.CustomMetrics,
	}).Info("Service metrics summary")
}

// Reset resets all metrics to zero
func (m *ServiceMetrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRequests = 0
	m.SuccessfulRequests = 0
	m.FailedRequests = 0
	m.TotalProcessingTime = 0
	m.AverageProcessingTime = 0
	m.LastUpdated = time.Now()
	m.CustomMetrics = make(map[string]interface{})

	logrus.WithField("service_name", m.ServiceName).Info("Service metrics reset")
}

// ExtractionMetrics tracks success rates of field extraction from tender text
type ExtractionMetrics struct {
	DeadlineAttempts int `json:"deadline_attempts"`
	DeadlineSuccess  int `json:"deadline_success"`
	BudgetAttempts   int `json:"budget_attempts"`
	BudgetSuccess    int `json:"budget_success"`
	TimelineAttempts int `json:"timeline_attempts"`
	TimelineSuccess  int `json:"timeline_success"`
	HTMLParseErrors  int `json:"html_parse_errors"`
	mutex            sync.RWMutex
}

// NewExtractionMetrics creates a new extraction metrics tracker
func NewExtractionMetrics() *ExtractionMetrics {
	return &ExtractionMetrics{}
}

// RecordDeadlineAttempt records a deadline extraction attempt. Falling back to
// the default deadline counts as a miss.
func (m *ExtractionMetrics) RecordDeadlineAttempt(success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.DeadlineAttempts++
	if success {
		m.DeadlineSuccess++
	}
}

// RecordBudgetAttempt records a budget extraction attempt
func (m *ExtractionMetrics) RecordBudgetAttempt(success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.BudgetAttempts++
	if success {
		m.BudgetSuccess++
	}
}

// RecordTimelineAttempt records a timeline extraction attempt
func (m *ExtractionMetrics) RecordTimelineAttempt(success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TimelineAttempts++
	if success {
		m.TimelineSuccess++
	}
}

// RecordHTMLParseError records an HTML parsing error
func (m *ExtractionMetrics) RecordHTMLParseError() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.HTMLParseErrors++
}

// GetDeadlineSuccessRate returns the deadline extraction success rate
func (m *ExtractionMetrics) GetDeadlineSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.DeadlineAttempts == 0 {
		return 0.0
	}

	return float64(m.DeadlineSuccess) / float64(m.DeadlineAttempts) * 100.0
}

// GetBudgetSuccessRate returns the budget extraction success rate
func (m *ExtractionMetrics) GetBudgetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.BudgetAttempts == 0 {
		return 0.0
	}

	return float64(m.BudgetSuccess) / float64(m.BudgetAttempts) * 100.0
}

// LogSummary logs a comprehensive extraction metrics summary
func (m *ExtractionMetrics) LogSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	logrus.WithFields(logrus.Fields{
		"deadline_attempts":     m.DeadlineAttempts,
		"deadline_success":      m.DeadlineSuccess,
		"deadline_success_rate": m.GetDeadlineSuccessRate(),
		"budget_attempts":       m.BudgetAttempts,
		"budget_success":        m.BudgetSuccess,
		"budget_success_rate":   m.GetBudgetSuccessRate(),
		"timeline_attempts":     m.TimelineAttempts,
		"timeline_success":      m.TimelineSuccess,
		"html_parse_errors":     m.HTMLParseErrors,
	}).Info("Extraction metrics summary")
}
