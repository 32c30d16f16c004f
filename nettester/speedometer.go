// Package nettester provides a diagnostic HTTP throughput client. It
// moves a requested number of bytes to or from a test endpoint over a
// fixed number of concurrent connections and reports the achieved
// throughput. Individual connection failures are logged and never abort
// sibling connections or the measurement as a whole.
package nettester

import (
	"fmt"
	"sync"
	"time"

	"github.com/yllada/vpn-access/common"
)

// Speedometer is the shared throughput accumulator for one measurement.
// All connections of a test add into the same instance.
type Speedometer struct {
	mu    sync.Mutex
	label string
	start time.Time
	bytes int64
}

// NewSpeedometer creates an accumulator and starts its clock.
func NewSpeedometer(label string) *Speedometer {
	return &Speedometer{
		label: label,
		start: time.Now(),
	}
}

// Add records n transferred bytes.
func (s *Speedometer) Add(n int64) {
	s.mu.Lock()
	s.bytes += n
	s.mu.Unlock()
}

// Bytes returns the total transferred so far.
func (s *Speedometer) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

// Elapsed returns the time since the measurement started.
func (s *Speedometer) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Throughput returns bytes per second since the measurement started.
func (s *Speedometer) Throughput() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Bytes()) / elapsed
}

// Report logs the measurement summary.
func (s *Speedometer) Report() {
	common.LogInfo("%s: %s in %v (%s/s)",
		s.label, FormatBytes(s.Bytes()), s.Elapsed().Round(time.Millisecond),
		FormatBytes(int64(s.Throughput())))
}

// FormatBytes renders a byte count in a human-readable unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}
