package security

import (
	"strings"
	"sync/atomic"
	"unicode"
)

// MaxMessageLength is Telegram's limit for one text message.
const MaxMessageLength = 4096

// DetectionMetrics tracks security detection events
type DetectionMetrics struct {
	SuspiciousMessages int64
	SanitizedCells     int64
}

// Detector flags inbound chat text that looks like an injection attempt and
// neutralises values before they are written to a spreadsheet.
type Detector struct {
	metrics *DetectionMetrics
}

// NewDetector creates a new security detector
func NewDetector() *Detector {
	return &Detector{metrics: &DetectionMetrics{}}
}

var suspiciousPatterns = []string{
	"=importxml", "=importdata", "=importhtml", "=importrange", "=image(",
	"=hyperlink", "=webservice", "=cmd|", "<script", "javascript:",
	"union select", "etc/passwd",
}

// DetectSuspiciousText reports whether text carries a spreadsheet formula
// payload, markup injection or control characters.
func (d *Detector) DetectSuspiciousText(text string) bool {
	suspicious := len(text) > MaxMessageLength

	lower := strings.ToLower(text)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lower, pattern) {
			suspicious = true
			break
		}
	}

	if !suspicious {
		for _, r := range text {
			if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
				suspicious = true
				break
			}
		}
	}

	if suspicious {
		atomic.AddInt64(&d.metrics.SuspiciousMessages, 1)
	}
	return suspicious
}

// SanitizeCell makes s safe for a USER_ENTERED write: text that Sheets
// would evaluate as a formula gets a leading apostrophe, which Sheets
// stores as a literal marker and does not display.
func (d *Detector) SanitizeCell(s string) string {
	out := SanitizeCell(s)
	if out != s && d != nil {
		atomic.AddInt64(&d.metrics.SanitizedCells, 1)
	}
	return out
}

// SanitizeCell is Detector.SanitizeCell without metrics.
func SanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

// GetMetrics returns current security metrics
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousMessages: atomic.LoadInt64(&d.metrics.SuspiciousMessages),
		SanitizedCells:     atomic.LoadInt64(&d.metrics.SanitizedCells),
	}
}
