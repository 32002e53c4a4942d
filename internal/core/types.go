package core

import (
	"io"
	"time"

	"github.com/JonMunkholm/csvrecords/internal/csvparse"
)

// ParseRequest describes one parse operation.
type ParseRequest struct {
	Name     string    // Optional label, usually the uploaded file name
	Input    io.Reader // Raw CSV bytes
	Encoding string    // Empty means the configured default
	Coercion string    // Empty means the configured default
	Persist  *bool     // nil means the configured default
}

// RunInfo describes a completed parse. Persisted runs are loaded back into
// the same shape.
type RunInfo struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Coercion    csvparse.Coercion `json:"coercion"`
	Encoding    string            `json:"encoding"`
	Headers     []string          `json:"headers"`
	RecordCount int               `json:"recordCount"`
	InputBytes  int64             `json:"inputBytes"`
	IPAddress   string            `json:"ipAddress,omitempty"`
	UserAgent   string            `json:"userAgent,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ParseResult is returned by Service.Parse.
type ParseResult struct {
	Run       RunInfo           `json:"run"`
	Records   []csvparse.Record `json:"records"`
	Duration  time.Duration     `json:"-"`
	Persisted bool              `json:"persisted"`
}
