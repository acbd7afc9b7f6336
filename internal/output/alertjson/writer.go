package alertjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"logsentry/internal/logger"
	"logsentry/pkg/models"
)

// Writer mirrors alerts to a JSON lines file for external pickup. The
// alert store remains the system of record; this sink is append-only
// and best-effort.
type Writer struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter creates a JSONL writer for alerts.
func NewWriter(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	logger.Infof("Alert JSON mirror initialized: %s", path)
	return &Writer{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// WriteAlerts writes a batch of alerts.
func (w *Writer) WriteAlerts(alerts []models.Alert) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range alerts {
		if err := w.encoder.Encode(&alerts[i]); err != nil {
			return fmt.Errorf("failed to encode alert: %w", err)
		}
	}
	return nil
}

// Close closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
