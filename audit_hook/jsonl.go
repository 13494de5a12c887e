package audithook

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Compile-time interface check.
var _ Recorder = (*JSONLRecorder)(nil)

// jsonlRecord is the on-disk shape of one audit line: the event plus an
// envelope identifying it.
type jsonlRecord struct {
	EventID    string `json:"event_id"`
	RecordedAt string `json:"recorded_at"`
	*AuditEvent
}

// JSONLRecorder appends audit events to a JSON Lines file, one event per
// line. Each line carries a UUID and an RFC 3339 timestamp so external
// tooling can ingest the file as an event log.
type JSONLRecorder struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// OpenJSONL opens (or creates) an append-only JSONL audit log at path.
func OpenJSONL(path string) (*JSONLRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit_hook: open %s: %w", path, err)
	}

	return &JSONLRecorder{f: f, w: bufio.NewWriter(f)}, nil
}

// Record implements Recorder. Each event is flushed to the file before
// Record returns, so a crash loses at most the event being written.
func (r *JSONLRecorder) Record(_ context.Context, event *AuditEvent) error {
	rec := jsonlRecord{
		EventID:    uuid.NewString(),
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
		AuditEvent: event,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit_hook: marshal event: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.w.Write(line); err != nil {
		return fmt.Errorf("audit_hook: write event: %w", err)
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("audit_hook: write event: %w", err)
	}

	return r.w.Flush()
}

// Close flushes buffered events and closes the underlying file.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.w.Flush(); err != nil {
		return err
	}

	return r.f.Close()
}
