package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileRepository appends entries to a JSON lines file.
type FileRepository struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *json.Encoder
}

var (
	_ Repository = (*FileRepository)(nil)
	_ Searcher   = (*FileRepository)(nil)
)

func NewFileRepository(path string) (*FileRepository, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log file: %w", err)
	}
	return &FileRepository{
		path:    path,
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (f *FileRepository) StoreBatch(ctx context.Context, entries []AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.encoder.Encode(e); err != nil {
			return fmt.Errorf("writing audit log entry %s: %w", e.CorrelationID, err)
		}
	}
	return f.file.Sync()
}

// QueryLogs scans the whole file; it is meant for small deployments and tooling.
func (f *FileRepository) QueryLogs(ctx context.Context, from, to time.Time, actorID, resourceID string) ([]AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening audit log file: %w", err)
	}
	defer file.Close()

	filter := Filter{ActorID: actorID, ResourceID: resourceID, From: from, To: to}
	var out []AuditEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var e AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("corrupt audit log line: %w", err)
		}
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, scanner.Err()
}

func (f *FileRepository) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
