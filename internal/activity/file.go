package activity

import (
	"context"
	"fmt"
	"os"
	"sync"
)

const lineTimeFormat = "2006-01-02 15:04:05"

// FileSink appends events to a log file, one line per event:
//
//	2024-05-01 13:37:00 - Login successful: user alice
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (or creates) the log file in append mode.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open activity log: %w", err)
	}
	return &FileSink{file: file}, nil
}

func (s *FileSink) Write(_ context.Context, event Event) error {
	line := fmt.Sprintf("%s - %s: %s\n", event.At.Format(lineTimeFormat), event.Action, event.Details)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.file.WriteString(line)
	return err
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
