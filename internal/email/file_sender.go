package email

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fileEntryEnd = "=== end ===\n\n"

// FileEmailSender appends every message to a local file so outgoing mail can
// be inspected on hosts without SMTP.
type FileEmailSender struct {
	mu   sync.Mutex
	path string
}

// NewFileEmailSender creates the parent directory and checks the file can be
// opened for appending.
func NewFileEmailSender(path string) (*FileEmailSender, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("email log file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("email log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("email log file: %w", err)
	}
	_ = f.Close()
	return &FileEmailSender{path: path}, nil
}

func (s *FileEmailSender) Send(_ context.Context, to []string, subject string, rawMessage []byte) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s to=%s subject=%q ===\n", time.Now().UTC().Format(time.RFC3339), strings.Join(to, ","), subject)
	sb.Write(rawMessage)
	sb.WriteString(fileEntryEnd)

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("email log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to append email to %s: %w", s.path, err)
	}
	return nil
}
