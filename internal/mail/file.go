package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// FileOutbox writes every message to a directory instead of sending it.
// Each message produces an .html body and a .json metadata file.
type FileOutbox struct {
	dir     string
	mu      sync.Mutex
	seq     int
	nowFunc func() time.Time
}

// NewFileOutbox returns an outbox rooted at dir. The directory is created on first send.
func NewFileOutbox(dir string) (*FileOutbox, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, &ConfigurationError{Transport: NameFile, Reason: "MAIL_OUTBOX_DIR is required"}
	}
	return &FileOutbox{dir: dir, nowFunc: time.Now}, nil
}

func (f *FileOutbox) Name() string { return NameFile }

type outboxMetadata struct {
	Timestamp string   `json:"timestamp"`
	From      string   `json:"from"`
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
	Text      string   `json:"text,omitempty"`
}

func (f *FileOutbox) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &TransportError{Transport: NameFile, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return &TransportError{Transport: NameFile, Err: fmt.Errorf("create outbox: %w", err)}
	}

	now := f.nowFunc()
	f.seq++
	base := fmt.Sprintf("%s_%03d_%s", now.Format("2006_01_02_150405"), f.seq, sanitizeFilename(msg.Subject))

	if err := os.WriteFile(filepath.Join(f.dir, base+".html"), []byte(msg.HTML), 0o644); err != nil {
		return &TransportError{Transport: NameFile, Err: fmt.Errorf("write html: %w", err)}
	}

	meta, err := json.MarshalIndent(outboxMetadata{
		Timestamp: now.Format(time.RFC3339),
		From:      msg.From.String(),
		To:        msg.To,
		Subject:   msg.Subject,
		Text:      msg.Text,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outbox metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(f.dir, base+".json"), meta, 0o644); err != nil {
		return &TransportError{Transport: NameFile, Err: fmt.Errorf("write metadata: %w", err)}
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	if len(s) > 80 {
		s = s[:80]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
