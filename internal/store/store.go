package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists serial capture logs under the workspace .ardu/
// directory: raw line output in logs/, plus an index of capture records.
// Deploys themselves stay stateless; this is debug output retention for
// the operator.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at the given directory (typically .ardu/).
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) logsDir() string {
	return filepath.Join(s.root, "logs")
}

// SerialLogs returns all recorded capture sessions.
func (s *Store) SerialLogs() ([]SerialLog, error) {
	var records []SerialLog
	err := s.loadRecords("serial_logs.json", &records)
	return records, err
}

// SaveCapture writes the captured lines to a timestamped file in the
// logs directory and appends an index record. Returns the log file path.
func (s *Store) SaveCapture(port string, baudRate int, lines []string) (string, error) {
	dir := s.logsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	now := time.Now()
	name := fmt.Sprintf("serial-%s-%s.log",
		sanitizePort(port), now.Format("20060102-150405"))
	path := filepath.Join(dir, name)

	data := strings.Join(lines, "\n")
	if len(lines) > 0 {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return "", err
	}

	record := SerialLog{
		ID:        uuid.NewString(),
		Port:      port,
		BaudRate:  baudRate,
		Timestamp: now,
		LineCount: len(lines),
		LogFile:   path,
	}
	if err := s.appendRecord("serial_logs.json", record); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) appendRecord(filename string, record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}

	path := filepath.Join(s.root, filename)

	// Read existing records
	var records []json.RawMessage
	if data, err := os.ReadFile(path); err == nil {
		json.Unmarshal(data, &records)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	records = append(records, raw)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) loadRecords(filename string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.root, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// sanitizePort turns a device path into a filename-safe fragment.
func sanitizePort(port string) string {
	return strings.Trim(strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(port), "-")
}
