package store

import "time"

// SerialLog indexes one saved serial capture session.
type SerialLog struct {
	ID        string    `json:"id"`
	Port      string    `json:"port"`
	BaudRate  int       `json:"baud_rate"`
	Timestamp time.Time `json:"timestamp"`
	LineCount int       `json:"line_count"`
	LogFile   string    `json:"log_file"`
}
