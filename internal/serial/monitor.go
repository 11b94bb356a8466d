package serial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.bug.st/serial"
)

// ErrSessionClosed is returned by reads on a closed session. Sessions
// are not restartable; open a new one instead.
var ErrSessionClosed = errors.New("serial session closed")

const (
	// readPoll bounds a single blocking port read so the read loop can
	// notice cancellation; together with the close path it keeps the
	// shutdown grace period well under a second.
	readPoll  = 200 * time.Millisecond
	readChunk = 1024
	lineDepth = 256
)

// Monitor opens exclusive streaming read sessions on serial ports. It
// shares the port lock map with the uploader, so a session and a flash
// can never interleave on the same device.
type Monitor struct {
	locks *PortLocks

	// openPort is swapped out in tests.
	openPort func(name string, mode *serial.Mode) (serial.Port, error)
}

// NewMonitor returns a Monitor using the given port locks.
func NewMonitor(locks *PortLocks) *Monitor {
	return &Monitor{locks: locks, openPort: serial.Open}
}

// Session is an owned, exclusive handle on an open port. Lifecycle is
// Closed → Open → Closed with no way back: Close is terminal.
type Session struct {
	ID       string
	Port     string
	BaudRate int

	locks *PortLocks
	port  serial.Port
	lines chan string
	done  chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	open      bool
}

// Open acquires the port lock and starts a streaming read session at
// the given baud rate (8N1). The context bounds the wait for a
// contended port: when it ends first, the open fails with ErrPortBusy
// instead of queueing behind an upload of unknown duration.
func (m *Monitor) Open(ctx context.Context, portName string, baudRate int) (*Session, error) {
	if err := m.locks.Acquire(ctx, portName); err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := m.openPort(portName, mode)
	if err != nil {
		m.locks.Release(portName)
		return nil, mapPortError(err, portName)
	}

	// Bounded reads let the loop poll for cancellation between chunks.
	if err := port.SetReadTimeout(readPoll); err != nil {
		port.Close()
		m.locks.Release(portName)
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}

	s := &Session{
		ID:       uuid.NewString(),
		Port:     portName,
		BaudRate: baudRate,
		locks:    m.locks,
		port:     port,
		lines:    make(chan string, lineDepth),
		done:     make(chan struct{}),
		open:     true,
	}
	go s.readLoop()
	return s, nil
}

// IsOpen reports whether the session still owns the port.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// ReadLine returns the next decoded line of board output, blocking until
// one arrives, the context is done, or the session is closed. Lines
// already received before Close are still delivered.
func (s *Session) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-s.lines:
		if !ok {
			return "", ErrSessionClosed
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Capture reads lines for at most the given duration (or until the
// context is done or the session closes) and returns what arrived.
func (s *Session) Capture(ctx context.Context, d time.Duration) []string {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	var out []string
	for {
		line, err := s.ReadLine(ctx)
		if err != nil {
			return out
		}
		out = append(out, line)
	}
}

// Close ends the session, closes the port, and releases the port lock.
// Idempotent and terminal: a closed session cannot be reopened. Any
// pending ReadLine unblocks once buffered lines drain.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.open = false
		s.mu.Unlock()

		close(s.done)
		s.port.Close() // unblocks an in-flight Read immediately
		s.locks.Release(s.Port)
	})
}

// readLoop pulls raw chunks off the port and assembles decoded lines.
// It exits on Close or on a port read error, closing the lines channel
// either way so readers observe ErrSessionClosed after the drain.
func (s *Session) readLoop() {
	defer close(s.lines)

	buf := make([]byte, readChunk)
	var carry []byte

	for {
		select {
		case <-s.done:
			return
		default:
		}

		n, err := s.port.Read(buf)
		if n > 0 {
			carry = append(carry, buf[:n]...)
			for {
				idx := bytes.IndexByte(carry, '\n')
				if idx < 0 {
					break
				}
				line := string(bytes.TrimRight(carry[:idx], "\r"))
				carry = carry[idx+1:]
				select {
				case s.lines <- line:
				case <-s.done:
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// mapPortError translates go.bug.st/serial open failures onto the
// layer's error taxonomy.
func mapPortError(err error, portName string) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortBusy:
			return fmt.Errorf("%w: %s", ErrPortBusy, portName)
		case serial.PermissionDenied:
			return fmt.Errorf("%w: %s", ErrPermissionDenied, portName)
		}
	}
	return fmt.Errorf("open %s: %w", portName, err)
}
