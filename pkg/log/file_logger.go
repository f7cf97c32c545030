package log

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/ETCLabs/rdmnet-go/pkg/version"
)

// Capture file identification.
const (
	CaptureMagic   = "RDMnet-rlog"
	CaptureVersion = 1
)

// Capture file errors.
var (
	ErrNotCapture         = errors.New("not an RDMnet capture")
	ErrUnsupportedCapture = errors.New("unsupported capture version")
)

// CaptureHeader opens a capture session. Every FileLogger writes one when
// it opens the file, so a file appended to by several runs holds several
// sessions.
type CaptureHeader struct {
	Magic   string    `cbor:"1,keyasint"`
	Version uint8     `cbor:"2,keyasint"`
	Started time.Time `cbor:"3,keyasint"`

	// Role, CID and Scope identify the component that wrote the session.
	// Scope is empty for a controller on several scopes.
	Role  Role   `cbor:"4,keyasint"`
	CID   string `cbor:"5,keyasint,omitempty"`
	Scope string `cbor:"6,keyasint,omitempty"`

	// Library is the rdmnet-go release that wrote the session.
	Library string `cbor:"7,keyasint,omitempty"`
}

func (h *CaptureHeader) validate() error {
	if h.Magic != CaptureMagic {
		return fmt.Errorf("%w: magic %q", ErrNotCapture, h.Magic)
	}
	if h.Version > CaptureVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedCapture, h.Version)
	}
	return nil
}

// FileLogger writes protocol events to a capture file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger opens path for appending, creating it with permissions
// 0644 if needed, and starts a session described by header.
func NewFileLogger(path string, header CaptureHeader) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l := &FileLogger{
		file:    f,
		encoder: logEncMode.NewEncoder(f),
	}
	if err := l.StartSession(header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return l, nil
}

// StartSession writes a session header. Magic, Version and Library are
// filled in; a zero Started becomes the current time.
func (l *FileLogger) StartSession(header CaptureHeader) error {
	header.Magic = CaptureMagic
	header.Version = CaptureVersion
	if header.Started.IsZero() {
		header.Started = time.Now()
	}
	if header.Library == "" {
		header.Library = version.Current
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return os.ErrClosed
	}
	if err := l.encoder.Encode(header); err != nil {
		return fmt.Errorf("writing session header: %w", err)
	}
	return nil
}

// Log writes an event to the capture file.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Encoding errors are dropped; capture must not disturb the connection.
	_ = l.encoder.Encode(event)
}

// Close closes the capture file. It is safe to call Close multiple times;
// later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
