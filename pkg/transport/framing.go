package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// Framing constants.
const (
	// DefaultMaxBlockSize is the default maximum root layer block size.
	// Large enough for a full client list from a busy broker.
	DefaultMaxBlockSize = 1 << 20

	// MaxLogFrameDataSize is the maximum block data size to include in logs (4 KB).
	// Larger blocks are truncated in log events to avoid excessive memory usage.
	MaxLogFrameDataSize = 4096
)

// Framing errors.
var (
	// ErrMessageTooLarge indicates the block exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates an empty block.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrFrameTruncated indicates the stream ended inside a block.
	ErrFrameTruncated = errors.New("frame truncated")
)

// FrameWriter writes packed TCP blocks (preamble included) to an
// underlying writer.
type FrameWriter struct {
	w            io.Writer
	maxBlockSize int
	mu           sync.Mutex

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w, maxBlockSize: DefaultMaxBlockSize}
}

// SetLogger configures logging for this writer.
// Pass nil to disable logging.
func (fw *FrameWriter) SetLogger(logger log.Logger, connID string) {
	fw.logger = logger
	fw.connID = connID
}

// WriteFrame writes one packet produced by wire.Pack or wire.Encode.
// The preamble is checked so a malformed packet never reaches the stream.
// Thread-safe: can be called from multiple goroutines.
func (fw *FrameWriter) WriteFrame(packet []byte) error {
	if len(packet) == 0 {
		return ErrMessageEmpty
	}
	blockLen, err := wire.ParsePreamble(packet)
	if err != nil {
		return err
	}
	if blockLen != len(packet)-wire.PreambleSize {
		return fmt.Errorf("%w: preamble says %d, have %d", ErrFrameTruncated, blockLen, len(packet)-wire.PreambleSize)
	}
	if blockLen > fw.maxBlockSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, blockLen, fw.maxBlockSize)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.w.Write(packet); err != nil {
		return fmt.Errorf("failed to write block: %w", err)
	}

	if fw.logger != nil {
		fw.logger.Log(makeFrameEvent(fw.connID, packet, log.DirectionOut))
	}
	return nil
}

// makeFrameEvent creates a log event for a block.
func makeFrameEvent(connID string, data []byte, direction log.Direction) log.Event {
	frameData := data
	truncated := false
	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		truncated = true
	}

	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:      len(data),
			Data:      frameData,
			Truncated: truncated,
		},
	}
}

// FrameReader reads TCP blocks from an underlying reader.
type FrameReader struct {
	r            io.Reader
	maxBlockSize int
	preamble     [wire.PreambleSize]byte

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewFrameReader creates a new frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r, maxBlockSize: DefaultMaxBlockSize}
}

// SetLogger configures logging for this reader.
// Pass nil to disable logging.
func (fr *FrameReader) SetLogger(logger log.Logger, connID string) {
	fr.logger = logger
	fr.connID = connID
}

// SetMaxBlockSize updates the maximum block size.
func (fr *FrameReader) SetMaxBlockSize(size int) {
	fr.maxBlockSize = size
}

// ReadFrame reads one TCP block and returns the root layer bytes that
// follow the preamble.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.preamble[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read preamble: %w", err)
	}

	length, err := wire.ParsePreamble(fr.preamble[:])
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, ErrMessageEmpty
	}
	if length > fr.maxBlockSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, fr.maxBlockSize)
	}

	block := make([]byte, length)
	if _, err := io.ReadFull(fr.r, block); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read block: %w", err)
	}

	if fr.logger != nil {
		fr.logger.Log(makeFrameEvent(fr.connID, append(fr.preamble[:], block...), log.DirectionIn))
	}
	return block, nil
}

// Framer combines frame reading and writing.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a new framer for bidirectional communication.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{
		FrameReader: NewFrameReader(rw),
		FrameWriter: NewFrameWriter(rw),
	}
}

// SetLogger configures logging for both reader and writer.
// Pass nil to disable logging.
func (f *Framer) SetLogger(logger log.Logger, connID string) {
	f.FrameReader.SetLogger(logger, connID)
	f.FrameWriter.SetLogger(logger, connID)
}
