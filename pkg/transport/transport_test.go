package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(ev log.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *captureLogger) messageEvents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Message != nil {
			n++
		}
	}
	return n
}

func mustEncode(t *testing.T, p wire.Payload) []byte {
	t.Helper()
	b, err := wire.Encode(uuid.New(), p)
	require.NoError(t, err)
	return b
}

func TestFrameWriterReader(t *testing.T) {
	tests := []struct {
		name    string
		payload wire.Payload
	}{
		{"null", &wire.Null{}},
		{"disconnect", &wire.Disconnect{Reason: wire.DisconnectShutdown}},
		{"rpt status", &wire.RPTMessage{
			Header: wire.RPTHeader{SourceUID: rdm.UID{Manufacturer: 1, Device: 2}, Seqnum: 7},
			Body:   &wire.RPTStatus{Code: wire.RPTStatusUnknownRDMUID, Text: "nope"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packet := mustEncode(t, tt.payload)
			buf := new(bytes.Buffer)

			require.NoError(t, NewFrameWriter(buf).WriteFrame(packet))
			assert.Equal(t, len(packet), buf.Len())

			block, err := NewFrameReader(buf).ReadFrame()
			require.NoError(t, err)
			assert.Equal(t, packet[wire.PreambleSize:], block)

			msgs, err := wire.Decode(block)
			require.NoError(t, err)
			require.Len(t, msgs, 1)
			assert.Equal(t, tt.payload, msgs[0].Payload)
		})
	}
}

func TestFrameWriterRejectsBadPackets(t *testing.T) {
	packet := mustEncode(t, &wire.Null{})

	tests := []struct {
		name   string
		packet []byte
		want   error
	}{
		{"empty", nil, ErrMessageEmpty},
		{"bad identifier", append([]byte("XXX"), packet[3:]...), wire.ErrBadPacketIdentifier},
		{"truncated", packet[:len(packet)-1], ErrFrameTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			err := NewFrameWriter(buf).WriteFrame(tt.packet)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestFrameReaderErrors(t *testing.T) {
	packet := mustEncode(t, &wire.Null{})

	t.Run("truncated block", func(t *testing.T) {
		_, err := NewFrameReader(bytes.NewReader(packet[:len(packet)-2])).ReadFrame()
		assert.ErrorIs(t, err, ErrFrameTruncated)
	})

	t.Run("truncated preamble", func(t *testing.T) {
		_, err := NewFrameReader(bytes.NewReader(packet[:5])).ReadFrame()
		assert.ErrorIs(t, err, ErrFrameTruncated)
	})

	t.Run("block too large", func(t *testing.T) {
		r := NewFrameReader(bytes.NewReader(packet))
		r.SetMaxBlockSize(4)
		_, err := r.ReadFrame()
		assert.ErrorIs(t, err, ErrMessageTooLarge)
	})

	t.Run("zero length", func(t *testing.T) {
		hdr := make([]byte, wire.PreambleSize)
		wire.PutPreamble(hdr, 0)
		_, err := NewFrameReader(bytes.NewReader(hdr)).ReadFrame()
		assert.ErrorIs(t, err, ErrMessageEmpty)
	})
}

func TestFramerLogsFrames(t *testing.T) {
	logger := &captureLogger{}
	buf := new(bytes.Buffer)
	f := NewFramer(buf)
	f.SetLogger(logger, "conn-1")

	require.NoError(t, f.WriteFrame(mustEncode(t, &wire.Null{})))
	_, err := f.ReadFrame()
	require.NoError(t, err)

	require.Len(t, logger.events, 2)
	assert.Equal(t, log.DirectionOut, logger.events[0].Direction)
	assert.Equal(t, log.DirectionIn, logger.events[1].Direction)
	assert.Equal(t, "conn-1", logger.events[1].ConnectionID)
	assert.Equal(t, log.LayerTransport, logger.events[1].Layer)
}

func TestConnSendReceive(t *testing.T) {
	a, b := net.Pipe()
	logger := &captureLogger{}
	cidA := uuid.New()
	ca := NewConn(a, ConnConfig{LocalCID: cidA, Role: log.RoleController, Logger: logger})
	cb := NewConn(b, ConnConfig{LocalCID: uuid.New(), Role: log.RoleBroker})
	defer ca.Close()
	defer cb.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- ca.SendMessage(&wire.FetchClientList{})
	}()

	msgs, err := cb.Receive(time.Second)
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	require.Len(t, msgs, 1)
	assert.Equal(t, cidA, msgs[0].SenderCID)
	assert.IsType(t, &wire.FetchClientList{}, msgs[0].Payload)
	assert.Equal(t, 1, logger.messageEvents())
}

func TestConnReceiveTimeout(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	c := NewConn(b, ConnConfig{})
	defer c.Close()

	_, err := c.Receive(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrReceiveTimeout)
}

func TestConnClose(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	c := NewConn(b, ConnConfig{})

	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(0)
		done <- err
	}()

	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrConnectionClosed)
	case <-time.After(time.Second):
		t.Fatal("Receive did not unblock on Close")
	}
	assert.ErrorIs(t, c.Send(mustEncode(t, &wire.Null{})), ErrConnectionClosed)

	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestHeartbeatTracker(t *testing.T) {
	start := time.Unix(1000, 0)
	h := NewHeartbeatTracker(HeartbeatConfig{}, start)

	assert.False(t, h.NullDue(start.Add(14*time.Second)))
	assert.True(t, h.NullDue(start.Add(15*time.Second)))

	h.Sent(start.Add(15 * time.Second))
	assert.False(t, h.NullDue(start.Add(20*time.Second)))

	_, expired := h.Expired(start.Add(44 * time.Second))
	assert.False(t, expired)
	silence, expired := h.Expired(start.Add(45 * time.Second))
	assert.True(t, expired)
	assert.Equal(t, 45*time.Second, silence)

	h.Received(start.Add(40 * time.Second))
	_, expired = h.Expired(start.Add(60 * time.Second))
	assert.False(t, expired)
}

func TestHeartbeatSendsNullAndTimesOut(t *testing.T) {
	cfg := HeartbeatConfig{Interval: 30 * time.Millisecond, Timeout: 150 * time.Millisecond}
	tracker := NewHeartbeatTracker(cfg, time.Now())

	var nulls atomic.Int32
	timedOut := make(chan time.Duration, 1)
	hb := NewHeartbeat(tracker, func() error {
		nulls.Add(1)
		tracker.Sent(time.Now())
		return nil
	}, func(silence time.Duration) {
		timedOut <- silence
	})

	hb.Start(context.Background())
	assert.True(t, hb.IsRunning())

	select {
	case silence := <-timedOut:
		assert.GreaterOrEqual(t, silence, cfg.Timeout)
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat did not time out")
	}
	assert.Greater(t, nulls.Load(), int32(0))
	hb.Stop()
	assert.False(t, hb.IsRunning())
}

func TestHeartbeatStop(t *testing.T) {
	tracker := NewHeartbeatTracker(HeartbeatConfig{Interval: 10 * time.Millisecond, Timeout: time.Hour}, time.Now())
	hb := NewHeartbeat(tracker, func() error { return nil }, nil)
	hb.Start(context.Background())
	hb.Stop()
	hb.Stop()
	assert.False(t, hb.IsRunning())
}

func TestListenerAcceptAndDial(t *testing.T) {
	accepted := make(chan net.Conn, 1)
	l := NewListener(ListenerConfig{
		Address:      "127.0.0.1:0",
		OnConnection: func(c net.Conn) { accepted <- c },
	})
	require.NoError(t, l.Start(context.Background()))
	defer l.Stop()

	conn, err := Dial(context.Background(), l.Addr().String(), time.Second, ConnConfig{LocalCID: uuid.New()})
	require.NoError(t, err)
	defer conn.Close()

	var server *Conn
	select {
	case c := <-accepted:
		server = NewConn(c, ConnConfig{})
		defer server.Close()
	case <-time.After(time.Second):
		t.Fatal("connection not accepted")
	}

	go func() { _ = conn.SendMessage(&wire.Null{}) }()
	msgs, err := server.Receive(time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.IsType(t, &wire.Null{}, msgs[0].Payload)
}

func TestListenerStop(t *testing.T) {
	l := NewListener(ListenerConfig{Address: "127.0.0.1:0"})
	require.NoError(t, l.Start(context.Background()))
	addr := l.Addr().String()
	require.Error(t, l.Start(context.Background()))

	require.NoError(t, l.Stop())
	assert.NoError(t, l.Stop())

	_, err := Dial(context.Background(), addr, 200*time.Millisecond, ConnConfig{})
	assert.True(t, errors.Is(err, ErrDialFailed))
}
