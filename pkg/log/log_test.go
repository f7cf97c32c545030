package log

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 2, 10, 15, 32, 123456789, time.UTC)
	pid := rdm.PIDDeviceInfo
	code := uint16(wire.RPTStatusUnknownRPTUID)
	original := Event{
		Timestamp:    ts,
		ConnectionID: "abc12345-def6-7890-abcd-ef1234567890",
		Direction:    DirectionOut,
		Layer:        LayerRPT,
		Category:     CategoryMessage,
		LocalRole:    RoleBroker,
		RemoteAddr:   "10.101.1.1:8888",
		Scope:        "default",
		PeerUID:      "6574:00000001",
		Message: &MessageEvent{
			Name:      "RPT_STATUS",
			Vector:    wire.VectorRPTStatus,
			SourceUID: "6574:00000001",
			DestUID:   "6574:00000002",
			Seqnum:    42,
			ParamID:   &pid,
			Code:      &code,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Layer != LayerRPT || decoded.LocalRole != RoleBroker || decoded.Scope != "default" {
		t.Errorf("header fields: got %+v", decoded)
	}
	if decoded.Message == nil {
		t.Fatal("Message lost")
	}
	if decoded.Message.Seqnum != 42 || *decoded.Message.ParamID != pid || *decoded.Message.Code != code {
		t.Errorf("Message: got %+v", decoded.Message)
	}
}

func TestNewMessageEvent(t *testing.T) {
	cmd := &rdm.Command{
		Source:       rdm.UID{Manufacturer: 0x6574, Device: 1},
		Dest:         rdm.UID{Manufacturer: 0x6574, Device: 2},
		CommandClass: rdm.CommandClassGet,
		ParamID:      rdm.PIDDeviceLabel,
	}
	cmdBuf, _ := rdm.EncodeCommand(cmd)
	respBuf, _ := rdm.EncodeResponse(rdm.NewAckResponse(cmd, []byte("x")))
	hdr := wire.RPTHeader{SourceUID: cmd.Source, DestUID: cmd.Dest, Seqnum: 7}

	tests := []struct {
		name      string
		payload   wire.Payload
		wantLayer Layer
		wantName  string
		wantPID   bool
	}{
		{"connect reply", &wire.ConnectReply{Code: wire.ConnectScopeMismatch}, LayerBroker, "CONNECT_REPLY", false},
		{"null", &wire.Null{}, LayerBroker, "NULL", false},
		{"request", &wire.RPTMessage{Header: hdr, Body: &wire.RPTRequest{Command: cmdBuf}}, LayerRPT, "RPT_REQUEST", true},
		{"notification", &wire.RPTMessage{Header: hdr, Body: &wire.RPTNotification{Messages: [][]byte{cmdBuf, respBuf}}}, LayerRPT, "RPT_NOTIFICATION", true},
		{"status", &wire.RPTMessage{Header: hdr, Body: &wire.RPTStatus{Code: wire.RPTStatusRDMTimeout}}, LayerRPT, "RPT_STATUS", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer, ev := NewMessageEvent(tt.payload)
			if layer != tt.wantLayer {
				t.Errorf("layer = %s, want %s", layer, tt.wantLayer)
			}
			if ev.Name != tt.wantName {
				t.Errorf("Name = %s, want %s", ev.Name, tt.wantName)
			}
			if (ev.ParamID != nil) != tt.wantPID {
				t.Errorf("ParamID set = %v, want %v", ev.ParamID != nil, tt.wantPID)
			}
		})
	}
}

func readAll(t *testing.T, r *Reader) []string {
	t.Helper()
	var got []string
	for {
		e, err := r.Next()
		if err == io.EOF {
			return got
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, e.ConnectionID)
	}
}

func TestFileLoggerAndFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.rlog")
	fl, err := NewFileLogger(path, CaptureHeader{Role: RoleBroker, CID: "broker-cid", Scope: "default"})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	now := time.Now()
	fl.Log(Event{Timestamp: now, ConnectionID: "c1", Layer: LayerTransport, Scope: "default"})
	fl.Log(Event{Timestamp: now, ConnectionID: "c2", Layer: LayerRPT, Scope: "stage", PeerUID: "6574:00000002"})
	fl.Log(Event{Timestamp: now, ConnectionID: "c3", Layer: LayerRPT, Scope: "default", PeerUID: "6574:00000003"})
	if err := fl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	fl.Log(Event{ConnectionID: "after-close"})
	if err := fl.StartSession(CaptureHeader{}); err == nil {
		t.Error("StartSession after Close succeeded")
	}

	layer := LayerRPT
	r, err := NewFilteredReader(path, Filter{Layer: &layer, Scope: "default"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	if r.Header() != nil {
		t.Error("Header() set before the first Next")
	}
	if got := readAll(t, r); len(got) != 1 || got[0] != "c3" {
		t.Errorf("filtered events = %v, want [c3]", got)
	}
	h := r.Header()
	if h == nil {
		t.Fatal("Header() = nil after reading")
	}
	if h.Magic != CaptureMagic || h.Version != CaptureVersion {
		t.Errorf("header magic, version = %q, %d", h.Magic, h.Version)
	}
	if h.Role != RoleBroker || h.CID != "broker-cid" || h.Scope != "default" {
		t.Errorf("header = %+v", h)
	}
	if h.Started.IsZero() || h.Library == "" {
		t.Errorf("Started or Library not filled in: %+v", h)
	}
}

func TestReaderSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.rlog")
	for _, s := range []struct {
		cid    string
		events []string
	}{
		{"device-a", []string{"a1", "a2"}},
		{"device-b", []string{"b1"}},
	} {
		fl, err := NewFileLogger(path, CaptureHeader{Role: RoleDevice, CID: s.cid})
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		for _, id := range s.events {
			fl.Log(Event{ConnectionID: id})
		}
		fl.Close()
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var cids []string
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		cids = append(cids, e.ConnectionID+"@"+r.Header().CID)
	}
	want := []string{"a1@device-a", "a2@device-a", "b1@device-b"}
	if strings.Join(cids, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", cids, want)
	}

	r2, err := NewFilteredReader(path, Filter{CID: "device-b"})
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()
	if got := readAll(t, r2); len(got) != 1 || got[0] != "b1" {
		t.Errorf("CID filter = %v, want [b1]", got)
	}
}

func TestReaderRejectsForeignStreams(t *testing.T) {
	dir := t.TempDir()

	t.Run("no header", func(t *testing.T) {
		path := filepath.Join(dir, "bare.rlog")
		data, err := EncodeEvent(Event{ConnectionID: "x"})
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		r, err := NewReader(path)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if _, err := r.Next(); !errors.Is(err, ErrNotCapture) {
			t.Errorf("Next = %v, want ErrNotCapture", err)
		}
	})

	t.Run("newer version", func(t *testing.T) {
		path := filepath.Join(dir, "future.rlog")
		data, err := logEncMode.Marshal(CaptureHeader{Magic: CaptureMagic, Version: CaptureVersion + 1})
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		r, err := NewReader(path)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if _, err := r.Next(); !errors.Is(err, ErrUnsupportedCapture) {
			t.Errorf("Next = %v, want ErrUnsupportedCapture", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.rlog")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		r, err := NewReader(path)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if _, err := r.Next(); err != io.EOF {
			t.Errorf("Next = %v, want io.EOF", err)
		}
	})
}

func TestFilterRDMnetFields(t *testing.T) {
	pid := rdm.PIDDeviceLabel
	other := rdm.PIDDeviceInfo
	req := Event{ConnectionID: "req", Message: &MessageEvent{
		Name: "RPT_REQUEST", SourceUID: "6574:00000001", DestUID: "6574:00000010", Seqnum: 7, ParamID: &pid,
	}}
	status := Event{ConnectionID: "status", PeerUID: "6574:00000020", Message: &MessageEvent{
		Name: "RPT_STATUS", SourceUID: "6574:00000020", DestUID: "6574:00000001", Seqnum: 8,
	}}
	frame := Event{ConnectionID: "frame", Frame: &FrameEvent{Size: 10}}

	seq7, seq9 := uint32(7), uint32(9)
	tests := []struct {
		name   string
		filter Filter
		want   []bool // req, status, frame
	}{
		{"empty", Filter{}, []bool{true, true, true}},
		{"uid as dest", Filter{UID: "6574:00000010"}, []bool{true, false, false}},
		{"uid as source", Filter{UID: "6574:00000001"}, []bool{true, true, false}},
		{"uid as peer", Filter{UID: "6574:00000020"}, []bool{false, true, false}},
		{"seqnum", Filter{Seqnum: &seq7}, []bool{true, false, false}},
		{"seqnum none", Filter{Seqnum: &seq9}, []bool{false, false, false}},
		{"pid", Filter{ParamID: &pid}, []bool{true, false, false}},
		{"other pid", Filter{ParamID: &other}, []bool{false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, ev := range []Event{req, status, frame} {
				if got := tt.filter.matches(ev); got != tt.want[i] {
					t.Errorf("%s: matches = %v, want %v", ev.ConnectionID, got, tt.want[i])
				}
			}
		})
	}
}

func TestTee(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}

	if Tee() != nil || Tee(nil, NoopLogger{}) != nil {
		t.Error("Tee of disabled sinks should be nil")
	}
	if got := Tee(a, NoopLogger{}); got != Logger(a) {
		t.Errorf("Tee of one sink = %T, want the sink itself", got)
	}

	nested := Tee(Tee(a, b), nil)
	nested.Log(Event{ConnectionID: "x"})
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events = %d, %d; want 1, 1", len(a.events), len(b.events))
	}
	if tl, ok := nested.(teeLogger); !ok || len(tl) != 2 {
		t.Errorf("nested tee = %#v, want two flattened sinks", nested)
	}
}

func TestEnabled(t *testing.T) {
	if Enabled(nil) || Enabled(NoopLogger{}) || Enabled(&NoopLogger{}) {
		t.Error("disabled loggers reported enabled")
	}
	if !Enabled(&recordingLogger{}) {
		t.Error("recording logger reported disabled")
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pid := rdm.PIDSupportedParameters
	NewSlogAdapter(logger).Log(Event{
		ConnectionID: "conn-1",
		Layer:        LayerRPT,
		Scope:        "default",
		Message:      &MessageEvent{Name: "RPT_REQUEST", SourceUID: "a", DestUID: "b", ParamID: &pid},
	})

	out := buf.String()
	for _, want := range []string{"conn_id=conn-1", "layer=RPT", "scope=default", "msg=RPT_REQUEST", "pid=SUPPORTED_PARAMETERS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
