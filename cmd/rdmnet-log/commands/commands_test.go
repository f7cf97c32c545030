package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
)

const (
	connA = "abc12345-6789-0123-4567-890abcdef012"
	connB = "def67890-1111-2222-3333-444455556666"
)

const brokerCID = "5a2c8a5e-8f4a-4a7e-9c1b-0f1e2d3c4b5a"

var t0 = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

var sampleHeader = log.CaptureHeader{Role: log.RoleBroker, CID: brokerCID, Scope: "default", Started: t0}

func sampleEvents() []log.Event {
	pid := rdm.PIDDeviceLabel
	code := uint16(0x0001)
	return []log.Event{
		{
			Timestamp:    t0,
			ConnectionID: connA,
			Direction:    log.DirectionOut,
			Layer:        log.LayerBroker,
			Category:     log.CategoryMessage,
			RemoteAddr:   "127.0.0.1:8888",
			Scope:        "default",
			Message:      &log.MessageEvent{Name: "CLIENT_CONNECT", Vector: 0x0001, SourceUID: "6574:00000010"},
		},
		{
			Timestamp:    t0.Add(10 * time.Millisecond),
			ConnectionID: connA,
			Direction:    log.DirectionIn,
			Layer:        log.LayerRPT,
			Category:     log.CategoryMessage,
			Scope:        "default",
			PeerUID:      "6574:00000001",
			Message: &log.MessageEvent{
				Name:         "RPT_REQUEST",
				SourceUID:    "6574:00000001",
				DestUID:      "6574:00000010",
				Seqnum:       7,
				ParamID:      &pid,
				CommandClass: rdm.CommandClassGet.String(),
			},
		},
		{
			Timestamp:    t0.Add(2 * time.Second),
			ConnectionID: connB,
			Direction:    log.DirectionIn,
			Layer:        log.LayerBroker,
			Category:     log.CategoryHeartbeat,
			Heartbeat:    &log.HeartbeatEvent{Type: log.HeartbeatTimeout, Silence: 15 * time.Second},
		},
		{
			Timestamp:    t0.Add(3 * time.Second),
			ConnectionID: connB,
			Direction:    log.DirectionIn,
			Layer:        log.LayerBroker,
			Category:     log.CategoryMessage,
			Message:      &log.MessageEvent{Name: "DISCONNECT", Code: &code},
		},
		{
			Timestamp:    t0.Add(4 * time.Second),
			ConnectionID: connB,
			Direction:    log.DirectionOut,
			Layer:        log.LayerTransport,
			Category:     log.CategoryError,
			Error:        &log.ErrorEventData{Layer: log.LayerTransport, Message: "broken pipe", Context: "send"},
		},
	}
}

func writeLog(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.rlog")
	logger, err := log.NewFileLogger(path, sampleHeader)
	require.NoError(t, err)
	for _, e := range events {
		logger.Log(e)
	}
	require.NoError(t, logger.Close())
	return path
}

func TestFilterOptionsBuild(t *testing.T) {
	f, err := FilterOptions{
		ConnID:    connA,
		Scope:     "default",
		PeerUID:   "6574:00000001",
		TimeStart: "2026-10-17T09:00:00Z",
		Layer:     "RPT",
		Direction: "in",
		Category:  "heartbeat",
	}.Build()
	require.NoError(t, err)
	assert.Equal(t, connA, f.ConnectionID)
	assert.Equal(t, "6574:00000001", f.PeerUID)
	require.NotNil(t, f.Layer)
	assert.Equal(t, log.LayerRPT, *f.Layer)
	require.NotNil(t, f.Direction)
	assert.Equal(t, log.DirectionIn, *f.Direction)
	require.NotNil(t, f.Category)
	assert.Equal(t, log.CategoryHeartbeat, *f.Category)
	require.NotNil(t, f.TimeStart)
	assert.Nil(t, f.TimeEnd)
	assert.Empty(t, f.CID)
	assert.Nil(t, f.Seqnum)
	assert.Nil(t, f.ParamID)
}

func TestFilterOptionsBuildRDMnetFields(t *testing.T) {
	f, err := FilterOptions{
		CID:    strings.ToUpper(brokerCID),
		UID:    "6574:00000010",
		Seqnum: "0x2a",
		PID:    "device_label",
	}.Build()
	require.NoError(t, err)
	assert.Equal(t, brokerCID, f.CID)
	assert.Equal(t, "6574:00000010", f.UID)
	require.NotNil(t, f.Seqnum)
	assert.Equal(t, uint32(42), *f.Seqnum)
	require.NotNil(t, f.ParamID)
	assert.Equal(t, rdm.PIDDeviceLabel, *f.ParamID)
}

func TestFilterOptionsBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want string
	}{
		{"layer", FilterOptions{Layer: "wire"}, "invalid layer"},
		{"direction", FilterOptions{Direction: "sideways"}, "invalid direction"},
		{"category", FilterOptions{Category: "snapshot"}, "invalid category"},
		{"time", FilterOptions{TimeEnd: "yesterday"}, "invalid time-end"},
		{"uid", FilterOptions{PeerUID: "nope"}, "invalid peer-uid"},
		{"cid", FilterOptions{CID: "not-a-cid"}, "invalid cid"},
		{"message uid", FilterOptions{UID: "6574"}, "invalid uid"},
		{"seqnum", FilterOptions{Seqnum: "-1"}, "invalid seqnum"},
		{"pid", FilterOptions{PID: "NOT_A_PARAMETER"}, "invalid pid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunView(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunView(path, log.Filter{}, &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out,
		"=== Session: BROKER cid="+brokerCID+" scope=\"default\" started 2026-10-17T09:30:00.000000Z"), out)
	assert.Equal(t, 1, strings.Count(out, "=== Session:"))
	assert.Contains(t, out, "2026-10-17T09:30:00.000000Z [conn:abc12345] OUT BROKER CLIENT_CONNECT")
	assert.Contains(t, out, "Peer: 127.0.0.1:8888 scope=\"default\"")
	assert.Contains(t, out, "6574:00000001 -> 6574:00000010 seq=7")
	assert.Contains(t, out, "RDM: GET_COMMAND DEVICE_LABEL")
	assert.Contains(t, out, "Heartbeat TIMEOUT")
	assert.Contains(t, out, "Silence: 15s")
	assert.Contains(t, out, "Message: broken pipe")
}

func TestRunViewFiltered(t *testing.T) {
	path := writeLog(t, sampleEvents())

	layer := log.LayerRPT
	var buf bytes.Buffer
	require.NoError(t, RunView(path, log.Filter{Layer: &layer}, &buf))
	assert.Equal(t, 1, strings.Count(buf.String(), "[conn:"))
	assert.Contains(t, buf.String(), "RPT_REQUEST")
}

func TestRunViewOneRequest(t *testing.T) {
	path := writeLog(t, sampleEvents())

	f, err := FilterOptions{UID: "6574:00000010", Seqnum: "7"}.Build()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RunView(path, f, &buf))
	assert.Equal(t, 1, strings.Count(buf.String(), "[conn:"))
	assert.Contains(t, buf.String(), "RPT_REQUEST")
}

func TestRunViewOtherComponent(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunView(path, log.Filter{CID: "00000000-0000-0000-0000-000000000001"}, &buf))
	assert.Empty(t, buf.String())
}

func TestRunViewMissingFile(t *testing.T) {
	err := RunView(filepath.Join(t.TempDir(), "missing.rlog"), log.Filter{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to open log file")
}

func TestRunFilter(t *testing.T) {
	path := writeLog(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "connb.rlog")

	var buf bytes.Buffer
	require.NoError(t, RunFilter(path, log.Filter{ConnectionID: connB}, out, &buf))
	assert.Contains(t, buf.String(), "Filtered 3 events")

	var got []log.Event
	var sessions []log.CaptureHeader
	require.NoError(t, eachEvent(out, log.Filter{},
		func(h log.CaptureHeader) error {
			sessions = append(sessions, h)
			return nil
		},
		func(e log.Event) error {
			got = append(got, e)
			return nil
		}))
	require.Len(t, got, 3)
	for _, e := range got {
		assert.Equal(t, connB, e.ConnectionID)
	}
	require.Len(t, sessions, 1)
	assert.Equal(t, brokerCID, sessions[0].CID)
	assert.True(t, sessions[0].Started.Equal(t0))
}

func TestRunFilterNoMatch(t *testing.T) {
	path := writeLog(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "none.rlog")

	var buf bytes.Buffer
	require.NoError(t, RunFilter(path, log.Filter{ConnectionID: "missing"}, out, &buf))
	assert.Contains(t, buf.String(), "Filtered 0 events")
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRunExportJSONL(t *testing.T) {
	path := writeLog(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "events.jsonl")

	require.NoError(t, RunExport(path, log.Filter{}, "jsonl", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	var first log.Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NotNil(t, first.Message)
	assert.Equal(t, "CLIENT_CONNECT", first.Message.Name)
}

func TestRunExportCSV(t *testing.T) {
	path := writeLog(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "events.csv")

	require.NoError(t, RunExport(path, log.Filter{}, "csv", out))
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"2026-10-17T09:30:00.010000Z", connA, "IN", "RPT", "MESSAGE",
		"default", "6574:00000001", "RPT_REQUEST", "6574:00000001", "6574:00000010", "7", "DEVICE_LABEL",
	}, rows[2])
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := writeLog(t, sampleEvents())
	err := RunExport(path, log.Filter{}, "xml", "")
	assert.ErrorContains(t, err, "unknown format")
}

func TestRunStats(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, log.Filter{}, &buf))
	out := buf.String()

	assert.Contains(t, out, "Sessions: 1")
	assert.Contains(t, out, "BROKER cid="+brokerCID)
	assert.Contains(t, out, "Total Events: 5")
	assert.Contains(t, out, "Duration:   4s")
	assert.Contains(t, out, "Connections: 2")
	assert.Contains(t, out, "[abc12345] 2 events")
	assert.Contains(t, out, "UID: 6574:00000001")
	assert.Contains(t, out, "Scope: default")
	assert.Contains(t, out, "CLIENT_CONNECT:")
	assert.Contains(t, out, "Heartbeat Timeouts: 1")
	assert.Contains(t, out, "Errors: 1")
}

func TestStatsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, newStats())
	assert.Contains(t, buf.String(), "Total Events: 0")
	assert.NotContains(t, buf.String(), "Time Range")
}
