package client_test

import (
	"errors"
	"net/netip"
	"sync"
	"testing"

	"github.com/ETCLabs/rdmnet-go/pkg/client"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recorder collects everything a test client sends after it connected.
type recorder struct {
	mu   sync.Mutex
	sent []wire.Payload
}

func (r *recorder) record(f *fixture, h client.ScopeHandle) {
	f.connector.EXPECT().Send(h, mock.Anything).RunAndReturn(func(_ client.ScopeHandle, p wire.Payload) error {
		r.mu.Lock()
		r.sent = append(r.sent, p)
		r.mu.Unlock()
		return nil
	}).Maybe()
}

func (r *recorder) rpt(t *testing.T) []*wire.RPTMessage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*wire.RPTMessage
	for _, p := range r.sent {
		if m, ok := p.(*wire.RPTMessage); ok {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) last(t *testing.T) *wire.RPTMessage {
	t.Helper()
	msgs := r.rpt(t)
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

// reply answers the request req with resps as the responder would.
func reply(t *testing.T, req *wire.RPTMessage, resps ...*rdm.Response) wire.Message {
	t.Helper()
	body, ok := req.Body.(*wire.RPTRequest)
	require.True(t, ok)
	msgs := [][]byte{body.Command}
	for _, r := range resps {
		buf, err := rdm.EncodeResponse(r)
		require.NoError(t, err)
		msgs = append(msgs, buf)
	}
	return wire.Message{Payload: &wire.RPTMessage{
		Header: wire.RPTHeader{
			SourceUID:      req.Header.DestUID,
			SourceEndpoint: req.Header.DestEndpoint,
			DestUID:        req.Header.SourceUID,
			Seqnum:         req.Header.Seqnum,
		},
		Body: &wire.RPTNotification{Messages: msgs},
	}}
}

func requestCommand(t *testing.T, req *wire.RPTMessage) *rdm.Command {
	t.Helper()
	body, ok := req.Body.(*wire.RPTRequest)
	require.True(t, ok)
	cmd, err := body.UnpackCommand()
	require.NoError(t, err)
	return cmd
}

func captureResponses(f *fixture, h client.ScopeHandle) *[]*client.ResponseResult {
	var got []*client.ResponseResult
	f.handler.EXPECT().RDMResponse(h, mock.Anything).Run(func(_ client.ScopeHandle, res *client.ResponseResult) {
		got = append(got, res)
	}).Maybe()
	return &got
}

func TestResponseMatchesRequest(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)
	got := captureResponses(f, h)

	seq, err := f.client.SendGet(h, deviceUID, rdm.PIDDeviceLabel, nil)
	require.NoError(t, err)
	req := rec.last(t)
	assert.Equal(t, seq, req.Header.Seqnum)
	assert.Equal(t, controllerUID, req.Header.SourceUID)
	assert.Equal(t, deviceUID, req.Header.DestUID)

	cmd := requestCommand(t, req)
	assert.Equal(t, controllerUID, cmd.Source)
	assert.Equal(t, rdm.CommandClassGet, cmd.CommandClass)

	msg := reply(t, req, rdm.NewAckResponse(cmd, []byte("stage left")))
	f.client.HandleMessage(h, msg)

	require.Len(t, *got, 1)
	res := (*got)[0]
	assert.Equal(t, seq, res.Seqnum)
	assert.Equal(t, deviceUID, res.Source)
	assert.Equal(t, rdm.ResponseTypeAck, res.ResponseType)
	assert.Equal(t, rdm.PIDDeviceLabel, res.ParamID)
	assert.Equal(t, []byte("stage left"), res.Data)
	assert.False(t, res.Unsolicited)
	assert.False(t, res.Partial)
	assert.NoError(t, res.Err)
	require.NotNil(t, res.Command)
	assert.Equal(t, cmd.TransactionNum, res.Command.TransactionNum)

	// The request is answered, so a repeat is unsolicited.
	f.client.HandleMessage(h, msg)
	require.Len(t, *got, 2)
	assert.True(t, (*got)[1].Unsolicited)
}

func TestSequenceNumbersIncrease(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)

	var last uint32
	for i := 0; i < 5; i++ {
		seq, err := f.client.SendGet(h, deviceUID, rdm.PIDDeviceInfo, nil)
		require.NoError(t, err)
		assert.Greater(t, seq, last)
		last = seq
	}
}

func TestSendRequiresConnection(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	f.connector.EXPECT().Connect(client.ScopeHandle(1), staticAddr, mock.Anything).Return(nil).Once()
	h, err := f.client.AddScope(client.ScopeConfig{Scope: "test", StaticBroker: staticAddr})
	require.NoError(t, err)

	_, err = f.client.SendGet(h, deviceUID, rdm.PIDDeviceInfo, nil)
	assert.True(t, errors.Is(err, client.ErrNotConnected))
	assert.True(t, errors.Is(f.client.FetchClientList(h), client.ErrNotConnected))
	_, err = f.client.SendGet(99, deviceUID, rdm.PIDDeviceInfo, nil)
	assert.True(t, errors.Is(err, client.ErrScopeNotFound))
}

func TestSendFailureForgetsRequest(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	f.connector.EXPECT().Send(h, mock.Anything).Return(errors.New("broken pipe")).Once()

	_, err := f.client.SendGet(h, deviceUID, rdm.PIDDeviceInfo, nil)
	require.Error(t, err)

	// Nothing is outstanding, so a disconnect abandons nothing.
	f.handler.EXPECT().Disconnected(h, mock.Anything).Once()
	f.connector.EXPECT().Connect(h, staticAddr, mock.Anything).Return(nil).Once()
	f.client.HandleDisconnected(h, client.DisconnectedInfo{Event: client.DisconnectAbruptClose})
	f.handler.AssertNotCalled(t, "RDMResponse", mock.Anything, mock.Anything)
}

func TestOverflowAcrossNotifications(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)
	got := captureResponses(f, h)

	_, err := f.client.SendGet(h, deviceUID, 0x8001, nil)
	require.NoError(t, err)
	req := rec.last(t)
	cmd := requestCommand(t, req)

	payload := make([]byte, 2*rdm.MaxDataLen+17)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	f.client.HandleMessage(h, reply(t, req, rdm.NewResponseTo(cmd, rdm.ResponseTypeAckOverflow, payload[:rdm.MaxDataLen])))
	f.client.HandleMessage(h, reply(t, req, rdm.NewResponseTo(cmd, rdm.ResponseTypeAckOverflow, payload[rdm.MaxDataLen:2*rdm.MaxDataLen])))
	assert.Empty(t, *got)
	f.client.HandleMessage(h, reply(t, req, rdm.NewAckResponse(cmd, payload[2*rdm.MaxDataLen:])))

	require.Len(t, *got, 1)
	assert.Equal(t, payload, (*got)[0].Data)
	assert.False(t, (*got)[0].Partial)
}

func TestUnsolicitedOverflowStaysWithinNotification(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)
	got := captureResponses(f, h)

	_, err := f.client.SendGet(h, deviceUID, 0x8001, nil)
	require.NoError(t, err)
	req := rec.last(t)
	cmd := requestCommand(t, req)
	f.client.HandleMessage(h, reply(t, req, rdm.NewAckResponse(cmd, nil)))
	require.Len(t, *got, 1)

	// One notification carrying the whole sequence is joined.
	f.client.HandleMessage(h, reply(t, req,
		rdm.NewResponseTo(cmd, rdm.ResponseTypeAckOverflow, []byte{1, 2}),
		rdm.NewAckResponse(cmd, []byte{3}),
	))
	require.Len(t, *got, 2)
	assert.True(t, (*got)[1].Unsolicited)
	assert.Equal(t, []byte{1, 2, 3}, (*got)[1].Data)
	assert.NoError(t, (*got)[1].Err)

	// Split over two notifications, the halves are reported on their own.
	f.client.HandleMessage(h, reply(t, req, rdm.NewResponseTo(cmd, rdm.ResponseTypeAckOverflow, []byte{4, 5})))
	f.client.HandleMessage(h, reply(t, req, rdm.NewAckResponse(cmd, []byte{6})))
	require.Len(t, *got, 4)
	assert.True(t, (*got)[2].Unsolicited)
	assert.ErrorIs(t, (*got)[2].Err, client.ErrFragmentMismatch)
	assert.True(t, (*got)[3].Unsolicited)
	assert.Equal(t, []byte{6}, (*got)[3].Data)
	assert.NoError(t, (*got)[3].Err)
}

func TestOverflowBeyondCapacityIsPartial(t *testing.T) {
	cfg := controllerConfig()
	cfg.MaxAckOverflowBytes = 300
	f := newFixture(t, cfg, false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)
	got := captureResponses(f, h)

	_, err := f.client.SendGet(h, deviceUID, 0x8001, nil)
	require.NoError(t, err)
	req := rec.last(t)
	cmd := requestCommand(t, req)

	payload := make([]byte, 500)
	for i := range payload {
		payload[i] = byte(i)
	}
	f.client.HandleMessage(h, reply(t, req,
		rdm.NewResponseTo(cmd, rdm.ResponseTypeAckOverflow, payload[:231]),
		rdm.NewResponseTo(cmd, rdm.ResponseTypeAckOverflow, payload[231:462]),
		rdm.NewAckResponse(cmd, payload[462:]),
	))

	require.Len(t, *got, 1)
	res := (*got)[0]
	assert.True(t, res.Partial)
	assert.True(t, errors.Is(res.Err, client.ErrOverflowCapacity))
	assert.Equal(t, payload[:300], res.Data)
}

func TestMismatchedFragmentFailsRequest(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)
	got := captureResponses(f, h)

	_, err := f.client.SendGet(h, deviceUID, 0x8001, nil)
	require.NoError(t, err)
	req := rec.last(t)
	cmd := requestCommand(t, req)

	other := *cmd
	other.ParamID = 0x8002
	f.client.HandleMessage(h, reply(t, req,
		rdm.NewResponseTo(cmd, rdm.ResponseTypeAckOverflow, []byte{1, 2, 3}),
		rdm.NewAckResponse(&other, []byte{4}),
	))

	require.Len(t, *got, 1)
	assert.True(t, (*got)[0].Partial)
	assert.True(t, errors.Is((*got)[0].Err, client.ErrFragmentMismatch))
	assert.Equal(t, []byte{1, 2, 3}, (*got)[0].Data)
}

func TestAckTimerKeepsRequestPending(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)
	got := captureResponses(f, h)

	_, err := f.client.SendSet(h, deviceUID, rdm.PIDDeviceLabel, []byte("x"))
	require.NoError(t, err)
	req := rec.last(t)
	cmd := requestCommand(t, req)

	f.client.HandleMessage(h, reply(t, req, rdm.NewResponseTo(cmd, rdm.ResponseTypeAckTimer, []byte{0, 5})))
	f.client.HandleMessage(h, reply(t, req, rdm.NewAckResponse(cmd, nil)))

	require.Len(t, *got, 2)
	assert.Equal(t, rdm.ResponseTypeAckTimer, (*got)[0].ResponseType)
	assert.Equal(t, rdm.ResponseTypeAck, (*got)[1].ResponseType)
	assert.False(t, (*got)[1].Unsolicited)
	assert.Equal(t, rdm.CommandClassSetResponse, (*got)[1].CommandClass)
}

func TestSupportedParametersIncludeBaseline(t *testing.T) {
	tests := []struct {
		name string
		dest rdm.UID
		role string
	}{
		{"device", deviceUID, version.RoleDevice},
		{"broker", brokerUID, version.RoleBroker},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, controllerConfig(), false)
			h := f.connectStatic(t)
			var rec recorder
			rec.record(f, h)
			got := captureResponses(f, h)

			_, err := f.client.SendGet(h, tt.dest, rdm.PIDSupportedParameters, nil)
			require.NoError(t, err)
			req := rec.last(t)
			cmd := requestCommand(t, req)
			f.client.HandleMessage(h, reply(t, req, rdm.NewAckResponse(cmd, []byte{0x80, 0x00, 0x00, 0x82})))

			require.Len(t, *got, 1)
			pids := client.ParsePIDList((*got)[0].Data)
			assert.Equal(t, []uint16{0x8000, rdm.PIDDeviceLabel}, pids[:2])
			for _, pid := range client.BaselinePIDs(tt.role) {
				assert.Contains(t, pids, pid)
			}
		})
	}
}

func TestStatusEndsRequest(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)

	seq, err := f.client.SendGet(h, deviceUID, rdm.PIDDeviceInfo, nil)
	require.NoError(t, err)
	req := rec.last(t)

	var status *client.StatusResult
	f.handler.EXPECT().RPTStatus(h, mock.Anything).Run(func(_ client.ScopeHandle, res *client.StatusResult) {
		status = res
	}).Once()
	f.client.HandleMessage(h, wire.Message{Payload: &wire.RPTMessage{
		Header: wire.RPTHeader{SourceUID: deviceUID, DestUID: controllerUID, Seqnum: seq},
		Body:   &wire.RPTStatus{Code: wire.RPTStatusUnknownRDMUID},
	}})

	require.NotNil(t, status)
	assert.Equal(t, seq, status.Seqnum)
	assert.Equal(t, wire.RPTStatusUnknownRDMUID, status.Code)
	require.NotNil(t, status.Command)
	assert.Equal(t, rdm.PIDDeviceInfo, status.Command.ParamID)

	// A late response no longer matches.
	got := captureResponses(f, h)
	cmd := requestCommand(t, req)
	f.client.HandleMessage(h, reply(t, req, rdm.NewAckResponse(cmd, nil)))
	require.Len(t, *got, 1)
	assert.True(t, (*got)[0].Unsolicited)
}

func TestDisconnectAbandonsPendingRequests(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)
	got := captureResponses(f, h)

	seq, err := f.client.SendGet(h, deviceUID, rdm.PIDDeviceInfo, nil)
	require.NoError(t, err)

	f.handler.EXPECT().Disconnected(h, mock.Anything).Once()
	f.connector.EXPECT().Connect(h, staticAddr, mock.Anything).Return(nil).Once()
	f.client.HandleDisconnected(h, client.DisconnectedInfo{Event: client.DisconnectAbruptClose})

	require.Len(t, *got, 1)
	assert.Equal(t, seq, (*got)[0].Seqnum)
	assert.Equal(t, deviceUID, (*got)[0].Source)
	assert.True(t, errors.Is((*got)[0].Err, client.ErrRequestAbandoned))
}

func TestBroadcastIsNotTracked(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)

	_, err := f.client.SendSet(h, rdm.BroadcastUID, rdm.PIDIdentifyDevice, []byte{1})
	require.NoError(t, err)

	f.handler.EXPECT().Disconnected(h, mock.Anything).Once()
	f.connector.EXPECT().Connect(h, staticAddr, mock.Anything).Return(nil).Once()
	f.client.HandleDisconnected(h, client.DisconnectedInfo{Event: client.DisconnectAbruptClose})
	f.handler.AssertNotCalled(t, "RDMResponse", mock.Anything, mock.Anything)
}

func TestClientListUpdatesAndAutoQuery(t *testing.T) {
	cfg := controllerConfig()
	cfg.AutoQuery = true
	f := newFixture(t, cfg, false)

	var rec recorder
	f.connector.EXPECT().Connect(client.ScopeHandle(1), staticAddr, mock.Anything).Return(nil).Once()
	f.handler.EXPECT().Connected(client.ScopeHandle(1), mock.Anything).Once()
	rec.record(f, 1)

	h, err := f.client.AddScope(client.ScopeConfig{Scope: "test", StaticBroker: staticAddr})
	require.NoError(t, err)
	f.client.HandleConnected(h, client.ConnectedInfo{BrokerUID: brokerUID, ClientUID: controllerUID})

	queries := len(version.CurrentProfile().AutoQuery)
	msgs := rec.rpt(t)
	require.Len(t, msgs, queries)
	for _, m := range msgs {
		assert.Equal(t, brokerUID, m.Header.DestUID)
	}

	dev := wire.NewRPTClientEntry(uuid.New(), deviceUID, wire.RPTClientTypeDevice)
	ctl := wire.NewRPTClientEntry(uuid.New(), rdm.UID{Manufacturer: 0x6574, Device: 9}, wire.RPTClientTypeController)

	var updates []wire.ClientListAction
	f.handler.EXPECT().ClientListUpdate(h, mock.Anything, mock.Anything).
		Run(func(_ client.ScopeHandle, action wire.ClientListAction, _ []wire.ClientEntry) {
			updates = append(updates, action)
		})

	f.client.HandleMessage(h, wire.Message{Payload: &wire.ClientList{Action: wire.ClientListReplace, Entries: []wire.ClientEntry{ctl}, Partial: true}})
	assert.Empty(t, updates)
	f.client.HandleMessage(h, wire.Message{Payload: &wire.ClientList{Action: wire.ClientListReplace, Entries: []wire.ClientEntry{dev}}})
	require.Equal(t, []wire.ClientListAction{wire.ClientListReplace}, updates)

	clients, err := f.client.Clients(h)
	require.NoError(t, err)
	assert.Len(t, clients, 2)

	msgs = rec.rpt(t)
	require.Len(t, msgs, 2*queries)
	for _, m := range msgs[queries:] {
		assert.Equal(t, deviceUID, m.Header.DestUID)
	}

	f.client.HandleMessage(h, wire.Message{Payload: &wire.ClientList{Action: wire.ClientListRemove, Entries: []wire.ClientEntry{dev}}})
	clients, err = f.client.Clients(h)
	require.NoError(t, err)
	assert.Len(t, clients, 1)
	assert.Len(t, rec.rpt(t), 2*queries)
}

func TestDynamicUIDAssignment(t *testing.T) {
	f := newFixture(t, controllerConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)

	rid := uuid.New()
	require.NoError(t, f.client.RequestDynamicUIDs(h, []wire.DynamicUIDRequest{{UID: rdm.UID{Manufacturer: 0xE574}, RID: rid}}))

	mappings := []wire.DynamicUIDMapping{{UID: rdm.UID{Manufacturer: 0x6574, Device: 0x42}, RID: rid}}
	f.handler.EXPECT().DynamicUIDsAssigned(h, mappings).Once()
	f.client.HandleMessage(h, wire.Message{Payload: &wire.AssignedDynamicUIDs{Mappings: mappings}})
}

func deviceConfig() client.Config {
	return client.Config{
		CID:  uuid.New(),
		UID:  deviceUID,
		Type: wire.RPTClientTypeDevice,
	}
}

func request(t *testing.T, cmd *rdm.Command, seq uint32, endpoint uint16) wire.Message {
	t.Helper()
	buf, err := rdm.EncodeCommand(cmd)
	require.NoError(t, err)
	return wire.Message{Payload: &wire.RPTMessage{
		Header: wire.RPTHeader{SourceUID: controllerUID, DestUID: cmd.Dest, DestEndpoint: endpoint, Seqnum: seq},
		Body:   &wire.RPTRequest{Command: buf},
	}}
}

func notificationResponses(t *testing.T, m *wire.RPTMessage) []*rdm.Response {
	t.Helper()
	n, ok := m.Body.(*wire.RPTNotification)
	require.True(t, ok)
	resps, err := n.Responses()
	require.NoError(t, err)
	return resps
}

func TestDeviceAnswersRequests(t *testing.T) {
	f := newFixture(t, deviceConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)
	require.NotNil(t, f.client.Responder())

	cmd := &rdm.Command{
		Source:         controllerUID,
		Dest:           deviceUID,
		TransactionNum: 3,
		PortID:         1,
		CommandClass:   rdm.CommandClassGet,
		ParamID:        rdm.PIDDeviceLabel,
	}
	f.client.HandleMessage(h, request(t, cmd, 77, 0))

	m := rec.last(t)
	assert.Equal(t, deviceUID, m.Header.SourceUID)
	assert.Equal(t, controllerUID, m.Header.DestUID)
	assert.Equal(t, uint32(77), m.Header.Seqnum)
	n := m.Body.(*wire.RPTNotification)
	echoed, ok := n.Command()
	require.True(t, ok)
	assert.Equal(t, cmd.TransactionNum, echoed.TransactionNum)

	resps := notificationResponses(t, m)
	require.Len(t, resps, 1)
	assert.Equal(t, rdm.ResponseTypeAck, resps[0].ResponseType)
	assert.Equal(t, f.client.Responder().DeviceLabel(), string(resps[0].Data))

	// Endpoints other than the default responder do not exist.
	f.client.HandleMessage(h, request(t, cmd, 78, 4))
	m = rec.last(t)
	st, ok := m.Body.(*wire.RPTStatus)
	require.True(t, ok)
	assert.Equal(t, wire.RPTStatusUnknownEndpoint, st.Code)
	assert.Equal(t, uint32(78), m.Header.Seqnum)
	assert.Equal(t, uint16(4), m.Header.SourceEndpoint)
}

func TestDeviceSetComponentScopeReconnects(t *testing.T) {
	f := newFixture(t, deviceConfig(), false)
	h := f.connectStatic(t)
	var rec recorder
	rec.record(f, h)

	next := netip.MustParseAddrPort("10.101.1.2:8888")
	data := make([]byte, 88)
	data[1] = 1
	copy(data[2:], "lab")
	data[65] = 1
	copy(data[66:], next.Addr().AsSlice())
	data[86], data[87] = byte(next.Port()>>8), byte(next.Port())

	f.connector.EXPECT().Disconnect(h, wire.DisconnectRPTReconfigure).Return(nil).Once()
	f.handler.EXPECT().Disconnected(h, mock.MatchedBy(func(ev client.DisconnectedEvent) bool {
		return ev.Event == client.DisconnectGracefulLocal && ev.Reason == wire.DisconnectRPTReconfigure && ev.WillRetry
	})).Once()
	f.connector.EXPECT().Connect(h, next, mock.Anything).Return(nil).Once()

	cmd := &rdm.Command{
		Source:         controllerUID,
		Dest:           deviceUID,
		TransactionNum: 4,
		PortID:         1,
		CommandClass:   rdm.CommandClassSet,
		ParamID:        rdm.PIDComponentScope,
		Data:           data,
	}
	f.client.HandleMessage(h, request(t, cmd, 9, 0))

	resps := notificationResponses(t, rec.last(t))
	require.Len(t, resps, 1)
	assert.Equal(t, rdm.ResponseTypeAck, resps[0].ResponseType)

	info, err := f.client.ScopeInfo(h)
	require.NoError(t, err)
	assert.Equal(t, "lab", info.Config.Scope)
	assert.Equal(t, next, info.Config.StaticBroker)
}

func TestRawCommandsGoToHandler(t *testing.T) {
	cfg := deviceConfig()
	cfg.RawCommands = true
	f := newFixture(t, cfg, false)
	h := f.connectStatic(t)
	assert.Nil(t, f.client.Responder())

	cmd := &rdm.Command{
		Source:       controllerUID,
		Dest:         deviceUID,
		PortID:       1,
		CommandClass: rdm.CommandClassGet,
		ParamID:      rdm.PIDDeviceInfo,
	}
	f.handler.EXPECT().RDMCommand(h, mock.Anything, mock.Anything).
		Run(func(_ client.ScopeHandle, got *rdm.Command, hdr wire.RPTHeader) {
			assert.Equal(t, rdm.PIDDeviceInfo, got.ParamID)
			assert.Equal(t, uint32(5), hdr.Seqnum)
		}).Once()
	f.client.HandleMessage(h, request(t, cmd, 5, 0))
}
