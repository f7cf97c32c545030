package discovery

import (
	"errors"
	"net/netip"
	"strings"
	"testing"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCID = uuid.MustParse("0f8e6a7c-1b2d-4e5f-8a9b-0c1d2e3f4a5b")
	testUID = rdm.UID{Manufacturer: 0x6574, Device: 0x00000001}
)

func testRegisterInfo() *RegisterInfo {
	return &RegisterInfo{
		ServiceInstanceName: "Main Broker",
		Port:                8888,
		Scope:               "stage",
		CID:                 testCID,
		UID:                 testUID,
		Model:               "rdmnet-go broker",
		Manufacturer:        "ETC",
	}
}

func testEntry(instance string, addrs ...string) *ServiceEntry {
	e := &ServiceEntry{
		Instance: instance,
		Service:  ServiceType,
		Domain:   Domain,
		Host:     "broker.local.",
		Port:     8888,
		Text:     TXTRecordsToStrings(EncodeBrokerTXT(testRegisterInfo(), 1)),
	}
	for _, a := range addrs {
		ip := netip.MustParseAddr(a)
		if ip.Is4() {
			e.AddrIPv4 = append(e.AddrIPv4, ip)
		} else {
			e.AddrIPv6 = append(e.AddrIPv6, ip)
		}
	}
	return e
}

func TestBrokerTXTRoundtrip(t *testing.T) {
	txt := EncodeBrokerTXT(testRegisterInfo(), 1)
	assert.Equal(t, "1", txt[TXTKeyVersion])
	assert.Equal(t, "stage", txt[TXTKeyScope])
	assert.Equal(t, "0f8e6a7c1b2d4e5f8a9b0c1d2e3f4a5b", txt[TXTKeyCID])
	assert.Equal(t, "657400000001", txt[TXTKeyUID])

	var info BrokerInfo
	require.NoError(t, DecodeBrokerTXT(StringsToTXTRecords(TXTRecordsToStrings(txt)), &info))
	assert.Equal(t, "stage", info.Scope)
	assert.Equal(t, uint16(1), info.E133Version)
	assert.Equal(t, testCID, info.CID)
	assert.Equal(t, testUID, info.UID)
	assert.Equal(t, "rdmnet-go broker", info.Model)
	assert.Equal(t, "ETC", info.Manufacturer)
}

func TestDecodeBrokerTXTErrors(t *testing.T) {
	base := func() TXTRecordMap { return EncodeBrokerTXT(testRegisterInfo(), 1) }

	tests := []struct {
		name   string
		mutate func(TXTRecordMap)
		want   error
	}{
		{"missing CID", func(m TXTRecordMap) { delete(m, TXTKeyCID) }, ErrMissingRequired},
		{"missing UID", func(m TXTRecordMap) { delete(m, TXTKeyUID) }, ErrMissingRequired},
		{"missing version", func(m TXTRecordMap) { delete(m, TXTKeyE133Version) }, ErrMissingRequired},
		{"bad CID", func(m TXTRecordMap) { m[TXTKeyCID] = "xyz" }, ErrInvalidTXTRecord},
		{"short UID", func(m TXTRecordMap) { m[TXTKeyUID] = "6574" }, ErrInvalidTXTRecord},
		{"bad UID", func(m TXTRecordMap) { m[TXTKeyUID] = "zzzz00000001" }, ErrInvalidTXTRecord},
		{"bad TxtVers", func(m TXTRecordMap) { m[TXTKeyVersion] = "0" }, ErrInvalidTXTRecord},
		{"bad E133Vers", func(m TXTRecordMap) { m[TXTKeyE133Version] = "-1" }, ErrInvalidTXTRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txt := base()
			tt.mutate(txt)
			var info BrokerInfo
			err := DecodeBrokerTXT(txt, &info)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestDecodeBrokerTXTAcceptsAlternateForms(t *testing.T) {
	txt := EncodeBrokerTXT(testRegisterInfo(), 1)
	txt[TXTKeyCID] = testCID.String()
	txt[TXTKeyUID] = "6574:00000001"
	delete(txt, TXTKeyScope)

	var info BrokerInfo
	require.NoError(t, DecodeBrokerTXT(txt, &info))
	assert.Equal(t, testCID, info.CID)
	assert.Equal(t, testUID, info.UID)
	assert.Equal(t, DefaultScope, info.Scope)
}

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"a=1", "flag", "b=x=y", "", "=v"})
	assert.Equal(t, TXTRecordMap{"a": "1", "flag": "", "b": "x=y"}, txt)
	assert.Equal(t, []string{"a=1", "b=x=y", "flag="}, TXTRecordsToStrings(txt))
}

func TestRegisterInfoValidate(t *testing.T) {
	assert.NoError(t, testRegisterInfo().Validate())

	long := testRegisterInfo()
	long.ServiceInstanceName = strings.Repeat("x", 64)
	assert.ErrorIs(t, long.Validate(), ErrInstanceNameTooLong)

	scope := testRegisterInfo()
	scope.Scope = strings.Repeat("s", 63)
	assert.ErrorIs(t, scope.Validate(), ErrScopeTooLong)

	port := testRegisterInfo()
	port.Port = 0
	assert.ErrorIs(t, port.Validate(), ErrMissingRequired)
}

func TestBrokerFromEntry(t *testing.T) {
	info, err := BrokerFromEntry(testEntry("Main Broker", "fe80::1", "10.0.0.5", "10.0.0.5"))
	require.NoError(t, err)
	assert.Equal(t, "Main Broker", info.ServiceInstanceName)
	assert.Equal(t, uint16(8888), info.Port)
	assert.Equal(t, []netip.AddrPort{
		netip.MustParseAddrPort("10.0.0.5:8888"),
		netip.MustParseAddrPort("[fe80::1]:8888"),
	}, info.ListenAddrs)

	noPort := testEntry("x")
	noPort.Port = 0
	_, err = BrokerFromEntry(noPort)
	assert.ErrorIs(t, err, ErrInvalidTXTRecord)
}

func TestScopeWatchAggregation(t *testing.T) {
	w := newScopeWatch("stage")

	ev := w.add(testEntry("Main Broker", "10.0.0.5"))
	require.Equal(t, eventFound, ev.kind)
	assert.Len(t, ev.info.ListenAddrs, 1)

	// Same data again is not an update.
	ev = w.add(testEntry("Main Broker", "10.0.0.5"))
	assert.Equal(t, eventNone, ev.kind)

	// A second interface adds an address.
	ev = w.add(testEntry("Main Broker", "192.168.1.5"))
	require.Equal(t, eventUpdated, ev.kind)
	assert.Equal(t, []netip.AddrPort{
		netip.MustParseAddrPort("10.0.0.5:8888"),
		netip.MustParseAddrPort("192.168.1.5:8888"),
	}, ev.info.ListenAddrs)

	// Losing one interface keeps the broker.
	ev = w.remove(testEntry("Main Broker", "10.0.0.5"))
	require.Equal(t, eventUpdated, ev.kind)
	assert.Len(t, ev.info.ListenAddrs, 1)

	// Losing the last address loses the broker.
	ev = w.remove(testEntry("Main Broker", "192.168.1.5"))
	require.Equal(t, eventLost, ev.kind)
	assert.Equal(t, "Main Broker", ev.name)

	ev = w.remove(testEntry("Main Broker", "192.168.1.5"))
	assert.Equal(t, eventNone, ev.kind)
}

func TestScopeWatchIgnoresOtherScopes(t *testing.T) {
	w := newScopeWatch("other")
	ev := w.add(testEntry("Main Broker", "10.0.0.5"))
	assert.Equal(t, eventNone, ev.kind)
}

func TestScopeWatchGoodbyeWithoutAddresses(t *testing.T) {
	w := newScopeWatch("stage")
	w.add(testEntry("Main Broker", "10.0.0.5"))
	ev := w.remove(&ServiceEntry{Instance: "Main Broker"})
	assert.Equal(t, eventLost, ev.kind)
}

func TestBrowseDomain(t *testing.T) {
	assert.Equal(t, "local", browseDomain("local."))
	assert.Equal(t, "local", browseDomain(""))
	assert.Equal(t, "example.com", browseDomain("example.com."))
}

func TestMonitorBookkeeping(t *testing.T) {
	m := NewMDNSMonitor(MonitorConfig{})
	assert.ErrorIs(t, m.StartMonitoring("", DefaultSearchDomain), ErrMissingRequired)
	assert.ErrorIs(t, m.StartMonitoring(strings.Repeat("s", 63), DefaultSearchDomain), ErrScopeTooLong)

	// Unknown scopes are ignored.
	m.StopMonitoring("nothing")
	assert.False(t, m.IsMonitoring("nothing"))
}

func TestAdvertiserRejectsInvalidInfo(t *testing.T) {
	a := NewMDNSAdvertiser(DefaultAdvertiserConfig())
	info := testRegisterInfo()
	info.Port = 0
	assert.Error(t, a.RegisterBroker(t.Context(), info))
	assert.False(t, a.IsRegistered())
	assert.ErrorIs(t, a.UnregisterBroker(), ErrNotRegistered)
}
