package discovery

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"sort"
	"strconv"
	"strings"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/google/uuid"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeBrokerTXT creates the TXT records for a broker registration.
func EncodeBrokerTXT(info *RegisterInfo, e133Version uint16) TXTRecordMap {
	txt := make(TXTRecordMap)
	txt[TXTKeyVersion] = strconv.Itoa(TXTVersion)
	txt[TXTKeyScope] = info.Scope
	txt[TXTKeyE133Version] = strconv.FormatUint(uint64(e133Version), 10)
	txt[TXTKeyCID] = hex.EncodeToString(info.CID[:])
	txt[TXTKeyUID] = fmt.Sprintf("%04x%08x", info.UID.Manufacturer, info.UID.Device)
	if info.Model != "" {
		txt[TXTKeyModel] = truncate(info.Model, MaxTXTValueLen)
	}
	if info.Manufacturer != "" {
		txt[TXTKeyManufacturer] = truncate(info.Manufacturer, MaxTXTValueLen)
	}
	return txt
}

// DecodeBrokerTXT parses broker TXT records into info. Informational keys
// are optional; CID, UID and E133Vers are required.
func DecodeBrokerTXT(txt TXTRecordMap, info *BrokerInfo) error {
	if v, ok := txt[TXTKeyVersion]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyVersion, v)
		}
	}

	scope, ok := txt[TXTKeyScope]
	if !ok {
		scope = DefaultScope
	}
	info.Scope = scope

	v, ok := txt[TXTKeyE133Version]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyE133Version)
	}
	ver, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyE133Version, v)
	}
	info.E133Version = uint16(ver)

	v, ok = txt[TXTKeyCID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyCID)
	}
	cid, err := parseCID(v)
	if err != nil {
		return err
	}
	info.CID = cid

	v, ok = txt[TXTKeyUID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyUID)
	}
	uid, err := parseTXTUID(v)
	if err != nil {
		return err
	}
	info.UID = uid

	info.Model = txt[TXTKeyModel]
	info.Manufacturer = txt[TXTKeyManufacturer]
	return nil
}

func parseCID(s string) (uuid.UUID, error) {
	// Hyphenated forms are accepted too.
	cid, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyCID, s)
	}
	return cid, nil
}

func parseTXTUID(s string) (rdm.UID, error) {
	if strings.Contains(s, ":") {
		uid, err := rdm.ParseUID(s)
		if err != nil {
			return rdm.UID{}, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyUID, s)
		}
		return uid, nil
	}
	if len(s) != 12 {
		return rdm.UID{}, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyUID, s)
	}
	return parseTXTUID(s[:4] + ":" + s[4:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, sorted by key.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	keys := make([]string, 0, len(txt))
	for k := range txt {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(txt))
	for _, k := range keys {
		result = append(result, k+"="+txt[k])
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if k == "" {
			continue
		}
		if !found {
			// Key without value (boolean flag)
			v = ""
		}
		txt[k] = v
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}

// ValidateScope checks a scope string.
func ValidateScope(scope string) error {
	if scope == "" {
		return fmt.Errorf("%w: scope", ErrMissingRequired)
	}
	if len(scope) > MaxScopeLen {
		return ErrScopeTooLong
	}
	return nil
}

// SubtypeFor returns the DNS-SD subtype label for a scope.
func SubtypeFor(scope string) string {
	return "_" + scope
}

// BrokerFromEntry converts a resolved service entry into broker info.
// Entries without a port or with invalid TXT records are rejected.
func BrokerFromEntry(e *ServiceEntry) (*BrokerInfo, error) {
	if e.Port <= 0 || e.Port > 0xFFFF {
		return nil, fmt.Errorf("%w: port %d", ErrInvalidTXTRecord, e.Port)
	}
	info := &BrokerInfo{
		ServiceInstanceName: e.Instance,
		Host:                e.Host,
		Port:                uint16(e.Port),
	}
	if err := DecodeBrokerTXT(StringsToTXTRecords(e.Text), info); err != nil {
		return nil, err
	}
	info.ListenAddrs = entryAddrs(e.AddrIPv4, e.AddrIPv6, info.Port)
	return info, nil
}

func entryAddrs(v4, v6 []netip.Addr, port uint16) []netip.AddrPort {
	addrs := make([]netip.AddrPort, 0, len(v4)+len(v6))
	seen := make(map[netip.Addr]bool, len(v4)+len(v6))
	for _, list := range [][]netip.Addr{v4, v6} {
		for _, a := range list {
			a = a.Unmap()
			if !a.IsValid() || seen[a] {
				continue
			}
			seen[a] = true
			addrs = append(addrs, netip.AddrPortFrom(a, port))
		}
	}
	return addrs
}
