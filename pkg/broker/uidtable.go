package broker

import (
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// maxDynamicDeviceID is the last device ID handed out per manufacturer.
const maxDynamicDeviceID = 0xFFFFFFFE

// uidTable maps the UIDs of connected clients to their handles and keeps
// dynamic UID assignments. Assignments are keyed by RID (the CID for a
// client's own UID) and survive reconnects. The broker lock guards it.
type uidTable struct {
	handles map[rdm.UID]int
	byRID   map[uuid.UUID]rdm.UID
	rids    map[rdm.UID]uuid.UUID
	next    map[uint16]uint32
}

func newUIDTable() *uidTable {
	return &uidTable{
		handles: make(map[rdm.UID]int),
		byRID:   make(map[uuid.UUID]rdm.UID),
		rids:    make(map[rdm.UID]uuid.UUID),
		next:    make(map[uint16]uint32),
	}
}

// add binds uid to handle. It refuses a UID that is already bound.
func (t *uidTable) add(uid rdm.UID, handle int) bool {
	if _, ok := t.handles[uid]; ok {
		return false
	}
	t.handles[uid] = handle
	return true
}

func (t *uidTable) remove(uid rdm.UID) {
	delete(t.handles, uid)
}

func (t *uidTable) lookup(uid rdm.UID) (int, bool) {
	h, ok := t.handles[uid]
	return h, ok
}

func (t *uidTable) len() int {
	return len(t.handles)
}

// assign returns the dynamic UID for rid, allocating one under the
// requested manufacturer if rid has none yet.
func (t *uidTable) assign(request rdm.UID, rid uuid.UUID) (rdm.UID, wire.DynamicUIDStatus) {
	if !request.IsDynamicRequest() {
		return rdm.UID{}, wire.DynamicUIDInvalidRequest
	}
	if uid, ok := t.byRID[rid]; ok {
		return uid, wire.DynamicUIDOK
	}

	manu := request.Manufacturer
	dev := t.next[manu]
	for {
		if dev >= maxDynamicDeviceID {
			return rdm.UID{}, wire.DynamicUIDCapacityExhausted
		}
		dev++
		uid := rdm.UID{Manufacturer: manu, Device: dev}
		if _, used := t.rids[uid]; used {
			continue
		}
		if _, used := t.handles[uid]; used {
			continue
		}
		t.next[manu] = dev
		t.byRID[rid] = uid
		t.rids[uid] = rid
		return uid, wire.DynamicUIDOK
	}
}

// assignAll answers a RequestDynamicUIDs list.
func (t *uidTable) assignAll(reqs []wire.DynamicUIDRequest) []wire.DynamicUIDMapping {
	seen := make(map[uuid.UUID]bool, len(reqs))
	out := make([]wire.DynamicUIDMapping, 0, len(reqs))
	for _, r := range reqs {
		m := wire.DynamicUIDMapping{RID: r.RID}
		if seen[r.RID] {
			m.Status = wire.DynamicUIDDuplicateRID
			out = append(out, m)
			continue
		}
		seen[r.RID] = true
		m.UID, m.Status = t.assign(r.UID, r.RID)
		out = append(out, m)
	}
	return out
}

// fetch answers a FetchDynamicUIDList list.
func (t *uidTable) fetch(uids []rdm.UID) []wire.DynamicUIDMapping {
	out := make([]wire.DynamicUIDMapping, 0, len(uids))
	for _, uid := range uids {
		m := wire.DynamicUIDMapping{UID: uid}
		if rid, ok := t.rids[uid]; ok {
			m.RID = rid
			m.Status = wire.DynamicUIDOK
		} else {
			m.Status = wire.DynamicUIDNotFound
		}
		out = append(out, m)
	}
	return out
}
