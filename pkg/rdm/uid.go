package rdm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UIDSize is the packed size of a UID in bytes.
const UIDSize = 6

// ErrInvalidUID indicates a UID string that cannot be parsed.
var ErrInvalidUID = errors.New("invalid UID")

// UID identifies an RDM responder or RPT component: a 16-bit ESTA
// manufacturer ID and a 32-bit device ID.
type UID struct {
	Manufacturer uint16
	Device       uint32
}

// Well-known UIDs.
var (
	// BroadcastUID addresses every RDM responder.
	BroadcastUID = UID{Manufacturer: 0xFFFF, Device: 0xFFFFFFFF}

	// RPTAllControllers addresses every RPT Controller connected to a broker.
	RPTAllControllers = UID{Manufacturer: 0xFFFC, Device: 0xFFFFFFFF}

	// RPTAllDevices addresses every RPT Device connected to a broker.
	RPTAllDevices = UID{Manufacturer: 0xFFFD, Device: 0xFFFFFFFF}
)

// dynamicUIDFlag marks a manufacturer ID as a dynamic UID request.
const dynamicUIDFlag = 0x8000

// RPTAllManufacturerDevices returns the UID addressing every RPT Device with
// the given manufacturer ID.
func RPTAllManufacturerDevices(manufacturer uint16) UID {
	return UID{Manufacturer: 0xFFFD, Device: uint32(manufacturer)<<16 | 0xFFFF}
}

// DynamicRequest returns the UID a client sends to ask the broker for a
// dynamically assigned UID under the given manufacturer ID.
func DynamicRequest(manufacturer uint16) UID {
	return UID{Manufacturer: manufacturer | dynamicUIDFlag}
}

// IsZero returns true for the all-zero UID.
func (u UID) IsZero() bool {
	return u.Manufacturer == 0 && u.Device == 0
}

// IsBroadcast returns true for any broadcast UID, RDM or RPT.
func (u UID) IsBroadcast() bool {
	return u.Device == 0xFFFFFFFF || u.IsDeviceBroadcast()
}

// IsControllerBroadcast returns true if u addresses all RPT Controllers.
func (u UID) IsControllerBroadcast() bool {
	return u == RPTAllControllers
}

// IsDeviceBroadcast returns true if u addresses all RPT Devices, either
// unconditionally or for one manufacturer.
func (u UID) IsDeviceBroadcast() bool {
	return u.Manufacturer == 0xFFFD && u.Device&0xFFFF == 0xFFFF
}

// IsDeviceManufacturerBroadcast returns true if u addresses every RPT Device
// of a single manufacturer. The manufacturer is returned when true.
func (u UID) IsDeviceManufacturerBroadcast() (uint16, bool) {
	if u.Manufacturer != 0xFFFD || u.Device == 0xFFFFFFFF || u.Device&0xFFFF != 0xFFFF {
		return 0, false
	}
	return uint16(u.Device >> 16), true
}

// IsDynamicRequest returns true if u asks the broker to assign a dynamic UID.
func (u UID) IsDynamicRequest() bool {
	return u.Manufacturer&dynamicUIDFlag != 0 && u.Device == 0 && u.Manufacturer != 0xFFFF &&
		u.Manufacturer != 0xFFFC && u.Manufacturer != 0xFFFD
}

// IsDynamic returns true if u is a dynamically assigned UID.
func (u UID) IsDynamic() bool {
	return u.Manufacturer&dynamicUIDFlag != 0 && u.Device != 0 && !u.IsBroadcast()
}

// String formats the UID as "mmmm:dddddddd" in hex.
func (u UID) String() string {
	return fmt.Sprintf("%04x:%08x", u.Manufacturer, u.Device)
}

// ParseUID parses a UID in "mmmm:dddddddd" hex form.
func ParseUID(s string) (UID, error) {
	manu, dev, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return UID{}, fmt.Errorf("%w: %q", ErrInvalidUID, s)
	}
	m, err := strconv.ParseUint(manu, 16, 16)
	if err != nil {
		return UID{}, fmt.Errorf("%w: manufacturer %q", ErrInvalidUID, manu)
	}
	d, err := strconv.ParseUint(dev, 16, 32)
	if err != nil {
		return UID{}, fmt.Errorf("%w: device %q", ErrInvalidUID, dev)
	}
	return UID{Manufacturer: uint16(m), Device: uint32(d)}, nil
}

// PutUID writes u into the first UIDSize bytes of b.
func PutUID(b []byte, u UID) {
	binary.BigEndian.PutUint16(b[0:2], u.Manufacturer)
	binary.BigEndian.PutUint32(b[2:6], u.Device)
}

// GetUID reads a UID from the first UIDSize bytes of b.
func GetUID(b []byte) UID {
	return UID{
		Manufacturer: binary.BigEndian.Uint16(b[0:2]),
		Device:       binary.BigEndian.Uint32(b[2:6]),
	}
}
