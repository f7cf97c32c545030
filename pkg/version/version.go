// Package version provides library and protocol version information.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the release version of this library.
const Current = "1.0"

// E133Version is the E1.33 protocol version spoken on the wire.
const E133Version uint16 = 1

// SpecVersion represents a parsed "major.minor" version.
type SpecVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (SpecVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return SpecVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return SpecVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return SpecVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return SpecVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v SpecVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v SpecVersion) Compatible(other SpecVersion) bool {
	return v.Major == other.Major
}

// SupportsE133 reports whether a peer's E1.33 version can be served.
// Newer minor revisions keep the version field at 1.
func SupportsE133(v uint16) bool {
	return v == E133Version
}

// SoftwareLabel returns the SOFTWARE_VERSION_LABEL text for a component,
// e.g. "rdmnet-go broker 1.0".
func SoftwareLabel(component string) string {
	if component == "" {
		return "rdmnet-go " + Current
	}
	return fmt.Sprintf("rdmnet-go %s %s", component, Current)
}

// SoftwareVersionID returns the numeric software version reported in
// DEVICE_INFO: major in the high 16 bits, minor in the low 16 bits.
func SoftwareVersionID() uint32 {
	v, _ := Parse(Current)
	return uint32(v.Major)<<16 | uint32(v.Minor)
}
