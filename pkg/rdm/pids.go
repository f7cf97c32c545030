package rdm

import (
	"fmt"
	"strconv"
	"strings"
)

//go:generate go run ../../cmd/rdmnet-pidgen -in pids.yaml -out pid_names.go

// E1.20 parameter IDs.
const (
	PIDDiscUniqueBranch       uint16 = 0x0001
	PIDDiscMute               uint16 = 0x0002
	PIDDiscUnMute             uint16 = 0x0003
	PIDQueuedMessage          uint16 = 0x0020
	PIDStatusMessages         uint16 = 0x0030
	PIDSupportedParameters    uint16 = 0x0050
	PIDParameterDescription   uint16 = 0x0051
	PIDDeviceInfo             uint16 = 0x0060
	PIDDeviceModelDescription uint16 = 0x0080
	PIDManufacturerLabel      uint16 = 0x0081
	PIDDeviceLabel            uint16 = 0x0082
	PIDSoftwareVersionLabel   uint16 = 0x00C0
	PIDDMXPersonality         uint16 = 0x00E0
	PIDDMXStartAddress        uint16 = 0x00F0
	PIDIdentifyDevice         uint16 = 0x1000
	PIDResetDevice            uint16 = 0x1001
)

// E1.33 parameter IDs.
const (
	PIDComponentScope                          uint16 = 0x0800
	PIDSearchDomain                            uint16 = 0x0801
	PIDTCPCommsStatus                          uint16 = 0x0802
	PIDBrokerStatus                            uint16 = 0x0803
	PIDEndpointList                            uint16 = 0x0900
	PIDEndpointListChange                      uint16 = 0x0901
	PIDIdentifyEndpoint                        uint16 = 0x0902
	PIDEndpointToUniverse                      uint16 = 0x0903
	PIDEndpointMode                            uint16 = 0x0904
	PIDEndpointLabel                           uint16 = 0x0905
	PIDRDMTrafficEnable                        uint16 = 0x0906
	PIDDiscoveryState                          uint16 = 0x0907
	PIDBackgroundDiscovery                     uint16 = 0x0908
	PIDEndpointTiming                          uint16 = 0x0909
	PIDEndpointTimingDescription               uint16 = 0x090A
	PIDEndpointResponders                      uint16 = 0x090B
	PIDEndpointResponderListChange             uint16 = 0x090C
	PIDBindingControlFields                    uint16 = 0x090D
	PIDBackgroundQueuedStatusPolicy            uint16 = 0x090E
	PIDBackgroundQueuedStatusPolicyDescription uint16 = 0x090F
)

// ParsePID accepts a parameter name such as "DEVICE_LABEL" (any case) or a
// number such as "0x0082".
func ParsePID(s string) (uint16, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for pid, n := range pidNames {
		if n == name {
			return pid, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown parameter %q", s)
	}
	return uint16(v), nil
}
