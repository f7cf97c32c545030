package version

import (
	"embed"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

// Role names used as keys in a profile.
const (
	RoleController = "controller"
	RoleDevice     = "device"
	RoleBroker     = "broker"
)

// Profile describes what an E1.33 protocol version requires of each
// component role.
type Profile struct {
	Version      uint16              `yaml:"version"`
	Standard     string              `yaml:"standard"`
	BaselinePIDs map[string][]uint16 `yaml:"baseline_pids"`
	AutoQuery    []uint16            `yaml:"auto_query"`
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[uint16]*Profile)
)

// LoadProfile loads the embedded profile for an E1.33 version.
func LoadProfile(ver uint16) (*Profile, error) {
	cacheMu.RLock()
	if p, ok := cache[ver]; ok {
		cacheMu.RUnlock()
		return p, nil
	}
	cacheMu.RUnlock()

	data, err := profileFS.ReadFile("profiles/" + strconv.Itoa(int(ver)) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("profile for E1.33 version %d not found: %w", ver, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %d: %w", ver, err)
	}
	if p.Version != ver {
		return nil, fmt.Errorf("profile %d declares version %d", ver, p.Version)
	}

	cacheMu.Lock()
	cache[ver] = &p
	cacheMu.Unlock()

	return &p, nil
}

// CurrentProfile returns the profile for E133Version. The profile is
// embedded, so failure to load it is a build defect and panics.
func CurrentProfile() *Profile {
	p, err := LoadProfile(E133Version)
	if err != nil {
		panic(err)
	}
	return p
}

// AvailableProfiles returns the versions of all embedded profiles.
func AvailableProfiles() ([]uint16, error) {
	entries, err := profileFS.ReadDir("profiles")
	if err != nil {
		return nil, fmt.Errorf("reading profiles directory: %w", err)
	}

	var versions []uint16
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".yaml")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(name, 10, 16)
		if err != nil {
			continue
		}
		versions = append(versions, uint16(v))
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

// Baseline returns a copy of the baseline PID list for role, or nil for
// an unknown role.
func (p *Profile) Baseline(role string) []uint16 {
	return slices.Clone(p.BaselinePIDs[role])
}

// Roles returns the role names the profile defines, sorted.
func (p *Profile) Roles() []string {
	roles := make([]string, 0, len(p.BaselinePIDs))
	for r := range p.BaselinePIDs {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}
