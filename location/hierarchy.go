package location

import (
	"sort"
	"strings"

	"github.com/yllada/vpn-access/common"
)

// Info is one selectable scope in the location hierarchy, annotated with
// its effective tags and resolved access options.
type Info struct {
	// ServerLocation is the scope string: "*/*", "<country>/*", or
	// "<country>/<region>".
	ServerLocation string `json:"serverLocation" yaml:"server_location"`
	// CountryCode is the scope's country code, or "*" for the top scope.
	CountryCode string `json:"countryCode" yaml:"country_code"`
	// RegionName is the scope's region, or "*" for aggregate scopes.
	RegionName string `json:"regionName" yaml:"region_name"`
	// IsNestedCountry is true for region-level scopes.
	IsNestedCountry bool `json:"isNestedCountry" yaml:"is_nested_country"`
	// IsDefault is true for exactly one scope in a non-empty list.
	IsDefault bool `json:"isDefault" yaml:"is_default"`
	// Tags is the scope's effective tag list per the tag set algebra.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	// Options is the resolved entitlement for the current client.
	Options Options `json:"options" yaml:"options"`
}

// node pairs a scope with the fleet leaves it aggregates. Leaves drive the
// tag algebra and the policy resolver; they are not exposed to callers.
type node struct {
	info   Info
	leaves []serverLocation
}

// buildNodes parses the raw fleet list and produces the ordered scope
// hierarchy. Malformed entries are skipped with a diagnostic so a single
// corrupt entry does not deny the rest of the fleet.
func buildNodes(rawLocations []string) []node {
	var leaves []serverLocation
	index := make(map[string]int)
	for _, raw := range rawLocations {
		loc, err := parseServerLocation(raw)
		if err != nil {
			common.LogWarn("skipping malformed server location: %v", err)
			continue
		}

		// Duplicate country/region entries collapse into one leaf with
		// the union of their tags.
		key := scopeName(loc.countryCode, loc.region)
		if i, ok := index[key]; ok {
			for _, tag := range loc.tags {
				if !common.StringInSlice(tag, leaves[i].tags) {
					leaves[i].tags = append(leaves[i].tags, tag)
				}
			}
			continue
		}
		index[key] = len(leaves)
		leaves = append(leaves, loc)
	}
	if len(leaves) == 0 {
		return nil
	}

	byCountry := make(map[string][]serverLocation)
	var countries []string
	for _, leaf := range leaves {
		if _, ok := byCountry[leaf.countryCode]; !ok {
			countries = append(countries, leaf.countryCode)
		}
		byCountry[leaf.countryCode] = append(byCountry[leaf.countryCode], leaf)
	}
	sort.Strings(countries)

	var nodes []node

	// A fleet spanning several countries gets a top-level aggregate scope.
	if len(countries) > 1 {
		nodes = append(nodes, node{
			info: Info{
				ServerLocation: scopeName(common.CountryWildcard, common.CountryWildcard),
				CountryCode:    common.CountryWildcard,
				RegionName:     common.CountryWildcard,
			},
			leaves: leaves,
		})
	}

	for _, cc := range countries {
		countryLeaves := byCountry[cc]

		// The aggregate scope exists even without a bare country entry.
		nodes = append(nodes, node{
			info: Info{
				ServerLocation: scopeName(cc, common.CountryWildcard),
				CountryCode:    cc,
				RegionName:     common.CountryWildcard,
			},
			leaves: countryLeaves,
		})

		var regions []serverLocation
		for _, leaf := range countryLeaves {
			if leaf.region != "" {
				regions = append(regions, leaf)
			}
		}
		sort.Slice(regions, func(i, j int) bool {
			return regions[i].region < regions[j].region
		})
		for _, leaf := range regions {
			nodes = append(nodes, node{
				info: Info{
					ServerLocation:  scopeName(cc, leaf.region),
					CountryCode:     cc,
					RegionName:      leaf.region,
					IsNestedCountry: true,
				},
				leaves: []serverLocation{leaf},
			})
		}
	}

	nodes[0].info.IsDefault = true
	for i := range nodes {
		nodes[i].info.Tags = aggregateTags(nodes[i].leaves)
	}
	return nodes
}

// BuildInfos returns the ordered scope hierarchy for a raw fleet list with
// tags annotated but options left unresolved. An empty fleet yields an
// empty list, not an error.
func BuildInfos(rawLocations []string) []Info {
	nodes := buildNodes(rawLocations)
	infos := make([]Info, len(nodes))
	for i, n := range nodes {
		infos[i] = n.info
	}
	return infos
}

// FindInfo locates a scope by its location string, falling back to the
// default scope when the requested one does not exist. Returns nil for an
// empty list.
func FindInfo(infos []Info, serverLocation string) *Info {
	for i := range infos {
		if strings.EqualFold(infos[i].ServerLocation, serverLocation) {
			return &infos[i]
		}
	}
	for i := range infos {
		if infos[i].IsDefault {
			return &infos[i]
		}
	}
	return nil
}
