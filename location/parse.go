package location

import (
	"fmt"
	"strings"
)

// serverLocation is one parsed fleet entry. A bare country entry has an
// empty region.
type serverLocation struct {
	countryCode string
	region      string
	tags        []string
}

// parseServerLocation parses a raw "country[/region] [#tag ...]" entry.
// Country and region are lower-cased; tags keep their source form.
func parseServerLocation(raw string) (serverLocation, error) {
	var loc serverLocation

	entry := strings.TrimSpace(raw)
	if entry == "" {
		return loc, fmt.Errorf("empty location entry")
	}

	// Split off the optional bracketed tag list.
	if i := strings.Index(entry, "["); i >= 0 {
		if !strings.HasSuffix(entry, "]") {
			return loc, fmt.Errorf("unterminated tag list in %q", raw)
		}
		for _, tag := range strings.Fields(entry[i+1 : len(entry)-1]) {
			if !strings.HasPrefix(tag, "#") {
				return loc, fmt.Errorf("invalid tag %q in %q", tag, raw)
			}
			loc.tags = append(loc.tags, tag)
		}
		entry = strings.TrimSpace(entry[:i])
	}

	if entry == "" {
		return loc, fmt.Errorf("missing country code in %q", raw)
	}

	parts := strings.SplitN(entry, "/", 2)
	loc.countryCode = strings.ToLower(strings.TrimSpace(parts[0]))
	if loc.countryCode == "" || strings.ContainsAny(loc.countryCode, " \t") {
		return loc, fmt.Errorf("invalid country code in %q", raw)
	}
	if len(parts) == 2 {
		loc.region = strings.ToLower(strings.TrimSpace(parts[1]))
		if loc.region == "" || strings.Contains(loc.region, "/") {
			return loc, fmt.Errorf("invalid region in %q", raw)
		}
	}

	return loc, nil
}

// scopeName renders the user-facing scope string for a country/region pair.
// Both parts may be the wildcard.
func scopeName(countryCode, region string) string {
	return countryCode + "/" + region
}
