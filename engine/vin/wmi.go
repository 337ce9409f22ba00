package vin

import (
	"fmt"
	"sort"
)

// registry is the process-wide WMI table. It is written by RegisterWMIs during
// start-up only; concurrent writes once decoding has started are unsupported.
var registry = func() map[string]string {
	m := make(map[string]string, len(baseWMIs))
	for k, v := range baseWMIs {
		m[k] = v
	}
	return m
}()

// RegisterWMIs adds or replaces manufacturer entries. Keys are normalized and
// ignored unless they are three VIN characters. The last write for a key wins.
func RegisterWMIs(entries map[string]string) {
	for k, name := range entries {
		key := Normalize(k)
		if len(key) != 3 || !allowed(key[0]) || !allowed(key[1]) || !allowed(key[2]) {
			continue
		}
		registry[key] = name
	}
}

// KnownWMIs returns a copy of the current WMI table.
func KnownWMIs() map[string]string {
	out := make(map[string]string, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// ResolveManufacturer looks a WMI up. An exact hit returns the name, a hit on
// the first two characters returns "<name> (approx.)" and anything else
// returns "Unknown (WMI: <wmi>)".
func ResolveManufacturer(wmi string) string {
	if name, ok := registry[wmi]; ok {
		return name
	}
	if len(wmi) >= 2 {
		if name, ok := prefixMatch(wmi[:2]); ok {
			return name + " (approx.)"
		}
	}
	return fmt.Sprintf("Unknown (WMI: %s)", wmi)
}

// prefixMatch returns the entry with the smallest key starting with prefix.
func prefixMatch(prefix string) (string, bool) {
	var keys []string
	for k := range registry {
		if len(k) >= 2 && k[:2] == prefix {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return registry[keys[0]], true
}

// LookupWMI returns the registered name for an exact WMI match.
func LookupWMI(wmi string) (string, bool) {
	name, ok := registry[Normalize(wmi)]
	return name, ok
}
