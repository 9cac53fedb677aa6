package registry

import "strings"

// Filter decides whether a candidate type participates in the event map.
// Patterns are substring matches against the fully-qualified type
// identifier. An empty whitelist matches everything; the blacklist always
// wins.
type Filter struct {
	whitelist []string
	blacklist []string
}

func NewFilter(whitelist, blacklist []string) *Filter {
	return &Filter{
		whitelist: whitelist,
		blacklist: blacklist,
	}
}

func (f *Filter) Included(typeID string) bool {
	for _, p := range f.blacklist {
		if p != "" && strings.Contains(typeID, p) {
			return false
		}
	}
	if len(f.whitelist) == 0 {
		return true
	}
	for _, p := range f.whitelist {
		if p != "" && strings.Contains(typeID, p) {
			return true
		}
	}
	return false
}
