package restore

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownFilter is returned by ParseFilters for a keyword that names no
// category.
var ErrUnknownFilter = errors.New("unknown filter")

// Category groups archive entries for --filters.
type Category string

const (
	CategoryBlacklist      Category = "blacklist"
	CategoryBlacklistRegex Category = "blacklistregex"
	CategoryWhitelist      Category = "whitelist"
	CategoryWhitelistRegex Category = "whitelistregex"
	CategoryAdlist         Category = "adlist"
	CategoryAuditLog       Category = "auditlog"
	CategoryGroup          Category = "group"
	CategoryClient         Category = "client"
	CategoryStaticDHCP     Category = "staticdhcp"
	CategoryLocalDNS       Category = "localdns"
	CategoryLocalCNAME     Category = "localcname"
)

const filterAll = "all"

// Categories lists every category in help-text order.
var Categories = []Category{
	CategoryBlacklist,
	CategoryBlacklistRegex,
	CategoryWhitelist,
	CategoryWhitelistRegex,
	CategoryAdlist,
	CategoryAuditLog,
	CategoryGroup,
	CategoryClient,
	CategoryStaticDHCP,
	CategoryLocalDNS,
	CategoryLocalCNAME,
}

// FilterSet selects which categories a run restores. The zero value selects
// all of them.
type FilterSet struct {
	only map[Category]struct{}
}

// ParseFilters parses a comma-separated, case-insensitive keyword list.
// Every keyword is validated. "all" anywhere in the list (or an empty list)
// selects every category.
func ParseFilters(s string) (FilterSet, error) {
	known := make(map[Category]struct{}, len(Categories))
	for _, c := range Categories {
		known[c] = struct{}{}
	}

	only := make(map[Category]struct{})
	all := false
	for _, raw := range strings.Split(s, ",") {
		kw := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case kw == "":
			continue
		case kw == filterAll:
			all = true
			continue
		}
		if _, ok := known[Category(kw)]; !ok {
			return FilterSet{}, fmt.Errorf("%w: %q", ErrUnknownFilter, kw)
		}
		only[Category(kw)] = struct{}{}
	}
	if all || len(only) == 0 {
		return FilterSet{}, nil
	}
	return FilterSet{only: only}, nil
}

// Allows reports whether any of cats is selected.
func (f FilterSet) Allows(cats ...Category) bool {
	if f.only == nil {
		return true
	}
	for _, c := range cats {
		if _, ok := f.only[c]; ok {
			return true
		}
	}
	return false
}

func (f FilterSet) String() string {
	if f.only == nil {
		return filterAll
	}
	names := make([]string, 0, len(f.only))
	for c := range f.only {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
