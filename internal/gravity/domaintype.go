package gravity

import "fmt"

// DomainType is the list-type discriminant stored in domainlist.type. Four
// logical lists share the one physical table.
type DomainType int

const (
	DomainTypeInvalid        DomainType = -1
	DomainTypeWhitelist      DomainType = 0
	DomainTypeBlacklist      DomainType = 1
	DomainTypeWhitelistRegex DomainType = 2
	DomainTypeBlacklistRegex DomainType = 3
)

var domainTypeNames = map[string]DomainType{
	"whitelist":       DomainTypeWhitelist,
	"blacklist":       DomainTypeBlacklist,
	"regex_whitelist": DomainTypeWhitelistRegex,
	"regex_blacklist": DomainTypeBlacklistRegex,
}

// DomainTypeFromName maps a logical list name to its discriminant.
// Unrecognized names map to DomainTypeInvalid.
func DomainTypeFromName(name string) DomainType {
	if t, ok := domainTypeNames[name]; ok {
		return t
	}
	return DomainTypeInvalid
}

// IsValid reports whether t is one of the four stored list types.
func (t DomainType) IsValid() bool {
	return t >= DomainTypeWhitelist && t <= DomainTypeBlacklistRegex
}

func (t DomainType) String() string {
	switch t {
	case DomainTypeWhitelist:
		return "whitelist"
	case DomainTypeBlacklist:
		return "blacklist"
	case DomainTypeWhitelistRegex:
		return "regex_whitelist"
	case DomainTypeBlacklistRegex:
		return "regex_blacklist"
	default:
		return fmt.Sprintf("invalid(%d)", int(t))
	}
}

// flushCondition scopes a domainlist flush to rows of this type.
func (t DomainType) flushCondition() string {
	return fmt.Sprintf("WHERE type = %d", int(t))
}
