package restore

import "github.com/Resinat/Teleporter/internal/gravity"

type action int

const (
	actionDomainList action = iota
	actionTable
	actionStaticDHCP
	actionCustomDNS
	actionCustomCNAME
)

// Archive member names of the config-file stores.
const (
	EntryStaticDHCP  = "dnsmasq.d/04-pihole-static-dhcp.conf"
	EntryCustomDNS   = "custom.list"
	EntryCustomCNAME = "dnsmasq.d/05-pihole-custom-cname.conf"
)

type entrySpec struct {
	action     action
	domainType gravity.DomainType
	table      string
	categories []Category
}

var domainListCategories = []Category{
	CategoryBlacklist,
	CategoryBlacklistRegex,
	CategoryWhitelist,
	CategoryWhitelistRegex,
}

// knownEntries maps archive member names to what restores them.
var knownEntries = map[string]entrySpec{
	"blacklist.exact.json": {action: actionDomainList, domainType: gravity.DomainTypeBlacklist, table: gravity.TableDomainList, categories: []Category{CategoryBlacklist}},
	"blacklist.regex.json": {action: actionDomainList, domainType: gravity.DomainTypeBlacklistRegex, table: gravity.TableDomainList, categories: []Category{CategoryBlacklistRegex}},
	"whitelist.exact.json": {action: actionDomainList, domainType: gravity.DomainTypeWhitelist, table: gravity.TableDomainList, categories: []Category{CategoryWhitelist}},
	"whitelist.regex.json": {action: actionDomainList, domainType: gravity.DomainTypeWhitelistRegex, table: gravity.TableDomainList, categories: []Category{CategoryWhitelistRegex}},

	"adlist.json":              {action: actionTable, table: gravity.TableAdList, categories: []Category{CategoryAdlist}},
	"domain_audit.json":        {action: actionTable, table: gravity.TableDomainAudit, categories: []Category{CategoryAuditLog}},
	"group.json":               {action: actionTable, table: gravity.TableGroup, categories: []Category{CategoryGroup}},
	"client.json":              {action: actionTable, table: gravity.TableClient, categories: []Category{CategoryClient}},
	"client_by_group.json":     {action: actionTable, table: gravity.TableClientByGroup, categories: []Category{CategoryClient}},
	"domainlist_by_group.json": {action: actionTable, table: gravity.TableDomainListByGroup, categories: domainListCategories},
	"adlist_by_group.json":     {action: actionTable, table: gravity.TableAdListByGroup, categories: []Category{CategoryAdlist}},

	EntryStaticDHCP:  {action: actionStaticDHCP, categories: []Category{CategoryStaticDHCP}},
	EntryCustomDNS:   {action: actionCustomDNS, categories: []Category{CategoryLocalDNS}},
	EntryCustomCNAME: {action: actionCustomCNAME, categories: []Category{CategoryLocalCNAME}},
}
