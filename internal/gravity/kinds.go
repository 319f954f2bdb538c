package gravity

import (
	"database/sql"
	"fmt"
)

// Table names.
const (
	TableDomainList        = "domainlist"
	TableAdList            = "adlist"
	TableDomainAudit       = "domain_audit"
	TableGroup             = "group"
	TableClient            = "client"
	TableClientByGroup     = "client_by_group"
	TableDomainListByGroup = "domainlist_by_group"
	TableAdListByGroup     = "adlist_by_group"
)

// NewDomainList returns the restorer for domainlist rows of type t.
// The sentinel type is rejected so no row is ever written under it.
func NewDomainList(t DomainType, records []Domain) (*RecordSet[Domain], error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDomainType, t)
	}
	return &RecordSet[Domain]{
		table: TableDomainList,
		statement: fmt.Sprintf(
			"INSERT OR IGNORE INTO domainlist (id,domain,enabled,date_added,comment,type) VALUES (:id,:domain,:enabled,:date_added,:comment,%d);",
			int(t),
		),
		records: records,
		bind: func(r Domain) []any {
			return []any{
				sql.Named("id", r.ID),
				sql.Named("domain", r.Domain),
				sql.Named("enabled", r.Enabled),
				sql.Named("date_added", r.DateAdded),
				sql.Named("comment", r.Comment),
			}
		},
	}, nil
}

func NewAdList(records []Ad) *RecordSet[Ad] {
	return &RecordSet[Ad]{
		table:     TableAdList,
		statement: "INSERT OR IGNORE INTO adlist (id,address,enabled,date_added,comment) VALUES (:id,:address,:enabled,:date_added,:comment);",
		records:   records,
		bind: func(r Ad) []any {
			return []any{
				sql.Named("id", r.ID),
				sql.Named("address", r.Address),
				sql.Named("enabled", r.Enabled),
				sql.Named("date_added", r.DateAdded),
				sql.Named("comment", r.Comment),
			}
		},
	}
}

func NewDomainAuditList(records []DomainAuditEntry) *RecordSet[DomainAuditEntry] {
	return &RecordSet[DomainAuditEntry]{
		table:     TableDomainAudit,
		statement: "INSERT OR IGNORE INTO domain_audit (id,domain,date_added) VALUES (:id,:domain,:date_added);",
		records:   records,
		bind: func(r DomainAuditEntry) []any {
			return []any{
				sql.Named("id", r.ID),
				sql.Named("domain", r.Domain),
				sql.Named("date_added", r.DateAdded),
			}
		},
	}
}

func NewGroupList(records []Group) *RecordSet[Group] {
	return &RecordSet[Group]{
		table:     TableGroup,
		statement: `INSERT OR IGNORE INTO "group" (id,name,date_added,description) VALUES (:id,:name,:date_added,:description);`,
		records:   records,
		bind: func(r Group) []any {
			return []any{
				sql.Named("id", r.ID),
				sql.Named("name", r.Name),
				sql.Named("date_added", r.DateAdded),
				sql.Named("description", r.Description),
			}
		},
	}
}

func NewClientList(records []Client) *RecordSet[Client] {
	return &RecordSet[Client]{
		table:     TableClient,
		statement: "INSERT OR IGNORE INTO client (id,ip,date_added,comment) VALUES (:id,:ip,:date_added,:comment);",
		records:   records,
		bind: func(r Client) []any {
			return []any{
				sql.Named("id", r.ID),
				sql.Named("ip", r.IP),
				sql.Named("date_added", r.DateAdded),
				sql.Named("comment", r.Comment),
			}
		},
	}
}

func NewClientGroupAssignmentList(records []ClientGroupAssignment) *RecordSet[ClientGroupAssignment] {
	return &RecordSet[ClientGroupAssignment]{
		table:     TableClientByGroup,
		statement: "INSERT OR IGNORE INTO client_by_group (client_id,group_id) VALUES (:client_id,:group_id);",
		records:   records,
		bind: func(r ClientGroupAssignment) []any {
			return []any{
				sql.Named("client_id", r.ClientID),
				sql.Named("group_id", r.GroupID),
			}
		},
	}
}

func NewDomainListGroupAssignmentList(records []DomainListGroupAssignment) *RecordSet[DomainListGroupAssignment] {
	return &RecordSet[DomainListGroupAssignment]{
		table:     TableDomainListByGroup,
		statement: "INSERT OR IGNORE INTO domainlist_by_group (domainlist_id,group_id) VALUES (:domainlist_id,:group_id);",
		records:   records,
		bind: func(r DomainListGroupAssignment) []any {
			return []any{
				sql.Named("domainlist_id", r.DomainListID),
				sql.Named("group_id", r.GroupID),
			}
		},
	}
}

func NewAdListGroupAssignmentList(records []AdListGroupAssignment) *RecordSet[AdListGroupAssignment] {
	return &RecordSet[AdListGroupAssignment]{
		table:     TableAdListByGroup,
		statement: "INSERT OR IGNORE INTO adlist_by_group (adlist_id,group_id) VALUES (:adlist_id,:group_id);",
		records:   records,
		bind: func(r AdListGroupAssignment) []any {
			return []any{
				sql.Named("adlist_id", r.AdListID),
				sql.Named("group_id", r.GroupID),
			}
		},
	}
}

// decodeTable decodes a JSON array for one of the tables that carry no
// discriminant.
func decodeTable(table string, data []byte) (Restorer, error) {
	switch table {
	case TableAdList:
		recs, err := decodeRecords[Ad](data)
		if err != nil {
			return nil, err
		}
		return NewAdList(recs), nil
	case TableDomainAudit:
		recs, err := decodeRecords[DomainAuditEntry](data)
		if err != nil {
			return nil, err
		}
		return NewDomainAuditList(recs), nil
	case TableGroup:
		recs, err := decodeRecords[Group](data)
		if err != nil {
			return nil, err
		}
		return NewGroupList(recs), nil
	case TableClient:
		recs, err := decodeRecords[Client](data)
		if err != nil {
			return nil, err
		}
		return NewClientList(recs), nil
	case TableClientByGroup:
		recs, err := decodeRecords[ClientGroupAssignment](data)
		if err != nil {
			return nil, err
		}
		return NewClientGroupAssignmentList(recs), nil
	case TableDomainListByGroup:
		recs, err := decodeRecords[DomainListGroupAssignment](data)
		if err != nil {
			return nil, err
		}
		return NewDomainListGroupAssignmentList(recs), nil
	case TableAdListByGroup:
		recs, err := decodeRecords[AdListGroupAssignment](data)
		if err != nil {
			return nil, err
		}
		return NewAdListGroupAssignmentList(recs), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
}
