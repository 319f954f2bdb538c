package gravity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Flag is an integer column that archives encode either as a JSON number or
// as a JSON boolean.
type Flag int

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "true":
		*f = 1
		return nil
	case "false", "null":
		*f = 0
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flag must be a number or boolean: %w", err)
	}
	*f = Flag(n)
	return nil
}

// Domain is one row of domainlist. The list type is not part of the record;
// it is supplied by the caller.
type Domain struct {
	ID        int64   `json:"id"`
	Domain    string  `json:"domain"`
	Enabled   Flag    `json:"enabled"`
	DateAdded int64   `json:"date_added"`
	Comment   *string `json:"comment"`
}

// Ad is one row of adlist.
type Ad struct {
	ID        int64   `json:"id"`
	Address   string  `json:"address"`
	Enabled   Flag    `json:"enabled"`
	DateAdded int64   `json:"date_added"`
	Comment   *string `json:"comment"`
}

// DomainAuditEntry is one row of domain_audit.
type DomainAuditEntry struct {
	ID        int64  `json:"id"`
	Domain    string `json:"domain"`
	DateAdded int64  `json:"date_added"`
}

// Group is one row of "group".
type Group struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	DateAdded   int64   `json:"date_added"`
	Description *string `json:"description"`
}

// Client is one row of client.
type Client struct {
	ID        int64   `json:"id"`
	IP        string  `json:"ip"`
	DateAdded int64   `json:"date_added"`
	Comment   *string `json:"comment"`
}

// ClientGroupAssignment is one row of client_by_group.
type ClientGroupAssignment struct {
	ClientID int64 `json:"client_id"`
	GroupID  int64 `json:"group_id"`
}

// DomainListGroupAssignment is one row of domainlist_by_group.
type DomainListGroupAssignment struct {
	DomainListID int64 `json:"domainlist_id"`
	GroupID      int64 `json:"group_id"`
}

// AdListGroupAssignment is one row of adlist_by_group.
type AdListGroupAssignment struct {
	AdListID int64 `json:"adlist_id"`
	GroupID  int64 `json:"group_id"`
}

func decodeRecords[R any](data []byte) ([]R, error) {
	var records []R
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
