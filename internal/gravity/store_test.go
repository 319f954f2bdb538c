package gravity

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestStore creates a migrated gravity.db in a temp dir and a Store on it.
func newTestStore(t *testing.T, policy Policy) (*Store, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gravity.db")
	store := NewStore(path, policy, zap.NewNop())
	require.NoError(t, store.InitSchema())

	db, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store, db
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

const blacklistJSON = `[
	{"id": 1, "domain": "ads.example.com", "enabled": 1, "date_added": 1600000000, "comment": "first"},
	{"id": 2, "domain": "track.example.com", "enabled": true, "date_added": 1600000001, "comment": null}
]`

func TestStore_RestoreDomainList_Idempotent(t *testing.T) {
	store, db := newTestStore(t, Policy{})
	ctx := context.Background()

	res, err := store.RestoreDomainList(ctx, DomainTypeBlacklist, strings.NewReader(blacklistJSON), false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempted)
	assert.EqualValues(t, 2, res.Inserted)
	assert.Zero(t, res.Failed)

	res, err = store.RestoreDomainList(ctx, DomainTypeBlacklist, strings.NewReader(blacklistJSON), false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempted)
	assert.EqualValues(t, 0, res.Inserted, "second restore must not write anything")

	assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM domainlist WHERE type = 1"))

	var comment sql.NullString
	var enabled int
	require.NoError(t, db.QueryRow("SELECT comment, enabled FROM domainlist WHERE id = 2").Scan(&comment, &enabled))
	assert.False(t, comment.Valid)
	assert.Equal(t, 1, enabled)
}

func TestStore_RestoreDomainList_KeepsFirstWrittenRow(t *testing.T) {
	store, db := newTestStore(t, Policy{})
	ctx := context.Background()

	_, err := store.RestoreDomainList(ctx, DomainTypeBlacklist, strings.NewReader(
		`[{"id": 7, "domain": "a.example", "enabled": 1, "date_added": 1, "comment": "kept"}]`), false)
	require.NoError(t, err)
	_, err = store.RestoreDomainList(ctx, DomainTypeBlacklist, strings.NewReader(
		`[{"id": 7, "domain": "b.example", "enabled": 0, "date_added": 2, "comment": "changed"}]`), false)
	require.NoError(t, err)

	var domain, comment string
	require.NoError(t, db.QueryRow("SELECT domain, comment FROM domainlist WHERE id = 7").Scan(&domain, &comment))
	assert.Equal(t, "a.example", domain)
	assert.Equal(t, "kept", comment)
}

func TestStore_RestoreDomainList_FlushScopedByType(t *testing.T) {
	store, db := newTestStore(t, Policy{})
	ctx := context.Background()

	_, err := store.RestoreDomainList(ctx, DomainTypeWhitelist, strings.NewReader(
		`[{"id": 10, "domain": "good.example", "enabled": 1, "date_added": 1, "comment": ""}]`), false)
	require.NoError(t, err)
	_, err = store.RestoreDomainList(ctx, DomainTypeBlacklist, strings.NewReader(
		`[{"id": 20, "domain": "old-bad.example", "enabled": 1, "date_added": 1, "comment": ""}]`), false)
	require.NoError(t, err)

	res, err := store.RestoreDomainList(ctx, DomainTypeBlacklist, strings.NewReader(blacklistJSON), true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Inserted)

	assert.Equal(t, 0, countRows(t, db, "SELECT COUNT(*) FROM domainlist WHERE id = 20"))
	assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM domainlist WHERE type = 1"))
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM domainlist WHERE type = 0 AND id = 10"))
}

func TestStore_RestoreDomainList_RejectsInvalidType(t *testing.T) {
	store, db := newTestStore(t, Policy{})

	_, err := store.RestoreDomainList(context.Background(), DomainTypeFromName("greylist"), strings.NewReader(blacklistJSON), true)
	require.ErrorIs(t, err, ErrInvalidDomainType)
	assert.Equal(t, 0, countRows(t, db, "SELECT COUNT(*) FROM domainlist"))

	_, err = NewDomainList(DomainType(7), nil)
	require.ErrorIs(t, err, ErrInvalidDomainType)
}

func TestStore_RestoreTable_AllKinds(t *testing.T) {
	store, db := newTestStore(t, Policy{})
	ctx := context.Background()

	cases := []struct {
		table string
		body  string
		count string
		want  int
	}{
		{TableAdList, `[{"id": 1, "address": "https://lists.example/hosts", "enabled": 1, "date_added": 5, "comment": "main"}]`, `SELECT COUNT(*) FROM adlist`, 1},
		{TableDomainAudit, `[{"id": 1, "domain": "audited.example", "date_added": 5}]`, `SELECT COUNT(*) FROM domain_audit`, 1},
		{TableGroup, `[{"id": 0, "name": "Default", "date_added": 5, "description": "The default group"}, {"id": 3, "name": "kids", "date_added": 6, "description": null}]`, `SELECT COUNT(*) FROM "group"`, 2},
		{TableClient, `[{"id": 1, "ip": "192.168.1.20", "date_added": 5, "comment": "laptop"}]`, `SELECT COUNT(*) FROM client`, 1},
		{TableClientByGroup, `[{"client_id": 1, "group_id": 3}]`, `SELECT COUNT(*) FROM client_by_group`, 1},
		{TableDomainListByGroup, `[{"domainlist_id": 1, "group_id": 3}, {"domainlist_id": 2, "group_id": 3}]`, `SELECT COUNT(*) FROM domainlist_by_group`, 2},
		{TableAdListByGroup, `[{"adlist_id": 1, "group_id": 0}]`, `SELECT COUNT(*) FROM adlist_by_group`, 1},
	}
	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			res, err := store.RestoreTable(ctx, tc.table, strings.NewReader(tc.body), false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Attempted)
			assert.Equal(t, tc.want, countRows(t, db, tc.count))

			// Join rows have no identity beyond their key pair.
			res, err = store.RestoreTable(ctx, tc.table, strings.NewReader(tc.body), false)
			require.NoError(t, err)
			assert.EqualValues(t, 0, res.Inserted)
			assert.Equal(t, tc.want, countRows(t, db, tc.count))
		})
	}
}

func TestStore_RestoreTable_FlushClearsWholeTable(t *testing.T) {
	store, db := newTestStore(t, Policy{})
	ctx := context.Background()

	_, err := store.RestoreTable(ctx, TableClient, strings.NewReader(
		`[{"id": 1, "ip": "10.0.0.1", "date_added": 1, "comment": ""}, {"id": 2, "ip": "10.0.0.2", "date_added": 1, "comment": ""}]`), false)
	require.NoError(t, err)

	_, err = store.RestoreTable(ctx, TableClient, strings.NewReader(
		`[{"id": 5, "ip": "10.0.0.5", "date_added": 1, "comment": ""}]`), true)
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM client"))
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM client WHERE id = 5"))
}

func TestStore_RestoreTable_Errors(t *testing.T) {
	store, _ := newTestStore(t, Policy{})
	ctx := context.Background()

	_, err := store.RestoreTable(ctx, "sqlite_sequence", strings.NewReader(`[]`), false)
	require.ErrorIs(t, err, ErrUnknownTable)

	_, err = store.RestoreTable(ctx, TableAdList, strings.NewReader(`{"not": "an array"}`), false)
	require.Error(t, err)
}

func TestStore_FlushMissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	store := NewStore(path, Policy{}, zap.NewNop())

	_, err := store.RestoreTable(context.Background(), TableGroup, strings.NewReader(`[]`), true)
	require.ErrorIs(t, err, ErrTableNotFound)
}

const adsWithRejectedRow = `[
	{"id": 1, "address": "https://one.example/list", "enabled": 1, "date_added": 1, "comment": ""},
	{"id": 2, "address": "rejected", "enabled": 1, "date_added": 1, "comment": ""},
	{"id": 3, "address": "https://three.example/list", "enabled": 1, "date_added": 1, "comment": ""}
]`

func addRejectTrigger(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`CREATE TRIGGER reject_address BEFORE INSERT ON adlist
		WHEN NEW.address = 'rejected'
		BEGIN SELECT RAISE(ABORT, 'address rejected'); END`)
	require.NoError(t, err)
}

func TestStore_RestoreTable_BestEffortSkipsFailedRecord(t *testing.T) {
	store, db := newTestStore(t, Policy{})
	addRejectTrigger(t, db)

	res, err := store.RestoreTable(context.Background(), TableAdList, strings.NewReader(adsWithRejectedRow), false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempted)
	assert.EqualValues(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM adlist"))
}

func TestStore_RestoreTable_StrictRollsBackBatch(t *testing.T) {
	store, db := newTestStore(t, Policy{Strict: true})
	addRejectTrigger(t, db)

	_, err := store.RestoreTable(context.Background(), TableAdList, strings.NewReader(adsWithRejectedRow), false)
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, db, "SELECT COUNT(*) FROM adlist"))
}

func TestStore_Check(t *testing.T) {
	missingPath := filepath.Join(t.TempDir(), "nope.db")
	missing := NewStore(missingPath, Policy{}, zap.NewNop())
	require.ErrorIs(t, missing.Check(context.Background()), os.ErrNotExist)
	// The driver would create the file on open; Check must not.
	_, err := os.Stat(missingPath)
	assert.ErrorIs(t, err, os.ErrNotExist)

	store, _ := newTestStore(t, Policy{})
	require.NoError(t, store.Check(context.Background()))
}
