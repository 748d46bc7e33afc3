package experience

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/storage"
	"github.com/jonathan/sng-admin/internal/testutil"
	"github.com/jonathan/sng-admin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedProject(id, slug string, year int) types.Project {
	p := ProjectFromRow(types.ExperienceItem{ID: id, Year: intPtr(year), Subject: "Объект " + id}, 0, year)
	p.ID = id
	p.Slug = slug
	return p
}

func TestMerge_AddsAndSortsByYear(t *testing.T) {
	projects := []types.Project{
		storedProject("p-2019", "p-2019", 2019),
		storedProject("p-2023", "p-2023", 2023),
	}
	rows := []types.ExperienceItem{
		{ID: "a", Year: intPtr(2021), Subject: "ГРС"},
		{ID: "b", Year: intPtr(2023), Subject: "КС"},
	}

	merged, added := Merge(projects, rows, 2026)
	require.Equal(t, 2, added)

	ids := make([]string, len(merged))
	for i, p := range merged {
		ids[i] = p.ID
	}
	// Stable: equal years keep stored-before-derived order.
	assert.Equal(t, []string{"p-2023", "exp-project-b", "exp-project-a", "p-2019"}, ids)
}

func TestMerge_SkipsTakenIDOrSlug(t *testing.T) {
	projects := []types.Project{
		storedProject("exp-project-a", "custom-a", 2020),
		storedProject("custom-b", "experience-b", 2020),
	}
	rows := []types.ExperienceItem{
		{ID: "a", Year: intPtr(2021)},
		{ID: "b", Year: intPtr(2021)},
		{ID: "b", Year: intPtr(2022)},
	}

	merged, added := Merge(projects, rows, 2026)
	assert.Equal(t, 0, added)
	assert.Equal(t, projects, merged)
}

func TestMerge_DuplicateRowsAddedOnce(t *testing.T) {
	rows := []types.ExperienceItem{
		{ID: "Row 1", Year: intPtr(2020)},
		{ID: "row-1", Year: intPtr(2021)},
	}

	merged, added := Merge(nil, rows, 2026)
	assert.Equal(t, 1, added)
	require.Len(t, merged, 1)
	assert.Equal(t, 2020, merged[0].Year)
}

func TestMerge_Idempotent(t *testing.T) {
	rows := []types.ExperienceItem{
		{ID: "a", Year: intPtr(2021)},
		{ID: "b", Year: intPtr(2018)},
	}

	first, added := Merge([]types.Project{storedProject("p", "p", 2020)}, rows, 2026)
	require.Equal(t, 2, added)

	second, added := Merge(first, rows, 2026)
	assert.Equal(t, 0, added)
	assert.Equal(t, first, second)
}

type mergerFixture struct {
	merger *Merger
	refs   storage.Refs
}

func setupMerger(t *testing.T, backend storage.Backend, projects, ledger string) mergerFixture {
	t.Helper()
	refs := storage.DefaultRefs(t.TempDir())
	if projects != "" {
		require.NoError(t, os.WriteFile(refs.Projects.Path, []byte(projects), 0o644))
	}
	if ledger != "" {
		require.NoError(t, os.WriteFile(refs.Experience.Path, []byte(ledger), 0o644))
	}
	if backend == nil {
		backend = storage.NewFileBackend()
	}

	clk := testutil.NewStubClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	m := NewMerger(storage.NewStore(backend), refs.Projects, storage.NewFileBackend(), refs.Experience, clk, nil)
	return mergerFixture{merger: m, refs: refs}
}

func TestMerger_ListPersistsAdditions(t *testing.T) {
	f := setupMerger(t, nil, "[]", `[{"id": 7, "year": "2022", "customer": null, "subject": "КС Пермская", "work": "СМР"}, {"id": "x"}]`)
	ctx := context.Background()

	list, err := f.merger.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "exp-project-x", list[0].ID)
	assert.Equal(t, 2026, list[0].Year)
	assert.Equal(t, "exp-project-7", list[1].ID)
	assert.Equal(t, "Пермский край", list[1].Region)

	stored, err := storage.ReadList[types.Project](ctx, storage.NewStore(storage.NewFileBackend()), f.refs.Projects)
	require.NoError(t, err)
	assert.Equal(t, list, stored)

	info, err := os.Stat(f.refs.Projects.Path)
	require.NoError(t, err)
	modified := info.ModTime()

	again, err := f.merger.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, again)

	info, err = os.Stat(f.refs.Projects.Path)
	require.NoError(t, err)
	assert.Equal(t, modified, info.ModTime(), "no write when nothing was added")
}

func TestMerger_LedgerProblemsLeaveListUntouched(t *testing.T) {
	stored := `[{"id":"p-1","slug":"p-1","year":2020}]`
	tests := []struct {
		name   string
		ledger string
	}{
		{name: "missing", ledger: ""},
		{name: "not an array", ledger: `{"id":"a"}`},
		{name: "schema violation", ledger: `[{"id":"a","year":{"value":2020}}]`},
		{name: "malformed", ledger: `[{"id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupMerger(t, nil, stored, tt.ledger)

			list, err := f.merger.List(context.Background())
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "p-1", list[0].ID)

			raw, err := os.ReadFile(f.refs.Projects.Path)
			require.NoError(t, err)
			assert.Equal(t, stored, string(raw))
		})
	}
}

func TestMerger_ProjectsReadErrorPropagates(t *testing.T) {
	f := setupMerger(t, nil, `{"oops":true}`, `[]`)

	_, err := f.merger.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projects.json must be an array")
}

// failingWriteBackend serves reads from files and fails every write.
type failingWriteBackend struct {
	*storage.FileBackend
	err error
}

func (b failingWriteBackend) Write(context.Context, storage.Ref, json.RawMessage) error { return b.err }

func TestMerger_PersistFailures(t *testing.T) {
	ledger := `[{"id":"a","year":2021}]`

	t.Run("read-only storage returns merged list", func(t *testing.T) {
		backend := failingWriteBackend{storage.NewFileBackend(), apperr.New(apperr.ReadOnlyStorage, "erofs")}
		f := setupMerger(t, backend, "[]", ledger)

		list, err := f.merger.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("kv unavailable returns merged list", func(t *testing.T) {
		backend := failingWriteBackend{storage.NewFileBackend(), apperr.New(apperr.KVUnavailable, "down")}
		f := setupMerger(t, backend, "[]", ledger)

		list, err := f.merger.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		backend := failingWriteBackend{storage.NewFileBackend(), errors.New("disk full")}
		f := setupMerger(t, backend, "[]", ledger)

		_, err := f.merger.List(context.Background())
		assert.EqualError(t, err, "disk full")
	})
}

func TestLoadError(t *testing.T) {
	err := &LoadError{Message: "read experience.json", Cause: os.ErrNotExist}
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "ledger load error: read experience.json: file does not exist", err.Error())
	assert.Equal(t, "ledger load error: x", (&LoadError{Message: "x"}).Error())
}
