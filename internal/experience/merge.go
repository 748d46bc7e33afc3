// Package experience derives project records from the experience ledger
// and merges them into the stored project list.
package experience

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/clock"
	"github.com/jonathan/sng-admin/internal/schemas"
	"github.com/jonathan/sng-admin/internal/storage"
	"github.com/jonathan/sng-admin/internal/types"
	"golang.org/x/sync/errgroup"
)

// Merge appends a derived project for every ledger row whose id and slug
// are both unused, then orders the list by year, newest first. The input
// list is returned unchanged when nothing is added.
func Merge(projects []types.Project, rows []types.ExperienceItem, currentYear int) ([]types.Project, int) {
	ids := make(map[string]struct{}, len(projects))
	slugs := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		ids[p.ID] = struct{}{}
		slugs[p.Slug] = struct{}{}
	}

	var additions []types.Project
	for i, row := range rows {
		candidate := ProjectFromRow(row, i, currentYear)
		_, idTaken := ids[candidate.ID]
		_, slugTaken := slugs[candidate.Slug]
		if idTaken || slugTaken {
			continue
		}
		additions = append(additions, candidate)
		ids[candidate.ID] = struct{}{}
		slugs[candidate.Slug] = struct{}{}
	}

	if len(additions) == 0 {
		return projects, 0
	}

	merged := make([]types.Project, 0, len(projects)+len(additions))
	merged = append(merged, projects...)
	merged = append(merged, additions...)
	slices.SortStableFunc(merged, func(a, b types.Project) int {
		return cmp.Compare(b.Year, a.Year)
	})
	return merged, len(additions)
}

// Merger serves the project list with ledger-derived projects folded in.
type Merger struct {
	store     *storage.Store
	projects  storage.Ref
	ledger    storage.Backend
	ledgerRef storage.Ref
	clock     clock.Clock
	logger    *slog.Logger
}

// NewMerger creates a merger. The ledger is read through ledger, normally
// the local file backend, whatever backend serves the projects.
func NewMerger(store *storage.Store, projects storage.Ref, ledger storage.Backend, ledgerRef storage.Ref, clk clock.Clock, logger *slog.Logger) *Merger {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		store:     store,
		projects:  projects,
		ledger:    ledger,
		ledgerRef: ledgerRef,
		clock:     clk,
		logger:    logger.With("component", "experience"),
	}
}

// List returns the merged project list, persisting it when rows were
// added. A missing or invalid ledger leaves the stored list untouched.
func (m *Merger) List(ctx context.Context) ([]types.Project, error) {
	var (
		projects  []types.Project
		rows      []types.ExperienceItem
		ledgerErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = storage.ReadList[types.Project](gctx, m.store, m.projects)
		return err
	})
	g.Go(func() error {
		rows, ledgerErr = m.loadLedger(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if ledgerErr != nil {
		m.logger.ErrorContext(ctx, "failed to read experience ledger", "file", m.ledgerRef.Name, "error", ledgerErr)
		return projects, nil
	}

	merged, added := Merge(projects, rows, m.clock.Now().Year())
	if added == 0 {
		return merged, nil
	}

	if err := storage.WriteList(ctx, m.store, m.projects, merged); err != nil {
		if apperr.Is(err, apperr.ReadOnlyStorage) || apperr.Is(err, apperr.KVUnavailable) {
			m.logger.WarnContext(ctx, "merged projects not persisted", "added", added, "error", err)
			return merged, nil
		}
		return nil, err
	}

	m.logger.InfoContext(ctx, "merged experience ledger into projects", "added", added)
	return merged, nil
}

func (m *Merger) loadLedger(ctx context.Context) ([]types.ExperienceItem, error) {
	ref := m.ledgerRef
	ref.Shape = storage.Array

	payload, err := m.ledger.Read(ctx, ref)
	if err != nil {
		return nil, &LoadError{Message: "read " + ref.Name, Cause: err}
	}
	if err := schemas.ValidateExperienceLedger(payload); err != nil {
		return nil, &LoadError{Message: ref.Name + " does not match schema", Cause: err}
	}

	var rows []types.ExperienceItem
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, &LoadError{Message: "decode " + ref.Name, Cause: err}
	}
	return rows, nil
}
