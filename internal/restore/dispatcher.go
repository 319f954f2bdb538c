// Package restore walks a backup archive and hands each known member to the
// datastore restorer or the config reconciler that owns it.
package restore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"github.com/Resinat/Teleporter/internal/archive"
	"github.com/Resinat/Teleporter/internal/gravity"
	"github.com/Resinat/Teleporter/internal/reconcile"
)

// Datastore restores JSON record batches.
type Datastore interface {
	RestoreDomainList(ctx context.Context, t gravity.DomainType, r io.Reader, flush bool) (gravity.Result, error)
	RestoreTable(ctx context.Context, table string, r io.Reader, flush bool) (gravity.Result, error)
}

// Reconciler replays the line-oriented config stores.
type Reconciler interface {
	StaticDHCP(ctx context.Context, r io.Reader, flush bool) (reconcile.Result, error)
	CustomDNS(ctx context.Context, r io.Reader, flush bool) (reconcile.Result, error)
	CustomCNAME(ctx context.Context, r io.Reader, flush bool) (reconcile.Result, error)
}

// Reloader issues the closing resolver reload.
type Reloader interface {
	RestartDNS(ctx context.Context) error
}

// Source is a forward-only archive cursor; Read reads the current member.
type Source interface {
	Next() (archive.Entry, error)
	io.Reader
}

// Options configure a run.
type Options struct {
	// Flush clears each target before restoring into it.
	Flush   bool
	Filters FilterSet
}

// Outcome classifies what happened to one archive member.
type Outcome string

const (
	OutcomeRestored Outcome = "restored"
	OutcomeFailed   Outcome = "failed"
	OutcomeFiltered Outcome = "filtered"
	OutcomeIgnored  Outcome = "ignored"
)

// EntryResult is the outcome of one archive member.
type EntryResult struct {
	Name    string
	Outcome Outcome
	Size    int64
	// Digest is the xxh3 hash of the member content; zero unless dispatched.
	Digest uint64
	// Records is set for datastore members, Lines for config members.
	Records *gravity.Result
	Lines   *reconcile.Result
	Err     error
}

// Report summarizes a run.
type Report struct {
	RunID   uuid.UUID
	Entries []EntryResult
	// ReloadErr is the failure of the closing reload, if any. It does not
	// fail the run.
	ReloadErr error
}

// Count returns how many entries ended with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == o {
			n++
		}
	}
	return n
}

// Dispatcher drives one restore run.
type Dispatcher struct {
	store      Datastore
	reconciler Reconciler
	reloader   Reloader
	opts       Options
	logger     *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store Datastore, reconciler Reconciler, reloader Reloader, opts Options, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:      store,
		reconciler: reconciler,
		reloader:   reloader,
		opts:       opts,
		logger:     logger.Named("restore"),
	}
}

// Run restores every member of src in archive order. A failing member is
// logged and recorded in the report; the returned error is non-nil only when
// the archive stream itself is unreadable.
func (d *Dispatcher) Run(ctx context.Context, src Source) (*Report, error) {
	report := &Report{RunID: uuid.New()}
	logger := d.logger.With(zap.String("run_id", report.RunID.String()))
	logger.Info("restore started",
		zap.Bool("flush", d.opts.Flush),
		zap.Stringer("filters", d.opts.Filters),
	)

	for {
		entry, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("archive unreadable", zap.Error(err))
			return report, err
		}

		res, err := d.handle(ctx, logger, entry, src)
		if err != nil {
			logger.Error("archive unreadable", zap.String("entry", entry.Name), zap.Error(err))
			return report, err
		}
		report.Entries = append(report.Entries, res)
	}

	if err := d.reloader.RestartDNS(ctx); err != nil {
		report.ReloadErr = err
		logger.Error("final dns restart failed", zap.Error(err))
	}

	logger.Info("restore finished",
		zap.Int("restored", report.Count(OutcomeRestored)),
		zap.Int("failed", report.Count(OutcomeFailed)),
		zap.Int("filtered", report.Count(OutcomeFiltered)),
		zap.Int("ignored", report.Count(OutcomeIgnored)),
	)
	return report, nil
}

// handle processes one member. Only a failure to read the member content is
// returned as an error.
func (d *Dispatcher) handle(ctx context.Context, logger *zap.Logger, entry archive.Entry, body io.Reader) (EntryResult, error) {
	res := EntryResult{Name: entry.Name, Size: entry.Size}
	logger = logger.With(zap.String("entry", entry.Name))

	spec, ok := knownEntries[entry.Name]
	if !ok {
		res.Outcome = OutcomeIgnored
		logger.Info("unknown archive entry, ignoring")
		return res, nil
	}
	if !d.opts.Filters.Allows(spec.categories...) {
		res.Outcome = OutcomeFiltered
		logger.Info("entry excluded by filters, skipping")
		return res, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return res, fmt.Errorf("read entry %s: %w", entry.Name, err)
	}
	res.Digest = xxh3.Hash(data)
	logger = logger.With(zap.String("digest", fmt.Sprintf("%016x", res.Digest)))
	logger.Debug("dispatching entry", zap.Int("bytes", len(data)))

	r := bytes.NewReader(data)
	switch spec.action {
	case actionDomainList:
		var out gravity.Result
		out, err = d.store.RestoreDomainList(ctx, spec.domainType, r, d.opts.Flush)
		res.Records = &out
	case actionTable:
		var out gravity.Result
		out, err = d.store.RestoreTable(ctx, spec.table, r, d.opts.Flush)
		res.Records = &out
	case actionStaticDHCP:
		var out reconcile.Result
		out, err = d.reconciler.StaticDHCP(ctx, r, d.opts.Flush)
		res.Lines = &out
	case actionCustomDNS:
		var out reconcile.Result
		out, err = d.reconciler.CustomDNS(ctx, r, d.opts.Flush)
		res.Lines = &out
	case actionCustomCNAME:
		var out reconcile.Result
		out, err = d.reconciler.CustomCNAME(ctx, r, d.opts.Flush)
		res.Lines = &out
	}

	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		logger.Warn("entry restore failed", zap.Error(err))
		return res, nil
	}
	res.Outcome = OutcomeRestored

	switch {
	case res.Records != nil:
		logger.Info("entry restored",
			zap.String("table", spec.table),
			zap.Int("attempted", res.Records.Attempted),
			zap.Int64("inserted", res.Records.Inserted),
			zap.Int("failed", res.Records.Failed),
		)
	case res.Lines != nil:
		logger.Info("entry reconciled",
			zap.Int("entries", res.Lines.Entries),
			zap.Int("added", res.Lines.Added),
			zap.Int("removed", res.Lines.Removed),
			zap.Int("skipped", res.Lines.Skipped),
			zap.Int("failed", res.Lines.Failed),
		)
	}
	return res, nil
}
