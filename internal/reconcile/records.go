package reconcile

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const cnamePrefix = "cname="

// DNSRecord is one "<ip> <domain>" line of the local DNS list.
type DNSRecord struct {
	IP     string
	Domain string
}

// ParseDNSRecord splits a line on single spaces; exactly two fields are
// accepted.
func ParseDNSRecord(line string) (DNSRecord, error) {
	fields := strings.Split(line, " ")
	if len(fields) != 2 {
		return DNSRecord{}, fmt.Errorf("%w: %d fields", ErrMalformedLine, len(fields))
	}
	return DNSRecord{IP: fields[0], Domain: fields[1]}, nil
}

func (d DNSRecord) String() string { return d.IP + " " + d.Domain }

// CNAMERecord is one "cname=<domain>,<target>" line.
type CNAMERecord struct {
	Domain string
	Target string
}

// ParseCNAMERecord strips an optional "cname=" prefix and splits the rest on
// commas; exactly two fields are accepted.
func ParseCNAMERecord(line string) (CNAMERecord, error) {
	fields := strings.Split(strings.TrimPrefix(line, cnamePrefix), ",")
	if len(fields) != 2 {
		return CNAMERecord{}, fmt.Errorf("%w: %d fields", ErrMalformedLine, len(fields))
	}
	return CNAMERecord{Domain: fields[0], Target: fields[1]}, nil
}

func (c CNAMERecord) String() string { return cnamePrefix + c.Domain + "," + c.Target }

// recordStore describes one add/remove-managed config file.
type recordStore[R fmt.Stringer] struct {
	kind   string
	path   string
	parse  func(string) (R, error)
	add    func(context.Context, R) error
	remove func(context.Context, R) error
}

// CustomDNS replays local DNS records from src. With flush set every record
// currently in the file is removed first.
func (r *Reconciler) CustomDNS(ctx context.Context, src io.Reader, flush bool) (Result, error) {
	return reconcileRecords(ctx, r, recordStore[DNSRecord]{
		kind:  "custom dns",
		path:  r.paths.CustomDNS,
		parse: ParseDNSRecord,
		add: func(ctx context.Context, d DNSRecord) error {
			return r.cmds.AddCustomDNS(ctx, d.IP, d.Domain)
		},
		remove: func(ctx context.Context, d DNSRecord) error {
			return r.cmds.RemoveCustomDNS(ctx, d.IP, d.Domain)
		},
	}, src, flush)
}

// CustomCNAME replays local CNAME records from src. With flush set every
// record currently in the file is removed first.
func (r *Reconciler) CustomCNAME(ctx context.Context, src io.Reader, flush bool) (Result, error) {
	return reconcileRecords(ctx, r, recordStore[CNAMERecord]{
		kind:  "custom cname",
		path:  r.paths.CustomCNAME,
		parse: ParseCNAMERecord,
		add: func(ctx context.Context, c CNAMERecord) error {
			return r.cmds.AddCustomCNAME(ctx, c.Domain, c.Target)
		},
		remove: func(ctx context.Context, c CNAMERecord) error {
			return r.cmds.RemoveCustomCNAME(ctx, c.Domain, c.Target)
		},
	}, src, flush)
}

func reconcileRecords[R fmt.Stringer](ctx context.Context, r *Reconciler, store recordStore[R], src io.Reader, flush bool) (Result, error) {
	var res Result
	logger := r.logger.With(zap.String("store", store.kind))

	incoming, skipped, err := parseRecords(src, store.parse, logger)
	res.Skipped += skipped
	if err != nil {
		return res, fmt.Errorf("read %s entries: %w", store.kind, err)
	}
	res.Entries = len(incoming)

	if flush {
		current, err := r.readStore(store.path)
		if err != nil {
			return res, fmt.Errorf("flush %s entries: %w", store.kind, err)
		}
		existing, _, err := parseRecords(strings.NewReader(current), store.parse, logger)
		if err != nil {
			res.Failed++
			logger.Warn("existing entries only partly read, flush is incomplete", zap.String("path", store.path), zap.Error(err))
		}
		for _, rec := range existing {
			if err := store.remove(ctx, rec); err != nil {
				res.Failed++
				logger.Warn("could not remove entry", zap.Stringer("entry", rec), zap.Error(err))
				continue
			}
			res.Removed++
		}
		logger.Debug("existing entries flushed", zap.Int("removed", res.Removed))
	}

	for _, rec := range incoming {
		if err := store.add(ctx, rec); err != nil {
			res.Failed++
			logger.Warn("could not add entry", zap.Stringer("entry", rec), zap.Error(err))
			continue
		}
		res.Added++
		logger.Debug("entry added", zap.Stringer("entry", rec))
	}

	return res, r.reload(ctx, store.kind+" entries")
}

// parseRecords returns the well-formed records in src and how many lines
// were dropped as malformed.
func parseRecords[R any](src io.Reader, parse func(string) (R, error), logger *zap.Logger) ([]R, int, error) {
	var (
		out     []R
		skipped int
	)
	err := scanLines(src, func(line string) {
		rec, err := parse(line)
		if err != nil {
			skipped++
			logger.Warn("invalid entry", zap.String("line", line), zap.Error(err))
			return
		}
		out = append(out, rec)
	})
	return out, skipped, err
}
