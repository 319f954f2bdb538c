// Package reconcile replays the resolver's free-text configuration stores
// (static leases, local DNS records, local CNAME records) from a backup.
//
// The backing files are owned by the resolver's control tool: they are read
// here but changed only through that tool's add/remove commands, with the
// single exception of truncating the static lease file on flush.
package reconcile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrMalformedLine is returned by the line parsers for input with the wrong
// shape.
var ErrMalformedLine = errors.New("malformed line")

// Commands is the subset of the control tool a reconciler drives.
type Commands interface {
	AddStaticDHCP(ctx context.Context, mac, ip, hostname string) error
	AddCustomDNS(ctx context.Context, ip, domain string) error
	RemoveCustomDNS(ctx context.Context, ip, domain string) error
	AddCustomCNAME(ctx context.Context, domain, target string) error
	RemoveCustomCNAME(ctx context.Context, domain, target string) error
	RestartDNS(ctx context.Context) error
}

// Paths locates the on-disk stores.
type Paths struct {
	StaticDHCP  string
	CustomDNS   string
	CustomCNAME string
}

// Result summarizes one reconciliation.
type Result struct {
	// Entries counts well-formed incoming lines.
	Entries int
	Added   int
	Removed int
	// Skipped counts malformed lines and duplicates.
	Skipped int
	// Failed counts add/remove commands that reported failure.
	Failed int
}

// Reconciler applies incoming config entries through the control tool.
type Reconciler struct {
	fs     afero.Fs
	cmds   Commands
	paths  Paths
	logger *zap.Logger
}

// New creates a Reconciler. fs is used only to read (and, for static leases,
// truncate) the files named in paths.
func New(fs afero.Fs, cmds Commands, paths Paths, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		fs:     fs,
		cmds:   cmds,
		paths:  paths,
		logger: logger.Named("reconcile"),
	}
}

// readStore returns the content of path; a missing file reads as empty.
func (r *Reconciler) readStore(path string) (string, error) {
	data, err := afero.ReadFile(r.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// reload issues the one resolver reload that closes every reconciliation.
func (r *Reconciler) reload(ctx context.Context, what string) error {
	if err := r.cmds.RestartDNS(ctx); err != nil {
		r.logger.Warn("error while restarting dns service", zap.String("after", what), zap.Error(err))
		return fmt.Errorf("reload after %s: %w", what, err)
	}
	r.logger.Debug("restarted dns service", zap.String("after", what))
	return nil
}

// scanLines yields non-blank lines of src with trailing CR/LF removed. Lines
// have no length limit; a read error stops the scan after the lines already
// yielded.
func scanLines(src io.Reader, fn func(line string)) error {
	br := bufio.NewReader(src)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(line) != "" {
				fn(line)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
