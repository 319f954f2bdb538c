package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// NoHost stands in for a missing hostname.
	NoHost = "nohost"
	// NoIP stands in for a missing address.
	NoIP = "noip"
)

// ErrNoMAC is returned when the first field of a lease line has no MAC.
var ErrNoMAC = errors.New("no mac address")

var (
	macPattern  = regexp.MustCompile(`([0-9a-fA-F]{2}:){5}[0-9a-fA-F]{2}`)
	ipv4Pattern = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	ipv6Pattern = regexp.MustCompile(`^([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$`)
)

// LeaseKind tells which fields a lease line carried.
type LeaseKind int

const (
	LeaseFull     LeaseKind = iota // mac,ip,hostname
	LeaseIPOnly                    // mac,ip
	LeaseHostOnly                  // mac,hostname
)

// StaticLease is one static DHCP reservation.
type StaticLease struct {
	MAC      string
	IP       string
	Hostname string
	Kind     LeaseKind
}

// ParseStaticLease parses "dhcp-host=<mac>,<ip>,<hostname>" and the two
// field variants the web interface writes when ip or hostname is left out.
// A two-field line is (mac, ip) when the second field looks like an address
// and (mac, hostname) otherwise.
func ParseStaticLease(line string) (StaticLease, error) {
	fields := strings.Split(line, ",")

	var lease StaticLease
	switch len(fields) {
	case 3:
		lease = StaticLease{IP: fields[1], Hostname: fields[2], Kind: LeaseFull}
	case 2:
		if isIPAddr(fields[1]) {
			lease = StaticLease{IP: fields[1], Hostname: NoHost, Kind: LeaseIPOnly}
		} else {
			lease = StaticLease{IP: NoIP, Hostname: fields[1], Kind: LeaseHostOnly}
		}
	default:
		return StaticLease{}, fmt.Errorf("%w: %d fields", ErrMalformedLine, len(fields))
	}

	mac := macPattern.FindString(fields[0])
	if mac == "" {
		return StaticLease{}, ErrNoMAC
	}
	lease.MAC = mac
	return lease, nil
}

func isIPAddr(s string) bool {
	return ipv4Pattern.MatchString(s) || ipv6Pattern.MatchString(s)
}

// StaticDHCP adds every lease in src. With flush set the lease file is
// truncated first; otherwise a lease whose MAC already appears anywhere in
// the file is skipped. The resolver is reloaded once at the end.
func (r *Reconciler) StaticDHCP(ctx context.Context, src io.Reader, flush bool) (Result, error) {
	path := r.paths.StaticDHCP
	if flush {
		r.truncate(path)
	}

	var res Result
	err := scanLines(src, func(line string) {
		r.logger.Debug("processing static dhcp lease", zap.String("line", line))
		lease, err := ParseStaticLease(line)
		if err != nil {
			res.Skipped++
			r.logger.Warn("invalid dhcp lease entry", zap.String("line", line), zap.Error(err))
			return
		}
		res.Entries++

		if !flush {
			current, err := r.readStore(path)
			if err != nil {
				res.Skipped++
				r.logger.Warn("cannot check static dhcp config for duplicates", zap.String("mac", lease.MAC), zap.Error(err))
				return
			}
			if strings.Contains(current, lease.MAC) {
				res.Skipped++
				r.logger.Warn("mac address already exists in the static dhcp config", zap.String("mac", lease.MAC))
				return
			}
		}

		if err := r.cmds.AddStaticDHCP(ctx, lease.MAC, lease.IP, lease.Hostname); err != nil {
			res.Failed++
			r.logger.Warn("could not add the dhcp entry", zap.String("line", line), zap.Error(err))
			return
		}
		res.Added++
		r.logger.Debug("dhcp entry added", zap.String("mac", lease.MAC))
	})
	if err != nil {
		// Adds may already have run; the reload still closes the entry.
		r.logger.Warn("error while reading static dhcp entries", zap.Error(err))
		return res, errors.Join(fmt.Errorf("read static dhcp entries: %w", err), r.reload(ctx, "static dhcp entries"))
	}

	return res, r.reload(ctx, "static dhcp entries")
}

// truncate empties the lease file if it exists. Failure is logged; the adds
// still run.
func (r *Reconciler) truncate(path string) {
	exists, err := afero.Exists(r.fs, path)
	if err != nil {
		r.logger.Warn("error while checking static dhcp config to flush", zap.String("path", path), zap.Error(err))
		return
	}
	if !exists {
		return
	}
	f, err := r.fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		r.logger.Warn("error while opening static dhcp config to flush", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()
	r.logger.Debug("static dhcp config truncated", zap.String("path", path))
}
