// Package archive streams the members of a gzip-compressed tar backup.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// ErrNotArchive is returned when the input is not a gzip stream.
var ErrNotArchive = errors.New("not a gzip-compressed tar archive")

// Entry is one regular file in the archive. Its content is readable from
// the owning Reader until the next call to Next.
type Entry struct {
	// Name is the member path with any leading "./" removed.
	Name string
	Size int64
}

// Reader iterates regular-file members in archive order.
type Reader struct {
	gz     *gzip.Reader
	tr     *tar.Reader
	closer io.Closer
}

// Open opens the archive at path on fs.
func Open(fs afero.Fs, path string) (*Reader, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// NewReader wraps an already open stream. Close does not close src.
func NewReader(src io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(src)
	if err != nil {
		if errors.Is(err, gzip.ErrHeader) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v", ErrNotArchive, err)
		}
		return nil, err
	}
	return &Reader{gz: gz, tr: tar.NewReader(gz)}, nil
}

// Next advances to the next regular file. It returns io.EOF at the end of
// the archive; any other error means the stream is corrupt.
func (r *Reader) Next() (Entry, error) {
	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			return Entry{}, io.EOF
		}
		if err != nil {
			return Entry{}, fmt.Errorf("read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		return Entry{Name: cleanName(hdr.Name), Size: hdr.Size}, nil
	}
}

// Read reads from the current entry.
func (r *Reader) Read(p []byte) (int, error) {
	return r.tr.Read(p)
}

// Close releases the decompressor and, for Open, the file.
func (r *Reader) Close() error {
	err := r.gz.Close()
	if r.closer != nil {
		err = errors.Join(err, r.closer.Close())
	}
	return err
}

func cleanName(name string) string {
	for strings.HasPrefix(name, "./") {
		name = strings.TrimPrefix(name, "./")
	}
	return name
}
