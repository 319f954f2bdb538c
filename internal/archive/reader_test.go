package archive

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Resinat/Teleporter/internal/testutil"
)

func readAll(t *testing.T, r *Reader) map[string]string {
	t.Helper()
	out := map[string]string{}
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		body, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.EqualValues(t, len(body), e.Size)
		out[e.Name] = string(body)
	}
}

func TestReader_RegularFilesOnly(t *testing.T) {
	data := testutil.BuildArchive(t,
		testutil.Member{Name: "dnsmasq.d", Typeflag: tar.TypeDir},
		testutil.File("./blacklist.exact.json", `[{"domain":"ads.example"}]`),
		testutil.File("custom.list", "10.0.0.5 host.local\n"),
	)
	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, map[string]string{
		"blacklist.exact.json": `[{"domain":"ads.example"}]`,
		"custom.list":          "10.0.0.5 host.local\n",
	}, readAll(t, r))
}

func TestReader_SkipsUnreadBody(t *testing.T) {
	data := testutil.BuildArchive(t,
		testutil.File("a.json", "first"),
		testutil.File("b.json", "second"),
	)
	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer r.Close()

	e, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "a.json", e.Name)

	e, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "b.json", e.Name)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second", string(body))
}

func TestNewReader_NotGzip(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("plain text, not an archive")))
	assert.ErrorIs(t, err, ErrNotArchive)

	_, err = NewReader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNotArchive)
}

func TestReader_TruncatedArchive(t *testing.T) {
	data := testutil.BuildArchive(t, testutil.File("a.json", string(bytes.Repeat([]byte("x"), 4096))))
	r, err := NewReader(bytes.NewReader(data[:len(data)/2]))
	if err != nil {
		return
	}
	defer r.Close()

	var lastErr error
	for {
		_, lastErr = r.Next()
		if lastErr != nil {
			break
		}
		if _, lastErr = io.ReadAll(r); lastErr != nil {
			break
		}
	}
	assert.NotErrorIs(t, lastErr, io.EOF)
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/backup.tar.gz", testutil.BuildArchive(t, testutil.File("group.json", "[]")), 0o600))

	r, err := Open(fs, "/backup.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"group.json": "[]"}, readAll(t, r))
	require.NoError(t, r.Close())

	_, err = Open(fs, "/missing.tar.gz")
	require.Error(t, err)
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "dnsmasq.d/04-pihole-static-dhcp.conf", cleanName("./dnsmasq.d/04-pihole-static-dhcp.conf"))
	assert.Equal(t, "custom.list", cleanName("custom.list"))
	assert.Equal(t, "x", cleanName("././x"))
}
