package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shootingCSV = `,,,,Standard,Standard
Rk,Player,Squad,Gls,Sh,Gls
1,Alice,X,3,"1,204",4

2,Bob,Y,1,9,1
`

func TestReadSkipsOverHeader(t *testing.T) {
	tbl, err := Read(strings.NewReader(shootingCSV), "shooting", "Player")
	require.NoError(t, err)

	assert.Equal(t, "shooting", tbl.Category)
	assert.Equal(t, []string{"Rk", "Player", "Squad", "Gls", "Sh", "Gls"}, tbl.Header)
	require.Len(t, tbl.Rows, 2, "blank line dropped")
	assert.Equal(t, "1,204", tbl.Rows[0][4], "quoted thousands separator kept for coercion")
}

func TestReadNoHeader(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2\n"), "x", "Player")
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadStripsBOM(t *testing.T) {
	tbl, err := Read(strings.NewReader("\ufeffPlayer,Squad\nA,X\n"), "x", "Player")
	require.NoError(t, err)
	assert.Equal(t, "Player", tbl.Header[0])
}

func TestReadFileCompressed(t *testing.T) {
	dir := t.TempDir()

	zpath := filepath.Join(dir, "shooting.csv.zst")
	zf, err := os.Create(zpath)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(zf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(shootingCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	gpath := filepath.Join(dir, "defense.csv.gz")
	gf, err := os.Create(gpath)
	require.NoError(t, err)
	gw := gzip.NewWriter(gf)
	_, err = gw.Write([]byte(shootingCSV))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, gf.Close())

	// plain name falls back to the compressed sibling
	tbl, err := ReadFile(filepath.Join(dir, "shooting.csv"), "shooting", "Player")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)

	tbl, err = ReadFile(gpath, "defense", "Player")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), "x", "Player")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
