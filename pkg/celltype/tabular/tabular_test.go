package tabular

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3\n4,5,6\n", ','},
		{"semicolon", "a;b;c\n1;2,5;3\n4;5,5;6\n", ';'},
		{"quoted commas", "a;b\n\"x,y,z\";1\n\"p,q\";2\n", ';'},
		{"single column", "alpha\nbeta\ngamma\n", ','},
		{"empty", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff([]byte(tt.sample), DefaultDelimiters))
		})
	}
}

func TestSniffIgnoresTruncatedLine(t *testing.T) {
	var b strings.Builder
	for b.Len() < sniffBytes+100 {
		b.WriteString("a;b;c\n")
	}
	sample := b.String()
	assert.Equal(t, ';', Sniff([]byte(sample), ",;"))
	assert.Equal(t, ';', Sniff([]byte(sample), ""))
}

func TestFromBytesDecodesLegacyText(t *testing.T) {
	src, err := FromBytes("legacy.csv", []byte("caf\xe9,1\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", src.Encoding)
	assert.Equal(t, []string{"café,1"}, src.Lines())
}

func TestFromBytesStripsBOM(t *testing.T) {
	src, err := FromBytes("bom.csv", []byte("\xef\xbb\xbfname;value\r\nx;1\r\n"), "")
	require.NoError(t, err)
	assert.Equal(t, ';', src.Delim)
	assert.Equal(t, []string{"name;value", "x;1"}, src.Lines())

	cells, err := src.SplitLine(src.Lines()[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, cells)
}

func TestSplitLine(t *testing.T) {
	src, err := FromBytes("t.csv", []byte("a,b\n"), "")
	require.NoError(t, err)

	cells, err := src.SplitLine("")
	require.NoError(t, err)
	assert.Empty(t, cells)

	cells, err = src.SplitLine(`"x, y",,z`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x, y", "", "z"}, cells)
}

func TestRecordsSkipsLines(t *testing.T) {
	src, err := FromBytes("t.csv", []byte("Title\n\nh1,h2\n1,2\n3\n"), "")
	require.NoError(t, err)

	r := src.Records(2)
	var got [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, append([]string(nil), rec...))
	}
	assert.Equal(t, [][]string{{"h1", "h2"}, {"1", "2"}, {"3"}}, got)

	_, err = src.Records(10).Read()
	assert.Equal(t, io.EOF, err)
}

func TestRowsKeepsBlankLines(t *testing.T) {
	src, err := FromBytes("t.csv", []byte("Title\n\nh1,h2\n1,2\n\n\"x\ny\",3\n\n"), "")
	require.NoError(t, err)

	rows, err := src.Rows(2, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"h1", "h2"}, {"1", "2"}, nil, {"x\ny", "3"}, nil}, rows)

	rows, err = src.Rows(2, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"h1", "h2"}, {"1", "2"}, nil}, rows)

	rows, err = src.Rows(10, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n1;2\n"), 0o644))

	src, err := Open(path, "")
	require.NoError(t, err)
	assert.Equal(t, "data.csv", src.Name)
	assert.Equal(t, ';', src.Delim)

	_, err = Open(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}

func TestFromReader(t *testing.T) {
	src, err := FromReader("stdin", strings.NewReader("x,y\n"), ",")
	require.NoError(t, err)
	assert.Equal(t, "stdin", src.Name)
	assert.Equal(t, []string{"x,y"}, src.Lines())
}
