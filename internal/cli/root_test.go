package cli

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/celltype/pkg/celltype/doc"
)

const yearsCSV = "Year,Count\n1990,5\n1991,7\n"

// execute runs the root command with the given stdin and args.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", yearsCSV)
	b := writeCSV(t, dir, "b.csv", "x;y\n1;2\n")

	out, _, err := execute(t, "", a, b, "--jobs", "2")
	require.NoError(t, err)

	assert.Contains(t, out, `<column type="date">`)
	assert.Contains(t, out, `<header type="string">Year</header>`)
	assert.Contains(t, out, `<item raw="1990">1990</item>`)
	assert.Less(t, strings.Index(out, `source="a.csv"`), strings.Index(out, `source="b.csv"`),
		"documents should follow argument order")
}

func TestTableModeReadsNamesFromStdin(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", yearsCSV)

	out, _, err := execute(t, "\n"+a+"\n\n", "-t")
	require.NoError(t, err)
	assert.Contains(t, out, `<sheet source="a.csv">`)
}

func TestQueryMode(t *testing.T) {
	out, _, err := execute(t, "rates 1990s\n42%\n", "--query")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#or(rates.string rates.header)", lines[0])
	assert.Contains(t, lines[1], "1990*.date")
	assert.Equal(t, "0.042.rate", lines[2])
}

func TestModesAreMutuallyExclusive(t *testing.T) {
	_, _, err := execute(t, "", "-q", "-t")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestJSONFormatFromEnv(t *testing.T) {
	t.Setenv("CELLTYPE_FORMAT", "json")
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", yearsCSV)

	out, _, err := execute(t, "", a)
	require.NoError(t, err)

	var sheet doc.Sheet
	require.NoError(t, json.Unmarshal([]byte(out), &sheet))
	require.Len(t, sheet.Columns, 2)
	assert.Equal(t, "date", sheet.Columns[0].Type)
	assert.Equal(t, "number", sheet.Columns[1].Type)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("CELLTYPE_FORMAT", "json")
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", yearsCSV)

	out, _, err := execute(t, "", a, "--format", "xml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<sheet"), out)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "", "--format", "yaml", "a.csv")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMissingFileFailsButOthersConvert(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", yearsCSV)

	out, logs, err := execute(t, "", filepath.Join(dir, "missing.csv"), a, "--jobs", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 file(s) failed")
	assert.Contains(t, out, `source="a.csv"`)
	assert.Contains(t, logs, "convert failed")
}

func TestBadConfigIsCommandError(t *testing.T) {
	_, _, err := execute(t, "", "-q", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestStoreAndListSheets(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", yearsCSV)
	db := filepath.Join(dir, "sheets.db")

	out, _, err := execute(t, "", a, "--db", db)
	require.NoError(t, err)

	var stored doc.Sheet
	require.NoError(t, xml.Unmarshal([]byte(out), &stored))
	require.NotEmpty(t, stored.ID, "stored sheets should carry their id")

	list, _, err := execute(t, "", "sheets", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, list, stored.ID)
	assert.Contains(t, list, "a.csv")

	shown, _, err := execute(t, "", "sheets", stored.ID, "--db", db, "--format", "json")
	require.NoError(t, err)
	var got doc.Sheet
	require.NoError(t, json.Unmarshal([]byte(shown), &got))
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, "1991", got.Columns[0].Items[1].Text)

	_, _, err = execute(t, "", "sheets", "01ARZ3NDEKTSV4RRFFQ69G5FAV", "--db", db)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSheetsNeedsDB(t *testing.T) {
	_, _, err := execute(t, "", "sheets")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "celltype dev\n", out)
}

func TestNoArgsPrintsHelp(t *testing.T) {
	out, _, err := execute(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}
