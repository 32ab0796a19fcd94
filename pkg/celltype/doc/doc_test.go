package doc

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/celltype/pkg/celltype/internalerr"
)

func sampleSheet() *Sheet {
	return &Sheet{
		Title: "Population",
		Columns: []Column{
			{
				Type:   "placename",
				Header: &Header{Type: "string", Text: "City"},
				Items: []Item{
					{Raw: "Sydney", Text: "australia_newsouthwales_sydney"},
					{},
				},
			},
			{
				Type:   "number",
				Header: &Header{Type: "date", Raw: "1999", Text: "1999"},
				Items:  []Item{{Raw: "1,200", Text: "1200"}},
			},
		},
	}
}

func TestWriteXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, sampleSheet()))

	want := `<sheet>
  <header>Population</header>
  <column type="placename">
    <header type="string">City</header>
    <item raw="Sydney">australia_newsouthwales_sydney</item>
    <item></item>
  </column>
  <column type="number">
    <header type="date" raw="1999">1999</header>
    <item raw="1,200">1200</item>
  </column>
</sheet>
`
	assert.Equal(t, want, buf.String())
}

func TestWriteXMLEscapes(t *testing.T) {
	s := &Sheet{Columns: []Column{{Type: "string", Items: []Item{{Text: "a < b & c"}}}}}

	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, s))
	assert.Contains(t, buf.String(), "<item>a &lt; b &amp; c</item>")
	assert.NotContains(t, buf.String(), "<header")
}

func TestWriteJSON(t *testing.T) {
	s := sampleSheet()
	s.ID = "01HZX"
	s.Source = "pop.csv"

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, s))

	var back Sheet
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "01HZX", back.ID)
	assert.Equal(t, "pop.csv", back.Source)
	assert.Equal(t, "Population", back.Title)
	require.Len(t, back.Columns, 2)
	assert.Equal(t, "1999", back.Columns[1].Header.Raw)
	assert.Equal(t, Item{}, back.Columns[0].Items[1])

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.NotContains(t, raw, "XMLName")
}

func TestWriterFor(t *testing.T) {
	for _, f := range []string{"", "xml", "json"} {
		w, err := WriterFor(f)
		require.NoError(t, err, f)
		assert.NotNil(t, w)
	}

	_, err := WriterFor("yaml")
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestRows(t *testing.T) {
	assert.Equal(t, 2, sampleSheet().Rows())
	assert.Equal(t, 0, (&Sheet{}).Rows())
}
