package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "JSS1 Mathematics",
		Headers: []string{"Student", "CA", "Exam", "Total", "Grade"},
		Rows: [][]string{
			{"Ada Obi", "35", "50", "85", "A1"},
			{"Bola Ade", "20"},
		},
		Footer: []string{"Class average: 52.5 (F)"},
	}
}

func TestCSVExporterAlignsShortRows(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Student", "CA", "Exam", "Total", "Grade"}, records[0])
	assert.Equal(t, []string{"Bola Ade", "20", "", "", ""}, records[2])
}

func TestRenderersRequireHeaders(t *testing.T) {
	for _, r := range []Renderer{NewCSVExporter(), NewPDFExporter(), NewXLSXExporter()} {
		_, err := r.Render(Dataset{})
		assert.Error(t, err, r.Extension())
	}
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXRoundTrip(t *testing.T) {
	data := Dataset{
		Headers: []string{"user_id", "CA", "Exam"},
		Rows: [][]string{
			{"u1", "35", "50"},
			{"u2", "12.5", ""},
		},
	}
	out, err := NewXLSXExporter().Render(data)
	require.NoError(t, err)

	rows, err := ReadRows(out)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"user_id", "CA", "Exam"}, rows[0])
	assert.Equal(t, "u1", rows[1][0])
	assert.Equal(t, "12.5", rows[2][1])
}

func TestReadRowsRejectsHeaderOnly(t *testing.T) {
	out, err := NewXLSXExporter().Render(Dataset{Headers: []string{"user_id"}})
	require.NoError(t, err)

	_, err = ReadRows(out)
	assert.ErrorIs(t, err, ErrEmptyWorkbook)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, "pdf", RendererFor(FormatPDF).Extension())

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}
