package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeRenderer struct{}

func (fakeRenderer) Headers() []string { return []string{"NAME", "VALUE"} }
func (fakeRenderer) Rows() [][]string  { return [][]string{{"quota", "10GB"}} }

func TestPrint_TableFormat_UsesRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatTable, fakeRenderer{}))
	assert.Contains(t, buf.String(), "quota")
	assert.Contains(t, buf.String(), "10GB")
}

func TestPrint_TableFormat_FallsBackToJSONWithoutRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatTable, map[string]string{"status": "ok"}))
	assert.Contains(t, buf.String(), `"status"`)
}

func TestPrint_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatJSON, map[string]string{"status": "ok"}))
	assert.Contains(t, buf.String(), `"status": "ok"`)
}

func TestPrint_YAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatYAML, map[string]string{"status": "ok"}))
	assert.Contains(t, buf.String(), "status: ok")
}

func TestPrintTable_RendersHeadersAndRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, fakeRenderer{}))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "VALUE")
	assert.Contains(t, out, "quota")
	assert.Contains(t, out, "10GB")
}

func TestSimpleTable_RendersPairs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{
		{"driver", "postgres"},
		{"provider", "s3"},
	}))

	out := buf.String()
	assert.Contains(t, out, "driver")
	assert.Contains(t, out, "postgres")
	assert.Contains(t, out, "provider")
	assert.Contains(t, out, "s3")
}
