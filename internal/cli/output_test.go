package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{name: "text format", input: "text", want: OutputFormatText},
		{name: "json format", input: "json", want: OutputFormatJSON},
		{name: "empty string defaults to text", input: "", want: OutputFormatText},
		{name: "invalid format", input: "xml", wantErr: true},
		{name: "invalid format yaml", input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputWriterWrite(t *testing.T) {
	data := map[string]string{"alias": "kimi"}

	var buf bytes.Buffer
	w := NewOutputWriterTo(OutputFormatJSON, &buf)
	assert.True(t, w.IsJSON())
	require.NoError(t, w.Write(data, func(io.Writer) { t.Fatal("text func called for JSON") }))
	assert.JSONEq(t, `{"alias":"kimi"}`, buf.String())

	buf.Reset()
	w = NewOutputWriterTo(OutputFormatText, &buf)
	assert.False(t, w.IsJSON())
	require.NoError(t, w.Write(data, func(out io.Writer) { io.WriteString(out, "kimi\n") }))
	assert.Equal(t, "kimi\n", buf.String())
}

func TestTableAlignsWideRunes(t *testing.T) {
	color.NoColor = true

	tbl := &table{header: []string{"ALIAS", "NAME", "URL"}}
	tbl.add("kimi", "月之暗面", "https://api.moonshot.cn/anthropic")
	tbl.add("glm", "GLM", "https://open.bigmodel.cn/api/anthropic")

	var buf bytes.Buffer
	tbl.render(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	// Display width of "月之暗面" is 8, so URLs start in the same column.
	assert.Equal(t, strings.Index(lines[2], "https"), displayIndex(lines[1], "https"))
	assert.Equal(t, "ALIAS  NAME      URL", lines[0])
}

func displayIndex(s, sub string) int {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}
	width := 0
	for _, r := range s[:i] {
		if r >= 0x2E80 {
			width += 2
		} else {
			width++
		}
	}
	return width
}
