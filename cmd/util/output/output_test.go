//go:build unit || !integration

package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var rowColumns = []TableColumn[row]{
	{ColumnConfig: table.ColumnConfig{Name: "Name"}, Value: func(r row) string { return r.Name }},
	{ColumnConfig: table.ColumnConfig{Name: "Count"}, Value: func(r row) string { return strings.Repeat("x", r.Count) }},
}

func render(t *testing.T, opts OutputOptions, rows ...row) string {
	cmd := &cobra.Command{}
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	require.NoError(t, Output(cmd, rowColumns, opts, rows))
	return out.String()
}

func TestOutputCSV(t *testing.T) {
	out := render(t, OutputOptions{Format: CSVFormat}, row{"a", 1}, row{"b", 2})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.EqualFold("Name,Count", lines[0]), lines[0])
	assert.Equal(t, []string{"a,x", "b,xx"}, lines[1:])
}

func TestOutputCSVHideHeader(t *testing.T) {
	out := render(t, OutputOptions{Format: CSVFormat, HideHeader: true}, row{"a", 3})
	assert.Equal(t, "a,xxx", strings.TrimSpace(out))
}

func TestOutputJSON(t *testing.T) {
	out := render(t, OutputOptions{Format: JSONFormat}, row{"a", 1})
	assert.JSONEq(t, `[{"name":"a","count":1}]`, out)
}

func TestOutputYAML(t *testing.T) {
	out := render(t, OutputOptions{Format: YAMLFormat}, row{"a", 1})
	assert.Equal(t, "- count: 1\n  name: a\n", out)
}

func TestOutputTable(t *testing.T) {
	out := render(t, OutputOptions{Format: TableFormat, NoStyle: true}, row{"first", 2})
	assert.Contains(t, strings.ToUpper(out), "NAME")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "xx")
}

func TestOutputUnknownFormat(t *testing.T) {
	cmd := &cobra.Command{}
	err := Output(cmd, rowColumns, OutputOptions{Format: "xml"}, []row{{"a", 1}})
	assert.Error(t, err)
}
