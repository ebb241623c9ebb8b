package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/shapedtime/torrentmap/internal/episodemap"
	"github.com/shapedtime/torrentmap/internal/playback"
)

// newTable returns a table writer rendering to out. Columns listed in
// numeric are right aligned; column numbers start at 1.
func newTable(out io.Writer, numeric ...int) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		tw.SetStyle(table.StyleRounded)
	}

	configs := make([]table.ColumnConfig, 0, len(numeric))
	for _, n := range numeric {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

// renderFiles prints one line per file, in declared order.
func renderFiles(out io.Writer, rows []episodemap.Row) {
	tw := newTable(out, 1, 2, 4)
	tw.AppendHeader(table.Row{"Original", "Canonical", "Episode", "Length", "Path"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.Original, r.Canonical, string(r.Key), r.Length, r.Path})
	}
	tw.Render()
}

// renderSeason prints the playable episodes of one season.
func renderSeason(out io.Writer, items []playback.Item) {
	tw := newTable(out, 2)
	tw.AppendHeader(table.Row{"Episode", "Index", "Path"})
	for _, it := range items {
		tw.AppendRow(table.Row{string(it.Key), it.Index, it.Path})
	}
	tw.Render()
}
