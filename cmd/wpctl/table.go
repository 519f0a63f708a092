package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

var itemHeaders = []string{"ID", "STATE", "TITLE", "SLUG", "MODIFIED"}

const maxTitleWidth = 40

func itemRows(items []*publishing.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		latest := item.Latest()
		var title, slug string
		if latest != nil {
			title = runewidth.Truncate(latest.Title, maxTitleWidth, "…")
			slug = latest.Slug
		}
		rows = append(rows, []string{
			item.ID.String(),
			stateSummary(item),
			title,
			slug,
			item.ModifiedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

// stateSummary lists the occupied slots, e.g. "draft+published".
func stateSummary(item *publishing.Item) string {
	var states []string
	for _, state := range publishing.AllStates {
		if item.Revision(state) != nil {
			states = append(states, string(state))
		}
	}
	if len(states) == 0 {
		return "-"
	}
	return strings.Join(states, "+")
}

// writeTable pads columns by display width so wide characters line up.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if width := runewidth.StringWidth(row[i]); width > widths[i] {
				widths[i] = width
			}
		}
	}

	writeRow := func(cells []string) {
		var sb strings.Builder
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(widths)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}

	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
}
