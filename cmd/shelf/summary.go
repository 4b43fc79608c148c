package main

import (
	"fmt"
	"io"

	"shelf/internal/history"
	"shelf/internal/organizer"
)

const summaryLabelWidth = 26

// renderSummary formats the end-of-run report. The errors line only appears
// when something failed.
func renderSummary(title string, stats organizer.Stats, colorize bool) []string {
	lines := renderSectionHeader(title, colorize)
	lines = append(lines,
		summaryLine("Total Files Scanned", stats.Scanned),
		summaryLine("Folders Created", stats.FoldersCreated),
		summaryLine("Files Moved", stats.FilesMoved),
		summaryLine("Folders Deleted (empty)", stats.FoldersDeleted),
	)
	if stats.Errors > 0 {
		line := summaryLine("Errors encountered", stats.Errors)
		if colorize {
			line = ansiRed + line + ansiReset
		}
		lines = append(lines, line)
	}
	return lines
}

func summaryLine(label string, value int) string {
	return fmt.Sprintf("%s%-*s %d", statusIndent, summaryLabelWidth, label+":", value)
}

func printSummary(out io.Writer, title string, stats organizer.Stats) {
	writeLines(out, renderSummary(title, stats, shouldColorize(out)))
}

func statsFromCounts(c history.Counts) organizer.Stats {
	return organizer.Stats{
		Scanned:        c.Scanned,
		FoldersCreated: c.FoldersCreated,
		FilesMoved:     c.FilesMoved,
		FoldersDeleted: c.FoldersDeleted,
		Errors:         c.Errors,
	}
}
