// Package report renders scan findings for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/varalys/reposcan/internal/types"
)

// PrintOptions controls the human-readable renderers.
type PrintOptions struct {
	NoColor  bool
	Unmasked bool
	Duration time.Duration
}

func sortForDisplay(findings []types.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].FilePath == findings[j].FilePath {
			return findings[i].CommitID < findings[j].CommitID
		}
		return findings[i].FilePath < findings[j].FilePath
	})
}

// PrintColumns writes a plain columnar listing, one finding per line.
func PrintColumns(w io.Writer, findings []types.Finding, opts PrintOptions) {
	sortForDisplay(findings)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No secrets found ✅")
	} else {
		maxRule := 8
		for _, f := range findings {
			if l := len(f.RuleName); l > maxRule {
				maxRule = l
			}
		}
		for _, f := range findings {
			rule := f.RuleName
			if !opts.NoColor {
				rule = "\x1b[31m" + rule + "\x1b[0m" // red
			}
			fmt.Fprintf(w, "%-*s %s %s  %s\n", maxRule, rule, shortID(f.CommitID), f.FilePath, displayValue(f.Match, opts))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d\n", len(findings))
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
}

// PrintTable writes a bordered table of findings.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) {
	sortForDisplay(findings)
	tbl := tablewriter.NewWriter(w)
	tbl.Header([]string{"Rule", "Commit", "Time", "File", "Match"})
	for _, f := range findings {
		_ = tbl.Append([]string{
			f.RuleName,
			shortID(f.CommitID),
			f.CommitTime,
			f.FilePath,
			displayValue(f.Match, opts),
		})
	}
	_ = tbl.Render()
	fmt.Fprintf(w, "Findings: %d\n", len(findings))
}

// WriteJSON emits the findings list as indented JSON.
func WriteJSON(w io.Writer, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

func displayValue(s string, opts PrintOptions) string {
	if opts.Unmasked {
		return s
	}
	return Mask(s)
}

// Mask hides the middle of a matched value, keeping just enough to
// recognize it.
func Mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
