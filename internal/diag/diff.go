package diag

import (
	"fmt"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is how many unchanged lines are kept around each change.
const contextLines = 3

// LineOp marks a line of a diff.
type LineOp int

const (
	LineEqual LineOp = iota
	LineDelete
	LineInsert
	// LineSkip stands for unchanged lines left out of the output.
	LineSkip
)

// DiffLine is one line of a line-oriented diff.
type DiffLine struct {
	Op   LineOp
	Text string
}

// LineDiff compares two texts line by line and trims unchanged runs down
// to their context. It returns nil when the texts are equal.
func LineDiff(from, to string) []DiffLine {
	if from == to {
		return nil
	}
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToRunes(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(a, b, false), lines)

	var out []DiffLine
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffpatch.DiffDelete:
			for _, l := range text {
				out = append(out, DiffLine{Op: LineDelete, Text: l})
			}
		case diffpatch.DiffInsert:
			for _, l := range text {
				out = append(out, DiffLine{Op: LineInsert, Text: l})
			}
		case diffpatch.DiffEqual:
			out = append(out, trimContext(text, i > 0, i < len(diffs)-1)...)
		}
	}
	return out
}

// trimContext keeps the lines of an unchanged run that are close to a
// change before or after it.
func trimContext(text []string, changeBefore, changeAfter bool) []DiffLine {
	keep := make([]bool, len(text))
	for i := range text {
		if changeBefore && i < contextLines {
			keep[i] = true
		}
		if changeAfter && i >= len(text)-contextLines {
			keep[i] = true
		}
	}
	var out []DiffLine
	skipped := false
	for i, l := range text {
		if keep[i] {
			out = append(out, DiffLine{Op: LineEqual, Text: l})
			skipped = false
			continue
		}
		if !skipped {
			out = append(out, DiffLine{Op: LineSkip})
			skipped = true
		}
	}
	return out
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// Diff prints the difference between the file on disk and the freshly
// generated content.
func (p *Printer) Diff(path, onDisk, generated string) {
	fmt.Fprintln(p.out, p.metaC.Sprintf("--- %s (on disk)", path))
	fmt.Fprintln(p.out, p.metaC.Sprintf("+++ %s (generated)", path))
	for _, l := range LineDiff(onDisk, generated) {
		switch l.Op {
		case LineEqual:
			fmt.Fprintf(p.out, " %s\n", l.Text)
		case LineDelete:
			fmt.Fprintln(p.out, p.delC.Sprintf("-%s", l.Text))
		case LineInsert:
			fmt.Fprintln(p.out, p.addC.Sprintf("+%s", l.Text))
		case LineSkip:
			fmt.Fprintln(p.out, p.metaC.Sprint("@@"))
		}
	}
}
