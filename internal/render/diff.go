package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/featmodel/internal/featuremodel"
)

// LineType classifies one line of a diff.
type LineType int

const (
	LineContext LineType = iota
	LineAddition
	LineDeletion
)

// DiffLine is one line of a line-level diff.
type DiffLine struct {
	Type    LineType
	Content string
}

// DiffLines computes a line-level diff between two texts.
func DiffLines(oldText, newText string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out []DiffLine
	for _, d := range diffs {
		typ := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = LineAddition
		case diffmatchpatch.DiffDelete:
			typ = LineDeletion
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Type: typ, Content: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// Changed reports whether any line was added or deleted.
func Changed(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Type != LineContext {
			return true
		}
	}
	return false
}

// Diff renders both models without styling and returns their line diff in
// unified notation: "+" for additions, "-" for deletions, " " for context.
// Identifiers are not rendered, so models decoded from the same file compare
// equal.
func (r *Renderer) Diff(oldModel, newModel featuremodel.Reader) []DiffLine {
	plain := New(WithStyles(PlainStyles()), WithConstraints(r.constraints), WithUnbound(r.unbound), WithDescriptions(r.descWidth))
	return DiffLines(plain.Model(oldModel), plain.Model(newModel))
}

// FormatDiff renders diff lines with the renderer's addition and deletion
// styles.
func (r *Renderer) FormatDiff(lines []DiffLine) string {
	var b strings.Builder
	for _, l := range lines {
		switch l.Type {
		case LineAddition:
			b.WriteString(r.styles.Addition.Render("+ " + l.Content))
		case LineDeletion:
			b.WriteString(r.styles.Deletion.Render("- " + l.Content))
		default:
			b.WriteString("  " + l.Content)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
