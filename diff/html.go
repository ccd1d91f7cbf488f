package diff

import (
	"fmt"
	"html"
	"strings"

	"rephrase/quality"
)

// Styles is the stylesheet for the highlighted diff spans and panels.
const Styles = `<style>
.diff-removed { background: #ffcccc; padding: 2px 4px; border-radius: 3px; text-decoration: line-through; }
.diff-added { background: #ccffcc; padding: 2px 4px; border-radius: 3px; font-weight: 500; }
.panel { border: 1px solid #ddd; border-radius: 6px; padding: 12px; margin: 8px 0; }
.panel h3 { margin-top: 0; }
</style>`

// StatsPanel renders diff statistics as an HTML fragment.
func StatsPanel(s Stats) string {
	var b strings.Builder
	b.WriteString(`<div class="panel"><h3>Change Statistics</h3><ul>`)
	fmt.Fprintf(&b, "<li>Original words: %d</li>", s.TotalOriginal)
	fmt.Fprintf(&b, "<li>Generated words: %d</li>", s.TotalGenerated)
	fmt.Fprintf(&b, "<li>Unchanged: %d (%.1f%%)</li>", s.Unchanged, s.PercentageUnchanged)
	fmt.Fprintf(&b, "<li>Changed: %d</li>", s.Changed)
	fmt.Fprintf(&b, "<li>Added: %d</li>", s.Added)
	fmt.Fprintf(&b, "<li>Deleted: %d</li>", s.Deleted)
	fmt.Fprintf(&b, "<li>Total change: %.1f%%</li>", s.PercentageChanged)
	b.WriteString("</ul>")

	if len(s.Substitutions) > 0 {
		b.WriteString("<h3>Word Substitutions</h3><ul>")
		for _, sub := range s.Substitutions {
			fmt.Fprintf(&b, "<li>%s &rarr; %s</li>",
				html.EscapeString(sub.Original), html.EscapeString(sub.Generated))
		}
		b.WriteString("</ul>")
	}

	b.WriteString("</div>")
	return b.String()
}

// QualityPanel renders quality metrics as an HTML fragment.
func QualityPanel(title string, m quality.Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="panel"><h3>%s</h3><ul>`, html.EscapeString(title))
	fmt.Fprintf(&b, "<li>Grammar issues: %d</li>", m.GrammarIssues)
	fmt.Fprintf(&b, "<li>Punctuation issues: %d</li>", m.PunctuationIssues)
	fmt.Fprintf(&b, "<li>Logical flow: %.4f</li>", m.LogicalFlow)
	fmt.Fprintf(&b, "<li>Readability: %.2f (%s)</li>", m.ReadabilityScore, html.EscapeString(m.ReadabilityLabel))
	if m.Repetition.Total > 0 {
		fmt.Fprintf(&b, "<li>Repetitions found: %d (local score %.2f)</li>",
			m.Repetition.Total, m.Repetition.LocalScore)
		for _, rep := range m.Repetition.TopGlobal {
			fmt.Fprintf(&b, "<li>&ldquo;%s&rdquo; repeated %d times</li>",
				html.EscapeString(rep.Word), rep.Count)
		}
	}
	b.WriteString("</ul></div>")
	return b.String()
}
