// Package markdown parses documents into structural elements so that prose
// can be rewritten while headings, code blocks, and inline markup survive
// untouched.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// ElementType classifies a parsed document element.
type ElementType string

const (
	ElementHeading       ElementType = "heading"
	ElementCodeBlock     ElementType = "code_block"
	ElementParagraph     ElementType = "paragraph"
	ElementOrderedList   ElementType = "ordered_list"
	ElementUnorderedList ElementType = "unordered_list"
	ElementBlockquote    ElementType = "blockquote"
	ElementLinkDef       ElementType = "link_definition"
	ElementHR            ElementType = "hr"
	ElementEmpty         ElementType = "empty"
)

// Element is a single line or block of the source document. Marker and Text
// are populated for list items and blockquotes, where only Text should be
// rewritten.
type Element struct {
	Type    ElementType
	Content string
	Line    int
	Marker  string
	Text    string
}

// Processable reports whether the element carries prose that a generation
// model may rewrite.
func (e Element) Processable() bool {
	switch e.Type {
	case ElementParagraph, ElementOrderedList, ElementUnorderedList, ElementBlockquote:
		return true
	}
	return false
}

var (
	headingRe     = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	hrRe          = regexp.MustCompile(`^(\*{3,}|-{3,}|_{3,})$`)
	linkDefRe     = regexp.MustCompile(`^\[([^\]]+)\]:\s*(.+)$`)
	blockquoteRe  = regexp.MustCompile(`^>\s+(.+)$`)
	orderedRe     = regexp.MustCompile(`^(\d+\.)\s+(.+)$`)
	unorderedRe   = regexp.MustCompile(`^([*\-+])\s+(.+)$`)
	inlineCodeRe  = regexp.MustCompile("`[^`]+`")
	inlineLinkRe  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// Document is a parsed markdown document.
type Document struct {
	Elements []Element
}

// Parse splits markdown source into elements, one per line except for fenced
// code blocks which are kept whole.
func Parse(source string) *Document {
	lines := strings.Split(source, "\n")
	doc := &Document{}

	for i := 0; i < len(lines); {
		line := lines[i]

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			block, consumed := extractCodeBlock(lines[i:])
			doc.Elements = append(doc.Elements, Element{
				Type:    ElementCodeBlock,
				Content: block,
				Line:    i,
			})
			i += consumed
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			doc.Elements = append(doc.Elements, Element{
				Type:    ElementHeading,
				Content: line,
				Line:    i,
				Text:    m[2],
			})
			i++
			continue
		}

		if hrRe.MatchString(strings.TrimSpace(line)) {
			doc.Elements = append(doc.Elements, Element{Type: ElementHR, Content: line, Line: i})
			i++
			continue
		}

		if linkDefRe.MatchString(line) {
			doc.Elements = append(doc.Elements, Element{Type: ElementLinkDef, Content: line, Line: i})
			i++
			continue
		}

		if m := blockquoteRe.FindStringSubmatch(line); m != nil {
			doc.Elements = append(doc.Elements, Element{
				Type:    ElementBlockquote,
				Content: line,
				Line:    i,
				Marker:  ">",
				Text:    m[1],
			})
			i++
			continue
		}

		if m := orderedRe.FindStringSubmatch(line); m != nil {
			doc.Elements = append(doc.Elements, Element{
				Type:    ElementOrderedList,
				Content: line,
				Line:    i,
				Marker:  m[1],
				Text:    m[2],
			})
			i++
			continue
		}

		if m := unorderedRe.FindStringSubmatch(line); m != nil {
			doc.Elements = append(doc.Elements, Element{
				Type:    ElementUnorderedList,
				Content: line,
				Line:    i,
				Marker:  m[1],
				Text:    m[2],
			})
			i++
			continue
		}

		if strings.TrimSpace(line) == "" {
			doc.Elements = append(doc.Elements, Element{Type: ElementEmpty, Content: line, Line: i})
			i++
			continue
		}

		doc.Elements = append(doc.Elements, Element{
			Type:    ElementParagraph,
			Content: line,
			Line:    i,
		})
		i++
	}

	return doc
}

func extractCodeBlock(lines []string) (string, int) {
	block := []string{lines[0]}
	for i := 1; i < len(lines); i++ {
		block = append(block, lines[i])
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			return strings.Join(block, "\n"), i + 1
		}
	}
	// Unclosed fence, keep the remainder verbatim.
	return strings.Join(block, "\n"), len(lines)
}

// ProcessableText pairs a processable element's prose with its index in the
// document.
type ProcessableText struct {
	Index int
	Text  string
}

func (d *Document) ProcessableText() []ProcessableText {
	var out []ProcessableText
	for idx, el := range d.Elements {
		if !el.Processable() {
			continue
		}
		text := el.Content
		if el.Text != "" && el.Type != ElementParagraph {
			text = el.Text
		}
		out = append(out, ProcessableText{Index: idx, Text: text})
	}
	return out
}

// Preserved records one inline element removed before generation so it can
// be restored afterwards. For inline code, Replacement is a placeholder
// token; for links it is the bare link text left in the prose.
type Preserved struct {
	Original    string
	Replacement string
	URL         string // empty for inline code
}

// PreserveInline strips inline code and links from text. Inline code is
// swapped for opaque placeholders; links keep their text in place so the
// model sees natural prose.
func PreserveInline(text string) (string, []Preserved) {
	var preserved []Preserved

	for i, code := range inlineCodeRe.FindAllString(text, -1) {
		placeholder := fmt.Sprintf("INLINECODE%dPLACEHOLDER", i)
		preserved = append(preserved, Preserved{Original: code, Replacement: placeholder})
		text = strings.Replace(text, code, placeholder, 1)
	}

	for _, m := range inlineLinkRe.FindAllStringSubmatch(text, -1) {
		preserved = append(preserved, Preserved{Original: m[0], Replacement: m[1], URL: m[2]})
	}
	for _, p := range preserved {
		if p.URL != "" {
			text = strings.Replace(text, p.Original, p.Replacement, 1)
		}
	}

	return text, preserved
}

// RestoreInline puts preserved inline elements back into generated text.
// Link text the model rewrote beyond recognition is left as plain prose.
func RestoreInline(text string, preserved []Preserved) string {
	for i := len(preserved) - 1; i >= 0; i-- {
		p := preserved[i]
		if p.URL == "" {
			text = strings.ReplaceAll(text, p.Replacement, p.Original)
			continue
		}
		if strings.Contains(text, p.Replacement) {
			link := fmt.Sprintf("[%s](%s)", p.Replacement, p.URL)
			text = strings.Replace(text, p.Replacement, link, 1)
		}
	}
	return text
}

// Reconstruct rebuilds the document, substituting rewritten prose by element
// index. Elements without a replacement are emitted verbatim.
func (d *Document) Reconstruct(processed map[int]string) string {
	lines := make([]string, 0, len(d.Elements))

	for idx, el := range d.Elements {
		text, ok := processed[idx]
		if !ok {
			lines = append(lines, el.Content)
			continue
		}
		switch el.Type {
		case ElementParagraph:
			lines = append(lines, text)
		case ElementOrderedList, ElementUnorderedList, ElementBlockquote:
			lines = append(lines, el.Marker+" "+text)
		default:
			lines = append(lines, el.Content)
		}
	}

	return strings.Join(lines, "\n")
}
