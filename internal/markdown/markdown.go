// Package markdown converts the small markdown subset the model emits
// (headings, bullets, bold) into typed blocks the UI can style. Parse is a
// pure function with no rendering concerns.
package markdown

import "strings"

// BlockKind discriminates the Block variants.
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindParagraph
	KindList
)

// Span is a run of text with uniform styling.
type Span struct {
	Text string
	Bold bool
}

// Block is one structural element of the parsed document.
type Block struct {
	Kind  BlockKind
	Level int    // heading level 1-3, headings only
	Spans []Span // heading and paragraph content
	Items [][]Span
}

// Parse folds the input into an ordered block list in a single pass.
// Consecutive bullet lines accumulate into one list block; any other line
// closes the open list. Blank lines separate paragraphs.
func Parse(s string) []Block {
	var blocks []Block
	var list *Block

	flushList := func() {
		if list != nil {
			blocks = append(blocks, *list)
			list = nil
		}
	}

	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushList()

		case strings.HasPrefix(trimmed, "* "):
			item := parseSpans(strings.TrimSpace(trimmed[2:]))
			if list == nil {
				list = &Block{Kind: KindList}
			}
			list.Items = append(list.Items, item)

		case strings.HasPrefix(trimmed, "#"):
			flushList()
			level, text := splitHeading(trimmed)
			if level == 0 {
				// More than three hashes, or no space after them: plain text.
				blocks = append(blocks, Block{Kind: KindParagraph, Spans: parseSpans(trimmed)})
				continue
			}
			blocks = append(blocks, Block{
				Kind:  KindHeading,
				Level: level,
				Spans: parseSpans(text),
			})

		default:
			flushList()
			blocks = append(blocks, Block{Kind: KindParagraph, Spans: parseSpans(trimmed)})
		}
	}
	flushList()

	return blocks
}

// splitHeading returns the heading level (1-3) and the title text, or level 0
// when the line is not a supported heading.
func splitHeading(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level > 3 {
		return 0, ""
	}
	rest := line[level:]
	if !strings.HasPrefix(rest, " ") {
		return 0, ""
	}
	return level, strings.TrimSpace(rest)
}

// parseSpans splits a line on ** pairs into bold and plain runs. An unpaired
// ** is kept as literal text.
func parseSpans(s string) []Span {
	var spans []Span
	bold := false
	rest := s

	for rest != "" {
		idx := strings.Index(rest, "**")
		if idx < 0 {
			break
		}
		if bold {
			// Closing marker: everything before it was bold.
			if idx > 0 {
				spans = append(spans, Span{Text: rest[:idx], Bold: true})
			}
			bold = false
		} else {
			// Opening marker needs a closing pair; otherwise it is literal.
			if !strings.Contains(rest[idx+2:], "**") {
				break
			}
			if idx > 0 {
				spans = append(spans, Span{Text: rest[:idx]})
			}
			bold = true
		}
		rest = rest[idx+2:]
	}

	if rest != "" {
		spans = append(spans, Span{Text: rest, Bold: false})
	}
	if spans == nil {
		spans = []Span{{Text: ""}}
	}
	return spans
}

// Text flattens a span sequence back to plain text, dropping styling.
func Text(spans []Span) string {
	var sb strings.Builder
	for _, sp := range spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}
