package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"verdant/internal/markdown"
)

// RenderMarkdown converts the model's markdown subset into styled terminal
// text, wrapped to width.
func RenderMarkdown(src string, styles Styles, width int) string {
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	for i, block := range markdown.Parse(src) {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(renderBlock(block, styles, width))
	}
	return sb.String()
}

func renderBlock(block markdown.Block, styles Styles, width int) string {
	switch block.Kind {
	case markdown.KindHeading:
		style := styles.Heading1
		switch block.Level {
		case 2:
			style = styles.Heading2
		case 3:
			style = styles.Heading3
		}
		return style.Render(markdown.Text(block.Spans))

	case markdown.KindList:
		lines := make([]string, 0, len(block.Items))
		for _, item := range block.Items {
			bullet := styles.Bullet.Render("•") + " "
			body := lipgloss.NewStyle().Width(width - 4).Render(renderSpans(item, styles))
			lines = append(lines, "  "+bullet+strings.TrimSpace(body))
		}
		return strings.Join(lines, "\n")

	default:
		return lipgloss.NewStyle().Width(width).Render(renderSpans(block.Spans, styles))
	}
}

func renderSpans(spans []markdown.Span, styles Styles) string {
	var sb strings.Builder
	for _, sp := range spans {
		if sp.Bold {
			sb.WriteString(styles.Bold.Render(sp.Text))
		} else {
			sb.WriteString(sp.Text)
		}
	}
	return sb.String()
}
