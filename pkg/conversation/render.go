package conversation

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette used to render topic assignments. Consecutive
// entries with the same topic id share a color; the color advances on
// every topic change, cycling through the palette.
type Theme struct {
	Colors []lipgloss.Color
}

// DefaultTheme cycles the seven standard ANSI foreground colors:
// white, red, green, yellow, blue, magenta, cyan.
var DefaultTheme = Theme{
	Colors: []lipgloss.Color{"7", "1", "2", "3", "4", "5", "6"},
}

// RenderTopics renders a topic assignment with one color per topic run.
// It is a pure projection: the assignment is not modified.
func RenderTopics(topics []TopicEntry, theme Theme) string {
	if len(topics) == 0 {
		return ""
	}

	styles := make([]lipgloss.Style, len(theme.Colors))
	for i, c := range theme.Colors {
		styles[i] = lipgloss.NewStyle().Foreground(c)
	}

	var b strings.Builder
	currentTopic := 0 // topic ids start at 1, so the first entry always advances
	colorIdx := 0
	for i, entry := range topics {
		if entry.Topic != currentTopic {
			colorIdx = (colorIdx + 1) % len(styles)
			currentTopic = entry.Topic
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(styles[colorIdx].Render(entry.Doc))
	}
	return b.String()
}

// String renders the conversation: the themed topic view when an
// assignment exists, otherwise the plain message history.
func (c *Conversation) String() string {
	if len(c.messages) == 0 {
		return ""
	}
	if len(c.topics) == 0 {
		lines := make([]string, len(c.messages))
		for i, m := range c.messages {
			lines[i] = m.String()
		}
		return strings.Join(lines, "\n")
	}
	return RenderTopics(c.topics, DefaultTheme)
}
