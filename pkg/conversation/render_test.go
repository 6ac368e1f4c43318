package conversation

import (
	"reflect"
	"strings"
	"testing"
)

func TestRenderTopicsEmpty(t *testing.T) {
	if got := RenderTopics(nil, DefaultTheme); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestRenderTopicsOneLinePerEntry(t *testing.T) {
	topics := []TopicEntry{
		{1, "user: hi"},
		{1, "assistant: hello"},
		{2, "user: what's the weather"},
	}
	out := RenderTopics(topics, DefaultTheme)
	lines := strings.Split(out, "\n")
	if len(lines) != len(topics) {
		t.Fatalf("got %d lines, want %d", len(lines), len(topics))
	}
	for i, entry := range topics {
		if !strings.Contains(lines[i], entry.Doc) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], entry.Doc)
		}
	}
}

func TestRenderTopicsDoesNotMutate(t *testing.T) {
	topics := []TopicEntry{{1, "a"}, {2, "b"}}
	before := append([]TopicEntry(nil), topics...)
	_ = RenderTopics(topics, DefaultTheme)
	if !reflect.DeepEqual(topics, before) {
		t.Errorf("RenderTopics mutated its input: %v", topics)
	}
}

func TestConversationString(t *testing.T) {
	c := New()
	if got := c.String(); got != "" {
		t.Errorf("empty conversation String = %q, want empty", got)
	}

	c.Append(
		Message{Role: RoleUser, Content: "hi"},
		Message{Role: RoleAssistant, Content: "hello"},
	)
	want := "user: hi\nassistant: hello"
	if got := c.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}

	c.topics = []TopicEntry{{1, "user: hi"}, {1, "assistant: hello"}}
	out := c.String()
	if !strings.Contains(out, "user: hi") || !strings.Contains(out, "assistant: hello") {
		t.Errorf("topic String = %q, missing rendered docs", out)
	}
}
