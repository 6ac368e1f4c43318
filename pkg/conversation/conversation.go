// Package conversation maintains an append-only message history and an
// incrementally updated topic segmentation over it.
//
// A [Conversation] owns the full message history and the authoritative
// topic assignment. New messages arrive in batches over time; calling
// [Conversation.SplitByTopic] clusters the not-yet-covered suffix with a
// configured [splitter.Splitter] and reconciles the fresh clusters
// against the existing assignment so that settled topic ids never
// change. When the first fresh cluster begins with the message that
// closed the previous assignment, that topic is continued instead of a
// new id being opened.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dwmorris11/semantic-router/pkg/encoder"
	"github.com/dwmorris11/semantic-router/pkg/splitter"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one immutable conversational turn.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// String renders the message in the form consumed by splitters.
func (m Message) String() string {
	return m.Role + ": " + m.Content
}

// TopicEntry assigns one rendered message to a topic id.
type TopicEntry struct {
	Topic int    `json:"topic"`
	Doc   string `json:"doc"`
}

// Strategy selects a splitting strategy for [Conversation.ConfigureSplitter].
type Strategy string

// Recognized strategies.
const (
	ConsecutiveSimilarity Strategy = "consecutive_similarity"
	CumulativeSimilarity  Strategy = "cumulative_similarity"
)

// Sentinel errors.
var (
	// ErrSplitterNotConfigured is returned by SplitByTopic when no
	// splitter has been bound.
	ErrSplitterNotConfigured = errors.New("conversation: splitter not configured")

	// ErrUnknownStrategy is returned by ConfigureSplitter for a
	// strategy name that is not recognized.
	ErrUnknownStrategy = errors.New("conversation: unknown split strategy")
)

// Conversation is a stateful message history with topic assignments.
//
// It is not safe for concurrent use; callers needing concurrency must
// serialize access externally.
type Conversation struct {
	messages []Message
	topics   []TopicEntry
	splitter splitter.Splitter
	logger   *slog.Logger
}

// Option configures a new Conversation.
type Option func(*Conversation)

// WithLogger sets the logger used for informational notices.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) { c.logger = l }
}

// WithSplitter binds a custom splitter directly, bypassing
// ConfigureSplitter.
func WithSplitter(s splitter.Splitter) Option {
	return func(c *Conversation) { c.splitter = s }
}

// New creates an empty conversation.
func New(opts ...Option) *Conversation {
	c := &Conversation{logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Append adds messages to the history in order. It never touches the
// topic assignment; calling twice appends twice.
func (c *Conversation) Append(msgs ...Message) {
	c.messages = append(c.messages, msgs...)
}

// Messages returns a copy of the full message history.
func (c *Conversation) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

// Topics returns a copy of the current topic assignment.
func (c *Conversation) Topics() []TopicEntry {
	return append([]TopicEntry(nil), c.topics...)
}

// ResetTopics clears the topic assignment, discarding all prior
// segmentation. The message history is untouched.
func (c *Conversation) ResetTopics() {
	c.topics = nil
}

// ConfigureSplitter binds a splitting strategy built from the given
// encoder and similarity threshold. It must be called (or a splitter
// bound via [WithSplitter]) before [Conversation.SplitByTopic].
func (c *Conversation) ConfigureSplitter(enc encoder.Encoder, threshold float64, strategy Strategy) error {
	switch strategy {
	case ConsecutiveSimilarity:
		c.splitter = splitter.NewConsecutive(enc, threshold)
	case CumulativeSimilarity:
		c.splitter = splitter.NewCumulative(enc, threshold)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return nil
}

// SplitByTopic clusters the uncovered message suffix into topics and
// merges the result into the existing assignment.
//
// The uncovered suffix is every message after the last covered one.
// With force=true the assignment is cleared first, so the entire
// history is re-clustered from scratch; stability of ids then depends
// on the splitter producing identical output for identical input.
//
// The previous assignment's last rendered message is stitched in front
// of the splitter input. If the first document of the first returned
// split equals that stitched message exactly, the previous open topic
// is continued: the first split reuses its id and the stitched document
// is dropped from the split (it is already covered). Otherwise new
// topics are numbered from the next free id.
//
// Returns the full updated assignment and the raw splits produced by
// the splitter. An empty uncovered suffix or an empty split result is
// not an error: the current assignment and a nil split list are
// returned. Splitter failures propagate to the caller.
func (c *Conversation) SplitByTopic(ctx context.Context, force bool) ([]TopicEntry, []splitter.Split, error) {
	if c.splitter == nil {
		return nil, nil, ErrSplitterNotConfigured
	}

	if force {
		c.topics = nil
	}

	// One assignment entry per covered message, so the covered count
	// is the assignment length.
	uncovered := c.messages[len(c.topics):]
	if len(uncovered) == 0 {
		c.logger.DebugContext(ctx, "no uncovered messages to split",
			"messages", len(c.messages), "covered", len(c.topics))
		return c.Topics(), nil, nil
	}

	lastID, lastDoc := c.lastTopic()

	docs := make([]string, 0, len(uncovered)+1)
	if lastDoc != "" {
		docs = append(docs, lastDoc)
	}
	for _, m := range uncovered {
		docs = append(docs, m.String())
	}

	splits, err := c.splitter.Split(ctx, docs)
	if err != nil {
		return nil, nil, err
	}
	if len(splits) == 0 {
		c.logger.DebugContext(ctx, "splitter produced no topics", "docs", len(docs))
		return c.Topics(), nil, nil
	}

	c.topics = append(c.topics, extendTopics(lastID, lastDoc, splits)...)
	return c.Topics(), splits, nil
}

// lastTopic returns the id and rendered message of the final assignment
// entry, or (0, "") if the assignment is empty.
func (c *Conversation) lastTopic() (int, string) {
	if len(c.topics) == 0 {
		return 0, ""
	}
	last := c.topics[len(c.topics)-1]
	return last.Topic, last.Doc
}

// extendTopics reconciles fresh splitter output against the tail of the
// previous assignment and returns the entries to append.
//
// Continuation is decided only by exact string equality of the stitched
// document against the first document of the first split: on a match
// the first split reuses lastID and the stitched document is removed
// from the split in place (it is already covered). Otherwise numbering
// starts at lastID+1, which is 1 for an empty assignment.
//
// The function is I/O-free; its only side effect is the in-place
// removal of the stitched document, which is visible to callers holding
// the split list.
func extendTopics(lastID int, lastDoc string, splits []splitter.Split) []TopicEntry {
	start := lastID + 1
	if lastDoc != "" && len(splits[0].Docs) > 0 && splits[0].Docs[0] == lastDoc {
		start = lastID
		splits[0].Docs = splits[0].Docs[1:]
	}

	var delta []TopicEntry
	for i, sp := range splits {
		for _, doc := range sp.Docs {
			delta = append(delta, TopicEntry{Topic: start + i, Doc: doc})
		}
	}
	return delta
}
