package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/dwmorris11/semantic-router/cmd/semantic-router/internal/config"
	"github.com/dwmorris11/semantic-router/pkg/conversation"
	"github.com/dwmorris11/semantic-router/pkg/encoder"
	"github.com/dwmorris11/semantic-router/pkg/splitter"
)

var (
	splitFile      string
	splitThreshold float64
	splitStrategy  string
	splitEncoder   string
	splitModel     string
	splitJSON      bool
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a conversation transcript into topics",
	Long: `Split a conversation transcript into semantically coherent topics.

Input is read from stdin as "role: content" lines, or from a YAML
transcript file (--file) holding a list of {role, content} messages.
Each topic run is rendered in its own color; --json emits the raw
assignment instead.

Examples:
  # From stdin
  printf 'user: hi\nassistant: hello\nuser: what is the weather\n' | semantic-router split

  # From a transcript with a tighter threshold
  semantic-router split -f transcript.yaml --threshold 0.7 --strategy cumulative_similarity`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitFile, "file", "f", "", "YAML transcript file (default: stdin)")
	splitCmd.Flags().Float64Var(&splitThreshold, "threshold", splitter.DefaultThreshold, "similarity threshold")
	splitCmd.Flags().StringVar(&splitStrategy, "strategy", string(conversation.ConsecutiveSimilarity),
		"split strategy (consecutive_similarity or cumulative_similarity)")
	splitCmd.Flags().StringVar(&splitEncoder, "encoder", "", "embedding provider (openai or gemini; default from config)")
	splitCmd.Flags().StringVar(&splitModel, "model", "", "embedding model (default: provider default)")
	splitCmd.Flags().BoolVar(&splitJSON, "json", false, "emit the topic assignment as JSON")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}

	messages, err := readTranscript(splitFile)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return fmt.Errorf("no input messages (pipe a transcript to stdin or pass --file)")
	}

	enc, err := buildEncoder(cmd, cfg)
	if err != nil {
		return err
	}

	conv := conversation.New()
	if err := conv.ConfigureSplitter(enc, splitThreshold, conversation.Strategy(splitStrategy)); err != nil {
		return err
	}
	conv.Append(messages...)

	topics, _, err := conv.SplitByTopic(cmd.Context(), false)
	if err != nil {
		return err
	}

	if splitJSON {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "  ")
		return e.Encode(topics)
	}
	fmt.Println(conv.String())
	return nil
}

// buildEncoder constructs the configured embedding provider.
func buildEncoder(cmd *cobra.Command, cfg *config.Config) (encoder.Encoder, error) {
	provider := splitEncoder
	if provider == "" {
		provider = cfg.Encoder
	}
	model := splitModel
	if model == "" {
		model = cfg.Model
	}

	var opts []encoder.Option
	if model != "" {
		opts = append(opts, encoder.WithModel(model))
	}
	if cfg.Dimensions > 0 {
		opts = append(opts, encoder.WithDimension(cfg.Dimensions))
	}

	switch provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured (set openai_api_key or $OPENAI_API_KEY)")
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, encoder.WithBaseURL(cfg.OpenAIBaseURL))
		}
		return encoder.NewOpenAI(cfg.OpenAIAPIKey, opts...), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured (set gemini_api_key or $GEMINI_API_KEY)")
		}
		return encoder.NewGemini(cmd.Context(), cfg.GeminiAPIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown encoder provider %q (want openai or gemini)", provider)
	}
}

// readTranscript loads messages from a YAML file, or from stdin as
// "role: content" lines when path is empty.
func readTranscript(path string) ([]conversation.Message, error) {
	if path == "" {
		return readMessageLines(os.Stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var messages []conversation.Message
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return messages, nil
}

// readMessageLines parses "role: content" lines. Lines without a role
// separator default to the user role.
func readMessageLines(r io.Reader) ([]conversation.Message, error) {
	var messages []conversation.Message
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		role, content, ok := strings.Cut(line, ": ")
		if !ok {
			role, content = conversation.RoleUser, line
		}
		messages = append(messages, conversation.Message{Role: role, Content: content})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return messages, nil
}
