package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwmorris11/semantic-router/pkg/index"
)

var indexBackend string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect or clear a vector index",
}

var indexDescribeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(cmd)
		if err != nil {
			return err
		}
		defer idx.Close()

		stats, err := idx.Describe(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("type: %s\ndimensions: %d\nvectors: %d\n", stats.Type, stats.Dimensions, stats.Vectors)
		return nil
	},
}

var indexDeleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Remove every record from the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(cmd)
		if err != nil {
			return err
		}
		defer idx.Close()
		return idx.DeleteAll(cmd.Context())
	},
}

func init() {
	indexCmd.PersistentFlags().StringVar(&indexBackend, "backend", "pinecone", "index backend (pinecone or badger)")
	indexCmd.AddCommand(indexDescribeCmd, indexDeleteAllCmd)
	rootCmd.AddCommand(indexCmd)
}

func openIndex(cmd *cobra.Command) (index.Index, error) {
	cfg, err := loadedConfig()
	if err != nil {
		return nil, err
	}

	switch indexBackend {
	case "pinecone":
		return index.NewPinecone(cmd.Context(), index.PineconeOptions{
			APIKey:    cfg.Pinecone.APIKey,
			IndexName: cfg.Pinecone.IndexName,
			Cloud:     cfg.Pinecone.Cloud,
			Region:    cfg.Pinecone.Region,
		})
	case "badger":
		if cfg.BadgerDir == "" {
			return nil, fmt.Errorf("badger_dir not configured")
		}
		return index.NewBadger(index.BadgerOptions{Dir: cfg.BadgerDir})
	default:
		return nil, fmt.Errorf("unknown index backend %q (want pinecone or badger)", indexBackend)
	}
}
