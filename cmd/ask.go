package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reliefmap/shelter-cli/internal/retrieval"
	"github.com/reliefmap/shelter-cli/pkg/assist"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer an emergency question from the bundled guidance",
	Long:  "Retrieves the most relevant guidance snippets and, when an Anthropic API key is configured, composes an answer from them. Without a key the snippets are printed directly.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		question := strings.Join(args, " ")

		idx, err := retrieval.NewBundledIndex(ctx, retrieval.HashingEmbedder{})
		if err != nil {
			return err
		}

		var completer assist.Completer
		if cfg.Assist.AnthropicKey != "" {
			completer = assist.NewAnthropicCompleter(cfg.Assist.AnthropicKey, cfg.Assist.Model)
		}

		answer, err := assist.Answer(ctx, idx, completer, question, cfg.Knowledge.TopK, cfg.Assist.MaxTokens)
		if err != nil {
			return err
		}

		fmt.Println(answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
