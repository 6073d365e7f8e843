package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaxxstorm/landlord/internal/api/models"
	cliapi "github.com/jaxxstorm/landlord/internal/cli"
	"github.com/spf13/cobra"
)

func newInterpretCommand() *cobra.Command {
	var limit int
	var entityTypes string
	var disableLLM bool

	cmd := &cobra.Command{
		Use:   "interpret <utterance>",
		Short: "Send a natural language utterance through the Interpret Pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.InterpretRequest{
				Utterance:  args[0],
				Limit:      limit,
				DisableLLM: disableLLM,
			}
			if entityTypes != "" {
				req.EntityTypes = strings.Split(entityTypes, ",")
			}

			client := cliapi.NewClient(cfg.APIURL)
			res, err := client.Interpret(context.Background(), req)
			if err != nil {
				return err
			}

			cmd.Println(renderInterpretResult(*res))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of candidates to return")
	cmd.Flags().StringVar(&entityTypes, "entity-types", "", "Comma-separated entity types to restrict candidate search to")
	cmd.Flags().BoolVar(&disableLLM, "no-llm", false, "Skip the LLM pass and use the heuristic parser only")

	return cmd
}

func renderInterpretResult(res models.InterpretResponse) string {
	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Intent:"), res.Intent.IntentType),
		fmt.Sprintf("%s %.2f", labelStyle.Render("LLM confidence:"), res.LLMConfidence),
		fmt.Sprintf("%s %.2f", labelStyle.Render("Service confidence:"), res.ServiceConfidence),
	}
	if res.UsedHeuristicFallback {
		lines = append(lines, labelStyle.Render("Used heuristic fallback"))
	}
	if res.RequiresConfirmation {
		lines = append(lines, errorStyle.Render("Requires confirmation before acting"))
	}

	if len(res.Candidates) > 0 {
		lines = append(lines, headerStyle.Render("Candidates:"))
		for _, c := range res.Candidates {
			lines = append(lines, fmt.Sprintf("  [%.2f] %s %q (%s)", c.SimilarityScore, c.EntityType, c.Title, c.ID))
		}
	}

	return strings.Join(lines, "\n")
}
