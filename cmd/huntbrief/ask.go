package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"huntbrief/internal/extract"
	"huntbrief/internal/render"

	"github.com/spf13/cobra"
)

func newAskCmd(g *globalFlags) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the agent a question",
		Long: `Ask the agent a question about today's launches.

Examples:
  huntbrief ask "What's the hottest product today?"
  huntbrief ask "What do people think about Maillayer?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question is required")
			}
			resp, err := g.client().Ask(cmd.Context(), question)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			opts := render.Options{Width: g.width, Style: g.style}
			body, err := render.Response(resp.Response, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, body)
			if resp.ResponseType != extract.TypeGeneral && strings.TrimSpace(resp.Answer) != "" {
				prose, err := render.Markdown(resp.Answer, opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, prose)
			}
			if line := render.ToolsLine(resp.ToolNames()); line != "" {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the JSON response instead of cards")
	return cmd
}
