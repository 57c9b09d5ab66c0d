package main

import (
	"fmt"

	"huntbrief/internal/render"

	"github.com/spf13/cobra"
)

func newTrendingCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show today's trending launches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := g.client().Trending(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Trending(resp.Products, resp.Source, g.width))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of launches to show")
	return cmd
}
