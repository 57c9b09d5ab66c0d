// Command huntbrief asks the huntbrief API about today's Product Hunt
// launches and draws the answers in the terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"huntbrief/internal/apiclient"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	server  string
	timeout time.Duration
	width   int
	style   string
}

func (g *globalFlags) client() *apiclient.Client {
	return apiclient.New(g.server, g.timeout)
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "huntbrief",
		Short:         "Ask questions about today's Product Hunt launches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	server := os.Getenv("HUNTBRIEF_SERVER")
	if server == "" {
		server = apiclient.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&g.server, "server", server, "huntbrief API base URL")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 2*time.Minute, "request timeout")
	root.PersistentFlags().IntVar(&g.width, "width", 80, "output width in columns")
	root.PersistentFlags().StringVar(&g.style, "style", "", "glamour style for prose answers (dark, light, ascii, notty)")

	root.AddCommand(newAskCmd(g), newTrendingCmd(g), newServeCmd())
	return root
}

func main() {
	_ = godotenv.Load(".env")
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
