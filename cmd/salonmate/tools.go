package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ninhvo/salonmate/internal/tool"
	_ "github.com/ninhvo/salonmate/internal/tool/builtin"
)

// Inert stand-ins so the catalog can be instantiated for inspection
// without a running engine or index.
type noopAdviser struct{}

func (noopAdviser) Advise(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("adviser not configured")
}

type noopKnowledge struct{}

func (noopKnowledge) Search(context.Context, string, int) ([]tool.KnowledgeHit, error) {
	return nil, fmt.Errorf("knowledge index not configured")
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect built-in tools",
}

var toolsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List built-in tools",
	Long:  `Display every built-in tool with its description, as exposed to the reasoning engine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		builtins, err := tool.InstantiateBuiltins(tool.BuiltinOptions{
			SalonBaseURL: cfg.Tools.Salon.BaseURL,
			SalonTimeout: time.Second,
			Adviser:      noopAdviser{},
			Knowledge:    noopKnowledge{},
		})
		if err != nil {
			return fmt.Errorf("instantiate tools: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION")
		for _, t := range builtins {
			fmt.Fprintf(w, "%s\t%s\n", t.Name(), t.Description())
		}
		return w.Flush()
	},
}

func init() {
	toolsCmd.AddCommand(toolsLsCmd)
	rootCmd.AddCommand(toolsCmd)
}
