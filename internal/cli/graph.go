package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NiklasRosenstein/slap-sub001/pkg/depgraph"
)

// graphCommand creates the "graph" command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		dot    bool
		asJSON bool
		output string
		groups []string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the interproject dependency graph",
		Long: `Graph builds the dependency graph between the projects of the repository
and prints it in dependency order. The graph can also be emitted as DOT or
JSON, or rendered straight to an SVG file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			g, err := repo.DependencyGraph(groups...)
			if err != nil {
				return err
			}

			switch {
			case dot:
				fmt.Print(g.ToDOT())
			case asJSON:
				return g.WriteJSON(os.Stdout)
			case output != "":
				return renderGraphFile(g.ToDOT(), output)
			default:
				order, err := g.Sort(nil)
				if err != nil {
					return err
				}
				for _, id := range order {
					line := StyleValue.Render(id)
					if deps := g.Dependencies(id); len(deps) > 0 {
						line += " " + StyleDim.Render(iconArrow+" "+strings.Join(deps, ", "))
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "emit Graphviz DOT")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "render an SVG to this file")
	cmd.Flags().StringSliceVar(&groups, "group", nil, "requirement groups to include (default: all)")

	return cmd
}

func renderGraphFile(dot, path string) error {
	if !strings.HasSuffix(path, ".svg") {
		return fmt.Errorf("unsupported output format for %q, only .svg is supported", path)
	}
	svg, err := depgraph.RenderSVG(dot)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return err
	}
	printSuccess("wrote %s", path)
	return nil
}
