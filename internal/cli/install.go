package cli

import (
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

// installCommand creates the "install" command.
func (c *CLI) installCommand() *cobra.Command {
	var (
		python    string
		editable  bool
		onlyPrint bool
		noDev     bool
		extras    []string
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install projects with pip in dependency order",
		Long: `Install runs pip for every project of the repository, ordered so that a
project is installed after the projects it depends on. With --only-print the
commands are printed instead of executed, for piping into a shell or a CI
script.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			groups := []string{"run"}
			if !noDev {
				groups = append(groups, "dev")
			}
			groups = append(groups, extras...)
			g, err := repo.DependencyGraph(groups...)
			if err != nil {
				return err
			}
			order, err := g.Sort(nil)
			if err != nil {
				return err
			}

			byID := make(map[string]string, len(repo.Projects()))
			for _, p := range repo.Projects() {
				byID[p.ID()] = p.Directory
			}

			for _, id := range order {
				pipArgs := []string{"-m", "pip", "install"}
				if editable {
					pipArgs = append(pipArgs, "-e")
				}
				target := byID[id]
				if len(extras) > 0 {
					target += "[" + strings.Join(extras, ",") + "]"
				}
				pipArgs = append(pipArgs, target)

				if onlyPrint {
					printNextStep(id, python+" "+strings.Join(pipArgs, " "))
					continue
				}
				printInfo("installing %s", StyleHighlight.Render(id))
				if err := runCommand(cmd, repo.Directory, python, pipArgs...); err != nil {
					return err
				}
			}
			if !onlyPrint {
				printSuccess("installed %s", pluralize(len(order), "project"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&python, "python", "python", "python interpreter to use")
	cmd.Flags().BoolVarP(&editable, "editable", "e", true, "install projects in editable mode")
	cmd.Flags().BoolVar(&onlyPrint, "only-print", false, "print the commands instead of running them")
	cmd.Flags().BoolVar(&noDev, "no-dev", false, "exclude development dependencies from the ordering")
	cmd.Flags().StringSliceVar(&extras, "extras", nil, "extras to install and to include in the ordering")

	return cmd
}

// runCommand executes an external tool with output passed through.
func runCommand(cmd *cobra.Command, dir, name string, args ...string) error {
	proc := exec.CommandContext(cmd.Context(), name, args...)
	proc.Dir = dir
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr
	return proc.Run()
}
