package cli

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NiklasRosenstein/slap-sub001/pkg/project"
	"github.com/NiklasRosenstein/slap-sub001/pkg/vcs"
)

// infoCommand creates the "info" command.
func (c *CLI) infoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show repository and project metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}

			printKeyValue("directory", repo.Directory)
			printKeyValue("monorepo", boolWord(repo.IsMonorepo()))
			printKeyValue("branch", repo.ReleaseBranch())
			printKeyValue("changelogs", repo.ChangelogDirectory())
			printKeyValue("entry types", strings.Join(repo.ChangelogTypes(), ", "))

			if git, err := vcs.Detect(repo.Directory); err == nil {
				if remotes, err := git.Remotes(); err == nil && len(remotes) > 0 {
					printKeyValue("remote", remotes[0].URL)
				}
			} else if !errors.Is(err, vcs.ErrNoRepository) {
				return err
			}

			for _, p := range repo.Projects() {
				printNewline()
				printInfo("%s", StyleTitle.Render(p.ID()))
				printKeyValue("handler", p.HandlerName())
				if name := p.DistName(); name != "" {
					printKeyValue("dist name", name)
				}
				if version := p.Version(); version != "" {
					printKeyValue("version", version)
				}
				if license := p.License(); license != "" {
					printKeyValue("license", license)
				}
				if packages, err := p.Packages(); err == nil {
					var names []string
					for _, pkg := range packages {
						names = append(names, pkg.Name)
					}
					printKeyValue("packages", strings.Join(names, ", "))
				}
				if deps, err := p.Dependencies(); err == nil {
					printKeyValue("dependencies", formatGroups(deps))
				}
				if deps := p.InterdependencyNames(); len(deps) > 0 {
					printKeyValue("depends on", strings.Join(deps, ", "))
				}
			}
			return nil
		},
	}
	return cmd
}

// formatGroups summarizes dependency counts per requirement group.
func formatGroups(deps project.Dependencies) string {
	parts := []string{fmt.Sprintf("run %d", len(deps.Run))}
	if len(deps.Dev) > 0 {
		parts = append(parts, fmt.Sprintf("dev %d", len(deps.Dev)))
	}
	extras := slices.Sorted(maps.Keys(deps.Extra))
	for _, extra := range extras {
		parts = append(parts, fmt.Sprintf("%s %d", extra, len(deps.Extra[extra])))
	}
	return strings.Join(parts, ", ")
}

func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
