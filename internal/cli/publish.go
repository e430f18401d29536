package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// publishCommand creates the "publish" command.
func (c *CLI) publishCommand() *cobra.Command {
	var (
		python     string
		dry        bool
		repository string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build and upload distributions",
		Long: `Publish builds an sdist and a wheel for every project of the repository
and uploads them with twine. Projects are built in dependency order so that
the distributions of a monorepo land on the index in an installable
sequence. With --dry the distributions are built but not uploaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			g, err := repo.DependencyGraph("run", "build")
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
				dir := byID[id]
				printInfo("building %s", StyleHighlight.Render(id))
				if err := runCommand(cmd, dir, python, "-m", "build", "."); err != nil {
					return fmt.Errorf("build %s: %w", id, err)
				}

				dists, err := filepath.Glob(filepath.Join(dir, "dist", "*"))
				if err != nil {
					return err
				}
				if len(dists) == 0 {
					return fmt.Errorf("build %s produced no distributions", id)
				}
				for _, dist := range dists {
					printFile(relTo(repo.Directory, dist))
				}

				if dry {
					continue
				}
				uploadArgs := []string{"-m", "twine", "upload", "--non-interactive"}
				if repository != "" {
					uploadArgs = append(uploadArgs, "--repository", repository)
				}
				uploadArgs = append(uploadArgs, dists...)
				if err := runCommand(cmd, dir, python, uploadArgs...); err != nil {
					return fmt.Errorf("upload %s: %w", id, err)
				}
				printSuccess("published %s", id)
			}

			if dry {
				printSuccess("built %s (upload skipped)", pluralize(len(order), "project"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&python, "python", "python", "python interpreter to use")
	cmd.Flags().BoolVarP(&dry, "dry", "d", false, "build distributions but do not upload")
	cmd.Flags().StringVarP(&repository, "repository", "r", "", "twine repository name")

	return cmd
}
