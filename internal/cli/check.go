package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NiklasRosenstein/slap-sub001/pkg/check"
	"github.com/NiklasRosenstein/slap-sub001/pkg/integrations/pypi"
	"github.com/NiklasRosenstein/slap-sub001/pkg/integrations/spdx"
	"github.com/NiklasRosenstein/slap-sub001/pkg/vcs"
)

var errChecksFailed = errors.New("checks failed")

// checkCommand creates the "check" command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		warningsAsErrors bool
		offline          bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Sanity-check the repository and each project",
		Long: `Check runs a series of sanity checks over the repository and each of its
projects: consistent version numbers, detectable packages, valid changelogs,
a known license identifier and valid trove classifiers.

The license and classifier checks consult the SPDX license list and PyPI;
pass --offline to skip the network entirely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}

			c.Logger.Debug("loaded repository", "dir", repo.Directory, "projects", len(repo.Projects()))
			env := &check.Env{Repo: repo}
			if git, err := vcs.Detect(repo.Directory); err == nil {
				env.Git = git
			} else if !errors.Is(err, vcs.ErrNoRepository) {
				return err
			}

			if !offline {
				backend := newBackend(cmd.Context())
				defer backend.Close()
				env.Licenses = spdx.NewClient(backend, apiCacheTTL)
				env.Classifiers = pypi.NewClient(backend, apiCacheTTL)
			}

			spin := newSpinnerWithContext(cmd.Context(), "running checks")
			spin.Start()
			results := check.Run(cmd.Context(), env)
			spin.Stop()

			for _, result := range results {
				printCheck(result)
			}

			worst := check.Worst(results)
			printNewline()
			switch {
			case worst >= check.Error:
				return errChecksFailed
			case worst >= check.Warning && warningsAsErrors:
				return fmt.Errorf("%w: warnings escalated by --warnings-as-errors", errChecksFailed)
			case worst >= check.Warning:
				printWarning("completed with warnings")
			default:
				printSuccess("all checks passed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&warningsAsErrors, "warnings-as-errors", "w", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip checks that need the network")

	return cmd
}
