package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/NiklasRosenstein/slap-sub001/pkg/changelog"
	"github.com/NiklasRosenstein/slap-sub001/pkg/integrations/github"
	"github.com/NiklasRosenstein/slap-sub001/pkg/pep440"
	"github.com/NiklasRosenstein/slap-sub001/pkg/project"
	"github.com/NiklasRosenstein/slap-sub001/pkg/vcs"
)

// changelogCommand creates the "log" command group.
func (c *CLI) changelogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Manage structured TOML changelogs",
		Long: `Log manages the changelog directory of the current project. Entries live
in TOML files, one file per released version plus one collecting unreleased
entries. Entries carry a type, a description, an author and optional issue
and pull request links; "slap release" stamps the release date and renames
the unreleased file to the new version.`,
	}

	cmd.AddCommand(c.changelogAddCommand())
	cmd.AddCommand(c.changelogListCommand())
	cmd.AddCommand(c.changelogFormatCommand())

	return cmd
}

// changelogAddCommand creates the "log add" command.
func (c *CLI) changelogAddCommand() *cobra.Command {
	var (
		entryType   string
		description string
		author      string
		pr          string
		issues      []string
		offline     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry to the unreleased changelog",
		Long: `Add appends an entry to the unreleased changelog of the current project.
Without --type, an interactive picker offers the configured entry types.
Without --author, the author is looked up on GitHub by the git email, with
the plain email as fallback. Issue and pull request numbers are expanded to
full URLs using the GitHub remote of the repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			mgr := changelogManagerFor(repo)

			if entryType == "" {
				if !isatty.IsTerminal(os.Stdin.Fd()) {
					return fmt.Errorf("--type is required (one of: %s)", strings.Join(mgr.ValidTypes, ", "))
				}
				if entryType, err = pickEntryType(mgr.ValidTypes); err != nil {
					return err
				}
				if entryType == "" {
					return errors.New("aborted")
				}
			}
			if description == "" {
				return errors.New("--description is required")
			}

			var git *vcs.Git
			if g, err := vcs.Detect(repo.Directory); err == nil {
				git = g
			} else if !errors.Is(err, vcs.ErrNoRepository) {
				return err
			}

			var gh *github.Client
			var owner, name string
			if !offline {
				backend := newBackend(cmd.Context())
				defer backend.Close()
				gh = github.NewClient(backend, os.Getenv("GITHUB_TOKEN"), apiCacheTTL)
				owner, name = githubRemote(git)
			}

			if author == "" {
				author = resolveAuthor(cmd.Context(), git, gh)
			}
			pr = resolveReference(cmd.Context(), gh, owner, name, pr, false)
			for i, issue := range issues {
				issues[i] = resolveReference(cmd.Context(), gh, owner, name, issue, true)
			}

			entry, err := mgr.NewEntry(entryType, description, author, pr, issues)
			if err != nil {
				return err
			}
			if err := mgr.Unreleased().AddEntry(entry); err != nil {
				return err
			}

			printSuccess("added %s entry %s", entryType, StyleDim.Render(entry.ID))
			printFile(relTo(repo.Directory, mgr.Unreleased().Path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&entryType, "type", "t", "", "entry type")
	cmd.Flags().StringVarP(&description, "description", "d", "", "entry description")
	cmd.Flags().StringVarP(&author, "author", "a", "", "entry author (default: resolved from git)")
	cmd.Flags().StringVar(&pr, "pr", "", "pull request number or URL")
	cmd.Flags().StringArrayVar(&issues, "issue", nil, "issue number or URL (repeatable)")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip GitHub lookups")

	return cmd
}

// changelogListCommand creates the "log list" command.
func (c *CLI) changelogListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print changelog entries to the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			mgr := changelogManagerFor(repo)

			logs, err := mgr.All()
			if err != nil {
				return err
			}
			if !all {
				logs = logs[:min(1, len(logs))]
			}
			if len(logs) == 0 {
				printInfo("no changelogs in %s", mgr.Directory)
				return nil
			}

			for i, managed := range logs {
				if i > 0 {
					printNewline()
				}
				if err := printChangelog(managed); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include released versions")

	return cmd
}

// changelogFormatCommand creates the "log format" command.
func (c *CLI) changelogFormatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "format [version]",
		Short: "Render the changelog as Markdown",
		Long: `Format writes the changelog as Markdown to stdout, suitable for release
notes. Without an argument every changelog is rendered, newest first; with a
version argument only that version is rendered.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			mgr := changelogManagerFor(repo)

			var logs []*changelog.Managed
			if len(args) == 1 {
				version, err := pep440.Parse(args[0])
				if err != nil {
					return err
				}
				managed := mgr.Version(version)
				if !managed.Exists() {
					return fmt.Errorf("no changelog for version %s", version)
				}
				logs = []*changelog.Managed{managed}
			} else if logs, err = mgr.All(); err != nil {
				return err
			}

			for i, managed := range logs {
				if i > 0 {
					fmt.Println()
				}
				if err := formatChangelog(cmd.OutOrStdout(), managed); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// formatChangelog renders one changelog file as Markdown.
func formatChangelog(w io.Writer, managed *changelog.Managed) error {
	content, err := managed.Load()
	if err != nil {
		return err
	}

	title := "Unreleased"
	if managed.Version != nil {
		title = managed.Version.String()
	}
	if content.ReleaseDate != "" {
		title += " (" + content.ReleaseDate + ")"
	}
	fmt.Fprintf(w, "## %s\n\n", title)

	for _, entry := range content.Entries {
		line := fmt.Sprintf("- **%s** %s", entry.Type, entry.Description)
		var meta []string
		if entry.Author != "" {
			meta = append(meta, entry.Author)
		}
		if entry.PR != "" {
			meta = append(meta, entry.PR)
		}
		meta = append(meta, entry.Issues...)
		if len(meta) > 0 {
			line += " (" + strings.Join(meta, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// changelogManagerFor returns the manager of the project containing the
// working directory, falling back to the repository root.
func changelogManagerFor(repo *project.Repository) *changelog.Manager {
	dir := repo.Directory
	if cwd, err := os.Getwd(); err == nil {
		for _, p := range repo.Projects() {
			if cwd == p.Directory || strings.HasPrefix(cwd, p.Directory+string(filepath.Separator)) {
				dir = p.Directory
				break
			}
		}
	}
	return &changelog.Manager{
		Directory:  filepath.Join(dir, repo.ChangelogDirectory()),
		ValidTypes: repo.ChangelogTypes(),
	}
}

// githubRemote returns the owner and name of the first GitHub remote.
func githubRemote(git *vcs.Git) (owner, name string) {
	if git == nil {
		return "", ""
	}
	remotes, err := git.Remotes()
	if err != nil {
		return "", ""
	}
	for _, remote := range remotes {
		if o, n, ok := github.ParseRemoteURL(remote.URL); ok {
			return o, n
		}
	}
	return "", ""
}

// resolveAuthor derives the entry author from the git identity: the GitHub
// login for the commit email when it can be found, the email otherwise.
func resolveAuthor(ctx context.Context, git *vcs.Git, gh *github.Client) string {
	if git == nil {
		return ""
	}
	ident, err := git.Author()
	if err != nil {
		return ""
	}
	if gh != nil && ident.Email != "" {
		if login, err := gh.UsernameForEmail(ctx, ident.Email); err == nil {
			return "@" + login
		}
	}
	return ident.Email
}

// resolveReference expands an issue or pull request shortform to its URL.
// Anything that cannot be resolved is kept verbatim.
func resolveReference(ctx context.Context, gh *github.Client, owner, name, value string, issue bool) string {
	if value == "" || gh == nil || owner == "" {
		return value
	}
	id := strings.TrimPrefix(value, "#")
	if strings.ContainsAny(id, ":/") {
		return value // already a URL
	}
	var ref *github.Reference
	var err error
	if issue {
		ref, err = gh.ResolveIssue(ctx, owner, name, id)
	} else {
		ref, err = gh.ResolvePullRequest(ctx, owner, name, id)
	}
	if err != nil {
		return value
	}
	return ref.URL
}

// printChangelog renders one changelog file.
func printChangelog(managed *changelog.Managed) error {
	content, err := managed.Load()
	if err != nil {
		return err
	}

	title := "unreleased"
	if managed.Version != nil {
		title = managed.Version.String()
	}
	if content.ReleaseDate != "" {
		title += " " + StyleDim.Render("("+content.ReleaseDate+")")
	}
	fmt.Println(StyleTitle.Render(title))

	if len(content.Entries) == 0 {
		printDetail("no entries")
		return nil
	}
	for _, entry := range content.Entries {
		line := StyleHighlight.Render(entry.Type) + " " + StyleValue.Render(entry.Description)
		var meta []string
		if entry.Author != "" {
			meta = append(meta, entry.Author)
		}
		if entry.PR != "" {
			meta = append(meta, entry.PR)
		}
		meta = append(meta, entry.Issues...)
		if len(meta) > 0 {
			line += " " + StyleDim.Render("("+strings.Join(meta, ", ")+")")
		}
		fmt.Println("  " + line)
	}
	return nil
}
