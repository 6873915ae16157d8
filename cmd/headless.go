package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/glboard/internal/flags"
	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/journal"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/presentation"
)

// ErrNoProject is returned by project commands run without a project.
var ErrNoProject = errors.New("no project given (pass one as an argument, use --project or set project in the config)")

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List your GitLab projects as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		gw, err := newGateway(nil)
		if err != nil {
			return err
		}
		return runProjects(cmd.Context(), gw, os.Stdout)
	},
}

var issuesColumn string

var issuesCmd = &cobra.Command{
	Use:   "issues [project]",
	Short: "List a project's issues with their board column as JSON",
	Long: `List the issues of a project as JSON, each with the board column it is
sorted into.

Examples:
  glboard issues group/app
  glboard issues 42 --column doing
  glboard issues | jq '.[] | select(.column == "review") | .iid'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway(nil)
		if err != nil {
			return err
		}
		return runIssues(cmd.Context(), gw, os.Stdout, projectArg(args, 1), issuesColumn)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move [project] <iid> <column>",
	Short: "Move an issue to a board column",
	Long: `Move an issue to todo, doing, review or done, relabelling or closing
it on GitLab the same way a drag on the board does. The updated issue is
printed as JSON and the move is recorded in the journal.

Examples:
  glboard move group/app 12 review
  glboard move 12 done --project group/app`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway(nil)
		if err != nil {
			return err
		}
		db, repo := openJournal()
		if db != nil {
			defer func() { _ = db.Close() }()
		}
		n := len(args)
		return runMove(cmd.Context(), gw, repo, os.Stdout, projectArg(args, 3), args[n-2], args[n-1])
	},
}

var (
	journalIID   int
	journalLimit int
)

var journalCmd = &cobra.Command{
	Use:   "journal [project]",
	Short: "Show recent board operations from the local journal as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, repo := openJournal()
		if db == nil {
			return errors.New("journal is disabled or could not be opened")
		}
		defer func() { _ = db.Close() }()

		filter := journal.Filter{IID: journalIID, Limit: journalLimit}
		if ref := projectArg(args, 1); ref != "" {
			gw, err := newGateway(nil)
			if err != nil {
				return err
			}
			p, err := gw.GetProject(cmd.Context(), ref)
			if err != nil {
				return fmt.Errorf("resolving project %s: %w", ref, err)
			}
			filter.ProjectID = p.ID
		}
		return runJournal(cmd.Context(), repo, os.Stdout, filter)
	},
}

func init() {
	issuesCmd.Flags().StringVar(&issuesColumn, "column", "", "only issues in this column (todo, doing, review, done)")
	journalCmd.Flags().IntVar(&journalIID, "iid", 0, "only entries for this issue")
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", journal.DefaultLimit, "maximum number of entries")

	rootCmd.AddCommand(projectsCmd, issuesCmd, moveCmd, journalCmd)
}

// projectArg returns the project from args when it holds max entries,
// otherwise the configured project.
func projectArg(args []string, maxArgs int) string {
	if len(args) == maxArgs {
		return args[0]
	}
	ref, _, _ := cfg.ProjectRef()
	return ref
}

func runProjects(ctx context.Context, gw gitlab.Gateway, w io.Writer) error {
	projects, err := gw.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	return presentation.NewFormatter(w).FormatProjects(presentation.FromProjects(projects))
}

func runIssues(ctx context.Context, gw gitlab.Gateway, w io.Writer, ref, column string) error {
	var only kanban.Column
	if column != "" {
		c, ok := kanban.ParseColumn(column)
		if !ok {
			return fmt.Errorf("unknown column %q", column)
		}
		only = c
	}
	p, err := resolveProject(ctx, gw, ref)
	if err != nil {
		return err
	}
	issues, err := gw.ListIssues(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("listing issues: %w", err)
	}
	return presentation.NewFormatter(w).FormatIssues(presentation.FromIssues(issues, only))
}

// runMove commits a move through a sequencer so the labels written are the
// ones a board drag would write. repo may be nil.
func runMove(ctx context.Context, gw gitlab.Gateway, repo journal.Repository, w io.Writer, ref, iidArg, column string) error {
	iid, err := strconv.Atoi(iidArg)
	if err != nil || iid <= 0 {
		return fmt.Errorf("invalid issue iid %q", iidArg)
	}
	to, ok := kanban.ParseColumn(column)
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	p, err := resolveProject(ctx, gw, ref)
	if err != nil {
		return err
	}
	issues, err := gw.ListIssues(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("listing issues: %w", err)
	}

	store := kanban.NewStore()
	store.Replace(issues)
	issue, found := store.Get(iid)
	if !found {
		return fmt.Errorf("issue #%d: %w", iid, kanban.ErrUnknownIssue)
	}
	if kanban.Classify(issue) == to {
		return fmt.Errorf("issue #%d is already in %s", iid, to)
	}

	seq := kanban.NewSequencer(p.ID, store, nil, nil)
	job, err := seq.Submit(kanban.MoveOp(iid, to))
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("issue #%d cannot be moved to %s", iid, to)
	}
	out := seq.Execute(ctx, gw, job)
	seq.Settle(out)
	out.At = time.Now()

	if repo != nil {
		rec := journal.NewRecorder(repo, journal.WithOrder(flags.New(cfg.Flags).Enabled(flags.FlagLocalOrder)))
		if err := rec.Record(ctx, out); err != nil {
			fmt.Fprintf(os.Stderr, "warning: journal: %v\n", err)
		}
	}
	if out.Err != nil {
		return fmt.Errorf("moving #%d to %s: %w", iid, to, out.Err)
	}
	return presentation.NewFormatter(w).FormatIssue(presentation.FromIssue(out.Issue))
}

func runJournal(ctx context.Context, repo journal.Repository, w io.Writer, filter journal.Filter) error {
	entries, err := repo.Recent(ctx, filter)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	return presentation.NewFormatter(w).FormatJournal(entries)
}

func resolveProject(ctx context.Context, gw gitlab.Gateway, ref string) (gitlab.Project, error) {
	if ref == "" {
		return gitlab.Project{}, ErrNoProject
	}
	p, err := gw.GetProject(ctx, ref)
	if err != nil {
		return gitlab.Project{}, fmt.Errorf("resolving project %s: %w", ref, err)
	}
	return p, nil
}
