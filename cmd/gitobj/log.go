package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/halfmoon-dev/gitobj/internal/errutil"
	"github.com/halfmoon-dev/gitobj/internal/gitpath"
	"github.com/halfmoon-dev/gitobj/plumbing"
	"github.com/halfmoon-dev/gitobj/plumbing/commitgraph"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newLogCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log [REV]",
		Short: "Walk the commit graph and show commit logs",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		rev := plumbing.Head
		if len(args) == 1 {
			rev = args[0]
		}
		return logCmd(cmd.OutOrStdout(), cfg, rev)
	}
	return cmd
}

func resolveRev(r repoReader, rev string) (plumbing.Oid, error) {
	if oid, err := plumbing.NewOidFromStr(rev); err == nil {
		return oid, nil
	}

	toTry := []string{
		rev,
		gitpath.Ref(rev),
		gitpath.LocalBranch(rev),
		gitpath.LocalTag(rev),
	}
	for _, refName := range toTry {
		ref, err := r.GetReference(refName)
		if err == nil {
			return ref.Target(), nil
		}
		if !errors.Is(err, plumbing.ErrNotFound) {
			return plumbing.NullOid, xerrors.Errorf("could not check if ref %s exists: %w", refName, err)
		}
	}

	return plumbing.NullOid, xerrors.Errorf("not a valid object name %s", rev)
}

// repoReader is the subset of *git.Repository used by the log command,
// narrowed so it can be exercised against a fake in tests.
type repoReader interface {
	GetReference(name string) (*plumbing.Reference, error)
	commitgraph.CommitReader
}

func logCmd(out io.Writer, cfg *globalFlags, rev string) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	start, err := resolveRev(r, rev)
	if err != nil {
		return err
	}

	graph := commitgraph.New()
	if err := graph.AddHistory(r, []plumbing.Oid{start}); err != nil {
		return xerrors.Errorf("could not walk commit history: %w", err)
	}

	// the graph only owns edges, not traversal order, so we re-walk
	// from start here to get a deterministic, never-repeats ordering
	visited := map[plumbing.Oid]struct{}{}
	queue := []plumbing.Oid{start}
	var ordered []plumbing.Oid
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		ordered = append(ordered, id)
		queue = append(queue, graph.Parents(id)...)
	}

	for _, id := range ordered {
		c, err := r.GetCommit(id)
		if err != nil {
			return xerrors.Errorf("could not read commit %s: %w", id.String(), err)
		}
		fmt.Fprintf(out, "commit %s\n", id.String())
		fmt.Fprintf(out, "Author: %s\n", c.Author().String())
		fmt.Fprintln(out, "")
		fmt.Fprintf(out, "    %s\n", c.Message())
		fmt.Fprintln(out, "")
	}

	return nil
}
