package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"testing"

	git "github.com/halfmoon-dev/gitobj"
	"github.com/halfmoon-dev/gitobj/env"
	"github.com/halfmoon-dev/gitobj/ginternals"
	"github.com/halfmoon-dev/gitobj/internal/testhelper"
	"github.com/halfmoon-dev/gitobj/plumbing"
	"github.com/halfmoon-dev/gitobj/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogParams(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd(".", env.NewFromOs())
	cmd.SetArgs([]string{"log", "a", "b"})

	var err error
	require.NotPanics(t, func() {
		err = cmd.Execute()
	})
	require.Error(t, err)
}

func TestLog(t *testing.T) {
	t.Parallel()

	repoPath, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	r, err := git.InitRepository(repoPath)
	require.NoError(t, err)

	tb := r.NewTreeBuilder()
	tree, err := tb.Write()
	require.NoError(t, err)

	first, err := r.NewCommit(
		ginternals.LocalBranchFullName("master"),
		tree,
		object.NewSignature("John Doe", "john@domain.tld"),
		&object.CommitOptions{Message: "first commit"},
	)
	require.NoError(t, err)

	second, err := r.NewCommit(
		ginternals.LocalBranchFullName("master"),
		tree,
		object.NewSignature("John Doe", "john@domain.tld"),
		&object.CommitOptions{
			Message:   "second commit",
			ParentsID: []plumbing.Oid{first.ID()},
		},
	)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	outBuf := bytes.NewBufferString("")
	cmd := newRootCmd(".", env.NewFromOs())
	cmd.SetOut(outBuf)
	cmd.SetArgs([]string{"-C", repoPath, "log"})

	require.NotPanics(t, func() {
		err = cmd.Execute()
	})
	require.NoError(t, err)

	out, err := ioutil.ReadAll(outBuf)
	require.NoError(t, err)

	got := string(out)
	assert.Contains(t, got, fmt.Sprintf("commit %s", second.ID().String()))
	assert.Contains(t, got, fmt.Sprintf("commit %s", first.ID().String()))
	assert.Contains(t, got, "second commit")
	assert.Contains(t, got, "first commit")
}
