package smoke_test

import (
	"testing"

	"github.com/halfmoon-dev/gitobj"
	"github.com/halfmoon-dev/gitobj/ginternals"
	"github.com/halfmoon-dev/gitobj/internal/testhelper"
	"github.com/halfmoon-dev/gitobj/plumbing"
	"github.com/halfmoon-dev/gitobj/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestWorkingOnExistingRepo(t *testing.T) {
	t.Parallel()

	repoPath, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	// Create the repo we're going to work with, as if it had been
	// cloned from somewhere
	seed, err := git.InitRepository(repoPath)
	require.NoError(t, err, "failed seeding the repo")

	defaultBranchName := ginternals.LocalBranchFullName("master")

	seedReadme, err := seed.NewBlob([]byte("Hello Wrld\n"))
	require.NoError(t, err, "failed creating seed readme")
	tb := seed.NewTreeBuilder()
	require.NoError(t, tb.Insert("README.md", seedReadme.ID(), object.ModeFile), "failed adding readme to tree")
	seedTree, err := tb.Write()
	require.NoError(t, err, "failed creating seed tree")

	seedCommit, err := seed.NewCommit(
		defaultBranchName,
		seedTree,
		object.NewSignature("John Doe", "john@domain.tld"),
		&object.CommitOptions{
			Message: "Initial commit",
		})
	require.NoError(t, err, "failed creating the seed commit")
	require.NoError(t, seed.Close(), "failed closing the seed repo")

	// Re-open the repo, like a fresh process would
	r, err := git.OpenRepository(repoPath)
	require.NoError(t, err, "failed opening a repo")
	t.Cleanup(func() {
		require.NoError(t, r.Close(), "failed closing repo")
	})

	defaultBranch, err := r.GetReference(defaultBranchName)
	require.NoError(t, err, "couldn't get the default branch")
	require.Equal(t, seedCommit.ID(), defaultBranch.Target(), "unexpected default branch target")

	// Update repo's readme
	headCommit, err := r.GetCommit(defaultBranch.Target())
	require.NoError(t, err, "couldn't get the head commit")
	rootTree, err := r.GetTree(headCommit.TreeID())
	require.NoError(t, err, "couldn't get the head commit's tree")

	// Let's find the readme
	// TODO(melvin): Add a convenience method to find a file in a tree
	entries := rootTree.Entries()
	readmeOid := plumbing.NullOid
	for _, entry := range entries {
		if entry.Path == "README.md" {
			readmeOid = entry.ID
			break
		}
	}
	if readmeOid.IsZero() {
		t.Fatal("couldn't find the readme in the tree")
	}
	// TODO(melvin): Add a convenience method to get a blob
	readmeObj, err := r.GetObject(readmeOid)
	require.NoError(t, err, "failed finding the readme object from it's oid")
	readme := readmeObj.AsBlob()

	newTb := r.NewTreeBuilderFromTree(rootTree)
	newReadme, err := r.NewBlob(append(readme.Bytes(), []byte("\nHello World\n")...))
	require.NoError(t, err, "failed creating new readme")
	err = newTb.Insert("README.md", newReadme.ID(), object.ModeFile)
	require.NoError(t, err, "failed adding readme to tree")

	newTree, err := newTb.Write()
	require.NoError(t, err, "failed creating new tree")

	fixBranchName := ginternals.LocalBranchFullName("ml/docs/update-readme")
	fixCommit, err := r.NewCommit(
		fixBranchName,
		newTree,
		object.NewSignature("John Doe", "john@domain.tld"),
		&object.CommitOptions{
			Message:   "docs(readme): Fix typo",
			ParentsID: []plumbing.Oid{headCommit.ID()},
		})
	require.NoError(t, err, "failed creating the commit with the updated readme")

	// TODO(melvin): Write the commit to packfile + push it to the remote

	// Alright, time to merge this new branch into the default one!

	mergeCommit, err := r.NewCommit(
		defaultBranchName,
		newTree,
		object.NewSignature("John Doe", "john@domain.tld"),
		&object.CommitOptions{
			Message:   "merge branch ml/docs/fix-typo-in-readme into main",
			ParentsID: []plumbing.Oid{headCommit.ID(), fixCommit.ID()},
		})
	require.NoError(t, err, "failed creating the commit with the fix")

	// Make sure the merge worked
	mainBranch, err := r.GetReference(defaultBranchName)
	require.NoError(t, err, "couldn't get the main branch")
	require.Equal(t, mergeCommit.ID(), mainBranch.Target(), "the merge didn't work")
}
