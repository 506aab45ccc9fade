package commitgraph_test

import (
	"testing"

	"github.com/halfmoon-dev/gitobj/plumbing"
	"github.com/halfmoon-dev/gitobj/plumbing/commitgraph"
	"github.com/halfmoon-dev/gitobj/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is a minimal commitgraph.CommitReader backed by a map, so
// history can be walked without touching disk.
type fakeRepo struct {
	commits map[plumbing.Oid]*object.Commit
}

func (f *fakeRepo) GetCommit(oid plumbing.Oid) (*object.Commit, error) {
	c, ok := f.commits[oid]
	if !ok {
		return nil, plumbing.ErrNotFound
	}
	return c, nil
}

// newTestCommit builds a persisted-looking commit (ID populated) with
// the given message and parents, grounded on a throwaway tree.
func newTestCommit(t *testing.T, message string, parents ...plumbing.Oid) *object.Commit {
	t.Helper()

	treeObj := object.NewTree(nil).ToObject()
	_, err := treeObj.Compress()
	require.NoError(t, err)

	commitObj := object.NewCommit(
		treeObj.ID(),
		object.NewSignature("Test", "test@example.tld"),
		&object.CommitOptions{
			Message:   message,
			ParentsID: parents,
		},
	).ToObject()
	_, err = commitObj.Compress()
	require.NoError(t, err)

	c, err := commitObj.AsCommit()
	require.NoError(t, err)
	return c
}

func TestGraphAddCommit(t *testing.T) {
	t.Parallel()

	t.Run("records parent and child edges", func(t *testing.T) {
		t.Parallel()

		root := newTestCommit(t, "root")
		child := newTestCommit(t, "child", root.ID())

		g := commitgraph.New()
		g.AddCommit(root)
		g.AddCommit(child)

		assert.Empty(t, g.Parents(root.ID()))
		assert.ElementsMatch(t, []plumbing.Oid{root.ID()}, g.Parents(child.ID()))
		assert.ElementsMatch(t, []plumbing.Oid{child.ID()}, g.Children(root.ID()))
	})

	t.Run("is idempotent per id", func(t *testing.T) {
		t.Parallel()

		root := newTestCommit(t, "root")
		child := newTestCommit(t, "child", root.ID())

		g := commitgraph.New()
		g.AddCommit(child)
		g.AddCommit(child)

		assert.Len(t, g.Parents(child.ID()), 1)
	})

	t.Run("a commit may appear as a child before it's read", func(t *testing.T) {
		t.Parallel()

		root := newTestCommit(t, "root")
		child := newTestCommit(t, "child", root.ID())

		g := commitgraph.New()
		g.AddCommit(child)

		assert.Nil(t, g.Parents(root.ID()))
		assert.Contains(t, g.Unexplored(), root.ID())
	})
}

func TestGraphAddHistory(t *testing.T) {
	t.Parallel()

	// A -> B -> C
	//      B -> D
	a := newTestCommit(t, "A")
	b := newTestCommit(t, "B", a.ID())
	c := newTestCommit(t, "C", b.ID())
	d := newTestCommit(t, "D", b.ID())

	repo := &fakeRepo{commits: map[plumbing.Oid]*object.Commit{
		a.ID(): a,
		b.ID(): b,
		c.ID(): c,
		d.ID(): d,
	}}

	g := commitgraph.New()
	require.NoError(t, g.AddHistory(repo, []plumbing.Oid{c.ID(), d.ID()}))

	assert.ElementsMatch(t, []plumbing.Oid{a.ID()}, g.Roots())
	assert.ElementsMatch(t, []plumbing.Oid{c.ID(), d.ID()}, g.Leaves())
	assert.Empty(t, g.Unexplored())
	assert.ElementsMatch(t, []plumbing.Oid{a.ID(), b.ID(), c.ID(), d.ID()}, g.ParentsKeys())

	t.Run("never visits the same id twice", func(t *testing.T) {
		t.Parallel()

		g2 := commitgraph.New()
		require.NoError(t, g2.AddHistory(repo, []plumbing.Oid{c.ID(), d.ID(), b.ID()}))
		assert.Len(t, g2.ParentsKeys(), 4)
	})

	t.Run("fails with not found if a traversed id can't be read", func(t *testing.T) {
		t.Parallel()

		incomplete := &fakeRepo{commits: map[plumbing.Oid]*object.Commit{
			c.ID(): c,
		}}

		g3 := commitgraph.New()
		err := g3.AddHistory(incomplete, []plumbing.Oid{c.ID()})
		require.Error(t, err)
		assert.ErrorIs(t, err, plumbing.ErrNotFound)
	})
}
