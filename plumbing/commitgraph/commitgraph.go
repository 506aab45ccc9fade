// Package commitgraph builds and queries an in-memory DAG of commit
// parent/child relationships, without holding onto the commit bodies
// themselves.
package commitgraph

import (
	"fmt"

	"github.com/halfmoon-dev/gitobj/plumbing"
	"github.com/halfmoon-dev/gitobj/plumbing/object"
)

// CommitReader reads a single commit by id. *git.Repository satisfies
// this interface.
type CommitReader interface {
	GetCommit(oid plumbing.Oid) (*object.Commit, error)
}

// Graph is a DAG of commit ids, built incrementally from commit
// objects. It owns only the edges between ids, never the commit
// bodies.
//
// parents[id] is populated exactly when id has been read in via
// AddCommit/AddHistory. children[id] may be populated before id is
// ever read, since a commit's parents are recorded as entries of
// children before those parents themselves get visited.
// Zero value is ready to use.
type Graph struct {
	parents  map[plumbing.Oid]map[plumbing.Oid]struct{}
	children map[plumbing.Oid]map[plumbing.Oid]struct{}
}

// New returns an empty commit graph.
func New() *Graph {
	return &Graph{
		parents:  map[plumbing.Oid]map[plumbing.Oid]struct{}{},
		children: map[plumbing.Oid]map[plumbing.Oid]struct{}{},
	}
}

// AddCommit records the edges from c's id to each of its parents.
// Calling it more than once for the same commit is a no-op.
func (g *Graph) AddCommit(c *object.Commit) {
	if g.parents == nil {
		g.parents = map[plumbing.Oid]map[plumbing.Oid]struct{}{}
	}
	if g.children == nil {
		g.children = map[plumbing.Oid]map[plumbing.Oid]struct{}{}
	}
	id := c.ID()
	if _, ok := g.parents[id]; ok {
		return
	}

	parentIDs := c.ParentIDs()
	parentSet := make(map[plumbing.Oid]struct{}, len(parentIDs))
	for _, p := range parentIDs {
		parentSet[p] = struct{}{}

		if g.children[p] == nil {
			g.children[p] = map[plumbing.Oid]struct{}{}
		}
		g.children[p][id] = struct{}{}
	}
	g.parents[id] = parentSet

	// id might already be a known parent of something else (entered
	// into children before being read); make sure it has a children
	// bucket of its own so Leaves() sees it correctly.
	if g.children[id] == nil {
		g.children[id] = map[plumbing.Oid]struct{}{}
	}
}

// AddHistory walks the commit DAG starting from starts, reading each
// commit through r.GetCommit and adding it to the graph, never
// visiting the same id twice. The traversal order (breadth-first here)
// is not observable from the resulting graph. Returns the first error
// encountered reading a commit, wrapped with its id.
func (g *Graph) AddHistory(r CommitReader, starts []plumbing.Oid) error {
	queue := make([]plumbing.Oid, 0, len(starts))
	queue = append(queue, starts...)

	visited := map[plumbing.Oid]struct{}{}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}

		c, err := r.GetCommit(id)
		if err != nil {
			return fmt.Errorf("could not read commit %s: %w", id.String(), err)
		}
		g.AddCommit(c)

		for _, p := range c.ParentIDs() {
			if _, ok := visited[p]; !ok {
				queue = append(queue, p)
			}
		}
	}

	return nil
}

// Parents returns the set of parent ids recorded for id, as a slice.
// Returns nil if id hasn't been read in yet.
func (g *Graph) Parents(id plumbing.Oid) []plumbing.Oid {
	set, ok := g.parents[id]
	if !ok {
		return nil
	}
	return keys(set)
}

// Children returns the set of known children of id, as a slice.
// Returns nil if id is unknown to the graph entirely.
func (g *Graph) Children(id plumbing.Oid) []plumbing.Oid {
	set, ok := g.children[id]
	if !ok {
		return nil
	}
	return keys(set)
}

// ParentsKeys returns every id that has been read into the graph.
func (g *Graph) ParentsKeys() []plumbing.Oid {
	return oidMapKeys(g.parents)
}

// ChildrenKeys returns every id known to the graph, whether read or
// only seen as someone else's parent.
func (g *Graph) ChildrenKeys() []plumbing.Oid {
	return oidMapKeys(g.children)
}

// Roots returns every read commit that has no parents.
func (g *Graph) Roots() []plumbing.Oid {
	var roots []plumbing.Oid
	for id, parentSet := range g.parents {
		if len(parentSet) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Leaves returns every known commit that has no known children.
func (g *Graph) Leaves() []plumbing.Oid {
	var leaves []plumbing.Oid
	for id, childSet := range g.children {
		if len(childSet) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Unexplored returns every id that's been seen as a parent but hasn't
// been read into the graph yet.
func (g *Graph) Unexplored() []plumbing.Oid {
	var unexplored []plumbing.Oid
	for id := range g.children {
		if _, ok := g.parents[id]; !ok {
			unexplored = append(unexplored, id)
		}
	}
	return unexplored
}

func keys(set map[plumbing.Oid]struct{}) []plumbing.Oid {
	out := make([]plumbing.Oid, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func oidMapKeys(m map[plumbing.Oid]map[plumbing.Oid]struct{}) []plumbing.Oid {
	out := make([]plumbing.Oid, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
