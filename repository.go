// Package git contains a pure Go implementation of git's object database:
// loose and packed objects, references, and the basic plumbing needed to
// read and write them.
package git

import (
	"errors"
	"fmt"

	"github.com/halfmoon-dev/gitobj/backend"
	"github.com/halfmoon-dev/gitobj/config"
	"github.com/halfmoon-dev/gitobj/plumbing"
	"github.com/halfmoon-dev/gitobj/plumbing/object"
)

// ErrRepositoryNotExist is returned when trying to open a repository that
// doesn't exist
var ErrRepositoryNotExist = errors.New("repository does not exist")

// Repository represents a git repository.
// A Git repository is the .git/ folder inside a project. It tracks all
// changes made to the files of a project over time.
// https://blog.axosoft.com/learning-git-repository/
type Repository struct {
	Config *config.Config
	dotGit backend.Backend
}

// InitOptions contains all the optional data used to initialize a
// repository
type InitOptions struct {
	// IsBare is not read by InitRepositoryWithParams: whether a bare
	// repository is created follows from the config it is given
	IsBare bool
	// InitialBranchName is the name of the branch HEAD will point at.
	// Defaults to plumbing.Master
	InitialBranchName string
	// Symlink, when true, means the .git directory is a symlink file
	// pointing to the real one (--separate-git-dir), and thus must not
	// be re-created if it already exists as a regular directory.
	Symlink bool
}

// InitRepository initializes a new git repository by creating the .git
// directory in the given path, which is where almost everything that
// Git stores and manipulates is located.
// https://git-scm.com/book/en/v2/Git-Internals-Plumbing-and-Porcelain#ch10-git-internals
func InitRepository(repoPath string) (*Repository, error) {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: repoPath,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create config: %w", err)
	}
	return InitRepositoryWithParams(cfg, InitOptions{})
}

// InitRepositoryWithParams initializes a new git repository using the
// provided config, which gives full control over the .git/work-tree
// layout
func InitRepositoryWithParams(cfg *config.Config, opts InitOptions) (*Repository, error) {
	b, err := backend.NewFS(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create backend: %w", err)
	}

	branchName := opts.InitialBranchName
	if branchName == "" {
		branchName = plumbing.Master
	}

	// Init can run against an existing repository: it keeps the config
	// and HEAD, rewrites the description file, and fills in what's
	// missing
	if err := b.InitWithOptions(branchName, backend.InitOptions{
		CreateSymlink: opts.Symlink,
	}); err != nil {
		return nil, err
	}

	return &Repository{
		Config: cfg,
		dotGit: b,
	}, nil
}

// OpenOptions contains all the optional data used to open a
// repository
type OpenOptions struct {
	// IsBare represents whether the repository has no work tree
	IsBare bool
}

// OpenRepository loads an existing git repository by reading its
// config, and returns a Repository instance
func OpenRepository(repoPath string) (*Repository, error) {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: repoPath,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create config: %w", err)
	}
	return OpenRepositoryWithParams(cfg, OpenOptions{})
}

// OpenRepositoryWithParams loads an existing git repository using the
// provided config, and returns a Repository instance
func OpenRepositoryWithParams(cfg *config.Config, _ OpenOptions) (*Repository, error) {
	b, err := backend.NewFS(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create backend: %w", err)
	}

	// since we can't check if the directory exists on disk to
	// validate if the repo exists, we instead check if HEAD exists
	// (since it should always be there)
	if _, err := b.Reference(plumbing.Head); err != nil {
		if errors.Is(err, plumbing.ErrNotFound) {
			return nil, ErrRepositoryNotExist
		}
		return nil, fmt.Errorf("could not look up HEAD: %w", err)
	}

	return &Repository{
		Config: cfg,
		dotGit: b,
	}, nil
}

// Close releases any resource held by the repository
func (r *Repository) Close() error {
	return r.dotGit.Close()
}

// GetReference returns the reference matching the given name.
// plumbing.ErrNotFound is returned if it doesn't exist
func (r *Repository) GetReference(name string) (*plumbing.Reference, error) {
	return r.dotGit.Reference(name)
}

// WriteReference persists the given reference, overwriting it if it
// already exists
func (r *Repository) WriteReference(ref *plumbing.Reference) error {
	return r.dotGit.WriteReference(ref)
}

// GetObject returns the object matching the given oid
func (r *Repository) GetObject(oid plumbing.Oid) (*object.Object, error) {
	return r.dotGit.Object(oid)
}

// Contains returns whether an object exists in the odb
func (r *Repository) Contains(oid plumbing.Oid) (bool, error) {
	return r.dotGit.HasObject(oid)
}

// GetTree returns the Tree object matching the given oid
func (r *Repository) GetTree(oid plumbing.Oid) (*object.Tree, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, err
	}
	return o.AsTree()
}

// GetCommit returns the Commit object matching the given oid
func (r *Repository) GetCommit(oid plumbing.Oid) (*object.Commit, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, err
	}
	return o.AsCommit()
}

// GetTag returns the Tag object matching the given oid
func (r *Repository) GetTag(oid plumbing.Oid) (*object.Tag, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, err
	}
	return o.AsTag()
}

// NewBlob creates, persists, and returns a new Blob object
func (r *Repository) NewBlob(data []byte) (*object.Blob, error) {
	o := object.New(object.TypeBlob, data)
	oid, err := r.dotGit.WriteObject(o)
	if err != nil {
		return nil, fmt.Errorf("could not persist blob: %w", err)
	}
	return object.NewBlob(oid, data), nil
}

// NewCommit creates, persists a new Commit pointing at the given tree,
// and moves refName to point at it. refName must be a full reference
// name, such as the one returned by ginternals.LocalBranchFullName
func (r *Repository) NewCommit(refName string, tree *object.Tree, author object.Signature, opts *object.CommitOptions) (*object.Commit, error) {
	c := object.NewCommit(tree.ID(), author, opts)
	o := c.ToObject()
	oid, err := r.dotGit.WriteObject(o)
	if err != nil {
		return nil, fmt.Errorf("could not persist commit: %w", err)
	}

	ref := plumbing.NewReference(refName, oid)
	if err := r.dotGit.WriteReference(ref); err != nil {
		return nil, fmt.Errorf("could not update ref %s: %w", refName, err)
	}

	return o.AsCommit()
}

// NewTreeBuilder creates a new empty TreeBuilder
func (r *Repository) NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{
		backend: r.dotGit,
	}
}

// NewTreeBuilderFromTree creates a new TreeBuilder pre-populated with the
// entries of the given tree
func (r *Repository) NewTreeBuilderFromTree(t *object.Tree) *TreeBuilder {
	entries := map[string]object.TreeEntry{}
	for _, e := range t.Entries() {
		entries[e.Path] = e
	}

	return &TreeBuilder{
		backend: r.dotGit,
		entries: entries,
	}
}
