// Package gitpath contains consts and methods to work with path inside
// the .git directory
package gitpath

import (
	"os"
	"path"
)

// .git/ Files and directories
const (
	DotGitPath      = ".git"
	ConfigPath      = "config"
	DescriptionPath = "description"
	PackedRefsPath  = "packed-refs"
	HEADPath        = "HEAD"
	ObjectsPath     = "objects"
	ObjectsInfoPath = ObjectsPath + string(os.PathSeparator) + "info"
	ObjectsPackPath = ObjectsPath + string(os.PathSeparator) + "pack"
	RefsPath        = "refs"
	RefsTagsPath    = RefsPath + "/tags"
	RefsHeadsPath   = RefsPath + "/heads"
	RefsRemotesPath = RefsPath + "/remotes"
)

// Ref returns the full name of a ref given its name relative to refs/
// ex. for `heads/master` returns `refs/heads/master`
func Ref(name string) string {
	return path.Join(RefsPath, name)
}

// LocalBranch returns the full name of a local branch
// ex. for `master` returns `refs/heads/master`
func LocalBranch(name string) string {
	return path.Join(RefsHeadsPath, name)
}

// LocalTag returns the full name of a local tag
// ex. for `v1.0.0` returns `refs/tags/v1.0.0`
func LocalTag(name string) string {
	return path.Join(RefsTagsPath, name)
}
