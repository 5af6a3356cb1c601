package lang

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/brewin/pkg"
)

// EnvPath names the environment variable holding the list of directories
// searched for program files.
const EnvPath = "BREWINPATH"

// Ext is the conventional program file extension.
const Ext = ".brewin"

// SearchPath returns the directories searched by [Resolve]: dirs followed by
// the entries of $BREWINPATH, without duplicates.
func SearchPath(dirs ...string) []string {
	seen := make(map[string]bool)

	return slices.DeleteFunc(
		filepath.SplitList(mungPrefix(os.Getenv(EnvPath), dirs...)),
		func(dir string) bool {
			drop := dir == "" || seen[dir]
			seen[dir] = true

			return drop
		},
	)
}

// Resolve locates a program file. A name containing a path separator, or
// naming an existing file, is used as is. Otherwise each directory of path
// is tried in order, first with name and then with name plus [Ext].
func Resolve(name string, path []string) (string, error) {
	if fileIsRegular(name) {
		return name, nil
	}

	if filepath.Base(name) != name {
		return "", pkg.ErrSourceNotFound.Wrapf("%s", name)
	}

	for _, dir := range path {
		for _, candidate := range []string{name, name + Ext} {
			if p := filepath.Join(dir, candidate); fileIsRegular(p) {
				return p, nil
			}
		}
	}

	return "", pkg.ErrSourceNotFound.Wrapf("%s (searched %d directories)", name, len(path))
}
