// Package pypath resolves dotted Python module paths to source files and
// discovers package boundaries on disk.
//
// A module's identity is its dotted path; its source is either a plain
// module file (pkg/mod.py) or a package initializer (pkg/__init__.py). The
// boundary of a reload request is the topmost ancestor package of the root
// module, found by walking parent directories while __init__.py is present.
package pypath

import (
	"os"
	"path/filepath"
	"strings"

	rlerrors "pyreload/internal/errors"
)

// InitFile is the package initializer filename.
const InitFile = "__init__.py"

// Source identifies the on-disk source backing a module.
type Source struct {
	Path      string `json:"path"`
	IsPackage bool   `json:"isPackage"`
}

// Locator resolves a dotted module path to its source.
//
// Implementations report SOURCE_NOT_FOUND for dotted paths with no
// discoverable source file; the resolver treats those as unresolvable and
// drops the edge.
type Locator interface {
	Locate(dotted string) (Source, error)
}

// FSLocator resolves dotted paths against a single search root: the
// directory that contains the boundary package.
type FSLocator struct {
	Root string
}

// NewFSLocator creates a locator rooted at dir.
func NewFSLocator(dir string) *FSLocator {
	return &FSLocator{Root: dir}
}

// Locate resolves dotted to a package initializer or a module file.
// Packages take precedence, matching how the interpreter resolves names.
func (l *FSLocator) Locate(dotted string) (Source, error) {
	if dotted == "" {
		return Source{}, rlerrors.New(rlerrors.SourceNotFound, "empty dotted path", nil)
	}

	rel := filepath.Join(strings.Split(dotted, ".")...)

	initPath := filepath.Join(l.Root, rel, InitFile)
	if fileExists(initPath) {
		return Source{Path: initPath, IsPackage: true}, nil
	}

	modPath := filepath.Join(l.Root, rel) + ".py"
	if fileExists(modPath) {
		return Source{Path: modPath, IsPackage: false}, nil
	}

	return Source{}, rlerrors.NewModule(rlerrors.SourceNotFound, dotted, "no source file under "+l.Root, nil)
}

// Boundary is the dotted path of the topmost ancestor package of a reload
// root. All graph participants are equal to it or descendants of it.
type Boundary string

// Contains reports whether dotted falls inside the boundary.
func (b Boundary) Contains(dotted string) bool {
	if b == "" {
		return false
	}
	return dotted == string(b) || strings.HasPrefix(dotted, string(b)+".")
}

// Identified describes a module file placed in its package hierarchy.
type Identified struct {
	Dotted   string   // fully-qualified dotted path of the module
	Boundary Boundary // topmost ancestor package
	Root     string   // directory containing the boundary package
	Source   Source
}

// Identify maps a module source file to its dotted path by walking parent
// directories upward while they remain packages.
//
// For a file with no package parent at all (a top-level script), the module
// is its own boundary.
func Identify(moduleFile string) (Identified, error) {
	abs, err := filepath.Abs(moduleFile)
	if err != nil {
		return Identified{}, rlerrors.New(rlerrors.SourceNotFound, "resolving path "+moduleFile, err)
	}
	if !fileExists(abs) {
		return Identified{}, rlerrors.New(rlerrors.SourceNotFound, "no such file: "+abs, nil)
	}

	src := Source{Path: abs, IsPackage: filepath.Base(abs) == InitFile}

	dir := filepath.Dir(abs)
	var segments []string
	if !src.IsPackage {
		name := strings.TrimSuffix(filepath.Base(abs), ".py")
		segments = append(segments, name)
	}

	// Climb while the containing directory is itself a package.
	for isPackageDir(dir) {
		segments = append([]string{filepath.Base(dir)}, segments...)
		dir = filepath.Dir(dir)
	}

	if len(segments) == 0 {
		return Identified{}, rlerrors.New(rlerrors.SourceNotFound, "cannot identify module for "+abs, nil)
	}

	return Identified{
		Dotted:   strings.Join(segments, "."),
		Boundary: Boundary(segments[0]),
		Root:     dir,
		Source:   src,
	}, nil
}

func isPackageDir(dir string) bool {
	return fileExists(filepath.Join(dir, InitFile))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
