package deps

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Kind is the build group of a source file.
type Kind int

const (
	KindPackage Kind = iota + 1
	KindModule
	KindTop
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindModule:
		return "module"
	case KindTop:
		return "top"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Source is one file of the build.
type Source struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

// Order returns the build order of sources: files named after a package,
// then files named after a module, then the top file. The top file always
// goes last, even when a package or module shares its name. Within each group the
// order of sources is kept. Files that match nothing are dropped.
//
// A file matches a name when its stem equals the name under Unicode case
// folding, since design unit names are case-insensitive.
func Order(sources []string, top string, d Dependencies) []Source {
	fold := cases.Fold()
	index := func(names []string) map[string]bool {
		m := make(map[string]bool, len(names))
		for _, n := range names {
			m[fold.String(n)] = true
		}
		return m
	}
	pkgs, mods := index(d.Packages), index(d.Modules)
	topKey := fold.String(top)

	var first, mid, last []Source
	for _, path := range sources {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		key := fold.String(stem)
		switch {
		case key == topKey:
			last = append(last, Source{Name: stem, Path: path, Kind: KindTop})
		case pkgs[key]:
			first = append(first, Source{Name: stem, Path: path, Kind: KindPackage})
		case mods[key]:
			mid = append(mid, Source{Name: stem, Path: path, Kind: KindModule})
		}
	}
	return slices.Concat(first, mid, last)
}

// FindSources lists the source files directly inside workdir, sorted by
// name.
func FindSources(workdir string) ([]string, error) {
	entries, err := os.ReadDir(workdir)
	if err != nil {
		return nil, fmt.Errorf("deps: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		out = append(out, filepath.Join(workdir, e.Name()))
	}
	return out, nil
}

// Plan is the resolved build of one top module.
type Plan struct {
	Top     string       `json:"top"`
	Deps    Dependencies `json:"deps"`
	Sources []Source     `json:"sources"`
}

// Paths returns the ordered source paths.
func (p *Plan) Paths() []string {
	out := make([]string, len(p.Sources))
	for i, s := range p.Sources {
		out[i] = s.Path
	}
	return out
}

// Resolve extracts the dependencies of top from its declaration in workdir
// and orders the sources found there.
func Resolve(workdir, top string) (*Plan, error) {
	d, err := ExtractFile(TopFile(workdir, top))
	if err != nil {
		return nil, err
	}
	sources, err := FindSources(workdir)
	if err != nil {
		return nil, err
	}
	return &Plan{Top: top, Deps: d, Sources: Order(sources, top, d)}, nil
}

// WriteReport prints a plan in a stable text layout.
func (p *Plan) WriteReport(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "top: %s\n", p.Top)
	fmt.Fprintf(&b, "packages: %s\n", strings.Join(p.Deps.Packages, ", "))
	fmt.Fprintf(&b, "modules: %s\n", strings.Join(p.Deps.Modules, ", "))
	b.WriteString("order:\n")
	for i, s := range p.Sources {
		fmt.Fprintf(&b, "  %d. %-7s %s\n", i+1, s.Kind, filepath.Base(s.Path))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
