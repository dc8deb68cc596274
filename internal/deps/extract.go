package deps

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ErrDeclarationNotFound is returned when the top module's declaration file
// cannot be opened.
var ErrDeclarationNotFound = errors.New("deps: declaration file not found")

// Extensions lists the source file extensions, in lookup order.
var Extensions = []string{".vhdl", ".vhd"}

// Dependencies are the names a declaration references, in first-seen order
// without duplicates.
type Dependencies struct {
	Packages []string `json:"packages"`
	Modules  []string `json:"modules"`
}

// Empty reports whether the declaration references nothing, as for a leaf
// module.
func (d Dependencies) Empty() bool {
	return len(d.Packages) == 0 && len(d.Modules) == 0
}

// Extract scans declaration text.
func Extract(r io.Reader) (Dependencies, error) {
	fold := cases.Fold()
	deps := Dependencies{Packages: []string{}, Modules: []string{}}
	seenPkg := make(map[string]bool)
	seenMod := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "--")
		key := fold.String(line)

		switch {
		case strings.Contains(key, "use") && strings.Contains(key, "pkg"):
			for _, seg := range strings.Split(line, ".") {
				name := packageName(seg, fold)
				if name == "" || seenPkg[fold.String(name)] {
					continue
				}
				seenPkg[fold.String(name)] = true
				deps.Packages = append(deps.Packages, name)
			}
		case strings.Contains(key, ":") && strings.Contains(key, "entity"):
			name := moduleName(line)
			if name == "" || seenMod[fold.String(name)] {
				continue
			}
			seenMod[fold.String(name)] = true
			deps.Modules = append(deps.Modules, name)
		}
	}
	if err := sc.Err(); err != nil {
		return Dependencies{}, fmt.Errorf("deps: scan: %w", err)
	}
	return deps, nil
}

// moduleName cuts the line at the architecture qualifier and takes the last
// dot-separated segment. A line without a library-qualified reference names
// no module.
func moduleName(line string) string {
	line, _, _ = strings.Cut(line, "(")
	i := strings.LastIndex(line, ".")
	if i < 0 {
		return ""
	}
	fields := strings.Fields(line[i+1:])
	if len(fields) == 0 {
		return ""
	}
	return cleanName(fields[0])
}

// packageName picks the word of seg that carries the package marker.
func packageName(seg string, fold cases.Caser) string {
	fields := strings.Fields(seg)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.Contains(fold.String(fields[i]), "pkg") {
			return cleanName(fields[i])
		}
	}
	return ""
}

func cleanName(word string) string {
	return norm.NFC.String(strings.TrimRight(word, ";,"))
}

// ExtractFile scans the declaration file at path. A missing or unreadable
// file is fatal.
func ExtractFile(path string) (Dependencies, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dependencies{}, fmt.Errorf("%w: %w", ErrDeclarationNotFound, err)
	}
	defer f.Close()
	return Extract(f)
}

// TopFile returns the declaration file of top in workdir, trying each of
// Extensions. When none exists the first candidate is returned so that the
// caller's open fails with a useful path.
func TopFile(workdir, top string) string {
	for _, ext := range Extensions {
		p := filepath.Join(workdir, top+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(workdir, top+Extensions[0])
}
