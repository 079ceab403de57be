// Package addons discovers Odoo addons on an addons path, reads their
// manifests and resolves transitive dependency closures in a stable
// topological order.
package addons

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	akerr "akaidoo/internal/errors"
)

// Addon is one discovered addon.
type Addon struct {
	Name     string
	Dir      string
	Manifest Manifest
}

// Set maps addon names to discovered addons.
type Set map[string]*Addon

// Discover scans each directory on the addons path for subdirectories
// holding a __manifest__.py. Later path entries do not override earlier
// ones, matching Odoo's first-wins addons path semantics.
func Discover(ctx context.Context, addonsPath []string) (Set, error) {
	set := Set{}
	for _, dir := range addonsPath {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // tolerate missing path entries
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if _, exists := set[name]; exists {
				continue
			}
			addonDir := filepath.Join(dir, name)
			if _, err := os.Stat(filepath.Join(addonDir, ManifestFile)); err != nil {
				continue
			}
			manifest, err := ParseManifestFile(ctx, addonDir)
			if err != nil {
				return nil, err
			}
			set[name] = &Addon{Name: name, Dir: addonDir, Manifest: manifest}
		}
	}
	return set, nil
}

// Names returns the addon names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolution is the outcome of a dependency resolution.
type Resolution struct {
	// Ordered holds the transitive closure in topological order,
	// dependencies before dependents, targets included.
	Ordered []string
	// Missing lists depends entries not present in the addon set.
	Missing []string
}

// Resolve computes the transitive dependency closure of targets.
func (s Set) Resolve(targets []string) (Resolution, error) {
	var res Resolution
	missing := map[string]bool{}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := map[string]int{}

	var visit func(name string, chain []string) error
	visit = func(name string, chain []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return akerr.Newf(akerr.DependencyCycle, "dependency cycle: %s", strings.Join(append(chain, name), " -> "))
		}
		addon, ok := s[name]
		if !ok {
			missing[name] = true
			return nil
		}
		state[name] = visiting
		for _, dep := range addon.Manifest.Depends {
			if err := visit(dep, append(chain, name)); err != nil {
				return err
			}
		}
		state[name] = done
		res.Ordered = append(res.Ordered, name)
		return nil
	}

	for _, target := range targets {
		if _, ok := s[target]; !ok {
			return res, akerr.Newf(akerr.AddonNotFound, "addon %q not found in addons path", target)
		}
		if err := visit(target, nil); err != nil {
			return res, err
		}
	}

	for name := range missing {
		res.Missing = append(res.Missing, name)
	}
	sort.Strings(res.Missing)
	return res, nil
}

// PathFromOdooCfg reads the addons_path option of an odoo.cfg.
func PathFromOdooCfg(path string) ([]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("read odoo config %s: %w", path, err)
	}
	raw := cfg.Section("options").Key("addons_path").String()
	if raw == "" {
		return nil, nil
	}
	var dirs []string
	for _, dir := range strings.Split(raw, ",") {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// modelDirs are the addon subdirectories scanned for model files.
var modelDirs = []string{"models", "wizard", "wizards"}

// PythonFiles lists the addon's Python source files in sorted order:
// root-level .py files plus everything under the model directories.
// Trivial __init__.py files (imports and comments only) are skipped.
func (a *Addon) PythonFiles() []string {
	var files []string

	entries, err := os.ReadDir(a.Dir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".py") {
				continue
			}
			if entry.Name() == ManifestFile {
				continue
			}
			path := filepath.Join(a.Dir, entry.Name())
			if entry.Name() == "__init__.py" && isTrivialInit(path) {
				continue
			}
			files = append(files, path)
		}
	}

	for _, sub := range modelDirs {
		root := filepath.Join(a.Dir, sub)
		_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if !strings.HasSuffix(path, ".py") || strings.Contains(path, "__pycache__") {
				return nil
			}
			if filepath.Base(path) == "__init__.py" && isTrivialInit(path) {
				return nil
			}
			files = append(files, path)
			return nil
		})
	}

	sort.Strings(files)
	return files
}

// isTrivialInit reports whether an __init__.py holds nothing beyond
// imports, comments and blank lines.
func isTrivialInit(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "from ") {
			continue
		}
		return false
	}
	return sc.Err() == nil
}
