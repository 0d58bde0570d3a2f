// Package source expands command line arguments into the TypeScript files a
// command should build. Directories are walked recursively; .tscfgignore
// files hold gitignore-style patterns that exclude paths below them.
package source

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// IgnoreFileName is read from every walked directory.
const IgnoreFileName = ".tscfgignore"

// Options configures which files Collect returns.
type Options struct {
	SkipHidden      bool     // Skip files and directories starting with .
	IncludeDecls    bool     // Keep .d.ts declaration files
	DefaultExcludes []string // Directory names never entered
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden: true,
		DefaultExcludes: []string{
			"node_modules",
			"dist",
			"build",
			"out",
			"coverage",
			".git",
			".next",
		},
	}
}

var extensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// IsSource reports whether path names a file the parser accepts.
func IsSource(p string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(p)))
}

// Collect returns the source files named by args. A file argument is kept as
// given, even when ignore rules would exclude it; a directory contributes
// every source file below it. The result is sorted and free of duplicates.
func Collect(args []string, opts Options) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := walk(arg, opts)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func walk(root string, opts Options) ([]string, error) {
	var files []string
	var rules []Rule

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped.
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." {
				if opts.skipDir(d.Name()) || Ignored(rules, rel, true) {
					return filepath.SkipDir
				}
			}
			nested, err := loadRules(p, rel)
			if err != nil {
				return err
			}
			rules = append(rules, nested...)
			return nil
		}

		if opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !IsSource(p) || (!opts.IncludeDecls && isDecl(d.Name())) {
			return nil
		}
		if Ignored(rules, rel, false) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func (o Options) skipDir(name string) bool {
	if o.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	for _, ex := range o.DefaultExcludes {
		if strings.EqualFold(name, ex) {
			return true
		}
	}
	return false
}

func isDecl(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".d.ts") || strings.HasSuffix(lower, ".d.mts") || strings.HasSuffix(lower, ".d.cts")
}

// loadRules reads the ignore file of dir, whose slash path relative to the
// walk root is base.
func loadRules(dir, base string) ([]Rule, error) {
	f, err := os.Open(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	defer f.Close()

	if base == "." {
		base = ""
	}
	var rules []Rule
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, ParseRule(base, line))
	}
	return rules, sc.Err()
}

// Rule is one gitignore-style pattern.
type Rule struct {
	base     string // directory the rule was read from, relative to the root
	pattern  string
	negate   bool
	dirOnly  bool
	anchored bool // contains a slash, so it matches from base only
}

// ParseRule parses line as read from the ignore file in directory base.
func ParseRule(base, line string) Rule {
	r := Rule{base: base}
	if strings.HasPrefix(line, "!") {
		r.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.Contains(line, "/") {
		r.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	r.pattern = line
	return r
}

// Match reports whether the slash path rel, relative to the walk root,
// matches the rule.
func (r Rule) Match(rel string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	if r.base != "" {
		if !strings.HasPrefix(rel, r.base+"/") {
			return false
		}
		rel = strings.TrimPrefix(rel, r.base+"/")
	}
	if !r.anchored {
		ok, _ := path.Match(r.pattern, path.Base(rel))
		return ok
	}
	return matchSegments(strings.Split(r.pattern, "/"), strings.Split(rel, "/"))
}

// matchSegments matches pattern segments against path segments; a "**"
// segment matches any number of path segments.
func matchSegments(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pat[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	if ok, _ := path.Match(pat[0], segs[0]); !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:])
}

// Ignored applies rules in order; the last matching rule wins.
func Ignored(rules []Rule, rel string, isDir bool) bool {
	ignored := false
	for _, r := range rules {
		if r.Match(rel, isDir) {
			ignored = !r.negate
		}
	}
	return ignored
}
