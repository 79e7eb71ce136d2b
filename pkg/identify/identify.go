// Package identify classifies repository files into the tag vocabulary used
// by hook file filters (types, types_or, exclude_types).
//
// A path always gets a base tag set (file/directory/symlink, executable or
// non-executable, text or binary) plus any tags derived from its name. For
// extensionless executables the interpreter named by the shebang line is
// consulted.
package identify

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Base tags.
const (
	TagFile          = "file"
	TagDirectory     = "directory"
	TagSymlink       = "symlink"
	TagExecutable    = "executable"
	TagNonExecutable = "non-executable"
	TagText          = "text"
	TagBinary        = "binary"
)

// tagsByExtension maps a lowercase file extension (without the dot) to tags.
var tagsByExtension = map[string][]string{
	"bash":     {"shell", "bash"},
	"bat":      {"batch"},
	"bmp":      {"binary", "image", "bitmap"},
	"c":        {"c"},
	"cc":       {"c++"},
	"cfg":      {"ini"},
	"cjs":      {"javascript"},
	"cpp":      {"c++"},
	"cs":       {"c#"},
	"css":      {"css"},
	"csv":      {"csv"},
	"cu":       {"cuda"},
	"cxx":      {"c++"},
	"dart":     {"dart"},
	"diff":     {"diff"},
	"gif":      {"binary", "image", "gif"},
	"go":       {"go"},
	"gz":       {"binary", "gzip"},
	"h":        {"header", "c", "c++"},
	"hpp":      {"header", "c++"},
	"html":     {"html"},
	"ini":      {"ini"},
	"ipynb":    {"jupyter", "json"},
	"java":     {"java"},
	"jpeg":     {"binary", "image", "jpeg"},
	"jpg":      {"binary", "image", "jpeg"},
	"js":       {"javascript"},
	"json":     {"json"},
	"jsx":      {"jsx"},
	"kt":       {"kotlin"},
	"lua":      {"lua"},
	"markdown": {"markdown"},
	"md":       {"markdown"},
	"mjs":      {"javascript"},
	"pdf":      {"binary", "pdf"},
	"php":      {"php"},
	"pl":       {"perl"},
	"plist":    {"plist"},
	"png":      {"binary", "image", "png"},
	"proto":    {"proto"},
	"py":       {"python"},
	"pyi":      {"pyi"},
	"pyx":      {"cython"},
	"rb":       {"ruby"},
	"rs":       {"rust"},
	"rst":      {"rst"},
	"sh":       {"shell"},
	"sql":      {"sql"},
	"svg":      {"svg", "xml"},
	"swift":    {"swift"},
	"tar":      {"binary", "tar"},
	"tf":       {"terraform"},
	"toml":     {"toml"},
	"ts":       {"ts"},
	"tsx":      {"tsx"},
	"txt":      {"plain-text"},
	"xml":      {"xml"},
	"yaml":     {"yaml"},
	"yml":      {"yaml"},
	"zip":      {"binary", "zip"},
	"zsh":      {"shell", "zsh"},
}

// tagsByFilename maps well-known extensionless names to tags.
var tagsByFilename = map[string][]string{
	"BUILD":            {"bazel"},
	"Dockerfile":       {"dockerfile"},
	"Gemfile":          {"ruby"},
	"Makefile":         {"makefile"},
	"Rakefile":         {"ruby"},
	"WORKSPACE":        {"bazel"},
	".gitattributes":   {"gitattributes"},
	".gitignore":       {"gitignore"},
	".gitmodules":      {"gitmodules"},
	"go.mod":           {"go-mod"},
	"go.sum":           {"go-sum"},
	"requirements.txt": {"requirements"},
}

// tagsByInterpreter maps a shebang interpreter basename to tags.
var tagsByInterpreter = map[string][]string{
	"ash":     {"shell", "ash"},
	"bash":    {"shell", "bash"},
	"dash":    {"shell", "dash"},
	"node":    {"javascript"},
	"perl":    {"perl"},
	"php":     {"php"},
	"python":  {"python"},
	"python2": {"python", "python2"},
	"python3": {"python", "python3"},
	"ruby":    {"ruby"},
	"sh":      {"shell", "sh"},
	"zsh":     {"shell", "zsh"},
}

// knownTags is the closed vocabulary accepted in types/types_or/exclude_types.
var knownTags = func() map[string]struct{} {
	known := map[string]struct{}{
		TagFile: {}, TagDirectory: {}, TagSymlink: {},
		TagExecutable: {}, TagNonExecutable: {},
		TagText: {}, TagBinary: {},
	}
	for _, tags := range tagsByExtension {
		for _, t := range tags {
			known[t] = struct{}{}
		}
	}
	for _, tags := range tagsByFilename {
		for _, t := range tags {
			known[t] = struct{}{}
		}
	}
	for _, tags := range tagsByInterpreter {
		for _, t := range tags {
			known[t] = struct{}{}
		}
	}
	return known
}()

// ValidTag reports whether tag belongs to the classifier vocabulary.
func ValidTag(tag string) bool {
	_, ok := knownTags[tag]
	return ok
}

// KnownTags returns the sorted tag vocabulary.
func KnownTags() []string {
	out := make([]string, 0, len(knownTags))
	for t := range knownTags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TagsFromFilename classifies a path lexically, without touching the
// filesystem. It never returns the text/binary pair since those require
// content inspection.
func TagsFromFilename(path string) []string {
	base := filepath.Base(path)

	var tags []string
	if t, ok := tagsByFilename[base]; ok {
		tags = append(tags, t...)
	}

	// Multi-dot names contribute every suffix: "x.tar.gz" is tar and gzip.
	parts := strings.Split(base, ".")
	for i := 1; i < len(parts); i++ {
		ext := strings.ToLower(parts[i])
		if t, ok := tagsByExtension[ext]; ok {
			tags = append(tags, t...)
		}
	}
	return dedupe(tags)
}

// Tags classifies the file at path, combining lexical tags with mode and
// content inspection. The path must exist.
func Tags(path string) ([]string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return []string{TagSymlink}, nil
	}
	if info.IsDir() {
		return []string{TagDirectory}, nil
	}

	tags := []string{TagFile}
	if info.Mode()&0o111 != 0 {
		tags = append(tags, TagExecutable)
	} else {
		tags = append(tags, TagNonExecutable)
	}

	named := TagsFromFilename(path)
	tags = append(tags, named...)

	// Extensionless executables are classified by their shebang.
	if len(named) == 0 && info.Mode()&0o111 != 0 {
		tags = append(tags, tagsFromShebang(path)...)
	}

	if hasBinaryTag(tags) {
		tags = append(tags, TagBinary)
	} else if isTextFile(path) {
		tags = append(tags, TagText)
	} else {
		tags = append(tags, TagBinary)
	}

	return dedupe(tags), nil
}

func hasBinaryTag(tags []string) bool {
	for _, t := range tags {
		if t == TagBinary {
			return true
		}
	}
	return false
}

func tagsFromShebang(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	buf := make([]byte, 128)
	n, _ := io.ReadFull(f, buf)
	line := buf[:n]
	if !bytes.HasPrefix(line, []byte("#!")) {
		return nil
	}
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(string(line[2:]))
	if len(fields) == 0 {
		return nil
	}
	interp := filepath.Base(fields[0])
	// "#!/usr/bin/env python3" names the interpreter in the second field.
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	if t, ok := tagsByInterpreter[interp]; ok {
		return t
	}
	// Strip a trailing version: python3.12 -> python.
	interp = strings.TrimRight(interp, "0123456789.")
	if t, ok := tagsByInterpreter[interp]; ok {
		return t
	}
	return nil
}

// isTextFile sniffs the first kilobyte for NUL bytes, the same heuristic
// git uses to decide whether a blob is text.
func isTextFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 1024)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	return !bytes.ContainsRune(buf[:n], 0)
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
