package parse

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/slint-go/slint"
)

// FileLoader resolves document imports against the importing file's
// directory and a list of include paths, in that order. Documents are
// built once and memoized by their cleaned absolute path, so diamond
// imports share a single Document and its registered types.
type FileLoader struct {
	IncludePaths []string
	Builtins     *slint.TypeRegister

	cache   map[string]*slint.Document
	loading map[string]bool
}

func NewFileLoader(includePaths ...string) *FileLoader {
	return &FileLoader{
		IncludePaths: includePaths,
		Builtins:     slint.BuiltinTypeRegister(),
		cache:        make(map[string]*slint.Document),
		loading:      make(map[string]bool),
	}
}

func (l *FileLoader) resolve(path, from string) (string, error) {
	candidates := []string{}
	if from != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(from), path))
	} else {
		candidates = append(candidates, path)
	}
	for _, inc := range l.IncludePaths {
		candidates = append(candidates, filepath.Join(inc, path))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return filepath.Clean(c), nil
		}
	}
	return "", fmt.Errorf("cannot find %q", path)
}

// LoadDocument implements slint.Loader.
func (l *FileLoader) LoadDocument(path string, from string, diags *slint.DiagnosticList) (*slint.Document, error) {
	resolved, err := l.resolve(path, from)
	if err != nil {
		return nil, err
	}
	if doc, ok := l.cache[resolved]; ok {
		return doc, nil
	}
	if l.loading[resolved] {
		return nil, fmt.Errorf("circular import of %q", path)
	}
	l.loading[resolved] = true
	defer delete(l.loading, resolved)

	tree, err := File(resolved, diags)
	if err != nil {
		return nil, err
	}
	doc := slint.BuildDocument(tree, resolved, l.Builtins, l, diags)
	l.cache[resolved] = doc
	return doc, nil
}

// LoadString builds a document from in-memory source. Imports inside the
// source are resolved relative to sourceFile.
func (l *FileLoader) LoadString(src, sourceFile string, diags *slint.DiagnosticList) *slint.Document {
	tree := String(src, sourceFile, diags)
	return slint.BuildDocument(tree, sourceFile, l.Builtins, l, diags)
}
