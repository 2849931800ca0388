// Package source finds and formats the Go source of functions at runtime.
package source

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/token"
	"path/filepath"
	"reflect"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"
)

// Location identifies where a function is defined.
type Location struct {
	Name string
	File string
	Line int
}

// Locate returns the definition site of fn, which must be a non-nil func.
func Locate(fn any) (Location, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Location{}, errors.Newf("not a function: %T", fn)
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return Location{}, errors.New("no runtime information for function")
	}
	file, line := f.FileLine(f.Entry())
	return Location{Name: f.Name(), File: file, Line: line}, nil
}

// Snippet loads the package containing loc.File and returns the formatted
// source of the function declared at loc.Line.
func Snippet(loc Location) (string, error) {
	cfg := &packages.Config{
		Mode: packages.LoadSyntax | packages.LoadFiles,
		Dir:  filepath.Dir(loc.File),
	}
	pkgs, err := packages.Load(cfg, "file="+loc.File)
	if err != nil {
		return "", errors.Wrapf(err, "loading package of %s", loc.File)
	}
	for _, pkg := range pkgs {
		for _, fileAST := range pkg.Syntax {
			tf := pkg.Fset.File(fileAST.Pos())
			if tf == nil || filepath.Clean(tf.Name()) != filepath.Clean(loc.File) {
				continue
			}
			node := funcAtLine(pkg.Fset, fileAST, tf, loc.Line)
			if node == nil {
				return "", errors.Newf("no function at %s:%d", loc.File, loc.Line)
			}
			var buf bytes.Buffer
			if err := format.Node(&buf, pkg.Fset, node); err != nil {
				return "", err
			}
			return buf.String(), nil
		}
	}
	return "", errors.Newf("could not find %s in any loaded package", loc.File)
}

// Of is Locate followed by Snippet.
func Of(fn any) (Location, string, error) {
	loc, err := Locate(fn)
	if err != nil {
		return Location{}, "", err
	}
	snippet, err := Snippet(loc)
	return loc, snippet, err
}

// funcAtLine returns the outermost function declaration or literal starting on
// line. Failing that it returns the innermost function enclosing the line.
func funcAtLine(fset *token.FileSet, fileAST *ast.File, tf *token.File, line int) ast.Node {
	if line < 1 || line > tf.LineCount() {
		return nil
	}
	var found ast.Node
	ast.Inspect(fileAST, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		switch n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			if fset.Position(n.Pos()).Line == line {
				found = n
				return false
			}
		}
		return true
	})
	if found != nil {
		return found
	}

	pos := tf.LineStart(line)
	path, _ := astutil.PathEnclosingInterval(fileAST, pos, pos)
	for _, n := range path {
		switch n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			return n
		}
	}
	return nil
}
