//go:build !wasm

// Package modelgen generates fluentsql Model and RowScanner implementations
// from plain Go structs.
package modelgen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	. "github.com/tinywasm/fmt"
)

// Generator is the code generator behind the fluentgen tool.
type Generator struct {
	logFn   func(messages ...any)
	rootDir string
	suffix  string
}

// New creates a Generator with rootDir defaulting to ".".
func New() *Generator {
	return &Generator{rootDir: ".", suffix: "_fluent.go"}
}

// SetLog sets the log function for warnings and informational messages.
// If not set, messages are silently discarded.
func (g *Generator) SetLog(fn func(messages ...any)) {
	g.logFn = fn
}

// SetRootDir sets the root directory that Run() will scan.
func (g *Generator) SetRootDir(dir string) {
	g.rootDir = dir
}

// OutputFile returns the generated file name for sourceFile.
func (g *Generator) OutputFile(sourceFile string) string {
	return Convert(sourceFile).TrimSuffix(".go").String() + g.suffix
}

func (g *Generator) log(messages ...any) {
	if g.logFn != nil {
		g.logFn(messages...)
	}
}

// collectAllStructs walks rootDir and returns every parsed StructInfo keyed
// by struct name, with struct and file discovery order.
func (g *Generator) collectAllStructs() (map[string]StructInfo, []string, []string, error) {
	all := make(map[string]StructInfo)
	var structOrder []string
	var fileOrder []string
	fileSeen := make(map[string]bool)

	err := filepath.Walk(g.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			dirName := info.Name()
			if dirName == "vendor" || dirName == ".git" || dirName == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}

		fileName := info.Name()
		if fileName != "model.go" && fileName != "models.go" {
			return nil
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			g.log(Sprintf("Skipping unparseable file %s: %v", path, err))
			return nil
		}

		for _, decl := range node.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}
			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if _, ok := typeSpec.Type.(*ast.StructType); !ok {
					continue
				}
				info, err := g.ParseStruct(typeSpec.Name.Name, path)
				if err != nil {
					g.log(Sprintf("Skipping %s in %s: %v", typeSpec.Name.Name, path, err))
					continue
				}
				if len(info.Fields) == 0 {
					g.log(Sprintf("Warning: %s has no mappable fields; skipping", typeSpec.Name.Name))
					continue
				}
				info.SourceFile = path
				all[info.Name] = info
				structOrder = append(structOrder, info.Name)
				if !fileSeen[path] {
					fileSeen[path] = true
					fileOrder = append(fileOrder, path)
				}
			}
		}
		return nil
	})

	return all, structOrder, fileOrder, err
}

// generateAll writes one output file per source file.
func (g *Generator) generateAll(all map[string]StructInfo, structOrder []string, fileOrder []string) error {
	byFile := make(map[string][]StructInfo)
	for _, structName := range structOrder {
		info := all[structName]
		byFile[info.SourceFile] = append(byFile[info.SourceFile], info)
	}

	for _, sourceFile := range fileOrder {
		if infos := byFile[sourceFile]; len(infos) > 0 {
			if err := g.GenerateForFile(infos, sourceFile); err != nil {
				return Err(err, "writing output for", sourceFile)
			}
		}
	}
	return nil
}

// Run is the entry point for the CLI tool.
func (g *Generator) Run() error {
	// Pass 1: collect all structs across all model files
	all, structOrder, fileOrder, err := g.collectAllStructs()
	if err != nil {
		return Err(err, "error walking directory")
	}
	if len(all) == 0 {
		return Err("no models found")
	}

	// Pass 2: resolve cross-struct relations
	g.ResolveRelations(all)

	// Pass 3: generate
	return g.generateAll(all, structOrder, fileOrder)
}
