//go:build !wasm

package modelgen

import (
	"go/ast"
	"go/parser"
	"go/token"

	. "github.com/tinywasm/fmt"
)

type FieldInfo struct {
	Name        string
	ColumnName  string
	Type        FieldType
	Constraints Constraint
	Ref         string
	RefColumn   string
	IsPK        bool
	GoType      string
}

// SliceFieldInfo records a slice-of-struct field found in a parent struct.
// Not DB-mapped; used only for relation resolution.
type SliceFieldInfo struct {
	Name     string // e.g. "Roles"
	ElemType string // e.g. "Role"
}

type StructInfo struct {
	Name              string
	TableName         string
	PackageName       string
	Fields            []FieldInfo
	TableNameDeclared bool
	SourceFile        string
	SliceFields       []SliceFieldInfo // populated by ParseStruct; used by ResolveRelations
	Relations         []RelationInfo   // populated by ResolveRelations; used by GenerateForFile
}

// PrimaryKey returns the primary key field, or nil.
func (s StructInfo) PrimaryKey() *FieldInfo {
	for i := range s.Fields {
		if s.Fields[i].IsPK {
			return &s.Fields[i]
		}
	}
	return nil
}

// detectTableName scans the AST for func (X) TableName() string on structName.
// Returns the literal return value if found, "" otherwise.
func detectTableName(node *ast.File, structName string) string {
	for _, decl := range node.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
			continue
		}
		if funcDecl.Name.Name != "TableName" {
			continue
		}
		recvName := ""
		switch recv := funcDecl.Recv.List[0].Type.(type) {
		case *ast.Ident:
			recvName = recv.Name
		case *ast.StarExpr:
			if ident, ok := recv.X.(*ast.Ident); ok {
				recvName = ident.Name
			}
		}
		if recvName != structName {
			continue
		}
		if funcDecl.Body != nil && len(funcDecl.Body.List) == 1 {
			if ret, ok := funcDecl.Body.List[0].(*ast.ReturnStmt); ok && len(ret.Results) == 1 {
				if lit, ok := ret.Results[0].(*ast.BasicLit); ok {
					return Convert(lit.Value).TrimPrefix(`"`).TrimSuffix(`"`).String()
				}
			}
		}
	}
	return ""
}

// typeName renders the field type expressions the generator understands.
func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		if pkgIdent, ok := t.X.(*ast.Ident); ok {
			return pkgIdent.Name + "." + t.Sel.Name
		}
	case *ast.ArrayType:
		if eltIdent, ok := t.Elt.(*ast.Ident); ok && eltIdent.Name == "byte" {
			return "[]byte"
		}
	}
	return ""
}

func fieldTypeOf(goType string) (FieldType, bool) {
	switch goType {
	case "string":
		return TypeText, true
	case "int", "int32", "int64", "uint", "uint32", "uint64":
		return TypeInt64, true
	case "float32", "float64":
		return TypeFloat64, true
	case "bool":
		return TypeBool, true
	case "[]byte":
		return TypeBlob, true
	}
	return TypeText, false
}

// ParseStruct parses a single struct from a Go file and returns its metadata.
func (g *Generator) ParseStruct(structName string, goFile string) (StructInfo, error) {
	if structName == "" {
		return StructInfo{}, Err("Please provide a struct name")
	}
	if goFile == "" {
		return StructInfo{}, Err("goFile path cannot be empty")
	}

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, goFile, nil, parser.ParseComments)
	if err != nil {
		return StructInfo{}, Err(err, "Failed to parse file")
	}

	var targetStruct *ast.StructType
	ast.Inspect(node, func(n ast.Node) bool {
		if typeSpec, ok := n.(*ast.TypeSpec); ok && typeSpec.Name.Name == structName {
			if structType, ok := typeSpec.Type.(*ast.StructType); ok {
				targetStruct = structType
				return false
			}
		}
		return true
	})
	if targetStruct == nil {
		return StructInfo{}, Err("Struct not found in file")
	}

	tableName := detectTableName(node, structName)
	declared := tableName != ""
	if !declared {
		tableName = Convert(structName + "s").SnakeLow().String()
	}

	info := StructInfo{
		Name:              structName,
		TableName:         tableName,
		PackageName:       node.Name.Name,
		TableNameDeclared: declared,
	}

	pkFound := false
	for _, field := range targetStruct.Fields.List {
		if len(field.Names) == 0 {
			continue // embedded
		}

		fieldName := field.Names[0].Name
		if !ast.IsExported(fieldName) {
			continue
		}

		dbTag := ""
		if field.Tag != nil {
			tagVal := Convert(field.Tag.Value).TrimPrefix("`").TrimSuffix("`").String()
			for _, p := range Convert(tagVal).Split(" ") {
				if HasPrefix(p, "db:\"") {
					dbTag = Convert(p).TrimPrefix(`db:"`).TrimSuffix(`"`).String()
					break
				}
			}
		}
		if dbTag == "-" {
			continue
		}

		// []Struct fields only feed relation resolution
		if arr, ok := field.Type.(*ast.ArrayType); ok {
			if eltIdent, ok := arr.Elt.(*ast.Ident); ok && eltIdent.Name != "byte" {
				info.SliceFields = append(info.SliceFields, SliceFieldInfo{
					Name:     fieldName,
					ElemType: eltIdent.Name,
				})
				continue
			}
		}

		typeStr := typeName(field.Type)
		if typeStr == "time.Time" {
			g.log(Sprintf("Warning: time.Time not allowed for field %s.%s; use int64 unix seconds. Skipping.", structName, fieldName))
			continue
		}
		fieldType, ok := fieldTypeOf(typeStr)
		if !ok {
			g.log(Sprintf("Warning: unsupported type %s for field %s.%s; skipping. Add db:\"-\" to suppress.", typeStr, structName, fieldName))
			continue
		}

		colName := Convert(fieldName).SnakeLow().String()
		isID, isPK := IDorPrimaryKey(tableName, fieldName)

		constraints := ConstraintNone
		var ref, refCol string

		fieldIsPK := false
		if (isID || isPK) && !pkFound {
			fieldIsPK = true
			pkFound = true
			constraints |= ConstraintPK
		}

		if dbTag != "" {
			for _, p := range Convert(dbTag).Split(",") {
				switch {
				case p == "pk":
					if !fieldIsPK && !pkFound {
						constraints |= ConstraintPK
						fieldIsPK = true
						pkFound = true
					}
				case p == "unique":
					constraints |= ConstraintUnique
				case p == "not_null":
					constraints |= ConstraintNotNull
				case p == "autoincrement":
					if fieldType == TypeText {
						return StructInfo{}, Err("autoincrement not allowed on TypeText")
					}
					constraints |= ConstraintAutoIncrement
				case HasPrefix(p, "ref="):
					refParts := Convert(Convert(p).TrimPrefix("ref=").String()).Split(":")
					ref = refParts[0]
					if len(refParts) > 1 {
						refCol = refParts[1]
					}
				case HasPrefix(p, "column="):
					colName = Convert(p).TrimPrefix("column=").String()
				}
			}
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:        fieldName,
			ColumnName:  colName,
			Type:        fieldType,
			Constraints: constraints,
			Ref:         ref,
			RefColumn:   refCol,
			IsPK:        fieldIsPK,
			GoType:      typeStr,
		})
	}

	return info, nil
}
