//go:build !wasm

package modelgen

import (
	"os"

	. "github.com/tinywasm/fmt"
)

const importPath = "github.com/tinywasm/fluentsql"

// scanExpr returns the expression converting the row value of column to the
// field's Go type. The field type picks the accessor; other Go types of the
// same family are converted from it.
func scanExpr(f FieldInfo) string {
	expr := Sprintf("r.Get(\"%s\")", f.ColumnName)
	native := "string"
	switch f.Type {
	case TypeInt64:
		expr, native = expr+".Int64()", "int64"
	case TypeFloat64:
		expr, native = expr+".Float64()", "float64"
	case TypeBool:
		expr, native = expr+".Bool()", "bool"
	case TypeBlob:
		expr, native = expr+".Bytes()", "[]byte"
	default:
		expr += ".String()"
	}
	if f.GoType != native {
		return Sprintf("%s(%s)", f.GoType, expr)
	}
	return expr
}

// columnsWith returns the fields carrying flag.
func columnsWith(info StructInfo, flag Constraint) []FieldInfo {
	var out []FieldInfo
	for _, f := range info.Fields {
		if f.Constraints.Has(flag) {
			out = append(out, f)
		}
	}
	return out
}

// requiredCheck returns the condition under which a not_null field counts as
// missing, or "" when every value of its type is valid.
func requiredCheck(f FieldInfo) string {
	switch f.Type {
	case TypeText:
		return Sprintf("m.%s == \"\"", f.Name)
	case TypeBlob:
		return Sprintf("len(m.%s) == 0", f.Name)
	}
	return ""
}

// GenerateForStruct reads goFile and generates the model implementation for structName.
func (g *Generator) GenerateForStruct(structName string, goFile string) error {
	info, err := g.ParseStruct(structName, goFile)
	if err != nil {
		return err
	}
	if len(info.Fields) == 0 {
		return nil
	}
	return g.GenerateForFile([]StructInfo{info}, goFile)
}

// GenerateForFile writes the model implementations of all infos into one file
// next to sourceFile.
func (g *Generator) GenerateForFile(infos []StructInfo, sourceFile string) error {
	if len(infos) == 0 {
		return nil
	}
	buf := Convert()

	buf.Write("// Code generated by fluentgen; DO NOT EDIT.\n")
	buf.Write("// NOTE: Columns() and Values() must always be in the same field order.\n")
	buf.Write(Sprintf("package %s\n\n", infos[0].PackageName))

	buf.Write("import (\n")
	buf.Write("\t\"context\"\n\n")
	buf.Write(Sprintf("\t\"%s\"\n", importPath))
	buf.Write(")\n\n")

	for _, info := range infos {
		if !info.TableNameDeclared {
			buf.Write(Sprintf("func (m *%s) TableName() string {\n", info.Name))
			buf.Write(Sprintf("\treturn \"%s\"\n", info.TableName))
			buf.Write("}\n\n")
		}

		if pk := info.PrimaryKey(); pk != nil {
			buf.Write(Sprintf("func (m *%s) PrimaryKey() string {\n", info.Name))
			buf.Write(Sprintf("\treturn \"%s\"\n", pk.ColumnName))
			buf.Write("}\n\n")
		}

		buf.Write(Sprintf("func (m *%s) Columns() []string {\n", info.Name))
		buf.Write("\treturn []string{\n")
		for _, f := range info.Fields {
			buf.Write(Sprintf("\t\t\"%s\",\n", f.ColumnName))
		}
		buf.Write("\t}\n")
		buf.Write("}\n\n")

		buf.Write(Sprintf("func (m *%s) Values() []any {\n", info.Name))
		buf.Write("\treturn []any{\n")
		for _, f := range info.Fields {
			buf.Write(Sprintf("\t\tm.%s,\n", f.Name))
		}
		buf.Write("\t}\n")
		buf.Write("}\n\n")

		if auto := columnsWith(info, ConstraintAutoIncrement); len(auto) > 0 {
			buf.Write(Sprintf("func (m *%s) AutoIncrement() []string {\n", info.Name))
			buf.Write("\treturn []string{")
			for i, f := range auto {
				if i > 0 {
					buf.Write(", ")
				}
				buf.Write(Sprintf("\"%s\"", f.ColumnName))
			}
			buf.Write("}\n")
			buf.Write("}\n\n")
		}

		var checks []FieldInfo
		for _, f := range columnsWith(info, ConstraintNotNull) {
			if requiredCheck(f) != "" {
				checks = append(checks, f)
			}
		}
		if len(checks) > 0 {
			buf.Write(Sprintf("func (m *%s) Validate() error {\n", info.Name))
			for _, f := range checks {
				buf.Write(Sprintf("\tif %s {\n", requiredCheck(f)))
				buf.Write(Sprintf("\t\treturn fluentsql.Required(\"%s\")\n", f.ColumnName))
				buf.Write("\t}\n")
			}
			buf.Write("\treturn nil\n")
			buf.Write("}\n\n")
		}

		buf.Write(Sprintf("func (m *%s) Scan(r fluentsql.Row) error {\n", info.Name))
		for _, f := range info.Fields {
			buf.Write(Sprintf("\tm.%s = %s\n", f.Name, scanExpr(f)))
		}
		buf.Write("\treturn nil\n")
		buf.Write("}\n\n")

		// Metadata Descriptors
		buf.Write(Sprintf("var %sMeta = struct {\n", info.Name))
		buf.Write("\tTableName string\n")
		for _, f := range info.Fields {
			buf.Write(Sprintf("\t%s string\n", f.Name))
		}
		buf.Write("\tUniqueColumns []string\n")
		buf.Write("}{\n")
		buf.Write(Sprintf("\tTableName: \"%s\",\n", info.TableName))
		for _, f := range info.Fields {
			buf.Write(Sprintf("\t%s: \"%s\",\n", f.Name, f.ColumnName))
		}
		if unique := columnsWith(info, ConstraintUnique); len(unique) > 0 {
			buf.Write("\tUniqueColumns: []string{")
			for i, f := range unique {
				if i > 0 {
					buf.Write(", ")
				}
				buf.Write(Sprintf("\"%s\"", f.ColumnName))
			}
			buf.Write("},\n")
		}
		buf.Write("}\n\n")

		// Typed Read Operations
		buf.Write(Sprintf("func ReadOne%s(ctx context.Context, db *fluentsql.DB) (*%s, error) {\n", info.Name, info.Name))
		buf.Write(Sprintf("\treturn fluentsql.ReadOne(ctx, db, func() *%s { return &%s{} })\n", info.Name, info.Name))
		buf.Write("}\n\n")

		buf.Write(Sprintf("func ReadAll%s(ctx context.Context, db *fluentsql.DB) ([]*%s, error) {\n", info.Name, info.Name))
		buf.Write(Sprintf("\treturn fluentsql.ReadAll(ctx, db, func() *%s { return &%s{} })\n", info.Name, info.Name))
		buf.Write("}\n\n")

		for _, rel := range info.Relations {
			buf.Write(Sprintf(
				"// %s retrieves all %s records for a given parent ID.\n"+
					"func %s(ctx context.Context, db *fluentsql.DB, parentID %s) ([]*%s, error) {\n"+
					"\treturn ReadAll%s(ctx, db.Where(%sMeta.%s, parentID))\n"+
					"}\n\n",
				rel.LoaderName, rel.ChildStruct,
				rel.LoaderName, rel.FKFieldType, rel.ChildStruct,
				rel.ChildStruct, rel.ChildStruct, rel.FKField,
			))
		}
	}

	return os.WriteFile(g.OutputFile(sourceFile), buf.Bytes(), 0644)
}
