//go:build !wasm

package modelgen

import (
	"sort"

	. "github.com/tinywasm/fmt"
)

// RelationInfo describes a one-to-many relation loader to generate.
type RelationInfo struct {
	ChildStruct string // e.g. "Role"
	FKField     string // e.g. "UserID"  (Go field name)
	FKColumn    string // e.g. "user_id" (column name)
	LoaderName  string // e.g. "ReadAllRoleByUserID"
	FKFieldType string // e.g. "string", "int64"
}

// ResolveRelations scans all parent SliceFields, finds the matching FK in the
// child struct, and appends a RelationInfo to the child's entry in the map.
func (g *Generator) ResolveRelations(all map[string]StructInfo) {
	var parentNames []string
	for parentName := range all {
		parentNames = append(parentNames, parentName)
	}
	sort.Strings(parentNames)

	for _, parentName := range parentNames {
		parentInfo := all[parentName]
		for _, sliceField := range parentInfo.SliceFields {
			childStructName := sliceField.ElemType
			childInfo, ok := all[childStructName]
			if !ok {
				g.log(Sprintf("Warning: relation field %s.%s points to unknown struct %s; skipping", parentName, sliceField.Name, childStructName))
				continue
			}

			fkField := findFKField(childInfo, parentInfo.TableName)
			if fkField == nil {
				g.log(Sprintf("Warning: no FK found in child %s pointing to parent table %s (from %s.%s); skipping relation loader", childStructName, parentInfo.TableName, parentName, sliceField.Name))
				continue
			}

			childInfo.Relations = append(childInfo.Relations, RelationInfo{
				ChildStruct: childStructName,
				FKField:     fkField.Name,
				FKColumn:    fkField.ColumnName,
				LoaderName:  Sprintf("ReadAll%sBy%s", childStructName, fkField.Name),
				FKFieldType: fkField.GoType,
			})
			all[childStructName] = childInfo
		}
	}
}

// findFKField returns the first field of child whose Ref matches parentTable.
func findFKField(child StructInfo, parentTable string) *FieldInfo {
	for i := range child.Fields {
		if child.Fields[i].Ref == parentTable {
			return &child.Fields[i]
		}
	}
	return nil
}
