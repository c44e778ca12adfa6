package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// genEntity generates the file of one table ({table}.go).
func genEntity(h gen.GeneratorHelper, t *gen.Type) *jen.File {
	f := h.NewFile(h.Pkg())
	genStruct(h, f, t)
	genColumns(f, t)
	genScan(f, t)
	genStore(h, f, t)
	genRepository(h, f, t)
	return f
}

// genStruct generates the row struct.
func genStruct(h gen.GeneratorHelper, f *jen.File, t *gen.Type) {
	kind := "table"
	if t.View {
		kind = "view"
	}
	f.Commentf("%s is a row of the %s %s.", t.Name, t.Table, kind)
	if t.Comment != "" {
		f.Comment("")
		f.Comment(t.Comment)
	}
	f.Type().Id(t.Name).StructFunc(func(grp *jen.Group) {
		for _, fd := range t.Fields {
			grp.Id(fd.Name).Add(h.GoType(fd)).Tag(h.StructTags(fd))
		}
	})
}

// genColumns generates the column list in table order. Scan and Insert
// follow the same order.
func genColumns(f *jen.File, t *gen.Type) {
	f.Commentf("%s lists the columns of %s in table order.", t.ColumnsVar(), t.Table)
	f.Var().Id(t.ColumnsVar()).Op("=").Index().String().ValuesFunc(func(grp *jen.Group) {
		for _, fd := range t.Fields {
			grp.Lit(fd.Column)
		}
	})
}

// genScan generates the function that scans one row.
func genScan(f *jen.File, t *gen.Type) {
	f.Commentf("%s scans a row selected with %s.", t.ScanFunc(), t.ColumnsVar())
	f.Func().Id(t.ScanFunc()).Params(
		jen.Id("rows").Qual(sqlPkg, "ColumnScanner"),
	).Params(jen.Op("*").Id(t.Name), jen.Error()).Block(
		jen.Id("v").Op(":=").Op("&").Id(t.Name).Values(),
		jen.If(
			jen.Err().Op(":=").Id("rows").Dot("Scan").CallFunc(func(grp *jen.Group) {
				for _, fd := range t.Fields {
					grp.Add(scanDest(fd))
				}
			}),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id("v"), jen.Nil()),
	)
}

// scanDest returns the scan destination of a field. A NULL cannot be
// scanned into a json.RawMessage, so those fields are scanned through
// their underlying byte slice.
func scanDest(fd *gen.Field) jen.Code {
	if fd.Type.Ident == "json.RawMessage" {
		return jen.Parens(jen.Op("*").Index().Byte()).Parens(jen.Op("&").Id("v").Dot(fd.Name))
	}
	return jen.Op("&").Id("v").Dot(fd.Name)
}

// genStore generates the store interface.
func genStore(h gen.GeneratorHelper, f *jen.File, t *gen.Type) {
	f.Commentf("%s is the data access interface of %s.", t.StoreName(), t.Table)
	f.Type().Id(t.StoreName()).InterfaceFunc(func(grp *jen.Group) {
		grp.Comment("List returns up to limit rows starting at offset. A limit <= 0 returns")
		grp.Comment("all remaining rows.")
		grp.Id("List").Params(
			jen.Id("ctx").Qual("context", "Context"),
			jen.List(jen.Id("limit"), jen.Id("offset")).Int(),
		).Params(jen.Index().Op("*").Id(t.Name), jen.Error())
		if t.View {
			return
		}
		grp.Commentf("Insert adds v to the %s table.", t.Table)
		grp.Id("Insert").Params(
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("v").Op("*").Id(t.Name),
		).Error()
		if !t.Mutable() {
			return
		}
		grp.Comment("Get returns the row with the given key.")
		grp.Id("Get").Params(keyParams(h, t)...).Params(jen.Op("*").Id(t.Name), jen.Error())
		grp.Comment("Update replaces the row with the key of v.")
		grp.Id("Update").Params(
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("v").Op("*").Id(t.Name),
		).Error()
		grp.Comment("Delete removes the row with the given key.")
		grp.Id("Delete").Params(keyParams(h, t)...).Error()
	})
}

// keyParams returns the context parameter followed by the key parameters.
func keyParams(h gen.GeneratorHelper, t *gen.Type) []jen.Code {
	params := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
	for _, k := range t.PrimaryKey {
		params = append(params, jen.Id(k.Param()).Add(h.GoType(k)))
	}
	return params
}

// keyPredicate returns the predicate matching the primary key. The values
// are the key parameters, or the key fields of v when fromValue is set.
func keyPredicate(t *gen.Type, fromValue bool) jen.Code {
	eqs := make([]jen.Code, len(t.PrimaryKey))
	for i, k := range t.PrimaryKey {
		val := jen.Id(k.Param())
		if fromValue {
			val = jen.Id("v").Dot(k.Name)
		}
		eqs[i] = jen.Qual(sqlPkg, "EQ").Call(jen.Lit(k.Column), val)
	}
	if len(eqs) == 1 {
		return eqs[0]
	}
	return jen.Qual(sqlPkg, "And").Call(eqs...)
}

// keyValue returns the id reported by a NotFoundError.
func keyValue(t *gen.Type, fromValue bool) jen.Code {
	vals := make([]jen.Code, len(t.PrimaryKey))
	for i, k := range t.PrimaryKey {
		if fromValue {
			vals[i] = jen.Id("v").Dot(k.Name)
		} else {
			vals[i] = jen.Id(k.Param())
		}
	}
	if len(vals) == 1 {
		return vals[0]
	}
	return jen.Index().Any().Values(vals...)
}

const sqlPkg = "github.com/syssam/tablegen/dialect/sql"
