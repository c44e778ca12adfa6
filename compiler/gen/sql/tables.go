package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// genTables generates tablegen.go.
func genTables(h gen.GeneratorHelper) *jen.File {
	f := h.NewFile(h.Pkg())
	nodes := h.Graph().Nodes
	if len(nodes) == 0 {
		return f
	}
	f.Comment("Names of the generated tables and views.")
	f.Const().DefsFunc(func(grp *jen.Group) {
		for _, t := range nodes {
			grp.Id(t.TableConst()).Op("=").Lit(t.Table)
		}
	})

	f.Comment("Tables lists every generated table and view, in name order.")
	f.Var().Id("Tables").Op("=").Index().String().ValuesFunc(func(grp *jen.Group) {
		for _, t := range nodes {
			grp.Id(t.TableConst())
		}
	})
	return f
}
