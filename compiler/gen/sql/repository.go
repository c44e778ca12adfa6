package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// genRepository generates the SQL implementation of the store interface.
func genRepository(h gen.GeneratorHelper, f *jen.File, t *gen.Type) {
	repo, r := t.RepositoryName(), t.Receiver()
	f.Commentf("%s implements %s on a client.", repo, t.StoreName())
	f.Type().Id(repo).Struct(
		jen.Id("client").Op("*").Qual(h.ClientPkg(), "Client"),
	)

	f.Commentf("New%s returns a %s using c.", repo, repo)
	f.Func().Id("New"+repo).Params(
		jen.Id("c").Op("*").Qual(h.ClientPkg(), "Client"),
	).Op("*").Id(repo).Block(
		jen.Return(jen.Op("&").Id(repo).Values(jen.Dict{jen.Id("client"): jen.Id("c")})),
	)

	genList(f, t, r)
	if !t.View {
		genInsert(h, f, t, r)
	}
	if t.Mutable() {
		genGet(h, f, t, r)
		genUpdate(h, f, t, r)
		genDelete(h, f, t, r)
	}
	f.Var().Id("_").Id(t.StoreName()).Op("=").Parens(jen.Op("*").Id(repo)).Parens(jen.Nil())
}

// method starts a method of the repository in f.
func method(f *jen.File, t *gen.Type, r string) *jen.Statement {
	return f.Func().Params(jen.Id(r).Op("*").Id(t.RepositoryName()))
}

// client returns the receiver's client selector.
func client(r string) *jen.Statement {
	return jen.Id(r).Dot("client")
}

// genList generates List. Tables with a primary key are ordered by it so
// pages are stable.
func genList(f *jen.File, t *gen.Type, r string) {
	f.Commentf("List returns up to limit %s rows starting at offset. A limit <= 0", t.Label())
	f.Comment("returns all remaining rows.")
	method(f, t, r).Id("List").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.List(jen.Id("limit"), jen.Id("offset")).Int(),
	).Params(jen.Index().Op("*").Id(t.Name), jen.Error()).BlockFunc(func(grp *jen.Group) {
		sel := client(r).Dot("Select").Call(jen.Id(t.ColumnsVar()).Op("...")).Dot("From").Call(jen.Id(t.TableConst()))
		if t.HasPrimaryKey() {
			cols := make([]jen.Code, len(t.PrimaryKey))
			for i, k := range t.PrimaryKey {
				cols[i] = jen.Lit(k.Column)
			}
			sel = sel.Dot("OrderBy").Call(cols...)
		}
		grp.Id("q").Op(":=").Add(sel)
		grp.If(jen.Id("limit").Op(">").Lit(0)).Block(jen.Id("q").Dot("Limit").Call(jen.Id("limit")))
		grp.If(jen.Id("offset").Op(">").Lit(0)).Block(jen.Id("q").Dot("Offset").Call(jen.Id("offset")))
		grp.Var().Id("res").Index().Op("*").Id(t.Name)
		grp.Err().Op(":=").Add(client(r)).Dot("Query").Call(
			jen.Id("ctx"),
			jen.Id("q"),
			jen.Func().Params(jen.Id("rows").Qual(sqlPkg, "ColumnScanner")).Error().Block(
				jen.List(jen.Id("v"), jen.Err()).Op(":=").Id(t.ScanFunc()).Call(jen.Id("rows")),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
				jen.Id("res").Op("=").Append(jen.Id("res"), jen.Id("v")),
				jen.Return(jen.Nil()),
			),
		)
		grp.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("tablegen: list "+t.Table+": %w"), jen.Err())),
		)
		grp.Return(jen.Id("res"), jen.Nil())
	})
}

// genInsert generates Insert. With the hilo feature a zero key is filled
// from the allocator of the table before the row is written.
func genInsert(h gen.GeneratorHelper, f *jen.File, t *gen.Type, r string) {
	f.Commentf("Insert adds v to %s.", t.Table)
	if t.HiLo() {
		id, _ := t.ID()
		f.Commentf("A zero %s is replaced by the next allocated ID.", id.Name)
	}
	method(f, t, r).Id("Insert").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("v").Op("*").Id(t.Name),
	).Error().BlockFunc(func(grp *jen.Group) {
		if t.HiLo() {
			id, _ := t.ID()
			assign := jen.Id("id")
			if id.Type.Ident != "int64" {
				assign = jen.Id(id.Type.Ident).Call(jen.Id("id"))
			}
			grp.If(jen.Id("v").Dot(id.Name).Op("==").Lit(0)).Block(
				jen.List(jen.Id("id"), jen.Err()).Op(":=").Add(client(r)).Dot("NextID").Call(jen.Id("ctx"), jen.Id(t.TableConst())),
				jen.If(jen.Err().Op("!=").Nil()).Block(
					jen.Return(mutationError(h, t, "insert")),
				),
				jen.Id("v").Dot(id.Name).Op("=").Add(assign),
			)
		}
		grp.Id("q").Op(":=").Add(client(r)).Dot("Insert").Call(jen.Id(t.TableConst())).
			Dot("Columns").Call(jen.Id(t.ColumnsVar()).Op("...")).
			Dot("Values").CallFunc(func(vals *jen.Group) {
			for _, fd := range t.Fields {
				vals.Id("v").Dot(fd.Name)
			}
		})
		grp.If(
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(client(r)).Dot("Exec").Call(jen.Id("ctx"), jen.Id("q")),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Return(mutationError(h, t, "insert")),
		)
		grp.Return(jen.Nil())
	})
}

// genGet generates Get.
func genGet(h gen.GeneratorHelper, f *jen.File, t *gen.Type, r string) {
	f.Commentf("Get returns the %s row with the given key.", t.Label())
	method(f, t, r).Id("Get").Params(keyParams(h, t)...).Params(jen.Op("*").Id(t.Name), jen.Error()).Block(
		jen.Id("q").Op(":=").Add(client(r)).Dot("Select").Call(jen.Id(t.ColumnsVar()).Op("...")).
			Dot("From").Call(jen.Id(t.TableConst())).
			Dot("Where").Call(keyPredicate(t, false)),
		jen.Var().Id("v").Op("*").Id(t.Name),
		jen.Err().Op(":=").Add(client(r)).Dot("Query").Call(
			jen.Id("ctx"),
			jen.Id("q"),
			jen.Func().Params(jen.Id("rows").Qual(sqlPkg, "ColumnScanner")).Params(jen.Err().Error()).Block(
				jen.List(jen.Id("v"), jen.Err()).Op("=").Id(t.ScanFunc()).Call(jen.Id("rows")),
				jen.Return(jen.Err()),
			),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("tablegen: get "+t.Table+": %w"), jen.Err())),
		),
		jen.If(jen.Id("v").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), notFound(h, t, false)),
		),
		jen.Return(jen.Id("v"), jen.Nil()),
	)
}

// genUpdate generates Update. Tables whose columns all belong to the key
// set the key to itself so a missing row is still detected.
func genUpdate(h gen.GeneratorHelper, f *jen.File, t *gen.Type, r string) {
	f.Commentf("Update writes the columns of v to the %s row with the key of v.", t.Label())
	fields := t.MutableFields()
	if len(fields) == 0 {
		fields = t.PrimaryKey
	}
	method(f, t, r).Id("Update").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("v").Op("*").Id(t.Name),
	).Error().BlockFunc(func(grp *jen.Group) {
		grp.Id("q").Op(":=").Add(client(r)).Dot("Update").Call(jen.Id(t.TableConst())).Do(func(s *jen.Statement) {
			for _, fd := range fields {
				s.Dot("Set").Call(jen.Lit(fd.Column), jen.Id("v").Dot(fd.Name))
			}
		}).Dot("Where").Call(keyPredicate(t, true))
		affected(grp, h, t, "update", true)
	})
}

// genDelete generates Delete.
func genDelete(h gen.GeneratorHelper, f *jen.File, t *gen.Type, r string) {
	f.Commentf("Delete removes the %s row with the given key.", t.Label())
	method(f, t, r).Id("Delete").Params(keyParams(h, t)...).Error().BlockFunc(func(grp *jen.Group) {
		grp.Id("q").Op(":=").Add(client(r)).Dot("Delete").Call(jen.Id(t.TableConst())).
			Dot("Where").Call(keyPredicate(t, false))
		affected(grp, h, t, "delete", false)
	})
}

// affected executes q and reports a NotFoundError when no row changed.
func affected(grp *jen.Group, h gen.GeneratorHelper, t *gen.Type, op string, fromValue bool) {
	grp.List(jen.Id("res"), jen.Err()).Op(":=").Add(client(t.Receiver())).Dot("Exec").Call(jen.Id("ctx"), jen.Id("q"))
	grp.If(jen.Err().Op("!=").Nil()).Block(
		jen.Return(mutationError(h, t, op)),
	)
	grp.List(jen.Id("n"), jen.Err()).Op(":=").Id("res").Dot("RowsAffected").Call()
	grp.If(jen.Err().Op("!=").Nil()).Block(
		jen.Return(mutationError(h, t, op)),
	)
	grp.If(jen.Id("n").Op("==").Lit(0)).Block(
		jen.Return(notFound(h, t, fromValue)),
	)
	grp.Return(jen.Nil())
}

func mutationError(h gen.GeneratorHelper, t *gen.Type, op string) jen.Code {
	return jen.Qual(h.TablegenPkg(), "NewMutationError").Call(jen.Id(t.TableConst()), jen.Lit(op), jen.Err())
}

func notFound(h gen.GeneratorHelper, t *gen.Type, fromValue bool) jen.Code {
	return jen.Qual(h.TablegenPkg(), "NewNotFoundError").Call(jen.Id(t.TableConst()), keyValue(t, fromValue))
}
