// Package sql implements the SQL dialect code generator.
//
// It emits one Go file per inspected table or view using the Jennifer code
// generation library, plus a shared file with the table name constants.
//
// # Generated Output Structure
//
//	{output}/
//	├── tablegen.go       # Table name constants
//	├── {table}.go        # Row struct, scanner, store interface, repository
//	└── {table}_mock.go   # In-memory store (if FeatureMock enabled)
//
// # Repositories
//
// Every type gets a {Name}Store interface and a {Name}Repository that
// implements it on top of a *client.Client:
//
//   - Tables with a primary key: Get, List, Insert, Update, Delete
//   - Tables without a primary key: List, Insert
//   - Views: List
//
// Insert fills a zero single-column integer key through client.NextID when
// the hilo feature is enabled. Get, Update and Delete report a missing row
// with a *tablegen.NotFoundError; failing writes are wrapped in a
// *tablegen.MutationError.
//
// # Usage
//
//	graph, err := gen.NewGraph(cfg, tables...)
//	if err != nil {
//		return err
//	}
//	if err := sql.Generate(graph); err != nil {
//		return err
//	}
package sql
