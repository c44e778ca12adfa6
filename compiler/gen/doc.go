// Package gen provides code generation for tables inspected from a
// relational database.
//
// It turns load.Table values into a Graph of Types and Fields, deriving Go
// identifiers from the raw table and column names and mapping every column
// type to a Go type, and then emits one data-access file per table.
//
// # Architecture
//
// The code generation pipeline follows this flow:
//
//	Database (or snapshot file)
//	        ↓
//	   load.Table (compiler/load)
//	        ↓
//	   Graph (DeriveIdentifier + MapType)
//	        ↓
//	   MinimalDialect (compiler/gen/sql)
//	        ↓
//	   Generated code (<table>.go, tablegen.go, <table>_mock.go)
//
// # Key Types
//
//   - Graph: Holds all Type definitions together with the warnings collected
//     while building them
//   - Type: A table or view with its fields and primary key
//   - Field: A column with its identifier forms and Go type
//   - Config: Global configuration for code generation
//
// # Naming
//
// DeriveIdentifier folds a raw name into an upper-case initial form for
// exported identifiers and a lower-case initial form for parameters:
//
//	EMPLOYEE_ID    => EmployeeID, employeeID
//	lastName       => LastName, lastName
//	HTTPStatusCode => HTTPStatusCode, httpstatusCode
//
// Names that cannot be derived are sanitized and reported as warnings.
// Colliding names get a numeric suffix, also reported as a warning.
//
// # Error Handling
//
//   - ConfigError: invalid generator options
//   - SchemaError: tables that cannot be generated
//   - GenerationError: failures while rendering or writing a file
//
// Example error handling:
//
//	if err := sql.Generate(graph); err != nil {
//		var genErr *gen.GenerationError
//		if errors.As(err, &genErr) {
//			log.Printf("failed in phase %s: %s", genErr.Phase, genErr.File)
//		}
//	}
package gen
