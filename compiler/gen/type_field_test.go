package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		dialect  string
		raw      string
		nullable bool
		ident    string
		known    bool
	}{
		{"postgres", "boolean", false, "bool", true},
		{"postgres", "boolean", true, "sql.NullBool", true},
		{"postgres", "smallint", false, "int16", true},
		{"postgres", "integer", false, "int32", true},
		{"postgres", "integer", true, "sql.NullInt32", true},
		{"postgres", "bigserial", false, "int64", true},
		{"postgres", "real", false, "float32", true},
		{"postgres", "float", false, "float64", true},
		{"postgres", "float(10)", false, "float32", true},
		{"postgres", "double precision", true, "sql.NullFloat64", true},
		{"postgres", "numeric(12,2)", false, "string", true},
		{"postgres", "character varying(255)", true, "sql.NullString", true},
		{"postgres", "timestamp(6) with time zone", false, "time.Time", true},
		{"postgres", "timestamp without time zone", true, "sql.NullTime", true},
		{"postgres", "time without time zone", false, "string", true},
		{"postgres", "bytea", true, "[]byte", true},
		{"postgres", "jsonb", false, "json.RawMessage", true},
		{"postgres", "uuid", false, "uuid.UUID", true},
		{"postgres", "uuid", true, "uuid.NullUUID", true},
		{"postgres", "integer[]", false, "[]byte", false},
		{"postgres", "_int4", false, "[]byte", false},
		{"postgres", "geometry", false, "[]byte", false},
		{"postgres", "", false, "[]byte", false},
		{"pgx", "INTEGER", false, "int32", true},
		{"mysql", "tinyint(1)", false, "bool", true},
		{"mysql", "tinyint(4)", false, "int16", true},
		{"mysql", "tinyint unsigned", false, "int32", true},
		{"mysql", "int(11) unsigned", false, "int64", true},
		{"mysql", "bigint(20) unsigned zerofill", false, "int64", true},
		{"mysql", "float", false, "float32", true},
		{"mysql", "float(53)", false, "float64", true},
		{"mysql", "decimal(10,2)", true, "sql.NullString", true},
		{"mysql", "enum('a','b')", false, "string", true},
		{"mysql", "datetime(3)", false, "time.Time", true},
		{"mysql", "longblob", false, "[]byte", true},
		{"mysql", "json", true, "json.RawMessage", true},
		{"mysql", "point", false, "[]byte", false},
		{"sqlite", "INTEGER", false, "int64", true},
		{"sqlite", "TINYINT", true, "sql.NullInt64", true},
		{"sqlite", "VARCHAR(20)", false, "string", true},
		{"sqlite", "CLOB", false, "string", true},
		{"sqlite", "BLOB", false, "[]byte", true},
		{"sqlite", "", false, "[]byte", true},
		{"sqlite", "DOUBLE", false, "float64", true},
		{"sqlite", "DECIMAL(10,5)", false, "string", true},
		{"sqlite", "BOOLEAN", false, "bool", true},
		{"sqlite", "DATETIME", true, "sql.NullTime", true},
		{"sqlite", "uuid", false, "uuid.UUID", true},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.raw, func(t *testing.T) {
			info, known := MapType(tt.dialect, tt.raw, tt.nullable)
			assert.Equal(t, tt.ident, info.Ident)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestTypeInfo(t *testing.T) {
	info, _ := MapType("postgres", "text", true)
	assert.Equal(t, "NullString", info.Name())
	assert.Equal(t, sqlPkg, info.PkgPath)
	assert.False(t, info.Builtin())
	assert.True(t, info.Nullable)
	assert.False(t, info.Integer)

	info, _ = MapType("postgres", "bigint", false)
	assert.Equal(t, "int64", info.Name())
	assert.Equal(t, "int64", info.String())
	assert.True(t, info.Builtin())
	assert.True(t, info.Integer)

	info, _ = MapType("postgres", "bigint", true)
	assert.False(t, info.Integer, "nullable keys are never allocated")
}
