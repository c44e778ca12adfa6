package gen

import (
	"strings"

	"github.com/syssam/tablegen/dialect"
)

// Import paths used by mapped field types.
const (
	sqlPkg  = "github.com/syssam/tablegen/dialect/sql"
	jsonPkg = "encoding/json"
	timePkg = "time"
	uuidPkg = "github.com/google/uuid"
)

// TypeInfo holds the Go type a column is mapped to.
type TypeInfo struct {
	// Ident is the Go spelling of the type, e.g. "int64" or "sql.NullString".
	Ident string
	// PkgPath is the import path of the type. Empty for builtin types.
	PkgPath string
	// Integer reports if the type is a non-null Go integer.
	Integer bool
	// Nullable reports if the type can represent NULL.
	Nullable bool
}

// Name returns the unqualified type name.
//
//	sql.NullString => NullString
//	[]byte         => []byte
func (t TypeInfo) Name() string {
	if i := strings.LastIndexByte(t.Ident, '.'); i >= 0 {
		return t.Ident[i+1:]
	}
	return t.Ident
}

// String implements the fmt.Stringer interface.
func (t TypeInfo) String() string { return t.Ident }

// Builtin reports if the type needs no import.
func (t TypeInfo) Builtin() bool { return t.PkgPath == "" }

// the mapped kinds before nullability is applied.
type kind uint8

const (
	kindUnknown kind = iota
	kindBool
	kindInt16
	kindInt32
	kindInt64
	kindFloat32
	kindFloat64
	kindString
	kindTime
	kindBytes
	kindJSON
	kindUUID
)

var (
	nonNull = [...]TypeInfo{
		kindUnknown: {Ident: "[]byte", Nullable: true},
		kindBool:    {Ident: "bool"},
		kindInt16:   {Ident: "int16", Integer: true},
		kindInt32:   {Ident: "int32", Integer: true},
		kindInt64:   {Ident: "int64", Integer: true},
		kindFloat32: {Ident: "float32"},
		kindFloat64: {Ident: "float64"},
		kindString:  {Ident: "string"},
		kindTime:    {Ident: "time.Time", PkgPath: timePkg},
		kindBytes:   {Ident: "[]byte", Nullable: true},
		kindJSON:    {Ident: "json.RawMessage", PkgPath: jsonPkg, Nullable: true},
		kindUUID:    {Ident: "uuid.UUID", PkgPath: uuidPkg},
	}
	null = [...]TypeInfo{
		kindUnknown: {Ident: "[]byte", Nullable: true},
		kindBool:    {Ident: "sql.NullBool", PkgPath: sqlPkg, Nullable: true},
		kindInt16:   {Ident: "sql.NullInt16", PkgPath: sqlPkg, Nullable: true},
		kindInt32:   {Ident: "sql.NullInt32", PkgPath: sqlPkg, Nullable: true},
		kindInt64:   {Ident: "sql.NullInt64", PkgPath: sqlPkg, Nullable: true},
		kindFloat32: {Ident: "sql.NullFloat64", PkgPath: sqlPkg, Nullable: true},
		kindFloat64: {Ident: "sql.NullFloat64", PkgPath: sqlPkg, Nullable: true},
		kindString:  {Ident: "sql.NullString", PkgPath: sqlPkg, Nullable: true},
		kindTime:    {Ident: "sql.NullTime", PkgPath: sqlPkg, Nullable: true},
		kindBytes:   {Ident: "[]byte", Nullable: true},
		kindJSON:    {Ident: "json.RawMessage", PkgPath: jsonPkg, Nullable: true},
		kindUUID:    {Ident: "uuid.NullUUID", PkgPath: uuidPkg, Nullable: true},
	}
)

// kinds maps the base type names of Postgres and MySQL.
var kinds = map[string]kind{
	"bool":    kindBool,
	"boolean": kindBool,

	"smallint":    kindInt16,
	"int2":        kindInt16,
	"smallserial": kindInt16,
	"serial2":     kindInt16,
	"tinyint":     kindInt16,
	"year":        kindInt16,

	"int":       kindInt32,
	"integer":   kindInt32,
	"int4":      kindInt32,
	"mediumint": kindInt32,
	"serial":    kindInt32,
	"serial4":   kindInt32,

	"bigint":    kindInt64,
	"int8":      kindInt64,
	"bigserial": kindInt64,
	"serial8":   kindInt64,

	"real":   kindFloat32,
	"float4": kindFloat32,
	"float":  kindFloat32,

	"double":           kindFloat64,
	"double precision": kindFloat64,
	"float8":           kindFloat64,

	// Exact numerics are kept as their decimal text.
	"numeric": kindString,
	"decimal": kindString,
	"dec":     kindString,
	"fixed":   kindString,
	"money":   kindString,

	"char":              kindString,
	"character":         kindString,
	"bpchar":            kindString,
	"nchar":             kindString,
	"varchar":           kindString,
	"nvarchar":          kindString,
	"character varying": kindString,
	"text":              kindString,
	"tinytext":          kindString,
	"mediumtext":        kindString,
	"longtext":          kindString,
	"citext":            kindString,
	"name":              kindString,
	"enum":              kindString,
	"set":               kindString,
	"inet":              kindString,
	"cidr":              kindString,
	"macaddr":           kindString,
	"macaddr8":          kindString,
	"interval":          kindString,
	"xml":               kindString,
	"tsvector":          kindString,
	"tsquery":           kindString,

	// Time of day has no date part and is read as text.
	"time":                   kindString,
	"timetz":                 kindString,
	"time with time zone":    kindString,
	"time without time zone": kindString,

	"date":                        kindTime,
	"datetime":                    kindTime,
	"timestamp":                   kindTime,
	"timestamptz":                 kindTime,
	"timestamp with time zone":    kindTime,
	"timestamp without time zone": kindTime,

	"bytea":       kindBytes,
	"blob":        kindBytes,
	"tinyblob":    kindBytes,
	"mediumblob":  kindBytes,
	"longblob":    kindBytes,
	"binary":      kindBytes,
	"varbinary":   kindBytes,
	"bit":         kindBytes,
	"bit varying": kindBytes,
	"varbit":      kindBytes,

	"json":  kindJSON,
	"jsonb": kindJSON,

	"uuid": kindUUID,
}

// MapType maps a raw column type of the given dialect to its Go type.
// Types that cannot be mapped, including spatial types, are read as raw
// bytes and reported with known set to false.
//
//	integer, not null      => int32
//	varchar(255), null     => sql.NullString
//	timestamptz            => time.Time
//	tinyint(1)             => bool (MySQL)
//	geometry               => []byte, false
func MapType(dialectName, raw string, nullable bool) (info TypeInfo, known bool) {
	k := classifyType(dialect.Normalize(dialectName), raw)
	if nullable {
		info = null[k]
	} else {
		info = nonNull[k]
	}
	return info, k != kindUnknown
}

func classifyType(d, raw string) kind {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		if d == dialect.SQLite {
			return kindBytes
		}
		return kindUnknown
	}
	if strings.HasSuffix(t, "[]") || strings.HasPrefix(t, "_") {
		return kindUnknown
	}
	if d == dialect.SQLite {
		return sqliteAffinity(t)
	}
	unsigned := strings.Contains(t, "unsigned")
	for _, w := range []string{"unsigned", "zerofill"} {
		t = strings.TrimSpace(strings.ReplaceAll(t, w, ""))
	}
	switch t {
	case "tinyint(1)", "bit(1)":
		return kindBool
	}
	base, params := t, ""
	if i := strings.IndexByte(t, '('); i >= 0 {
		base = strings.TrimSpace(t[:i])
		if j := strings.IndexByte(t[i:], ')'); j > 0 {
			params = t[i+1 : i+j]
			base = strings.TrimSpace(base + " " + strings.TrimSpace(t[i+j+1:]))
		}
	}
	k, ok := kinds[base]
	if !ok {
		return kindUnknown
	}
	switch {
	case d == dialect.Postgres && base == "float":
		// float(p) with p > 24 and a bare float are double precision.
		if params == "" || atoi(params) > 24 {
			return kindFloat64
		}
	case d == dialect.MySQL && base == "float" && atoi(params) > 24:
		return kindFloat64
	case unsigned:
		// Widen so that the full unsigned range fits.
		switch k {
		case kindInt16:
			return kindInt32
		case kindInt32:
			return kindInt64
		}
	}
	return k
}

// sqliteAffinity follows the column affinity rules of SQLite, with the
// declared types the driver converts on scan handled first.
func sqliteAffinity(t string) kind {
	base := t
	if i := strings.IndexByte(t, '('); i >= 0 {
		base = strings.TrimSpace(t[:i])
	}
	switch base {
	case "bool", "boolean":
		return kindBool
	case "date", "datetime", "timestamp":
		return kindTime
	case "json", "jsonb":
		return kindJSON
	case "uuid":
		return kindUUID
	}
	switch {
	case strings.Contains(t, "int"):
		return kindInt64
	case strings.Contains(t, "char"), strings.Contains(t, "clob"), strings.Contains(t, "text"):
		return kindString
	case strings.Contains(t, "blob"):
		return kindBytes
	case strings.Contains(t, "real"), strings.Contains(t, "floa"), strings.Contains(t, "doub"):
		return kindFloat64
	default:
		return kindString
	}
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s) && isDigit(s[i]); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
