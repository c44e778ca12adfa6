package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/dialect/sql"
)

// prepare creates a sqlite database and a configuration file next to it,
// and returns the configuration path.
func prepare(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "hr.db")
	drv, err := sql.Open("sqlite", "file:"+db)
	require.NoError(t, err)
	ctx := context.Background()
	for _, s := range []string{
		`CREATE TABLE EMPLOYEES (EMPLOYEE_ID INTEGER NOT NULL PRIMARY KEY, LAST_NAME TEXT NOT NULL, MANAGER_ID INTEGER)`,
		`CREATE TABLE tags (name TEXT NOT NULL PRIMARY KEY)`,
		`CREATE VIEW managers AS SELECT EMPLOYEE_ID AS id, LAST_NAME AS name FROM EMPLOYEES WHERE MANAGER_ID IS NULL`,
		`INSERT INTO EMPLOYEES (EMPLOYEE_ID, LAST_NAME) VALUES (7, 'King'), (250, 'Kochhar')`,
	} {
		require.NoError(t, drv.Exec(ctx, s, []any{}, nil), s)
	}
	require.NoError(t, drv.Close())

	cfg := "database:\n  driver: sqlite\n  dsn: file:" + db + "\n" +
		"generate:\n  target: models\n  snapshot: schema/hr.yaml\n" + extra
	path := filepath.Join(dir, "tablegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCmd(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "init-counters")

	code, _, stderr = runCmd(t, "migrate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, `unknown command "migrate"`)

	code, _, _ = runCmd(t, "help")
	assert.Equal(t, exitOK, code)

	code, _, _ = runCmd(t, "generate", "-h")
	assert.Equal(t, exitOK, code)

	code, _, stderr = runCmd(t, "next-id", "-c", "missing.yaml")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "exactly one table name")
}

func TestRun_Counters(t *testing.T) {
	path := prepare(t, "hilo:\n  block_size: 100\n  metrics: true\n")

	code, stdout, stderr := runCmd(t, "init-counters", "-c", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "EMPLOYEES\tcreated\n", stdout, "views and text keys get no counter")

	code, stdout, _ = runCmd(t, "init-counters", "-c", path)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "EMPLOYEES\texists\n", stdout)

	code, stdout, stderr = runCmd(t, "next-id", "-c", path, "-n", "3", "EMPLOYEES")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "300\n301\n302\n", stdout, "allocation starts above the stored keys")
	assert.Contains(t, stderr, "metric=tablegen_hilo_ids_dispensed_total entity=EMPLOYEES value=3")

	code, stdout, stderr = runCmd(t, "next-id", "-c", path, "EMPLOYEES")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "400\n", stdout, "a new process reserves a new block")

	code, _, stderr = runCmd(t, "next-id", "-c", path, "tags")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "tags")
}

func TestRun_InspectAndGenerate(t *testing.T) {
	path := prepare(t, "")
	dir := filepath.Dir(path)

	code, stdout, stderr := runCmd(t, "inspect", "-c", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "wrote 3 tables to")

	s, err := load.ReadSnapshot(filepath.Join(dir, "schema", "hr.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.Dialect)
	require.Len(t, s.Tables, 3)

	code, stdout, stderr = runCmd(t, "inspect", "-c", path, "-check")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "No drift found")

	code, stdout, stderr = runCmd(t, "generate", "-c", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "generated 3 tables")
	for _, name := range []string{"tablegen.go", "employees.go", "tags.go", "managers.go"} {
		assert.FileExists(t, filepath.Join(dir, "models", name))
	}
	src, err := os.ReadFile(filepath.Join(dir, "models", "employees.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "NextID(ctx, TableEmployees)")

	drv, err := sql.Open("sqlite", "file:"+filepath.Join(dir, "hr.db"))
	require.NoError(t, err)
	require.NoError(t, drv.Exec(context.Background(), "DROP TABLE tags", []any{}, nil))
	require.NoError(t, drv.Close())

	code, _, stderr = runCmd(t, "inspect", "-c", path, "-check")
	assert.Equal(t, exitDrift, code)
	assert.Contains(t, stderr, "tags")

	code, _, stderr = runCmd(t, "inspect", "-c", path, "-check", "-allow-drop-table")
	assert.Equal(t, exitOK, code, stderr)
}

func TestRun_InspectStdout(t *testing.T) {
	path := prepare(t, "database:\n  driver: sqlite\n")
	// The duplicate key makes the file invalid.
	code, _, stderr := runCmd(t, "inspect", "-c", path)
	assert.Equal(t, exitError, code)
	assert.NotEmpty(t, stderr)

	path = prepare(t, "")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(data), "  snapshot: schema/hr.yaml\n", "", 1)), 0o644))
	code, stdout, stderr := runCmd(t, "inspect", "-c", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "name: EMPLOYEES")
	assert.Contains(t, stdout, "view: true")
}

func TestRun_Watch(t *testing.T) {
	path := prepare(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"watch", "-c", path, "-debounce", "10ms"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "generated 3 tables")
	assert.FileExists(t, filepath.Join(filepath.Dir(path), "models", "tablegen.go"))
}
