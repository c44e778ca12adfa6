// Package main implements the tablegen CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
	// exitDrift is returned by inspect -check when the database no longer
	// matches the snapshot.
	exitDrift = 3
)

type command struct {
	usage string
	run   func(ctx context.Context, env *env, args []string) error
}

var commands = map[string]command{
	"generate":      {"generate repositories from the database or a snapshot", runGenerate},
	"inspect":       {"write a schema snapshot, or check it against the database", runInspect},
	"watch":         {"regenerate when the configuration or snapshot changes", runWatch},
	"init-counters": {"create the counter table and seed a counter per table", runInitCounters},
	"next-id":       {"allocate identifiers for a table", runNextID},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}
	cmd, ok := commands[args[0]]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "tablegen: unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}
	e := &env{name: args[0], stdout: stdout, stderr: stderr}
	err := cmd.run(ctx, e, args[1:])
	if e.closer != nil {
		_ = e.closer.Close()
	}
	var drift *driftError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.As(err, &drift):
		_, _ = fmt.Fprintln(stderr, err.Error())
		return exitDrift
	case errors.As(err, new(usageError)):
		_, _ = fmt.Fprintln(stderr, err.Error())
		return exitUsage
	default:
		_, _ = fmt.Fprintln(stderr, err.Error())
		return exitError
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: tablegen <command> [flags]")
	_, _ = fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].usage)
	}
	_, _ = fmt.Fprintln(w, "\nrun 'tablegen <command> -h' for the flags of a command")
}

// usageError reports invalid command line arguments.
type usageError string

func (e usageError) Error() string { return "tablegen: " + string(e) }
