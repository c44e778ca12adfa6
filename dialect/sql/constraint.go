package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Constraint is the kind of a violated database constraint.
type Constraint int

// Constraint kinds.
const (
	NoConstraint Constraint = iota
	UniqueConstraint
	ForeignKeyConstraint
	CheckConstraint
)

// String implements the fmt.Stringer interface.
func (c Constraint) String() string {
	switch c {
	case UniqueConstraint:
		return "unique"
	case ForeignKeyConstraint:
		return "foreign key"
	case CheckConstraint:
		return "check"
	default:
		return "none"
	}
}

// Implemented by pgconn.PgError.
type sqlStateError interface {
	SQLState() string
}

// constraints maps the SQLSTATE codes, MySQL error numbers and message
// fragments of constraint violations to their kind.
var constraints = []struct {
	kind     Constraint
	state    string
	numbers  []uint16
	messages []string
}{
	{UniqueConstraint, "23505", []uint16{1062}, []string{"Error 1062", "violates unique constraint", "UNIQUE constraint failed"}},
	{ForeignKeyConstraint, "23503", []uint16{1451, 1452}, []string{"Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"}},
	{CheckConstraint, "23514", []uint16{3819}, []string{"Error 3819", "violates check constraint", "CHECK constraint failed"}},
}

// ConstraintOf returns the kind of constraint err reports as violated.
// Driver error types are inspected first and the message is matched for
// drivers that expose no code.
func ConstraintOf(err error) Constraint {
	if err == nil {
		return NoConstraint
	}
	var (
		state  string
		number uint16
	)
	var (
		pqErr    *pq.Error
		mysqlErr *mysql.MySQLError
	)
	switch {
	case errors.As(err, &pqErr):
		state = string(pqErr.Code)
	case errors.As(err, &mysqlErr):
		number = mysqlErr.Number
	default:
		if e, ok := asError[sqlStateError](err); ok {
			state = e.SQLState()
		}
	}
	msg := err.Error()
	for _, c := range constraints {
		if state != "" && state == c.state {
			return c.kind
		}
		for _, n := range c.numbers {
			if number == n {
				return c.kind
			}
		}
		for _, m := range c.messages {
			if strings.Contains(msg, m) {
				return c.kind
			}
		}
	}
	return NoConstraint
}

// IsConstraintError reports whether err is a constraint violation.
func IsConstraintError(err error) bool { return ConstraintOf(err) != NoConstraint }

// IsUniqueConstraintError reports whether err is a uniqueness violation,
// e.g. a duplicate primary key.
func IsUniqueConstraintError(err error) bool { return ConstraintOf(err) == UniqueConstraint }

// IsForeignKeyConstraintError reports whether err is a foreign key violation.
func IsForeignKeyConstraintError(err error) bool { return ConstraintOf(err) == ForeignKeyConstraint }

// IsCheckConstraintError reports whether err is a check constraint violation.
func IsCheckConstraintError(err error) bool { return ConstraintOf(err) == CheckConstraint }

// asError returns the first error in the chain implementing T.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}
