package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen"
)

func TestDeriveIdentifier(t *testing.T) {
	tests := []struct {
		raw   string
		upper string
		lower string
	}{
		// shouting case
		{"EMPLOYEE_ID", "EmployeeID", "employeeID"},
		{"EMPLOYEES", "Employees", "employees"},
		{"LAST_NAME", "LastName", "lastName"},
		{"ADDRESS_LINE_2", "AddressLine2", "addressLine2"},
		{"A__B", "AB", "aB"},
		{"TRAILING_", "Trailing", "trailing"},
		{"EMPLOYEEID", "Employeeid", "employeeid"},
		{"X", "X", "x"},
		{"PARENT_ID_", "ParentID", "parentID"},
		// acronym prefix
		{"HTTPStatusCode", "HTTPStatusCode", "httpstatusCode"},
		{"IDNumber", "IDNumber", "idnumber"},
		{"URLs", "URLs", "urls"},
		{"ABc", "ABc", "abc"},
		{"SQL2Json", "SQL2Json", "sql2json"},
		// ordinary mixed case
		{"lastName", "LastName", "lastName"},
		{"employeeId", "EmployeeId", "employeeId"},
		{"EmployeeId", "EmployeeId", "employeeId"},
		{"last_name", "Last_name", "last_name"},
		{"a", "A", "a"},
		// id override
		{"ID", "ID", "id"},
		{"id", "ID", "id"},
		{"Id", "ID", "id"},
		{"iD", "ID", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := DeriveIdentifier(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, Identifier{Upper: tt.upper, Lower: tt.lower}, got)
		})
	}
}

func TestDeriveIdentifier_InvalidFallsBackToRaw(t *testing.T) {
	tests := []struct {
		raw    string
		reason string
	}{
		{"2bad-name", "must start with an ASCII letter"},
		{"", "empty"},
		{"_hidden", "must start with an ASCII letter"},
		{"bad-name", `invalid character '-' at offset 3`},
		{"naïve", "invalid character"},
		{"with space", "invalid character ' '"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := DeriveIdentifier(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tablegen.ErrNameDerivation)
			var nerr *tablegen.NameError
			require.ErrorAs(t, err, &nerr)
			assert.Equal(t, tt.raw, nerr.Raw)
			assert.Contains(t, nerr.Reason, tt.reason)
			assert.Equal(t, Identifier{Upper: tt.raw, Lower: tt.raw}, got)
		})
	}
}

func TestDeriveIdentifier_Deterministic(t *testing.T) {
	for _, raw := range []string{"EMPLOYEE_ID", "HTTPStatusCode", "lastName", "2bad-name"} {
		a, errA := DeriveIdentifier(raw)
		b, errB := DeriveIdentifier(raw)
		assert.Equal(t, a, b)
		assert.Equal(t, errA, errB)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want nameClass
	}{
		{"EMPLOYEE_ID", shoutingCase},
		{"A1_2", shoutingCase},
		{"HTTPStatusCode", acronymPrefixed},
		{"Http", ordinaryMixed},
		{"lastName", ordinaryMixed},
		{"aBC", ordinaryMixed},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.raw))
			assert.NotEmpty(t, tt.want.String())
		})
	}
}

func TestFoldAcronym(t *testing.T) {
	for raw, want := range map[string]string{
		"HTTPStatusCode": "HttpstatusCode",
		"URLs":           "Urls",
		"IDNumber":       "Idnumber",
		"ABc":            "Abc",
		"Ab":             "Ab",
		"ABC":            "ABC",
	} {
		assert.Equal(t, want, foldAcronym(raw), raw)
	}
}
