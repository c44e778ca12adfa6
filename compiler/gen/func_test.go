package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Username", "username"},
		{"FullName", "full_name"},
		{"HTTPCode", "http_code"},
		{"UserID", "user_id"},
		{"XMLParser", "xml_parser"},
		{"getHTTPResponse", "get_http_response"},
		{"already_snake", "already_snake"},
		{"A", "a"},
		{"AB", "ab"},
		{"ABC", "abc"},
		{"", ""},
		{"userInfo", "user_info"},
		{"PHBOrg", "phb_org"},
		{"UserIDs", "user_ids"},
		{"EmployeeID", "employee_id"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := snake(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestReceiver(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"User", "u"},
		{"UserQuery", "uq"},
		{"[]User", "u"},
		{"[1]User", "u"},
		{"*User", "u"},
		{"HTTPClient", "hc"},
		{"A", "a"},
		{"Query", "q_"},
		{"FuncTable", "ft"},
		{"Go", "g"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := receiver(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"User", "Users"},
		{"Category", "Categories"},
		{"Employee", "Employees"},
		{"Series", "SeriesSlice"}, // uncountable
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := plural(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Employee Addresses", title("employee_addresses"))
	assert.Equal(t, "Employee Id", title("EmployeeID"))
	assert.Equal(t, "Last Name", title("LAST__NAME"))
}

func TestEscapeKeyword(t *testing.T) {
	assert.Equal(t, "type_", escapeKeyword("type"))
	assert.Equal(t, "range_", escapeKeyword("range"))
	assert.Equal(t, "ctx_", escapeKeyword("ctx"))
	assert.Equal(t, "lastName", escapeKeyword("lastName"))
}
