package httputil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"zero uses default", 0, 50},
		{"negative uses default", -5, 50},
		{"in range passes through", 25, 25},
		{"above max is capped", 500, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampLimit(tt.limit, 50, 200))
		})
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/parts?limit=25&bad=xyz", nil)

	val, err := ParseQueryInt(r, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 25, val)

	val, err = ParseQueryInt(r, "missing", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, val)

	_, err = ParseQueryInt(r, "bad", 50)
	assert.Error(t, err)
}

func TestParsePathInt64(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/parts/42", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "42"})

	val, err := ParsePathInt64(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), val)

	_, err = ParsePathInt64(r, "missing")
	assert.Error(t, err)

	r = mux.SetURLVars(r, map[string]string{"id": "abc"})
	_, err = ParsePathInt64(r, "id")
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"LF3000"}`))
	require.NoError(t, ParseJSON(r, &dest))
	assert.Equal(t, "LF3000", dest.Name)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	assert.Error(t, ParseJSON(r, &dest))
}
