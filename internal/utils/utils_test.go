package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()

	_, ok := GetUserIDFromContext(ctx)
	assert.False(t, ok)
	assert.Equal(t, "", GetUserRoleFromContext(ctx))

	ctx = SetUserContext(ctx, "officer-1", RoleOfficer)
	id, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "officer-1", id)
	assert.Equal(t, RoleOfficer, GetUserRoleFromContext(ctx))

	_, ok = GetUserIDFromContext(SetUserContext(context.Background(), "", RoleAdmin))
	assert.False(t, ok)
}

func TestGenerateOrderNumber(t *testing.T) {
	re := regexp.MustCompile(`^ORD-\d{8}-\d{6}-\d{3}-\d{4}$`)

	a := GenerateOrderNumber()
	assert.Regexp(t, re, a)
}

func TestPointers(t *testing.T) {
	assert.Equal(t, "x", *StrPtr("x"))
	assert.Equal(t, "", PtrString(nil))
	assert.Equal(t, "y", PtrString(StrPtr("y")))
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "order not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "order not found", body["error"])
}
