package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func runHandleError(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/leads", nil)

	HandleError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{"not found", CreateNotFoundError("Lead"), http.StatusNotFound, "message", "Lead not found"},
		{"unauthorized", CreateUnauthorizedError("Token is not valid"), http.StatusUnauthorized, "message", "Token is not valid"},
		{"internal hides cause", CreateInternalError(errors.New("connection refused")), http.StatusInternalServerError, "message", "Server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "message", "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := runHandleError(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
			assert.NotContains(t, body, "details")
		})
	}
}

func TestHandleError_Validation(t *testing.T) {
	status, body := runHandleError(t, CreateValidationError(
		FieldError{Msg: "Name is required", Param: "name", Location: "body"},
	))

	assert.Equal(t, http.StatusBadRequest, status)
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "Name is required", first["msg"])
	assert.Equal(t, "name", first["param"])
}

func TestHandleError_ForbiddenDetails(t *testing.T) {
	status, body := runHandleError(t, CreateForbiddenError("Not authorized to view this lead", map[string]interface{}{
		"userId":     "u1",
		"assignedTo": "u2",
	}))

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Not authorized to view this lead", body["message"])
	details := body["details"].(map[string]interface{})
	assert.Equal(t, "u1", details["userId"])
	assert.Equal(t, "u2", details["assignedTo"])
}

func TestIsStatus(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), CreateNotFoundError("Lead"))
	assert.True(t, IsStatus(wrapped, http.StatusNotFound))
	assert.False(t, IsStatus(wrapped, http.StatusForbidden))
	assert.False(t, IsStatus(errors.New("plain"), http.StatusNotFound))
}
