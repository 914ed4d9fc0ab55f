package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	RespondError(c, err)
	return w
}

func TestRespondErrorMapsKinds(t *testing.T) {
	tests := []struct {
		err  error
		code int
		body string
	}{
		{NewUnauthenticated(), http.StatusUnauthorized, `{"success":false,"error":"authentication required"}`},
		{NewForbidden(), http.StatusForbidden, `{"success":false,"error":"you do not have permission to perform this action"}`},
		{NewNotFound("order"), http.StatusNotFound, `{"success":false,"error":"order not found"}`},
		{NewValidationError("time", "time must be a 24-hour HH:MM time"), http.StatusBadRequest, `{"success":false,"error":"time must be a 24-hour HH:MM time","field":"time"}`},
		{NewConflict("taken"), http.StatusConflict, `{"success":false,"error":"taken"}`},
	}
	for _, tt := range tests {
		w := respond(tt.err)
		assert.Equal(t, tt.code, w.Code)
		assert.JSONEq(t, tt.body, w.Body.String())
	}
}

func TestRespondErrorMasksInternalDetail(t *testing.T) {
	for _, err := range []error{
		errors.New("dial tcp 10.0.0.5:3306: connection refused"),
		NewInternal(errors.New("secret detail")),
	} {
		w := respond(err)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
	}
}

func TestRespondJSONSetsSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondJSON(c, http.StatusCreated, gin.H{"id": 1})
	assert.JSONEq(t, `{"success":true,"id":1}`, w.Body.String())
}
