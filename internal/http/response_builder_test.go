package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"finledger/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"n": 1}).
		Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "value", w.Header().Get("X-Custom"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Body("ignored").Write(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header().Get("Content-Type"))
}

func TestJSONResponseBuilder_Warning(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Warning(errors.New("not a persistence problem")).Write(w)
	assert.Empty(t, w.Header().Get(WarningHeader))

	w = httptest.NewRecorder()
	NewJSONResponse().Warning(&core.PersistError{Op: "add", Err: errors.New("disk\nfull")}).Write(w)
	assert.Equal(t, "snapshot not persisted", w.Header().Get(WarningHeader))
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		status  int
		code    string
	}{
		{"BadRequest", BadRequestError("bad"), http.StatusBadRequest, "invalid_input"},
		{"NotFound", NotFoundError("gone"), http.StatusNotFound, "not_found"},
		{"Internal", InternalServerError("oops"), http.StatusInternalServerError, "internal"},
		{"TooMany", TooManyRequestsError(), http.StatusTooManyRequests, "rate_limited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{core.Invalid("x"), http.StatusBadRequest},
		{fmt.Errorf("%w: bill", core.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: deposit", core.ErrInsufficientFunds), http.StatusConflict},
		{fmt.Errorf("%w: payment", core.ErrExceedsLimit), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(w, r, "read", errors.New("connection refused to 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestWriteErrorListsFormFields(t *testing.T) {
	err := &FormError{Fields: map[string]string{"name": "Name is required", "amount": "Amount must be a valid number"}}
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Equal(t, "amount: Amount must be a valid number; name: Name is required", err.Error())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	writeError(w, r, "create", fmt.Errorf("decode: %w", err))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validation failed","code":"invalid_input","fields":{"name":"Name is required","amount":"Amount must be a valid number"}}`, w.Body.String())
}
