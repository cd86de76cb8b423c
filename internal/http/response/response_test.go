package response

import (
	"encoding/json/v2"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/libresine/libresine-server/internal/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"name": "Heat"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	envelope := decode(t, rec)
	assert.True(t, envelope.Success)
	assert.NotNil(t, envelope.Data)
	assert.Nil(t, envelope.Error)
}

func TestBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, "Please select a valid JSON file.", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decode(t, rec)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
	assert.Equal(t, "Please select a valid JSON file.", envelope.Error.Message)
}

func TestHandleErrorDomain(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domainerrors.Duplicate("a movie with this name and URL already exists"), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)

	envelope := decode(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "DUPLICATE", envelope.Error.Code)
}

func TestHandleErrorUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("disk on fire"), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	envelope := decode(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INTERNAL", envelope.Error.Code)
	// Internal details never leak to the client.
	assert.Equal(t, "internal server error", envelope.Error.Message)
}
