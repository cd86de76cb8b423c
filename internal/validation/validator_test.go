package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/libresine/libresine-server/internal/errors"
)

type createRequest struct {
	Name     string  `json:"name" validate:"required"`
	MovieURL string  `json:"movie_url" validate:"required,url"`
	Rating   float64 `json:"rating" validate:"omitempty,gte=1,lte=10"`
}

func TestValidatePasses(t *testing.T) {
	v := New()

	err := v.Validate(createRequest{
		Name:     "Heat",
		MovieURL: "https://example.com/heat",
		Rating:   8.3,
	})
	assert.NoError(t, err)
}

func TestValidateReturnsDomainError(t *testing.T) {
	v := New()

	err := v.Validate(createRequest{MovieURL: "nope", Rating: 42})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	// Field errors are keyed by JSON tag name.
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be a valid URL", details["movie_url"])
	assert.Equal(t, "must be less than or equal to 10", details["rating"])
}
