package validators

import (
	"errors"
	"net/http"
	"testing"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(models.SigninRequest{Email: "a@example.com", Password: "x"}))

	err := v.Validate(models.SigninRequest{Email: "not-an-email", Password: "x"})
	var httpErr *echo.HTTPError
	if assert.True(t, errors.As(err, &httpErr)) {
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}

	assert.Error(t, v.Validate(models.CreateNotificationRequest{UserID: "u1", Type: "spam", Message: "x"}))
	assert.Error(t, v.Validate(models.UpdateDisplayRequest{Theme: "neon"}))
	assert.NoError(t, v.Validate(models.UpdateDisplayRequest{Language: models.LanguageEnglish}))
}
