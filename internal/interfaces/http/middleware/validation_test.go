package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator_UsesJSONNames(t *testing.T) {
	SetupValidator()

	type req struct {
		ClientID int64  `json:"cliente_id" binding:"required"`
		Page     int    `form:"page" binding:"required"`
		Hidden   string `json:"-" binding:"required"`
	}

	err := binding.Validator.ValidateStruct(&req{})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field())
	}
	assert.Contains(t, fields, "cliente_id")
	assert.Contains(t, fields, "page")
}
