package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Minutes int    `json:"minutes_spent" validate:"gte=0"`
	Day     string `json:"day"           validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"minutes_spent": 30, "day": "2026-03-02"}`, false},
		{"unknown field", `{"minutes": 30}`, true},
		{"trailing data", `{"day": "x"} {"day": "y"}`, true},
		{"malformed", `{"day":`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var v sample
			err := DecodeJSON(req, &v)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sample{Minutes: 30, Day: "2026-03-02"}, v)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = http.NoBody
	assert.ErrorIs(t, DecodeJSON(req, &sample{}), ErrEmptyBody)
}

type selfValidating struct{}

func (selfValidating) Validate() error { return errors.New("custom") }

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	err := ValidateRequest(sample{Minutes: -1, Day: "2026-03-02"})
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "minutes_spent", fieldErrs[0].Field())

	assert.NoError(t, ValidateRequest(sample{Day: "2026-03-02"}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "custom")
}
