package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		value   float64
		want    Score
		wantErr bool
	}{
		{name: "zero", value: 0, want: 0},
		{name: "half band", value: 6.5, want: 13},
		{name: "max", value: 9, want: 18},
		{name: "off grid", value: 6.2, wantErr: true},
		{name: "negative", value: -0.5, wantErr: true},
		{name: "above max", value: 9.5, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewScore(tc.value)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidScore)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.InDelta(t, tc.value, got.Float(), 1e-9)
		})
	}
}

func TestQuantizeScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MustScore(6.0), QuantizeScore(6.2))
	assert.Equal(t, MustScore(6.5), QuantizeScore(6.3))
	assert.Equal(t, MustScore(5.5), QuantizeScore(5.25), "ties round away from zero")
	assert.Equal(t, MustScore(0), QuantizeScore(-3))
	assert.Equal(t, MaxScore, QuantizeScore(12))
}

func TestScoreArithmetic(t *testing.T) {
	t.Parallel()

	s := MustScore(5.5)
	assert.Equal(t, MustScore(6.0), s.Add(0.5))
	assert.Equal(t, MustScore(6.0), s.Add(0.4), "add re-quantizes")
	assert.Equal(t, MaxScore, s.Add(10))
	assert.InDelta(t, 1.5, MustScore(7.0).Sub(s), 1e-9)
	assert.InDelta(t, -1.5, s.Sub(MustScore(7.0)), 1e-9)
	assert.Equal(t, "5.5", s.String())
}

func TestScoreJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		S Score `json:"s"`
	}{S: MustScore(7.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":7.5}`, string(data))

	var decoded struct {
		S Score `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":4}`), &decoded))
	assert.Equal(t, MustScore(4), decoded.S)

	err = json.Unmarshal([]byte(`{"s":4.3}`), &decoded)
	assert.ErrorIs(t, err, ErrInvalidScore)
}
