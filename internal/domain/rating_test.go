package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"reviewdash/internal/domain"
)

func TestNormalizeRating_Tokens(t *testing.T) {
	for token, want := range map[string]float64{"ONE": 1, "TWO": 2, "THREE": 3, "FOUR": 4, "FIVE": 5} {
		assert.Equal(t, want, domain.NormalizeRating(token), token)
	}
}

func TestNormalizeRating_Numeric(t *testing.T) {
	assert.Equal(t, 4.0, domain.NormalizeRating("4"))
	assert.Equal(t, 3.0, domain.NormalizeRating(3))
	assert.Equal(t, 2.5, domain.NormalizeRating(2.5))
	assert.Equal(t, 5.0, domain.NormalizeRating(json.Number("5")))
	assert.Equal(t, 4.0, domain.NormalizeRating(json.RawMessage(`"FOUR"`)))
	assert.Equal(t, 2.0, domain.NormalizeRating(json.RawMessage(`2`)))
}

func TestNormalizeRating_InvalidIsNaN(t *testing.T) {
	for _, in := range []any{"five", "STAR_RATING_UNSPECIFIED", "", nil, true, json.RawMessage(`null`), json.RawMessage(`{}`)} {
		assert.True(t, math.IsNaN(domain.NormalizeRating(in)), "%v", in)
	}
}

func TestValidRating(t *testing.T) {
	assert.True(t, domain.ValidRating(1))
	assert.True(t, domain.ValidRating(5))
	assert.False(t, domain.ValidRating(0))
	assert.False(t, domain.ValidRating(6))
	assert.False(t, domain.ValidRating(4.5))
	assert.False(t, domain.ValidRating(math.NaN()))
}
