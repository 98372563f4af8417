// AngelaMos | 2026
// database_test.go

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitteredDuration(t *testing.T) {
	t.Parallel()

	base := 1 * time.Hour
	got := jitteredDuration(base)

	assert.GreaterOrEqual(t, got, base)
	assert.Less(t, got, base+base/7)
}

func TestJitteredDuration_NonPositive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base time.Duration
	}{
		{"zero means unlimited", 0},
		{"negative", -time.Minute},
		{"too small to jitter", 5 * time.Nanosecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.NotPanics(t, func() {
				assert.Equal(t, tt.base, jitteredDuration(tt.base))
			})
		})
	}
}
