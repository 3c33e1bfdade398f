package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	lima := time.FixedZone("PET", -5*60*60)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"22/06/2023", time.Date(2023, 6, 22, 0, 0, 0, 0, lima)},
		{"05/01/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, lima)},
		{"2023-06-22", time.Date(2023, 6, 22, 0, 0, 0, 0, lima)},
		{"2023-06-22T15:04:05Z", time.Date(2023, 6, 22, 15, 4, 5, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, lima)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date"} {
		_, err := Parse(in, time.UTC)
		assert.Error(t, err, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "22/06/2023", Format(time.Date(2023, 6, 22, 18, 30, 0, 0, time.UTC)))
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2023, 6, 22, 18, 30, 12, 5, time.UTC))
	assert.Equal(t, time.Date(2023, 6, 22, 0, 0, 0, 0, time.UTC), got)
}
