package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		code    string
		id      int
		seconds int
	}{
		{"M1", 1, 60},
		{"M2", 2, 120},
		{"M3", 3, 180},
		{"M4", 4, 240},
		{"M5", 5, 300},
		{"M6", 6, 360},
		{"M10", 10, 600},
		{"M12", 12, 720},
		{"M15", 15, 900},
		{"M20", 20, 1200},
		{"M30", 30, 1800},
		{"H1", 0x4001, 3600},
		{"H2", 0x4002, 7200},
		{"H3", 0x4003, 10800},
		{"H4", 0x4004, 14400},
		{"H6", 0x4006, 21600},
		{"H8", 0x4008, 28800},
		{"H12", 0x400C, 43200},
		{"D1", 0x4018, 86400},
		{"W1", 0x8001, 604800},
		{"MN1", 0xC001, 2592000},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			tf, err := Lookup(tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.code, tf.Code)
			assert.Equal(t, tc.id, tf.ID)
			assert.Equal(t, tc.seconds, tf.Seconds)
			assert.Equal(t, time.Duration(tc.seconds)*time.Second, tf.Duration())
		})
	}

	// the table is exactly these codes, nothing more
	assert.Len(t, Codes(), len(cases))
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("M7")
	require.Error(t, err)

	_, err = Lookup("h1")
	require.Error(t, err, "codes are case sensitive")
}
