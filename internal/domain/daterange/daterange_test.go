package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
)

var now = time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)

func TestResolve_NamedRanges(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
	}{
		{"7days", now.AddDate(0, 0, -7)},
		{"weekly", now.AddDate(0, 0, -7)},
		{"month", now.AddDate(0, -1, 0)},
		{"Monthly", now.AddDate(0, -1, 0)},
		{"year", now.AddDate(-1, 0, 0)},
		{"yearly", now.AddDate(-1, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Resolve(tc.name, "", "", now)
			require.NoError(t, err)
			assert.Equal(t, tc.start, r.Start)
			assert.Equal(t, now, r.End)
			assert.True(t, r.IsBounded())
		})
	}
}

func TestResolve_AllAndUnknownAreUnbounded(t *testing.T) {
	for _, name := range []string{"", "all", "fortnight"} {
		r, err := Resolve(name, "2024-01-01", "2024-01-02", now)
		require.NoError(t, err, name)
		assert.False(t, r.IsBounded(), name)
		assert.True(t, r.Contains(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))
	}
}

func TestResolve_CustomDateOnlyCoversWholeEndDay(t *testing.T) {
	r, err := Resolve("custom", "2024-01-10", "2024-01-12", now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), r.Start)
	assert.True(t, r.Contains(time.Date(2024, 1, 12, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 1, 9, 23, 59, 59, 0, time.UTC)))
}

func TestResolve_CustomRFC3339(t *testing.T) {
	r, err := Resolve("custom", "2024-01-10T08:00:00Z", "2024-01-10T20:30:00.500Z", now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 1, 10, 20, 30, 0, 500000000, time.UTC), r.End)
}

func TestResolve_CustomSameDay(t *testing.T) {
	r, err := Resolve("custom", "2024-01-10", "2024-01-10", now)
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)))
}

func TestResolve_CustomValidation(t *testing.T) {
	cases := map[string][2]string{
		"missing start":   {"", "2024-01-10"},
		"missing end":     {"2024-01-10", ""},
		"bad start":       {"10/01/2024", "2024-01-10"},
		"bad end":         {"2024-01-10", "tomorrow"},
		"start after end": {"2024-02-01", "2024-01-01"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Resolve("custom", in[0], in[1], now)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Week, Normalize(" WEEKLY "))
	assert.Equal(t, All, Normalize("unknown"))
	assert.Equal(t, Custom, Normalize("custom"))
}
