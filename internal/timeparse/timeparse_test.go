package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRFC2822(t *testing.T) {
	got, ok := Parse("Sat, 21 Feb 2026 12:00:00 GMT")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)), "got %v", got)

	got, ok = Parse("Sat, 21 Feb 2026 12:00:00 +0800")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 2, 21, 4, 0, 0, 0, time.UTC)), "got %v", got)

	// 缺少时区按 UTC
	for _, raw := range []string{"Sat, 21 Feb 2026 12:00:00", "21 Feb 2026 12:00:00", "Sat, 21 Feb 2026 12:00", "21 Feb 2026 12:00"} {
		got, ok = Parse(raw)
		require.True(t, ok, "input %q", raw)
		assert.True(t, got.Equal(time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)), "input %q: got %v", raw, got)
	}

	// 美国时区缩写使用实际偏移
	cases := map[string]int{
		"Sat, 21 Feb 2026 12:00:00 EST": 17,
		"Sat, 21 Feb 2026 12:00:00 EDT": 16,
		"Sat, 21 Feb 2026 12:00:00 CST": 18,
		"Sat, 21 Feb 2026 12:00:00 PDT": 19,
		"Sat, 21 Feb 2026 12:00:00 pst": 20,
	}
	for raw, hour := range cases {
		got, ok = Parse(raw)
		require.True(t, ok, "input %q", raw)
		assert.True(t, got.Equal(time.Date(2026, 2, 21, hour, 0, 0, 0, time.UTC)), "input %q: got %v", raw, got)
	}
}

func TestParserLocationAppliesToZonelessRFC2822(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	got, ok := Parser{Location: loc}.Parse("Sat, 21 Feb 2026 12:00:00")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 2, 21, 4, 0, 0, 0, time.UTC)), "got %v", got)
}

func TestParseRoundTripPerLayout(t *testing.T) {
	ref := time.Date(2026, 3, 7, 9, 45, 30, 0, time.UTC)

	cases := []struct {
		layout string
		want   time.Time
	}{
		{time.RFC1123Z, ref},
		{time.RFC1123, ref},
		{"2006-01-02 15:04", ref.Truncate(time.Minute)},
		{"2006-01-02 15:04:05", ref},
		{"2006-01-02T15:04:05", ref},
		{"2006-01-02T15:04:05Z", ref},
		{"2006-01-02T15:04:05-0700", ref},
		{time.RFC3339, ref},
		{"Jan 2, 2006", ref.Truncate(24 * time.Hour)},
		{"January 2, 2006", ref.Truncate(24 * time.Hour)},
		{"2 Jan 2006", ref.Truncate(24 * time.Hour)},
		{"2 January 2006", ref.Truncate(24 * time.Hour)},
		{"2006/01/02 15:04", ref.Truncate(time.Minute)},
	}
	for _, c := range cases {
		raw := ref.Format(c.layout)
		got, ok := Parse(raw)
		require.True(t, ok, "layout %q input %q", c.layout, raw)
		assert.True(t, got.Equal(c.want), "layout %q: got %v want %v", c.layout, got, c.want)
	}
}

func TestParseOffsetIsHonoured(t *testing.T) {
	got, ok := Parse("2026-03-07T09:45:30+08:00")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 3, 7, 1, 45, 30, 0, time.UTC)))
}

func TestParseFragments(t *testing.T) {
	cases := map[string]time.Time{
		"2026年3月7日 09:45":           time.Date(2026, 3, 7, 9, 45, 0, 0, time.UTC),
		"Posted 2026/03/07":         time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		"更新于 2026-3-7，阅读 10:05 分钟前": time.Date(2026, 3, 7, 10, 5, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		got, ok := Parse(raw)
		require.True(t, ok, "input %q", raw)
		assert.True(t, got.Equal(want), "input %q: got %v want %v", raw, got, want)
	}
}

func TestParseInvalidClockIsUnknown(t *testing.T) {
	for _, raw := range []string{"2026-03-07 at 99:99", "2026年3月7日 24:00", "2026/3/7 12:60"} {
		got, ok := Parse(raw)
		assert.False(t, ok, "input %q", raw)
		assert.True(t, got.IsZero())
	}
}

func TestParseUnknown(t *testing.T) {
	for _, raw := range []string{"", "   ", "yesterday", "2 hours ago", "2026-13-40", "2026-02-30", "::"} {
		got, ok := Parse(raw)
		assert.False(t, ok, "input %q should be unknown", raw)
		assert.True(t, got.IsZero())
	}
}

func TestParseDeterministic(t *testing.T) {
	raw := "Mar 7, 2026"
	a, okA := Parse(raw)
	b, okB := Parse(raw)
	require.True(t, okA && okB)
	assert.True(t, a.Equal(b))
}

func TestParserLocation(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	got, ok := Parser{Location: loc}.Parse("2026-03-07 08:00")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)))
}
