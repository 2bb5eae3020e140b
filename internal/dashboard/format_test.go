package dashboard

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "KSh 1,500", FormatCurrency(1500))
	assert.Equal(t, "KSh 0", FormatCurrency(0))
	assert.Equal(t, "KSh 2,350,000", FormatCurrency(2350000))
	assert.Equal(t, "-KSh 250", FormatCurrency(-250))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "Jun 1, 2025, 02:05 PM", FormatDate(ts))
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{6 * 24 * time.Hour, "6 days ago"},
		{7 * 24 * time.Hour, "Jun 3, 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelativeTime(now.Add(-tt.ago), now))
		})
	}
}

func TestIsTodayAndThisMonth(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsToday(now.Add(-11*time.Hour), now))
	assert.False(t, IsToday(now.Add(-13*time.Hour), now))
	assert.True(t, IsThisMonth(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, IsThisMonth(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), now))
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "green", StatusColor("active"))
	assert.Equal(t, "purple", StatusColor("Confirmed"))
	assert.Equal(t, "blue", StatusColor("in-progress"))
	assert.Equal(t, "gray", StatusColor("archived"))
}

func TestGenerateID(t *testing.T) {
	now := time.UnixMilli(1717236000000)
	pattern := regexp.MustCompile(`^appointment_1717236000000_[0-9a-z]{9}$`)

	a := GenerateID("appointment", now)
	b := GenerateID("appointment", now)
	assert.Regexp(t, pattern, a)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^id_`, GenerateID("", now))
}
