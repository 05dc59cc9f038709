package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/hrms/core/activity"
)

func TestSummarizeUserAgent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "  ", want: ""},
		{
			name: "firefox",
			raw:  "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
			want: "Firefox 120.0 on Linux x86_64",
		},
		{
			name: "chrome on windows",
			raw:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
			want: "Chrome 119.0.0.0 on Windows 10",
		},
		{
			name: "bot",
			raw:  "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want: "Bot: Googlebot",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activity.SummarizeUserAgent(tt.raw))
		})
	}
}
