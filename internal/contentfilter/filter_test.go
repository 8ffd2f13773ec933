package contentfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBlockedWords(t *testing.T) {
	clean := CheckBlockedWords("a lovely watercolor of a mountain lake")
	assert.True(t, clean.IsClean)
	assert.Empty(t, clean.Matches)

	dirty := CheckBlockedWords("Nazi propaganda poster reproduction")
	assert.False(t, dirty.IsClean)
	assert.Contains(t, dirty.Matches, "nazi")
}

func TestCheckSpam(t *testing.T) {
	clean := CheckSpam("original oil painting, 40x60cm, signed")
	assert.True(t, clean.IsClean)

	dirty := CheckSpam("Buy followers now!! click here for more")
	assert.False(t, dirty.IsClean)
	assert.Len(t, dirty.Matches, 2)
}

func TestCheckScam(t *testing.T) {
	clean := CheckScam("prints available, message me for sizes")
	assert.True(t, clean.IsClean)

	dirty := CheckScam("send me BTC and I ship it, guaranteed profit on resale")
	assert.False(t, dirty.IsClean)
}

func TestAnalyzeRiskLevels(t *testing.T) {
	tests := []struct {
		name string
		text string
		want RiskLevel
	}{
		{"clean text", "abstract acrylic on canvas", RiskLow},
		{"single category", "click here to see my gallery", RiskMedium},
		{"two categories", "free crypto! just send me bitcoin first", RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Analyze(tt.text)
			assert.Equal(t, tt.want, analysis.RiskLevel)
		})
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	analysis := Analyze("")
	assert.Equal(t, RiskLow, analysis.RiskLevel)
	assert.True(t, analysis.BlockedWords.IsClean)
	assert.True(t, analysis.Spam.IsClean)
	assert.True(t, analysis.Scam.IsClean)
}
