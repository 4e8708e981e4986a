package news

import "github.com/jonreiter/govader"

// Analyzer scores a piece of text with a polarity in [-1, 1]
type Analyzer interface {
	Polarity(text string) float64
}

// VaderAnalyzer scores text with the VADER lexicon
type VaderAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer creates the default polarity analyzer
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the VADER compound score for the text
func (a *VaderAnalyzer) Polarity(text string) float64 {
	return a.sia.PolarityScores(text).Compound
}
