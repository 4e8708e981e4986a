package signal

import "pattas/pkg/model"

// Classify maps the latest RSI, MACD and signal-line values to a MACD
// status and an overall trading status.
//
// Buy on a bullish crossover while RSI is below 70; sell on a bearish
// crossover or RSI above 70. RSI of exactly 70 is not "above 70", so a
// bullish crossover at RSI 70 is still a BUY. A NaN RSI fails both
// comparisons, which leaves a Neutral crossover at HOLD.
func Classify(rsi, macd, signalLine float64) (macdStatus, status string) {
	switch {
	case macd > signalLine:
		macdStatus = model.MACDBullish
	case macd < signalLine:
		macdStatus = model.MACDBearish
	default:
		macdStatus = model.MACDNeutral
	}

	switch {
	case macdStatus == model.MACDBullish && rsi <= 70:
		status = model.StatusBuy
	case macdStatus == model.MACDBearish || rsi > 70:
		status = model.StatusSell
	default:
		status = model.StatusHold
	}

	return macdStatus, status
}
