package indicator

import "math"

// Default spans matching the persisted signal definitions
const (
	DefaultRSIWindow  = 14
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// RSISeries computes the Relative Strength Index over a rolling window of
// simple-mean gains and losses. The returned series is aligned with the
// input; the first `window` values are NaN (insufficient lookback).
//
// Zero-division convention: a window with zero rolling loss and positive
// gain yields 100. A completely flat window (zero gain and zero loss) is
// undefined and stays NaN; callers must treat NaN as "cannot classify".
func RSISeries(closes []float64, window int) []float64 {
	rsi := make([]float64, len(closes))
	for i := range rsi {
		rsi[i] = math.NaN()
	}
	if window <= 0 || len(closes) < window+1 {
		return rsi
	}

	for i := window; i < len(closes); i++ {
		var gain, loss float64
		for j := i - window + 1; j <= i; j++ {
			delta := closes[j] - closes[j-1]
			if delta > 0 {
				gain += delta
			} else {
				loss -= delta
			}
		}
		gain /= float64(window)
		loss /= float64(window)

		switch {
		case loss == 0 && gain == 0:
			// flat window, 0/0 stays undefined
		case loss == 0:
			rsi[i] = 100
		default:
			rs := gain / loss
			rsi[i] = 100 - 100/(1+rs)
		}
	}
	return rsi
}

// EMASeries computes an exponential moving average with smoothing fraction
// 2/(span+1), seeded with the first sample and no bias adjustment.
func EMASeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACDSeries computes the MACD line (fast EMA minus slow EMA) and its
// signal line (EMA of the MACD). Both series are aligned with the input.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, signalLine []float64) {
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)

	macd = make([]float64, len(closes))
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signalLine = EMASeries(macd, signal)
	return macd, signalLine
}
