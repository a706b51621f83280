package models

// Trend classifies the short-vs-long moving average relationship
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
)

// Momentum classifies the MACD line against its signal line
type Momentum string

const (
	MomentumGoldenCross Momentum = "golden_cross"
	MomentumDeadCross   Momentum = "dead_cross"
)

// VolumeState classifies the latest volume against its recent mean
type VolumeState string

const (
	VolumeHigh   VolumeState = "high"
	VolumeLow    VolumeState = "low"
	VolumeNormal VolumeState = "normal"
	VolumeNone   VolumeState = "" // no volume history
)

// OscillatorState classifies the latest KDJ J value
type OscillatorState string

const (
	OscillatorOverbought OscillatorState = "overbought"
	OscillatorOversold   OscillatorState = "oversold"
	OscillatorNeutral    OscillatorState = "neutral"
)

// Oscillator carries the KDJ classification plus the truncated J value for
// neutral readings
type Oscillator struct {
	State OscillatorState `json:"state"`
	J     int             `json:"j"`
}

// Pivot holds classical pivot-point support and resistance levels derived
// from the most recent session
type Pivot struct {
	P  float64 `json:"p"`
	S1 float64 `json:"s1"`
	R1 float64 `json:"r1"`
	S2 float64 `json:"s2"`
	R2 float64 `json:"r2"`
}

// SignalBundle is the full set of derived signals for one instrument,
// computed fresh each run and never persisted
type SignalBundle struct {
	Trend      Trend       `json:"trend"`
	Momentum   Momentum    `json:"momentum"`
	Volume     VolumeState `json:"volume"`
	Oscillator Oscillator  `json:"oscillator"`
	Pivot      Pivot       `json:"pivot"`
}
