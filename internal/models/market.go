// Package models defines data structures for Panorama
package models

import (
	"strings"
	"time"
	"unicode"
)

// MarketClass identifies which data-source path an instrument takes
type MarketClass string

const (
	ClassDomesticIndex  MarketClass = "domestic_index"
	ClassDomesticETF    MarketClass = "domestic_etf"
	ClassDomesticEquity MarketClass = "domestic_equity"
	ClassGlobal         MarketClass = "global"
)

// Instrument is one watchlist entry. Instruments are built once from config
// at startup and never mutated afterwards.
type Instrument struct {
	Name  string      `json:"name"`
	Code  string      `json:"code"`
	Class MarketClass `json:"class"`
}

// IsDomestic reports whether the instrument uses a domestic data path
func (i Instrument) IsDomestic() bool {
	return i.Class != ClassGlobal
}

// ClassifyCode assigns a market class to a raw instrument code.
// All-digit codes are domestic: the index sentinel takes the index path,
// codes starting with a fund prefix take the ETF path, the rest take the
// equity path. Any non-numeric code is global.
func ClassifyCode(code, indexSentinel string, fundPrefixes []string) MarketClass {
	if !isAllDigits(code) {
		return ClassGlobal
	}
	if code == indexSentinel {
		return ClassDomesticIndex
	}
	for _, p := range fundPrefixes {
		if p != "" && strings.HasPrefix(code, p) {
			return ClassDomesticETF
		}
	}
	return ClassDomesticEquity
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Bar represents a single trading session's price data
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is an OHLCV history ordered ascending by date, one bar per session
type Series []Bar

// Last returns the most recent bar
func (s Series) Last() Bar {
	return s[len(s)-1]
}

// Tail returns the most recent n bars (the whole series when shorter)
func (s Series) Tail(n int) Series {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Closes extracts the close column
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// ChangePct returns the percentage change of the latest close over the prior
// session's close. ok is false when fewer than two sessions exist or the
// prior close is zero.
func (s Series) ChangePct() (pct float64, ok bool) {
	if len(s) < 2 {
		return 0, false
	}
	prev := s[len(s)-2].Close
	if prev == 0 {
		return 0, false
	}
	return (s.Last().Close - prev) / prev * 100, true
}

// NewsItem is a single headline attached to an instrument
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}
