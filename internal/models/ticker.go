// Package models defines data structures for valuescope
package models

import (
	"strings"
)

// Ticker is a normalized (trimmed, upper-cased) stock symbol.
type Ticker string

// NewTicker normalizes raw input into a Ticker.
func NewTicker(raw string) (Ticker, error) {
	t := Ticker(strings.ToUpper(strings.TrimSpace(raw)))
	if t == "" {
		return "", ErrEmptyTicker
	}
	return t, nil
}

// String returns the symbol.
func (t Ticker) String() string {
	return string(t)
}

// Symbol returns the ticker without any exchange suffix ("BHP.AU" -> "BHP").
func (t Ticker) Symbol() string {
	s := string(t)
	if ex := t.Exchange(); ex != "" {
		return s[:len(s)-len(ex)-1]
	}
	return s
}

// Exchange returns the exchange suffix, or "" when the ticker has none.
// Only a suffix of two or more letters counts, so share classes such as
// "BRK.B" are not mistaken for an exchange.
func (t Ticker) Exchange() string {
	s := string(t)
	i := strings.LastIndex(s, ".")
	if i <= 0 {
		return ""
	}
	suffix := s[i+1:]
	if len(suffix) < 2 {
		return ""
	}
	for _, r := range suffix {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return suffix
}

// ParseTickers splits free-text input (comma separated; semicolons and
// whitespace are accepted too) into normalized tickers. Empty entries are
// dropped and duplicates keep their first position.
func ParseTickers(raw string) []Ticker {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ',', ';', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	})

	seen := make(map[Ticker]bool, len(fields))
	tickers := make([]Ticker, 0, len(fields))
	for _, f := range fields {
		t, err := NewTicker(f)
		if err != nil || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	return tickers
}
