// Package master builds the in-process lookup snapshot from the KIS master
// files (KOSPI/KOSDAQ) and the KRX bulk fundamentals. The snapshot is built
// once before first use and replaced wholesale on refresh; it is never
// mutated in place.
package master

import (
	"strings"
	"sync/atomic"
)

// Entry is one listed instrument from a master file.
type Entry struct {
	Ticker     string // "005930.KS"
	StockCode  string // "005930"
	Name       string // 한글 종목명
	Market     string // "KOSPI" or "KOSDAQ"
	SectorCode string
	BasePrice  float64
}

// Fundamental carries bulk fallback ratios for one ticker, sourced from the
// KRX daily valuation table. Zero means unknown.
type Fundamental struct {
	PER           float64
	PBR           float64
	EPS           float64
	BPS           float64
	DividendYield float64 // percent units
}

// Snapshot is the immutable lookup table. 빌드 후 읽기 전용.
type Snapshot struct {
	nameToTicker map[string]string
	entries      map[string]Entry
	fundamentals map[string]Fundamental
}

// NewSnapshot builds a snapshot from parsed entries and fundamentals.
func NewSnapshot(entries []Entry, fundamentals map[string]Fundamental) *Snapshot {
	s := &Snapshot{
		nameToTicker: make(map[string]string, len(entries)),
		entries:      make(map[string]Entry, len(entries)),
		fundamentals: make(map[string]Fundamental, len(fundamentals)),
	}
	for _, e := range entries {
		s.nameToTicker[e.Name] = e.Ticker
		s.entries[e.Ticker] = e
	}
	for code, f := range fundamentals {
		s.fundamentals[strings.ToUpper(code)] = f
	}
	return s
}

// Len reports how many instruments the snapshot holds.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// ResolveName finds a ticker by Korean name: exact match first, then
// space-insensitive, then the longest substring match.
func (s *Snapshot) ResolveName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	if ticker, ok := s.nameToTicker[name]; ok {
		return ticker, true
	}

	compact := strings.ReplaceAll(name, " ", "")
	if ticker, ok := s.nameToTicker[compact]; ok {
		return ticker, true
	}
	for candidate, ticker := range s.nameToTicker {
		if strings.ReplaceAll(candidate, " ", "") == compact {
			return ticker, true
		}
	}

	// 포함 검색: 가장 긴 매칭 우선
	bestTicker := ""
	bestLen := 0
	for candidate, ticker := range s.nameToTicker {
		if strings.Contains(candidate, name) && len(candidate) > bestLen {
			bestTicker, bestLen = ticker, len(candidate)
		} else if strings.Contains(name, candidate) && len(name) > bestLen {
			bestTicker, bestLen = ticker, len(name)
		}
	}
	if bestTicker != "" {
		return bestTicker, true
	}
	return "", false
}

// KoreanName returns the Korean name for a ticker.
func (s *Snapshot) KoreanName(ticker string) (string, bool) {
	e, ok := s.entries[strings.ToUpper(ticker)]
	if !ok {
		return "", false
	}
	return e.Name, true
}

// Lookup returns the full entry for a ticker.
func (s *Snapshot) Lookup(ticker string) (Entry, bool) {
	e, ok := s.entries[strings.ToUpper(ticker)]
	return e, ok
}

// Fundamentals returns the bulk fallback ratios for a ticker.
func (s *Snapshot) Fundamentals(ticker string) (Fundamental, bool) {
	f, ok := s.fundamentals[strings.ToUpper(ticker)]
	return f, ok
}

// Search returns up to max (name, ticker) pairs whose name contains the
// query, case-insensitive.
func (s *Snapshot) Search(query string, max int) []Match {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" || max <= 0 {
		return nil
	}

	var results []Match
	for name, ticker := range s.nameToTicker {
		if strings.Contains(strings.ToUpper(name), query) {
			results = append(results, Match{Name: name, Ticker: ticker})
			if len(results) >= max {
				break
			}
		}
	}
	return results
}

// Match is one search hit.
type Match struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// Holder swaps snapshots atomically so concurrent readers never observe a
// partially built table.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates a Holder primed with an empty snapshot.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(NewSnapshot(nil, nil))
	return h
}

// Current returns the active snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap replaces the active snapshot.
func (h *Holder) Swap(s *Snapshot) {
	h.current.Store(s)
}
