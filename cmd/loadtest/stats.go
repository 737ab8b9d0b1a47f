package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
)

type Stats struct {
	mu          sync.Mutex
	total       int64
	success     int64
	errors      int64
	latencies   []time.Duration
	statusCodes map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 1024),
		statusCodes: make(map[int]int64),
	}
}

// Record counts one request. A transport error has status 0 and no latency
// sample.
func (s *Stats) Record(elapsed time.Duration, status int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if err != nil {
		s.errors++
		return
	}
	if status >= 200 && status < 300 {
		s.success++
	} else {
		s.errors++
	}
	s.latencies = append(s.latencies, elapsed)
	s.statusCodes[status]++
}

type Report struct {
	Total, Success, Errors int64
	RPS                    float64
	Min, Avg, Max          time.Duration
	P50, P90, P95, P99     time.Duration
	StatusCodes            map[int]int64
}

func (s *Stats) Report(window time.Duration) Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := Report{
		Total:       s.total,
		Success:     s.success,
		Errors:      s.errors,
		StatusCodes: make(map[int]int64, len(s.statusCodes)),
	}
	for code, n := range s.statusCodes {
		r.StatusCodes[code] = n
	}
	if window > 0 {
		r.RPS = float64(s.total) / window.Seconds()
	}
	if len(s.latencies) == 0 {
		return r
	}
	sorted := slices.Clone(s.latencies)
	slices.Sort(sorted)
	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	r.Min, r.Max = sorted[0], sorted[len(sorted)-1]
	r.Avg = sum / time.Duration(len(sorted))
	r.P50 = percentile(sorted, 50)
	r.P90 = percentile(sorted, 90)
	r.P95 = percentile(sorted, 95)
	r.P99 = percentile(sorted, 99)
	return r
}

func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", r.Total)
	fmt.Fprintf(w, "Successful:      %d\n", r.Success)
	fmt.Fprintf(w, "Errors:          %d\n", r.Errors)
	if r.Total > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(r.Errors)/float64(r.Total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", r.RPS)
	}
	if r.Max > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		for _, row := range []struct {
			name string
			v    time.Duration
		}{{"Min", r.Min}, {"Avg", r.Avg}, {"P50", r.P50}, {"P90", r.P90}, {"P95", r.P95}, {"P99", r.P99}, {"Max", r.Max}} {
			fmt.Fprintf(w, "%-7s %s\n", row.name+":", row.v)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	codes := make([]int, 0, len(r.StatusCodes))
	for code := range r.StatusCodes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, r.StatusCodes[code])
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// QueriesFrom collects the distinct title words and the leading two
// characters of every content word, in first-seen order.
func QueriesFrom(raws []document.RawDocument) []string {
	seen := make(map[string]bool)
	var queries []string
	add := func(q string) {
		if q != "" && !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}
	for _, raw := range raws {
		for _, w := range strings.Fields(raw.Title) {
			add(w)
		}
		for _, w := range strings.Fields(raw.Content) {
			if utf8.RuneCountInString(w) > 2 {
				w = string([]rune(w)[:2])
			}
			add(w)
		}
	}
	return queries
}
