// Package stats records per-turn chat metrics (latency, tokens, tool calls,
// outcome) and persists them to ~/.workairs/stats.json.
package stats

import (
	"cmp"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/workairs/wa-cli/internal/config"
)

const (
	fileName   = "stats.json"
	maxRecords = 1000
)

// Turn outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"   // server sent an error event
	OutcomeError    = "error"    // transport failure
	OutcomeCanceled = "canceled" // stopped by the user
)

// Record is one chat turn.
type Record struct {
	Timestamp    time.Time     `json:"timestamp"`
	Model        string        `json:"model,omitempty"`
	Streamed     bool          `json:"streamed"`
	FirstEvent   time.Duration `json:"first_event_ms,omitempty"`
	Total        time.Duration `json:"total_ms"`
	ServerTimeMS float64       `json:"server_time_ms,omitempty"`
	TokensUsed   int           `json:"tokens_used,omitempty"`
	Tools        []string      `json:"tools,omitempty"`
	Dropped      int           `json:"dropped,omitempty"`
	Outcome      string        `json:"outcome"`
}

// Summary is the aggregated stats dashboard.
type Summary struct {
	TotalTurns      int            `json:"total_turns"`
	SuccessRate     float64        `json:"success_rate"`
	AvgFirstEventMs int64          `json:"avg_first_event_ms"`
	AvgTotalMs      int64          `json:"avg_total_ms"`
	TotalTokens     int            `json:"total_tokens"`
	DroppedRecords  int            `json:"dropped_records"`
	Outcomes        map[string]int `json:"outcomes"`
	Models          map[string]int `json:"models"`
	TopTools        []ToolCount    `json:"top_tools"`
	TodayCount      int            `json:"today_count"`
	ThisWeekCount   int            `json:"this_week_count"`
}

// ToolCount pairs a tool name with how often the agent called it.
type ToolCount struct {
	Tool  string `json:"tool"`
	Count int    `json:"count"`
}

var fileMu sync.Mutex

func statsPath() string {
	return filepath.Join(config.Dir(), fileName)
}

// Save appends a new record to the stats file.
func Save(r Record) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	r.Timestamp = time.Now()
	// Store durations as milliseconds for readability.
	r.FirstEvent = r.FirstEvent / time.Millisecond
	r.Total = r.Total / time.Millisecond

	records, _ := loadAll()
	records = append(records, r)

	if len(records) > maxRecords {
		records = records[len(records)-maxRecords:]
	}

	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statsPath(), data, 0o600)
}

// LoadAll returns all stored records.
func LoadAll() ([]Record, error) {
	return loadAll()
}

func loadAll() ([]Record, error) {
	data, err := os.ReadFile(statsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Summarize computes aggregated stats from all records.
func Summarize() (*Summary, error) {
	records, err := loadAll()
	if err != nil {
		return nil, err
	}
	return summarize(records, time.Now()), nil
}

func summarize(records []Record, now time.Time) *Summary {
	s := &Summary{
		TotalTurns: len(records),
		Outcomes:   map[string]int{},
		Models:     map[string]int{},
	}
	if len(records) == 0 {
		return s
	}

	var totalFirst, totalAll int64
	var firstCount, okCount int
	toolFreq := map[string]int{}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	for _, r := range records {
		s.Outcomes[r.Outcome]++
		if r.Outcome == OutcomeOK {
			okCount++
		}
		if r.Model != "" {
			s.Models[r.Model]++
		}
		if r.FirstEvent > 0 {
			totalFirst += int64(r.FirstEvent)
			firstCount++
		}
		totalAll += int64(r.Total)
		s.TotalTokens += r.TokensUsed
		s.DroppedRecords += r.Dropped
		for _, t := range r.Tools {
			toolFreq[t]++
		}
		if !r.Timestamp.Before(today) {
			s.TodayCount++
		}
		if r.Timestamp.After(weekAgo) {
			s.ThisWeekCount++
		}
	}

	s.SuccessRate = float64(okCount) / float64(len(records)) * 100
	s.AvgTotalMs = totalAll / int64(len(records))
	if firstCount > 0 {
		s.AvgFirstEventMs = totalFirst / int64(firstCount)
	}
	s.TopTools = topN(toolFreq, 5)
	return s
}

// topN returns the n most frequent tools, ties broken by name.
func topN(freq map[string]int, n int) []ToolCount {
	all := make([]ToolCount, 0, len(freq))
	for tool, count := range freq {
		all = append(all, ToolCount{Tool: tool, Count: count})
	}
	slices.SortFunc(all, func(a, b ToolCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tool, b.Tool)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
