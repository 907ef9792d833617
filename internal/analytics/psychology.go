package analytics

import (
	"math"
	"sort"
	"strings"

	"trade-journal/internal/models"
)

// TopEmotionalStates is how many emotional states the histogram keeps.
const TopEmotionalStates = 3

// Mean is an average together with the number of values behind it.
type Mean struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Frequency is one histogram bucket.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// PsychologyStats aggregates the psychology sub-records of a trade set.
type PsychologyStats struct {
	Recorded        int         `json:"recorded"`
	Confidence      Mean        `json:"confidence"`
	Satisfaction    Mean        `json:"satisfaction"`
	EmotionalStates []Frequency `json:"emotional_states"`
	Mistakes        []Frequency `json:"mistakes"`
	// Lessons are bucketed by exact text; near-duplicates stay separate.
	Lessons   []Frequency `json:"lessons"`
	ByEmotion []GroupRow  `json:"by_emotion"`
}

// ComputePsychology averages confidence and satisfaction over the trades that
// recorded them and builds the emotion, mistake and lesson histograms.
func ComputePsychology(trades []models.Trade) PsychologyStats {
	var stats PsychologyStats
	var confSum, satSum float64
	emotions := newCounter()
	mistakes := newCounter()
	lessons := newCounter()

	for _, t := range trades {
		p := t.Psychology
		if p == nil {
			continue
		}
		stats.Recorded++

		if v, ok := finite(p.EntryConfidenceLevel); ok {
			confSum += v
			stats.Confidence.Count++
		}
		if v, ok := finite(p.SatisfactionRating); ok {
			satSum += v
			stats.Satisfaction.Count++
		}
		emotions.add(p.EmotionalState.Label())
		for _, m := range p.MistakesMade {
			mistakes.add(m)
		}
		lessons.add(p.LessonsLearned)
	}

	if stats.Confidence.Count > 0 {
		stats.Confidence.Value = confSum / float64(stats.Confidence.Count)
	}
	if stats.Satisfaction.Count > 0 {
		stats.Satisfaction.Value = satSum / float64(stats.Satisfaction.Count)
	}

	stats.EmotionalStates = emotions.top(TopEmotionalStates)
	stats.Mistakes = mistakes.top(0)
	stats.Lessons = lessons.top(0)
	stats.ByEmotion = GroupBy(trades, ByEmotionalState)
	return stats
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// counter is an insertion-ordered histogram.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, ok := c.counts[value]; !ok {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

// top returns buckets by count descending, ties in first-seen order.
// n <= 0 returns all buckets.
func (c *counter) top(n int) []Frequency {
	out := make([]Frequency, 0, len(c.order))
	for _, v := range c.order {
		out = append(out, Frequency{Value: v, Count: c.counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
