// Package ranking orders analysis records for the trending list, the
// recommendation list and the explore view. All functions are pure: they
// never modify the slice they are given.
package ranking

import (
	"sort"
	"strings"
	"time"

	"sgb-go/internal/model"
)

const (
	TrendingWindow = 24 * time.Hour
	TrendingLimit  = 3
	RecommendLimit = 10
)

// Recommendation weights.
const (
	nameMatchWeight        = 10
	strengthMatchWeight    = 5
	improvementMatchWeight = 3
	likeWeight             = 2
	saveWeight             = 3
	recencyDays            = 10
)

// Trending returns up to three public records created within the last 24
// hours, most liked first. Ties keep their input order.
func Trending(records []model.AnalysisRecord, now time.Time) []model.AnalysisRecord {
	var recent []model.AnalysisRecord
	for _, r := range records {
		if r.IsPrivate {
			continue
		}
		if now.Sub(r.UploadDate) < TrendingWindow {
			recent = append(recent, r)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Likes > recent[j].Likes
	})
	if len(recent) > TrendingLimit {
		recent = recent[:TrendingLimit]
	}
	return recent
}

// Score is the recommendation score of r for query at time now.
func Score(r model.AnalysisRecord, query string, now time.Time) float64 {
	var score float64
	if q := strings.ToLower(query); q != "" {
		if strings.Contains(strings.ToLower(r.StudentName), q) {
			score += nameMatchWeight
		}
		if anyContains(r.Strengths, q) {
			score += strengthMatchWeight
		}
		if anyContains(r.Improvements, q) {
			score += improvementMatchWeight
		}
	}
	score += float64(r.Likes * likeWeight)
	score += float64(r.Saves * saveWeight)

	days := now.Sub(r.UploadDate).Hours() / 24
	score += max(0, recencyDays-days)
	return score
}

// Recommend returns up to ten public records ordered by Score, highest
// first. Ties keep their input order.
func Recommend(records []model.AnalysisRecord, query string, now time.Time) []model.AnalysisRecord {
	type scored struct {
		record model.AnalysisRecord
		score  float64
	}

	var candidates []scored
	for _, r := range records {
		if r.IsPrivate {
			continue
		}
		candidates = append(candidates, scored{record: r, score: Score(r, query, now)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > RecommendLimit {
		candidates = candidates[:RecommendLimit]
	}

	out := make([]model.AnalysisRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.record
	}
	return out
}

func anyContains(items []string, lowerQuery string) bool {
	for _, s := range items {
		if strings.Contains(strings.ToLower(s), lowerQuery) {
			return true
		}
	}
	return false
}
