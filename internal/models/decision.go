package models

import "strings"

// MealPeriod is the coarse time-of-day bucket sent with every decision request
type MealPeriod string

const (
	Breakfast MealPeriod = "breakfast"
	Lunch     MealPeriod = "lunch"
	Snack     MealPeriod = "snack"
	Dinner    MealPeriod = "dinner"
	LateNight MealPeriod = "late_night"
)

type Location struct {
	City        string `json:"city" mapstructure:"city"`
	Country     string `json:"country" mapstructure:"country"`
	CountryCode string `json:"country_code" mapstructure:"country_code"`
}

type TimeContext struct {
	CurrentHour int        `json:"current_hour"`
	MealPeriod  MealPeriod `json:"meal_period"`
	IsWeekend   bool       `json:"is_weekend"`
}

// DecisionRequest is the body posted to the decision endpoint
type DecisionRequest struct {
	Location          Location    `json:"location"`
	MoodText          string      `json:"mood_text"`
	Dietary           []string    `json:"dietary"`
	RecentSuggestions []string    `json:"recent_suggestions"`
	TimeContext       TimeContext `json:"time_context"`
}

// Candidate is one suggested item. Its position in a result list is its rank.
type Candidate struct {
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Explanation string `json:"explanation"`
}

// MoodAnalysis is the optional annotation the decision endpoint returns
// alongside its candidates
type MoodAnalysis struct {
	Vibes   []string `json:"detected_vibes"`
	Message string   `json:"message"`
}

// RecencyList holds previously suggested names, most recent first
type RecencyList []string

// Record returns a new list with name moved to the front. An entry equal to
// name ignoring case is removed first and its spelling is kept. The result is
// truncated to limit entries.
func (r RecencyList) Record(name string, limit int) RecencyList {
	out := make(RecencyList, 1, len(r)+1)
	out[0] = name
	for _, existing := range r {
		if strings.EqualFold(existing, name) {
			out[0] = existing
			continue
		}
		out = append(out, existing)
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
