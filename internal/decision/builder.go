package decision

import (
	"sort"
	"strings"
	"time"

	"github.com/xaenox/vfied-bot/internal/models"
)

// UIState is what the user has entered when they ask for a decision
type UIState struct {
	Mood    string
	Dietary []string
}

// MealPeriodAt buckets an hour of the day. Boundaries are half-open:
// [6,11) breakfast, [11,15) lunch, [15,18) snack, [18,22) dinner, late night otherwise.
func MealPeriodAt(hour int) models.MealPeriod {
	switch {
	case hour >= 6 && hour < 11:
		return models.Breakfast
	case hour >= 11 && hour < 15:
		return models.Lunch
	case hour >= 15 && hour < 18:
		return models.Snack
	case hour >= 18 && hour < 22:
		return models.Dinner
	default:
		return models.LateNight
	}
}

func TimeContextAt(now time.Time) models.TimeContext {
	hour := now.Hour()
	weekday := now.Weekday()
	return models.TimeContext{
		CurrentHour: hour,
		MealPeriod:  MealPeriodAt(hour),
		IsWeekend:   weekday == time.Saturday || weekday == time.Sunday,
	}
}

// Build assembles the request for one decision cycle. It has no side
// effects; the result does not share memory with its inputs.
func Build(ui UIState, recency models.RecencyList, now time.Time, loc models.Location) models.DecisionRequest {
	dietary := make([]string, len(ui.Dietary))
	copy(dietary, ui.Dietary)
	sort.Strings(dietary)

	recent := make([]string, len(recency))
	copy(recent, recency)

	return models.DecisionRequest{
		Location:          loc,
		MoodText:          strings.TrimSpace(ui.Mood),
		Dietary:           dietary,
		RecentSuggestions: recent,
		TimeContext:       TimeContextAt(now),
	}
}
