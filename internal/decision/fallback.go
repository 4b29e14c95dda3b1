package decision

import "github.com/xaenox/vfied-bot/internal/models"

var fallbackCandidates = [...]models.Candidate{
	{Name: "Pizza", Emoji: "🍕", Explanation: "Always a crowd-pleaser and easy to find nearby."},
	{Name: "Burrito Bowl", Emoji: "🌯", Explanation: "Filling, quick and easy to adapt to most diets."},
	{Name: "Noodle Soup", Emoji: "🍜", Explanation: "Warm comfort food that works at any hour."},
}

// Fallback returns the fixed suggestions shown when the decision service
// cannot be reached. Callers get their own copy.
func Fallback() []models.Candidate {
	out := make([]models.Candidate, len(fallbackCandidates))
	copy(out, fallbackCandidates[:])
	return out
}
