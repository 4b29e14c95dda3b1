package models

// User is the profile returned by the auth endpoints and cached per chat
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// Preferences is the per-chat preference blob: the last mood text and the
// dietary filters currently toggled on
type Preferences struct {
	Mood    string   `json:"mood"`
	Dietary []string `json:"dietary"`
}

// HasDiet reports whether the dietary tag is toggled on
func (p Preferences) HasDiet(tag string) bool {
	for _, d := range p.Dietary {
		if d == tag {
			return true
		}
	}
	return false
}

// ToggleDiet flips a dietary tag and returns the updated preferences
func (p Preferences) ToggleDiet(tag string) Preferences {
	out := Preferences{Mood: p.Mood, Dietary: make([]string, 0, len(p.Dietary)+1)}
	found := false
	for _, d := range p.Dietary {
		if d == tag {
			found = true
			continue
		}
		out.Dietary = append(out.Dietary, d)
	}
	if !found {
		out.Dietary = append(out.Dietary, tag)
	}
	return out
}

// Stats is the cumulative decision counter shown by /stats
type Stats struct {
	TotalDecisions int `json:"totalDecisions"`
	TimeSaved      int `json:"timeSaved"`
}

// Bump counts one completed decision and adds the saved minutes.
// Negative minutes are ignored so neither field ever decreases.
func (s Stats) Bump(minutes int) Stats {
	if minutes < 0 {
		minutes = 0
	}
	return Stats{
		TotalDecisions: s.TotalDecisions + 1,
		TimeSaved:      s.TimeSaved + minutes,
	}
}
