package models

import "time"

// Item is a curated local food spot or a travel suggestion for a city
type Item struct {
	Name        string   `json:"name"`
	Emoji       string   `json:"emoji,omitempty"`
	Description string   `json:"description"`
	City        string   `json:"city,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	ImageURL    string    `json:"image_url,omitempty"`
}

type Venue struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Rating  float64 `json:"rating,omitempty"`
}

// EventSubmission is the event form a user posts for publication or review
type EventSubmission struct {
	Title          string    `validate:"required,max=120"`
	Description    string    `validate:"max=2000"`
	Location       string    `validate:"required,max=200"`
	StartsAt       time.Time `validate:"required"`
	SubmitterEmail string    `validate:"omitempty,email"`
}

// SubmissionStatus is what the event endpoint did with a submission
type SubmissionStatus string

const (
	StatusPublished     SubmissionStatus = "published"
	StatusPendingReview SubmissionStatus = "pending_review"
)
