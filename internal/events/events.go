package events

import (
	"time"
)

// Topics for paper lifecycle events.
const (
	TopicPaperCreated   = "paper.created"
	TopicPaperSubmitted = "paper.submitted"
	TopicPaperApproved  = "paper.approved"
	TopicPaperRejected  = "paper.rejected"
)

// PaperEvent is the payload published on every lifecycle transition.
type PaperEvent struct {
	PaperID    string    `json:"paper_id"`
	SchoolID   string    `json:"school_id"`
	AuthorID   string    `json:"author_id"`
	ActorID    string    `json:"actor_id"`
	Status     string    `json:"status"`
	Subject    string    `json:"subject,omitempty"`
	Feedback   string    `json:"feedback,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
