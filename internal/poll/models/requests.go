package models

// CreatePollRequest is the input to poll creation.
type CreatePollRequest struct {
	Title      string   `json:"title"`
	Options    []string `json:"options"`
	Visibility string   `json:"visibility,omitempty"`
}

// CreatePollResult is returned after a successful creation.
type CreatePollResult struct {
	Poll     *PollView `json:"poll"`
	PollPath string    `json:"pollPath"`
}

// VoteRequest is the input to vote submission.
type VoteRequest struct {
	PollID   string `json:"pollId"`
	OptionID string `json:"optionId"`
}

// VoteCommand is what the vote transaction executes atomically.
type VoteCommand struct {
	PollID          string
	OptionID        string
	OriginHash      string
	FingerprintHash string
	// MaxAttempts and AttemptWindow describe the vote-attempt policy the
	// transaction enforces before its duplicate check.
	MaxAttempts   int
	AttemptWindow int64 // seconds
}

// Actor is the anonymous identity of the caller, as derived hashes only.
type Actor struct {
	OriginHash      string
	FingerprintHash string
}
