package models

// Redirect is one old-URL to current-URL pair derived from slug history.
// Both sides are leading-slash normalized.
type Redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}
