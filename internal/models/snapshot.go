package models

import "time"

// Snapshot is the persisted form of an in-progress wizard session. It is
// written on every successful transition and read once at engine construction
// to resume a prior session.
type Snapshot struct {
	Token     string            `json:"token"`
	State     WorkflowState     `json:"state"`
	Data      map[string]string `json:"data"`
	Timestamp time.Time         `json:"timestamp"`
}

// Matches reports whether the snapshot belongs to the given session token.
// A snapshot whose token does not match the current URL's token is invalid
// and must be discarded rather than resumed.
func (s *Snapshot) Matches(token string) bool {
	return s != nil && token != "" && s.Token == token
}
