// Package banter holds the core domain of the pipeline: context
// snapshots assembled from game state, parsed dialogue responses, the
// validation battery, and the presenter contract.
package banter

import "time"

// ExchangeType classifies a banter exchange by how many characters
// take part.
type ExchangeType string

const (
	ExchangeSolo      ExchangeType = "solo"
	ExchangeTwoPerson ExchangeType = "two_person"
	ExchangeGroup     ExchangeType = "group"
)

// Line is a single attributed line of dialogue.
type Line struct {
	CharacterName string `json:"character_name"`
	Text          string `json:"text"`
}

// Response is a parsed, structured banter exchange. ExchangeType is
// derived from the distinct participant count of the parsed lines, not
// from what the prompt requested: the request only steers the model,
// the response is classified by what was actually produced.
type Response struct {
	ExchangeType ExchangeType `json:"exchange_type"`
	Participants []string     `json:"participants"`
	Lines        []Line       `json:"lines"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

// classify maps a distinct participant count to an exchange type.
func classify(participants int) ExchangeType {
	switch {
	case participants <= 1:
		return ExchangeSolo
	case participants == 2:
		return ExchangeTwoPerson
	default:
		return ExchangeGroup
	}
}
