package banter

import (
	"fmt"

	"github.com/jwebster45206/banter-engine/pkg/actor"
	"github.com/jwebster45206/banter-engine/pkg/state"
	"github.com/jwebster45206/banter-engine/pkg/textfilter"
)

// silentPartyMessage is the generic user-visible fallback. Raw error
// text never reaches the player.
const silentPartyMessage = "The party falls silent for a moment."

// Presenter renders accepted dialogue into the in-game message log.
// Rendering details (color, layout) belong to the UI layer.
type Presenter interface {
	Display(resp *Response, log state.MessageLog, party []actor.Character)
	DisplayErrorMessage(log state.MessageLog)
}

// MessagePresenter is the default Presenter. It attributes each line
// to its speaker and runs the profanity filter before appending.
type MessagePresenter struct {
	filter *textfilter.ProfanityFilter
}

// NewMessagePresenter creates the default presenter.
func NewMessagePresenter() *MessagePresenter {
	return &MessagePresenter{
		filter: textfilter.NewProfanityFilter(),
	}
}

// Display appends one message-log entry per dialogue line.
func (p *MessagePresenter) Display(resp *Response, log state.MessageLog, party []actor.Character) {
	for _, line := range resp.Lines {
		log.Add(fmt.Sprintf("%s: %s", line.CharacterName, p.filter.FilterText(line.Text)))
	}
}

// DisplayErrorMessage appends the generic silent-party fallback.
func (p *MessagePresenter) DisplayErrorMessage(log state.MessageLog) {
	log.Add(silentPartyMessage)
}
