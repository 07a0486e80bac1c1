package banter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/banter-engine/pkg/textfilter"
)

// consecutiveFailureAlert is the threshold at which the validator logs
// a warning about repeated rejections. Diagnostic only; behavior is
// unchanged.
const consecutiveFailureAlert = 3

// line-count bounds per exchange type
var lineBounds = map[ExchangeType][2]int{
	ExchangeSolo:      {1, 2},
	ExchangeTwoPerson: {2, 4},
	ExchangeGroup:     {4, 6},
}

// Validator runs the content and format battery against a parsed
// response. Validation is pure per call; the only state is a
// consecutive-failure counter used for diagnostic alerting.
type Validator struct {
	items *textfilter.KeywordFilter
	slang *textfilter.KeywordFilter
	log   *slog.Logger

	consecutiveFailures int
}

// NewValidator creates a validator with the standard keyword
// batteries.
func NewValidator(log *slog.Logger) *Validator {
	return &Validator{
		items: textfilter.NewItemFilter(),
		slang: textfilter.NewSlangFilter(),
		log:   log,
	}
}

// Validate runs six independent checks and returns the accumulated
// error strings. An empty result means the response is valid. The
// response and context are never mutated.
func (v *Validator) Validate(resp *Response, ctx *Context) []string {
	var errs []string

	errs = append(errs, v.checkNames(resp, ctx)...)
	errs = append(errs, v.checkItems(resp)...)
	errs = append(errs, v.checkSlang(resp)...)
	errs = append(errs, v.checkFormat(resp)...)
	errs = append(errs, v.checkNonEmpty(resp)...)
	errs = append(errs, v.checkLength(resp)...)

	if len(errs) == 0 {
		v.consecutiveFailures = 0
		return nil
	}

	v.consecutiveFailures++
	if v.consecutiveFailures >= consecutiveFailureAlert {
		v.log.Warn("banter validation failing repeatedly",
			"consecutive_failures", v.consecutiveFailures,
			"errors", errs)
	}
	return errs
}

// checkNames requires every line's character to exactly match the
// speaker or a party member. Case-sensitive, no fuzzy matching.
func (v *Validator) checkNames(resp *Response, ctx *Context) []string {
	known := ctx.KnownNames()
	var errs []string
	for _, line := range resp.Lines {
		if !known[line.CharacterName] {
			errs = append(errs, fmt.Sprintf("unknown character %q in line %q", line.CharacterName, line.Text))
		}
	}
	return errs
}

func (v *Validator) checkItems(resp *Response) []string {
	var errs []string
	for _, line := range resp.Lines {
		if kw, ok := v.items.FindMatch(line.Text); ok {
			errs = append(errs, fmt.Sprintf("item reference %q in line %q", kw, line.Text))
		}
	}
	return errs
}

func (v *Validator) checkSlang(resp *Response) []string {
	var errs []string
	for _, line := range resp.Lines {
		if w, ok := v.slang.FindMatch(line.Text); ok {
			errs = append(errs, fmt.Sprintf("modern slang %q in line %q", w, line.Text))
		}
	}
	return errs
}

func (v *Validator) checkFormat(resp *Response) []string {
	var errs []string
	for i, line := range resp.Lines {
		if strings.TrimSpace(line.CharacterName) == "" {
			errs = append(errs, fmt.Sprintf("line %d has a blank character name", i+1))
		}
		if strings.TrimSpace(line.Text) == "" {
			errs = append(errs, fmt.Sprintf("line %d has blank dialogue", i+1))
		}
	}
	return errs
}

func (v *Validator) checkNonEmpty(resp *Response) []string {
	if len(resp.Lines) == 0 {
		return []string{"response contains no dialogue lines"}
	}
	return nil
}

// checkLength enforces the line-count bounds for the response's own
// derived exchange type, not the requested one.
func (v *Validator) checkLength(resp *Response) []string {
	bounds, ok := lineBounds[resp.ExchangeType]
	if !ok {
		return []string{fmt.Sprintf("unknown exchange type %q", resp.ExchangeType)}
	}
	n := len(resp.Lines)
	if n < bounds[0] || n > bounds[1] {
		return []string{fmt.Sprintf("%s exchange must have %d-%d lines, got %d",
			resp.ExchangeType, bounds[0], bounds[1], n)}
	}
	return nil
}
