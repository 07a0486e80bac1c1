package banter

import (
	"strings"
	"testing"

	"github.com/jwebster45206/banter-engine/pkg/actor"
)

func validatorContext() *Context {
	return &Context{
		Speaker: actor.Character{Name: "Gilda"},
		Party: &PartyInfo{
			AliveCount: 3,
			Members: []actor.Character{
				{Name: "Gilda"},
				{Name: "Throk"},
				{Name: "Bramble"},
			},
		},
	}
}

func validResponse() *Response {
	return &Response{
		ExchangeType: ExchangeTwoPerson,
		Participants: []string{"Gilda", "Throk"},
		Lines: []Line{
			{CharacterName: "Gilda", Text: "The air tastes of iron down here."},
			{CharacterName: "Throk", Text: "Then we are close to something old."},
		},
	}
}

func TestValidate_AcceptsCleanResponse(t *testing.T) {
	v := NewValidator(discardLogger())
	if errs := v.Validate(validResponse(), validatorContext()); len(errs) != 0 {
		t.Fatalf("expected valid response, got errors: %v", errs)
	}
}

func TestValidate_UnknownName(t *testing.T) {
	v := NewValidator(discardLogger())
	resp := validResponse()
	resp.Lines[1].CharacterName = "Morgana"

	errs := v.Validate(resp, validatorContext())
	if len(errs) == 0 {
		t.Fatal("expected an unknown-name error")
	}
	if !strings.Contains(errs[0], "Morgana") {
		t.Errorf("error must name the offender: %v", errs)
	}
}

func TestValidate_NameMatchIsCaseSensitive(t *testing.T) {
	v := NewValidator(discardLogger())
	resp := validResponse()
	resp.Lines[0].CharacterName = "gilda"

	if errs := v.Validate(resp, validatorContext()); len(errs) == 0 {
		t.Fatal("lowercase name must not match, no fuzzy matching")
	}
}

func TestValidate_ItemReference(t *testing.T) {
	v := NewValidator(discardLogger())
	resp := validResponse()
	resp.Lines[0].Text = "I should sharpen my sword tonight."

	errs := v.Validate(resp, validatorContext())
	if len(errs) == 0 {
		t.Fatal("expected an item-reference error")
	}
	if !strings.Contains(errs[0], "sword") {
		t.Errorf("error must name the keyword: %v", errs)
	}
}

func TestValidate_ModernSlang(t *testing.T) {
	v := NewValidator(discardLogger())
	resp := validResponse()
	resp.Lines[1].Text = "Yeah, that was close."

	errs := v.Validate(resp, validatorContext())
	if len(errs) == 0 {
		t.Fatal("expected a modern-slang error")
	}
	if !strings.Contains(errs[0], "yeah") {
		t.Errorf("error must name the slang term: %v", errs)
	}
}

func TestValidate_BlankFields(t *testing.T) {
	v := NewValidator(discardLogger())
	resp := validResponse()
	resp.Lines[0].CharacterName = "  "

	if errs := v.Validate(resp, validatorContext()); len(errs) == 0 {
		t.Fatal("expected a blank-name error")
	}
}

func TestValidate_EmptyResponse(t *testing.T) {
	v := NewValidator(discardLogger())
	resp := &Response{ExchangeType: ExchangeSolo}

	if errs := v.Validate(resp, validatorContext()); len(errs) == 0 {
		t.Fatal("expected errors for an empty response")
	}
}

func TestValidate_GroupLengthBounds(t *testing.T) {
	v := NewValidator(discardLogger())
	ctx := validatorContext()

	groupResp := func(n int) *Response {
		resp := &Response{
			ExchangeType: ExchangeGroup,
			Participants: []string{"Gilda", "Throk", "Bramble"},
		}
		names := []string{"Gilda", "Throk", "Bramble"}
		for i := 0; i < n; i++ {
			resp.Lines = append(resp.Lines, Line{
				CharacterName: names[i%3],
				Text:          "A perfectly mundane observation.",
			})
		}
		return resp
	}

	if errs := v.Validate(groupResp(3), ctx); len(errs) == 0 {
		t.Error("3-line group must be invalid (below the 4-line floor)")
	}
	if errs := v.Validate(groupResp(7), ctx); len(errs) == 0 {
		t.Error("7-line group must be invalid (above the 6-line ceiling)")
	}
	if errs := v.Validate(groupResp(5), ctx); len(errs) != 0 {
		t.Errorf("5-line group must pass the length check, got %v", errs)
	}
}

func TestValidate_SoloLengthBounds(t *testing.T) {
	v := NewValidator(discardLogger())
	ctx := &Context{Speaker: actor.Character{Name: "Gilda"}}

	resp := &Response{
		ExchangeType: ExchangeSolo,
		Participants: []string{"Gilda"},
		Lines: []Line{
			{CharacterName: "Gilda", Text: "One."},
			{CharacterName: "Gilda", Text: "Two."},
			{CharacterName: "Gilda", Text: "Three."},
		},
	}
	if errs := v.Validate(resp, ctx); len(errs) == 0 {
		t.Error("3-line solo must be invalid")
	}

	resp.Lines = resp.Lines[:2]
	if errs := v.Validate(resp, ctx); len(errs) != 0 {
		t.Errorf("2-line solo must be valid, got %v", errs)
	}
}

func TestValidate_ConsecutiveFailureCounterResets(t *testing.T) {
	v := NewValidator(discardLogger())
	ctx := validatorContext()

	bad := validResponse()
	bad.Lines[0].CharacterName = "Nobody"

	for i := 0; i < 4; i++ {
		v.Validate(bad, ctx)
	}
	if v.consecutiveFailures != 4 {
		t.Fatalf("expected 4 consecutive failures, got %d", v.consecutiveFailures)
	}

	v.Validate(validResponse(), ctx)
	if v.consecutiveFailures != 0 {
		t.Errorf("expected counter reset after a success, got %d", v.consecutiveFailures)
	}
}
