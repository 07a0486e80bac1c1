// Package prompts builds the system and user prompt pair for a banter
// generation request. Everything here is pure: the same context and
// random source always produce the same prompt.
package prompts

// systemIntro frames the task in one line.
const systemIntro = `You write ambient party banter for a first-person dungeon-crawler RPG set in a grounded medieval fantasy world.`

// personalityPrompt insists trait-driven word choice is unmistakable.
const personalityPrompt = `Each character has four personality traits, and those traits must be unmistakable in their word choice:
- Temperament: how they carry emotion (fiery, stoic, gentle, brooding)
- Social: how they engage others (outgoing, reserved, blunt, courteous)
- Outlook: how they read the world (optimist, pessimist, pragmatist, dreamer)
- Speech: how they phrase things (plain, formal, earthy, clipped)
A reader should be able to guess a character's traits from a single line. If two characters would say a line the same way, the line is wrong.`

// examplesPrompt shows the register wanted and the registers banned.
const examplesPrompt = `Good lines:
Throk: Walls are sweating. Bad sign.
Gilda: We shall see daylight again. I am certain of it.

Bad lines (never write like this):
Throk: Verily, mine heart doth quail! (archaic speech)
Gilda: This dungeon is creepy, no cap. (modern slang)
Bramble: The obsidian gloom enveloped our weary souls in its tenebrous embrace. (flowery language)`

// rulesPrompt is the fixed rule list appended to every system prompt.
const rulesPrompt = `Rules:
1. Output dialogue lines only, one per line, in the exact format "Name: dialogue". No narration, no stage directions, no blank lines.
2. Solo musings are 1-2 lines. Two-person exchanges are 2-4 lines. Group conversations are 4-6 lines.
3. No archaic speech (thee, thou, verily, forsooth).
4. No modern slang or casual filler.
5. No flowery or overwrought language. Plain words, real voices.
6. Never mention weapons, armor, potions, or other equipment by name.
7. Keep each line under 256 characters.`

// closing instruction per exchange type, completed with the speaker
// name
const (
	closingSolo  = "Generate a brief solo musing from %s, reacting to the moment."
	closingTwo   = "Generate a brief two-person exchange between %s and one other party member, reacting to the moment."
	closingGroup = "Generate a brief group conversation starting with %s, reacting to the moment."
)
