package archetype

import "github.com/danielpatrickdp/trait-interview/internal/trait"

// #region part
// Part is one naming element together with its additive trait modifiers.
// Traits absent from Modifiers contribute 0.
type Part struct {
	Word      string
	Modifiers map[trait.Trait]int
}

// Modifier returns the part's modifier for t.
func (p Part) Modifier(t trait.Trait) int {
	return p.Modifiers[t]
}

// #endregion part

const (
	se = trait.SelfEsteem
	co = trait.Cooperativeness
	et = trait.Ethics
	na = trait.NeedForApproval
	pe = trait.Perseverance
	er = trait.EmotionalRegulation
	st = trait.StressTolerance
	fl = trait.Flexibility
)

type mods = map[trait.Trait]int

// #region motifs
// motifs name the closing "of the ..." element.
var motifs = []Part{
	{"Sun", mods{se: 10, co: 5, na: 5, er: -5}},
	{"Moonlight", mods{se: -5, er: 10, fl: 5, et: 5}},
	{"Stars", mods{fl: 10, co: 5, se: -5, pe: -5}},
	{"Deep Sea", mods{pe: 10, er: 10, st: 5, co: -10}},
	{"Forest", mods{co: 10, et: 10, pe: 5, fl: -5}},
	{"Volcano", mods{se: 15, pe: 5, er: -15, co: -5}},
	{"Earth", mods{et: 10, pe: 10, st: 10, fl: -15}},
	{"Gale", mods{fl: 15, se: 5, pe: -10, st: -5}},
	{"Steel", mods{pe: 15, st: 10, et: 5, fl: -10, co: -5}},
	{"Crystal", mods{et: 15, er: 10, se: 5, na: -10}},
	{"Dawn", mods{se: 5, co: 5, fl: 5, pe: 5}},
	{"Twilight", mods{er: 5, pe: 5, et: 5, na: -5}},
	{"Sky", mods{se: 10, fl: 10, co: 5, et: -5}},
	{"Galaxy", mods{fl: 15, se: 5, et: -10}},
	{"Blizzard", mods{st: 10, pe: 10, er: 5, co: -15}},
	{"Desert", mods{pe: 15, st: 15, se: 5, co: -10}},
}

// #endregion motifs

// #region dispositions
// dispositions lead the name.
var dispositions = []Part{
	{"Quiet", mods{er: 10, pe: 5, na: -10}},
	{"Passionate", mods{se: 10, na: 5, pe: 5, er: -10}},
	{"Empathic", mods{co: 15, et: 5, se: -5}},
	{"Free", mods{fl: 15, se: 5, et: -10}},
	{"Steadfast", mods{et: 10, pe: 10, fl: -15}},
	{"Creative", mods{fl: 10, se: 5, na: 5, co: -5}},
	{"Cheerful", mods{co: 10, na: 10, st: -5}},
	{"Calm", mods{er: 15, st: 10, co: -5}},
	{"Devoted", mods{co: 10, et: 10, se: -10}},
	{"Intellectual", mods{pe: 5, et: 5, er: 5, na: -10}},
	{"Bold", mods{se: 15, st: 5, et: -10}},
	{"Gentle", mods{co: 10, er: 10, st: 5, se: -5}},
	{"Innovative", mods{fl: 15, se: 10, et: -5, co: -5}},
	{"Compassionate", mods{co: 15, et: 10, er: 5, na: -10}},
	{"Indomitable", mods{pe: 15, st: 15, se: 5}},
	{"Solitary", mods{se: 10, pe: 5, co: -15, na: -10}},
}

// #endregion dispositions

// #region roles
// roles follow the disposition.
var roles = []Part{
	{"Strategist", mods{pe: 10, er: 10, fl: 5, co: -5}},
	{"Challenger", mods{se: 10, pe: 10, st: 5, co: -10}},
	{"Harmonizer", mods{co: 15, er: 5, se: -5, na: 5}},
	{"Adventurer", mods{fl: 10, se: 5, st: 5, pe: -10}},
	{"Guardian", mods{et: 15, pe: 10, st: 5, fl: -10}},
	{"Artist", mods{fl: 10, se: 5, na: 10, co: -5}},
	{"Mediator", mods{co: 10, et: 5, er: 10, pe: 5}},
	{"Seeker", mods{fl: 10, pe: 10, se: 5, co: -10}},
	{"Reformer", mods{se: 10, fl: 10, st: 5, et: -5}},
	{"Thinker", mods{pe: 10, er: 10, et: 5, na: -10}},
	{"Mentor", mods{co: 10, et: 10, er: 5, se: -5}},
	{"Survivor", mods{st: 15, pe: 15, se: 5, fl: -5}},
	{"Vanguard", mods{se: 15, co: 5, na: 5, er: -5}},
	{"Sage", mods{et: 15, er: 10, pe: 5, na: -15}},
	{"Pioneer", mods{se: 10, pe: 10, fl: 10, co: -5}},
	{"Bard", mods{co: 10, na: 10, fl: 5, pe: -5}},
}

// #endregion roles

// NameSpace is the number of distinct names the vocabulary can produce.
func NameSpace() int {
	return len(motifs) * len(dispositions) * len(roles)
}
