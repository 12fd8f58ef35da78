package archetype

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// #region templates
// Template arguments, in order: name, motif, disposition, role,
// 1st, 2nd and 3rd highest trait, lowest trait.
var descriptionTemplates = []string{
	"You are the \"%[1]s\".\n" +
		"The deep energy of the %[2]s, the outlook of a %[3]s heart and your part as the %[4]s sit at the core of who you are.\n\n" +
		"Your most distinctive strength is %[5]s. It keeps you steady when things get difficult. " +
		"Close behind, %[6]s pushes you forward in relationships and goals, and %[7]s works as a quieter talent that shows up in all kinds of situations.\n\n" +
		"On the other hand, %[8]s may be something you pay less attention to. That is not a weakness; it shows where you have chosen to focus.\n\n" +
		"Overall you act with care and on your own values, and your particular mix could bring something new to the people around you.",

	"Your results point to a one-of-a-kind profile: the \"%[1]s\".\n" +
		"The name joins three elements: the %[2]s that mirrors your inner world, the %[3]s quality that guides how you act, and the %[4]s you naturally become among others.\n\n" +
		"Your greatest asset is an outstanding %[5]s. It lets you move ahead with confidence where others hesitate. " +
		"%[6]s and %[7]s reinforce it and give your character depth, and together they keep you in balance.\n\n" +
		"Your energy seems to flow less toward %[8]s. Rather than a flaw, this is a sign you spend yourself on what truly matters to you.\n\n" +
		"You combine quiet passion with real insight. Understanding and accepting that will keep widening what you can do.",

	"Your journey inward has arrived at the \"%[1]s\".\n" +
		"This type describes the strength of the %[2]s beneath everything, your %[3]s stance toward the world, and the way you engage with it as the %[4]s.\n\n" +
		"Your brightest trait is %[5]s, a compass for the important decisions in your life. " +
		"Following it, %[6]s and %[7]s add depth and flexibility to how you act.\n\n" +
		"Nobody excels at everything. For you, %[8]s may still be developing, precisely because you have been polishing your other gifts.\n\n" +
		"As the \"%[1]s\" you carry a rich and compelling inner life. Living by your strengths will have a good influence on those around you.",
}

// #endregion templates

// #region ranking
// rankTraits orders traits by descending score. The sort is stable over the
// canonical order, so ties keep canonical order.
func rankTraits(p Profile) []trait.Trait {
	ranked := make([]trait.Trait, trait.Count)
	copy(ranked, trait.Order[:])
	sort.SliceStable(ranked, func(i, j int) bool {
		return p[trait.Index(ranked[i])] > p[trait.Index(ranked[j])]
	})
	return ranked
}

// #endregion ranking

func describe(tmpl string, name string, motif, disposition, role Part, p Profile) string {
	ranked := rankTraits(p)
	return fmt.Sprintf(tmpl,
		name, motif.Word, disposition.Word, role.Word,
		ranked[0], ranked[1], ranked[2], ranked[len(ranked)-1],
	)
}
