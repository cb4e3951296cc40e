package romanize

// substitution is one literal replacement applied over the whole string.
type substitution struct {
	from string
	to   string
}

// toneGroup lists the tone-marked forms of a vowel and the plain letter they
// collapse to.
type toneGroup struct {
	marked []string
	plain  string
}

var toneGroups = []toneGroup{
	{marked: []string{"ā", "ǎ", "à", "á"}, plain: "a"},
	{marked: []string{"ē", "ě", "è", "é"}, plain: "e"},
	{marked: []string{"ī", "ǐ", "ì", "í"}, plain: "i"},
	{marked: []string{"ō", "ǒ", "ò", "ó"}, plain: "o"},
	{marked: []string{"ū", "ǔ", "ù", "ú", "ǖ", "ǘ", "ǚ", "ǜ"}, plain: "u"},
}

// finalSuffixes are the syllable endings the table spells out after each
// tone-marked vowel, in declaration order.
var finalSuffixes = []string{"i", "u", "ng", "n"}

// table is the ordered substitution list. Order matters: the single vowel
// entries run before the multi-letter ones, so by the time a key such as "āng"
// is tried its vowel has already been replaced. That ordering is kept as is so
// output stays stable for existing clients.
var table = buildTable()

func buildTable() []substitution {
	subs := []substitution{
		{"ü", "u"},
		{"üe", "ue"},
		{"üi", "ui"},
		{"üo", "uo"},
		{"üa", "ua"},
		{"üai", "uai"},
		{"üao", "uao"},
		{"üan", "uan"},
		{"üang", "uang"},
		{"üei", "uei"},
	}
	for _, g := range toneGroups {
		for _, m := range g.marked {
			subs = append(subs, substitution{m, g.plain})
		}
	}
	for _, suffix := range finalSuffixes {
		for _, g := range toneGroups {
			for _, m := range g.marked {
				subs = append(subs, substitution{m + suffix, g.plain + suffix})
			}
		}
	}
	return subs
}
