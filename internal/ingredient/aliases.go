package ingredient

import "slices"

// synonymGroups lists ingredient names that refer to the same thing in
// different regional vocabularies.
var synonymGroups = [][]string{
	{"scallion", "green onion", "spring onion"},
	{"garbanzo", "garbanzo bean", "garbanzo beans", "chickpea", "chickpeas"},
	{"coriander", "cilantro"},
	{"capsicum", "bell pepper", "sweet pepper"},
	{"aubergine", "aubergines", "eggplant", "eggplants"},
	{"courgette", "courgettes", "zucchini", "zucchinis"},
	{"rocket", "arugula"},
	{"powdered sugar", "icing sugar", "confectioners sugar", "confectioners' sugar"},
	{"maize", "corn"},
	{"cornstarch", "corn starch", "cornflour"},
	{"all purpose flour", "plain flour", "ap flour"},
	{"caster sugar", "superfine sugar"},
	{"white sugar", "granulated sugar"},
	{"bicarbonate of soda", "baking soda"},
	{"chili", "chilli", "chile"},
	{"chili flakes", "chilli flakes", "red pepper flakes", "crushed red pepper"},
	{"prawn", "prawns", "shrimp", "shrimps"},
	{"beetroot", "beet", "beets"},
	{"swede", "rutabaga"},
	{"yoghurt", "yogurt"},
	{"minced beef", "ground beef"},
	{"minced pork", "ground pork"},
	{"minced turkey", "ground turkey"},
	{"minced chicken", "ground chicken"},
	{"tinned tomato", "tinned tomatoes", "canned tomato", "canned tomatoes"},
	{"tomato ketchup", "ketchup"},
}

// aliasLookup maps every normalized group member to the sorted normalized group.
var aliasLookup = buildAliasLookup(synonymGroups)

func buildAliasLookup(groups [][]string) map[string][]string {
	lookup := make(map[string][]string)
	for _, group := range groups {
		var normalized []string
		for _, term := range group {
			if n := NormalizeTerm(term); n != "" && !slices.Contains(normalized, n) {
				normalized = append(normalized, n)
			}
		}
		slices.Sort(normalized)
		for _, n := range normalized {
			lookup[n] = normalized
		}
	}
	return lookup
}
