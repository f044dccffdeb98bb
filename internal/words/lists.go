// Package words supplies target text for typing sessions.
package words

import "github.com/hello97-gg/hallotype/internal/model"

var easyWords = []string{
	"the", "be", "to", "of", "and", "a", "in", "that", "have", "I", "it", "for", "not", "on", "with", "he", "as", "you", "do", "at",
	"this", "but", "his", "by", "from", "they", "we", "say", "her", "she", "or", "an", "will", "my", "one", "all", "would", "there", "their", "what",
	"so", "up", "out", "if", "about", "who", "get", "which", "go", "me", "when", "make", "can", "like", "time", "no", "just", "him", "know", "take",
	"people", "into", "year", "your", "good", "some", "could", "them", "see", "other", "than", "then", "now", "look", "only", "come", "its", "over", "think",
	"also", "back", "after", "use", "two", "how", "our", "work", "first", "well", "way", "even", "new", "want", "because", "any", "these", "give", "day",
}

var mediumWords = []string{
	"about", "above", "across", "action", "active", "advice", "afraid", "always", "animal", "appear", "around", "arrive", "artist", "autumn", "avenue",
	"balance", "become", "before", "behind", "believe", "between", "bicycle", "bottom", "branch", "breathe", "bridge", "bright", "business", "button",
	"camera", "capital", "careful", "center", "change", "circle", "climate", "collect", "common", "compare", "complete", "connect", "consider", "contain", "continue",
	"country", "create", "credit", "current", "danger", "decide", "decrease", "depend", "design", "develop", "different", "difficult", "discover", "distance", "divide",
	"double", "dream", "early", "earth", "effect", "either", "energy", "engine", "enough", "entire", "escape", "evening", "example", "except", "excite",
	"exercise", "explain", "express", "family", "famous", "figure", "finish", "flower", "follow", "foreign", "forest", "forward", "friend", "future", "garden",
}

var hardWords = []string{
	"aberration", "abnegation", "acrimonious", "alacrity", "amalgamate", "ambivalent", "anachronistic", "antediluvian", "antithesis", "apocryphal", "approbation",
	"archetypal", "ascetic", "assiduous", "auspicious", "benevolent", "bilk", "bombastic", "brazen", "bucolic", "cacophony", "cajole", "calumny",
	"camaraderie", "capitulate", "capricious", "catharsis", "caustic", "chicanery", "circumspect", "clandestine", "cognizant", "compunction", "conflagration",
	"conundrum", "corpulent", "credulity", "cupidity", "dearth", "debacle", "demagogue", "deprecate", "deride", "desultory", "diaphanous",
	"dichotomy", "didactic", "diffident", "dilatory", "disparate", "ebullient", "efficacious", "effrontery", "emollient", "enervate", "ephemeral",
	"equanimity", "erudite", "eschew", "esoteric", "evanescent", "exacerbate", "exculpate", "exigent", "expedient", "fastidious", "fatuous",
	"fecund", "flagrant", "gregarious", "hegemony", "iconoclast", "idiosyncratic", "impecunious", "impetuous", "incandescent", "inchoate", "incontrovertible",
}

// ListForTier returns the compiled-in word list for a tier. Unknown tiers
// fall back to the default tier's list.
func ListForTier(tier model.Tier) []string {
	switch tier {
	case model.TierEasy:
		return easyWords
	case model.TierMedium:
		return mediumWords
	case model.TierHard:
		return hardWords
	}
	return mediumWords
}
