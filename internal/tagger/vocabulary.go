package tagger

import "sort"

// tagsByCategory is the predefined tag vocabulary, grouped by theme. The
// keyword tagger only ever emits tags from this set.
var tagsByCategory = map[string][]string{
	"emotions": {
		"happiness", "joy", "sadness", "anger", "fear", "love", "hate",
		"passion", "hope", "despair", "anxiety", "gratitude", "guilt",
		"empathy", "compassion", "shame", "pride", "jealousy", "grief",
	},
	"virtues": {
		"courage", "wisdom", "patience", "honesty", "integrity", "kindness",
		"generosity", "humility", "perseverance", "responsibility", "forgiveness",
		"loyalty", "self-discipline", "respect", "tolerance",
	},
	"relationships": {
		"friendship", "family", "marriage", "partnership", "community", "trust",
		"betrayal", "reconciliation", "communication", "connection", "parenting",
		"teamwork", "collaboration", "leadership", "mentorship",
	},
	"life": {
		"success", "failure", "growth", "change", "adversity", "opportunity",
		"experience", "journey", "destiny", "purpose", "meaning", "commitment",
		"adventure", "challenge", "possibility", "transformation", "achievement",
	},
	"knowledge": {
		"education", "learning", "wisdom", "knowledge", "understanding", "truth",
		"science", "discovery", "curiosity", "insight", "creativity", "innovation",
		"reflection", "study", "research", "teaching", "intelligence",
	},
	"society": {
		"justice", "freedom", "equality", "democracy", "peace", "war", "politics",
		"government", "leadership", "progress", "tradition", "culture", "diversity",
		"unity", "community", "social change", "human rights", "responsibility",
	},
	"philosophy": {
		"truth", "reality", "existence", "meaning", "purpose", "morality", "ethics",
		"logic", "reason", "consciousness", "perception", "belief", "knowledge",
		"wisdom", "freedom", "determinism", "identity", "mind", "spirituality",
	},
	"time": {
		"past", "present", "future", "memory", "history", "moment", "eternity",
		"transience", "permanence", "beginnings", "endings", "legacy", "aging",
		"youth", "mortality", "immortality", "time management", "patience",
	},
	"nature": {
		"nature", "environment", "earth", "animals", "plants", "wilderness",
		"conservation", "sustainability", "ecology", "climate", "seasons",
		"beauty", "simplicity", "harmony", "balance", "cycles", "growth",
	},
	"art": {
		"creativity", "expression", "beauty", "inspiration", "imagination",
		"literature", "poetry", "music", "painting", "writing", "perspective",
		"interpretation", "aesthetics", "self-expression", "culture",
	},
	"work": {
		"work", "career", "ambition", "success", "achievement", "dedication",
		"effort", "discipline", "motivation", "purpose", "craft", "service",
		"excellence", "productivity", "profession", "legacy", "mastery",
	},
	"spirituality": {
		"faith", "belief", "soul", "spirituality", "religion", "divine", "sacred",
		"meditation", "prayer", "mindfulness", "enlightenment", "transcendence",
		"meaning", "purpose", "connection", "tradition", "ritual",
	},
	"self": {
		"identity", "self-awareness", "authenticity", "confidence", "self-esteem",
		"self-improvement", "self-acceptance", "self-care", "mindfulness", "growth",
		"potential", "purpose", "integrity", "character", "values", "personality",
	},
	"health": {
		"health", "well-being", "healing", "fitness", "nutrition", "mental health",
		"balance", "self-care", "mindfulness", "rest", "energy", "prevention",
		"medicine", "therapy", "recovery", "renewal", "vitality",
	},
	"challenges": {
		"adversity", "struggle", "hardship", "resilience", "perseverance", "endurance",
		"obstacles", "problems", "conflict", "crisis", "difficulty", "setback",
		"suffering", "challenge", "overcoming", "survival", "strength",
	},
}

// AllTags returns the deduplicated, sorted vocabulary. A tag appearing in
// several categories is listed once.
func AllTags() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, categoryTags := range tagsByCategory {
		for _, tag := range categoryTags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// CategoryForTag reports the first category containing the tag. Categories
// are checked in a stable order so shared tags resolve deterministically.
func CategoryForTag(tag string) string {
	for _, category := range categoryOrder {
		for _, t := range tagsByCategory[category] {
			if t == tag {
				return category
			}
		}
	}
	return ""
}

var categoryOrder = func() []string {
	names := make([]string, 0, len(tagsByCategory))
	for name := range tagsByCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()
