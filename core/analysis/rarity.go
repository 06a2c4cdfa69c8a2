package analysis

// Tag classifies how unusual a reference id's usage is.
type Tag string

// Rarity tags, from most to least notable.
const (
	TagGloballyRare  Tag = "globally-rare"
	TagUnitClustered Tag = "unit-clustered"
	TagCommon        Tag = "common"
)

// Notable reports whether the tag marks an interactive hint target.
func (t Tag) Notable() bool {
	return t == TagGloballyRare || t == TagUnitClustered
}

// Usage is the input to rarity classification for one id.
type Usage struct {
	// Global is the id's occurrence count across the entire corpus.
	Global int

	// UnitPeak is the highest occurrence count within any literary unit
	// active for the chapter under render.
	UnitPeak int
}

// Rule is one ordered classification predicate. Rules are evaluated
// first-match-wins, so new tags slot in without touching the evaluator.
type Rule struct {
	Tag     Tag
	Applies func(u Usage) bool
}

// DefaultRules is the standard rarity rule chain.
func DefaultRules() []Rule {
	return []Rule{
		{TagGloballyRare, func(u Usage) bool { return u.Global <= 10 }},
		{TagUnitClustered, func(u Usage) bool { return u.Global <= 50 && u.UnitPeak >= 3 }},
	}
}

// Classify runs the rule chain over a usage record. Ids matching no rule
// are common and get no special marking.
func Classify(u Usage, rules []Rule) Tag {
	for _, r := range rules {
		if r.Applies(u) {
			return r.Tag
		}
	}
	return TagCommon
}
