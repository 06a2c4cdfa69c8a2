// Package analysis computes the per-chapter repetition and corpus-wide
// rarity statistics that drive highlight decisions.
package analysis

import (
	"sort"

	"github.com/FocuswithJustin/CedarLex/core/corpus"
	"github.com/FocuswithJustin/CedarLex/core/refs"
)

// DefaultStopList holds high-frequency grammatical ids (articles,
// conjunctions, common pronouns and particles) that would dominate the
// highlight if repetition alone decided membership.
var DefaultStopList = map[string]bool{
	// Hebrew
	"H834":  true, // asher (which, that)
	"H853":  true, // et (untranslated object marker)
	"H854":  true, // et (with)
	"H1931": true, // hu (he, it)
	"H1933": true, // hava (to be)
	"H3068": true, // YHWH
	"H3588": true, // ki (that, because)
	"H3605": true, // kol (all)
	"H3808": true, // lo (not)
	"H413":  true, // el (unto)
	"H5921": true, // al (upon)
	// Greek
	"G846":  true, // autos (he, she, it)
	"G1063": true, // gar (for)
	"G1161": true, // de (but, and)
	"G1223": true, // dia (through)
	"G1510": true, // eimi (to be)
	"G2532": true, // kai (and)
	"G3588": true, // ho (the)
	"G3754": true, // hoti (that)
	"G3777": true, // oute (neither)
}

// Default repeat-set parameters.
const (
	DefaultMinRepeat = 3
	DefaultRepeatCap = 10
)

// RepeatOptions configures repeat-set construction.
type RepeatOptions struct {
	// MinCount is the minimum in-chapter occurrence count (default 3).
	MinCount int

	// Cap is the maximum number of repeat-set members (default 10).
	Cap int

	// StopList excludes ids regardless of count. Nil means
	// DefaultStopList.
	StopList map[string]bool
}

func (o RepeatOptions) withDefaults() RepeatOptions {
	if o.MinCount == 0 {
		o.MinCount = DefaultMinRepeat
	}
	if o.Cap == 0 {
		o.Cap = DefaultRepeatCap
	}
	if o.StopList == nil {
		o.StopList = DefaultStopList
	}
	return o
}

// ChapterCounts tallies reference id occurrences across a chapter's verses.
func ChapterCounts(verses []corpus.Verse) map[string]int {
	counts := make(map[string]int)
	for _, v := range verses {
		for _, id := range refs.IDs(v.Text) {
			counts[id]++
		}
	}
	return counts
}

// BuildRepeatSet selects the ids singled out for repetition emphasis:
// those occurring at least MinCount times, stop-list excluded, capped to
// the top Cap by descending count with ties broken by ascending id.
func BuildRepeatSet(counts map[string]int, opts RepeatOptions) map[string]bool {
	opts = opts.withDefaults()

	type entry struct {
		id    string
		count int
	}
	eligible := make([]entry, 0, len(counts))
	for id, n := range counts {
		if n < opts.MinCount || opts.StopList[id] {
			continue
		}
		eligible = append(eligible, entry{id, n})
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].count != eligible[j].count {
			return eligible[i].count > eligible[j].count
		}
		return eligible[i].id < eligible[j].id
	})

	if len(eligible) > opts.Cap {
		eligible = eligible[:opts.Cap]
	}

	set := make(map[string]bool, len(eligible))
	for _, e := range eligible {
		set[e.id] = true
	}
	return set
}
