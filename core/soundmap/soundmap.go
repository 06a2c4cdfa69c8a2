package soundmap

import (
	"fmt"
	"sort"

	"github.com/FocuswithJustin/CedarLex/core/lexicon"
	"github.com/FocuswithJustin/CedarLex/core/units"
)

// Default clustering thresholds.
const (
	DefaultMinVersePositions = 2
	DefaultMinUnitCount      = 3
	DefaultMinClusterVerses  = 2
)

// Options configures the clustering thresholds. The zero value uses
// defaults throughout.
type Options struct {
	// MinVersePositions is the in-verse occurrence floor for local
	// annotations (default 2).
	MinVersePositions int

	// MinUnitCount is the unit-wide occurrence floor for local
	// annotations, measured against the verse's primary unit (default 3).
	MinUnitCount int

	// MinClusterVerses is how many distinct verses an item must span to
	// qualify as a unit cluster (default 2). A single recurrence still
	// qualifies when it pairs the unit's first and last verse.
	MinClusterVerses int
}

func (o Options) withDefaults() Options {
	if o.MinVersePositions == 0 {
		o.MinVersePositions = DefaultMinVersePositions
	}
	if o.MinUnitCount == 0 {
		o.MinUnitCount = DefaultMinUnitCount
	}
	if o.MinClusterVerses == 0 {
		o.MinClusterVerses = DefaultMinClusterVerses
	}
	return o
}

// Annotation is the sound-pattern record for one verse: root and initial
// positions that cleared the local thresholds, plus every root or initial
// that clusters anywhere in the verse's units mapped to the verse
// references where it occurs.
type Annotation struct {
	LocalRoots    map[string][]int
	LocalInitials map[string][]int
	UnitClusters  map[string][]string
}

// Annotations is the full artifact structure: book, chapter, verse.
type Annotations map[string]map[int]map[int]*Annotation

// marks holds one verse's root and initial occurrences, keyed to token
// positions.
type marks struct {
	roots    map[string][]int
	initials map[string][]int
}

// verseMarks matches a verse's tokens against the lexicon. A token
// contributes its entry's derived root key and initial letter at its
// position; tokens with no id or no lexicon entry contribute nothing but
// still occupy their position.
func verseMarks(v TokenVerse, lex lexicon.Lexicon) marks {
	m := marks{roots: map[string][]int{}, initials: map[string][]int{}}
	for pos, id := range v.IDs {
		if id == "" {
			continue
		}
		e := lex[id]
		if e == nil {
			continue
		}
		if e.RootKey != "" {
			m.roots[e.RootKey] = append(m.roots[e.RootKey], pos)
		}
		if e.Initial != "" {
			m.initials[e.Initial] = append(m.initials[e.Initial], pos)
		}
	}
	return m
}

// unitStats aggregates one literary unit's occurrences across its member
// verses.
type unitStats struct {
	verseRefs     []string
	rootCounts    map[string]int
	initialCounts map[string]int
	rootVerses    map[string]map[string]bool
	initialVerses map[string]map[string]bool
}

func (u *unitStats) add(ref string, m marks) {
	for root, positions := range m.roots {
		u.rootCounts[root] += len(positions)
		if u.rootVerses[root] == nil {
			u.rootVerses[root] = map[string]bool{}
		}
		u.rootVerses[root][ref] = true
	}
	for initial, positions := range m.initials {
		u.initialCounts[initial] += len(positions)
		if u.initialVerses[initial] == nil {
			u.initialVerses[initial] = map[string]bool{}
		}
		u.initialVerses[initial][ref] = true
	}
}

// clusters reports whether an item's verse spread qualifies for unit
// clustering: enough distinct verses, or occurrence at both the unit's
// first and last verse. In a single-verse unit those are the same verse,
// so any item there qualifies.
func (u *unitStats) clusters(verses map[string]bool, minVerses int) bool {
	if len(verses) >= minVerses {
		return true
	}
	if len(u.verseRefs) == 0 {
		return false
	}
	return verses[u.verseRefs[0]] && verses[u.verseRefs[len(u.verseRefs)-1]]
}

// Build runs the whole-corpus batch: verse marks, per-unit aggregation,
// then threshold filtering per verse. The corpus, unit set, and lexicon
// are read only.
func Build(tc *TokenCorpus, set units.Set, lex lexicon.Lexicon, opts Options) Annotations {
	opts = opts.withDefaults()

	// Book, chapter, verse lookup. Duplicate references keep the last
	// record, matching loader order.
	index := map[string]map[int]map[int]TokenVerse{}
	for _, v := range tc.Verses {
		chapters := index[v.Book]
		if chapters == nil {
			chapters = map[int]map[int]TokenVerse{}
			index[v.Book] = chapters
		}
		if chapters[v.Chapter] == nil {
			chapters[v.Chapter] = map[int]TokenVerse{}
		}
		chapters[v.Chapter][v.Verse] = v
	}

	verseStats := map[string]marks{}
	for _, chapters := range index {
		for _, verses := range chapters {
			for _, v := range verses {
				verseStats[verseKey(v.Book, v.Chapter, v.Verse)] = verseMarks(v, lex)
			}
		}
	}

	verseUnits := map[string][]*unitStats{}
	for book, bookUnits := range set {
		chapters := index[book]
		if chapters == nil {
			continue
		}
		ordered := orderedRefs(chapters)

		for _, u := range bookUnits {
			stats := &unitStats{
				rootCounts:    map[string]int{},
				initialCounts: map[string]int{},
				rootVerses:    map[string]map[string]bool{},
				initialVerses: map[string]map[string]bool{},
			}
			var memberKeys []string
			for _, cv := range ordered {
				if !u.Contains(cv[0], cv[1]) {
					continue
				}
				ref := fmt.Sprintf("%d:%d", cv[0], cv[1])
				key := verseKey(book, cv[0], cv[1])
				stats.verseRefs = append(stats.verseRefs, ref)
				memberKeys = append(memberKeys, key)
				stats.add(ref, verseStats[key])
			}
			for _, key := range memberKeys {
				verseUnits[key] = append(verseUnits[key], stats)
			}
		}
	}

	out := Annotations{}
	for book, chapters := range index {
		bookOut := map[int]map[int]*Annotation{}
		for chapter, verses := range chapters {
			chapterOut := map[int]*Annotation{}
			for verse := range verses {
				key := verseKey(book, chapter, verse)
				stats := verseStats[key]
				containing := verseUnits[key]
				primary := primaryUnit(containing)

				a := &Annotation{
					LocalRoots:    map[string][]int{},
					LocalInitials: map[string][]int{},
					UnitClusters:  map[string][]string{},
				}
				for root, positions := range stats.roots {
					if len(positions) < opts.MinVersePositions {
						continue
					}
					if primary != nil && primary.rootCounts[root] >= opts.MinUnitCount {
						a.LocalRoots[root] = positions
					}
				}
				for initial, positions := range stats.initials {
					if len(positions) < opts.MinVersePositions {
						continue
					}
					if primary != nil && primary.initialCounts[initial] >= opts.MinUnitCount {
						a.LocalInitials[initial] = positions
					}
				}

				clusterRefs := map[string]map[string]bool{}
				for _, u := range containing {
					for root, refsWith := range u.rootVerses {
						if u.clusters(refsWith, opts.MinClusterVerses) {
							mergeRefs(clusterRefs, root, refsWith)
						}
					}
					for initial, refsWith := range u.initialVerses {
						if u.clusters(refsWith, opts.MinClusterVerses) {
							mergeRefs(clusterRefs, initial, refsWith)
						}
					}
				}
				for item, refSet := range clusterRefs {
					a.UnitClusters[item] = sortedRefs(refSet)
				}

				chapterOut[verse] = a
			}
			bookOut[chapter] = chapterOut
		}
		out[book] = bookOut
	}
	return out
}

func verseKey(book string, chapter, verse int) string {
	return fmt.Sprintf("%s|%d|%d", book, chapter, verse)
}

// orderedRefs returns a book's (chapter, verse) pairs in reading order.
func orderedRefs(chapters map[int]map[int]TokenVerse) [][2]int {
	var out [][2]int
	chapterNums := make([]int, 0, len(chapters))
	for ch := range chapters {
		chapterNums = append(chapterNums, ch)
	}
	sort.Ints(chapterNums)
	for _, ch := range chapterNums {
		verseNums := make([]int, 0, len(chapters[ch]))
		for v := range chapters[ch] {
			verseNums = append(verseNums, v)
		}
		sort.Ints(verseNums)
		for _, v := range verseNums {
			out = append(out, [2]int{ch, v})
		}
	}
	return out
}

// primaryUnit picks the tightest containing unit: fewest member verses,
// first wins on ties.
func primaryUnit(containing []*unitStats) *unitStats {
	var primary *unitStats
	for _, u := range containing {
		if primary == nil || len(u.verseRefs) < len(primary.verseRefs) {
			primary = u
		}
	}
	return primary
}

func mergeRefs(into map[string]map[string]bool, item string, refs map[string]bool) {
	if into[item] == nil {
		into[item] = map[string]bool{}
	}
	for ref := range refs {
		into[item][ref] = true
	}
}

// sortedRefs orders "chapter:verse" references numerically.
func sortedRefs(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for ref := range set {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, vi := splitRef(out[i])
		cj, vj := splitRef(out[j])
		if ci != cj {
			return ci < cj
		}
		return vi < vj
	})
	return out
}

func splitRef(ref string) (chapter, verse int) {
	fmt.Sscanf(ref, "%d:%d", &chapter, &verse)
	return
}
