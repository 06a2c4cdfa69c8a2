package corpus

import (
	"sort"

	"github.com/FocuswithJustin/CedarLex/core/refs"
)

// Index is the process-lifetime lookup structure shared by the frequency
// analyzer, the literary-unit math, and the sound-pattern batch. It is built
// explicitly once from an immutable corpus and never mutated afterwards, so
// concurrent readers need no synchronization.
type Index struct {
	books        []string
	bookOrder    map[string]int
	chapterCount map[string]int
	maxVerse     map[string]map[int]int
	verses       map[string]map[int][]Verse
	globalCounts map[string]int
}

// BuildIndex constructs the index for a corpus. Pass the result by reference
// into the analyzer and the batch; there is no hidden global state.
func BuildIndex(c *Corpus) *Index {
	idx := &Index{
		bookOrder:    make(map[string]int),
		chapterCount: make(map[string]int),
		maxVerse:     make(map[string]map[int]int),
		verses:       make(map[string]map[int][]Verse),
		globalCounts: make(map[string]int),
	}

	seen := make(map[string]bool)
	for _, v := range c.Verses {
		if !seen[v.Book] {
			seen[v.Book] = true
			idx.books = append(idx.books, v.Book)
			idx.bookOrder[v.Book] = v.BookOrder
		}
		if v.Chapter > idx.chapterCount[v.Book] {
			idx.chapterCount[v.Book] = v.Chapter
		}

		mv := idx.maxVerse[v.Book]
		if mv == nil {
			mv = make(map[int]int)
			idx.maxVerse[v.Book] = mv
		}
		if v.Verse > mv[v.Chapter] {
			mv[v.Chapter] = v.Verse
		}

		chapters := idx.verses[v.Book]
		if chapters == nil {
			chapters = make(map[int][]Verse)
			idx.verses[v.Book] = chapters
		}
		chapters[v.Chapter] = append(chapters[v.Chapter], v)

		for _, id := range refs.IDs(v.Text) {
			idx.globalCounts[id]++
		}
	}

	// Books with recorded canonical positions sort by them; the rest keep
	// their first-seen order behind.
	sort.SliceStable(idx.books, func(i, j int) bool {
		oi, oj := idx.bookOrder[idx.books[i]], idx.bookOrder[idx.books[j]]
		if oi != 0 && oj != 0 {
			return oi < oj
		}
		return oi != 0 && oj == 0
	})

	for _, chapters := range idx.verses {
		for _, vs := range chapters {
			sort.SliceStable(vs, func(i, j int) bool { return vs[i].Verse < vs[j].Verse })
		}
	}

	return idx
}

// Books returns the book names in canonical order.
func (idx *Index) Books() []string {
	out := make([]string, len(idx.books))
	copy(out, idx.books)
	return out
}

// HasBook reports whether the corpus contains the named book.
func (idx *Index) HasBook(book string) bool {
	_, ok := idx.verses[book]
	return ok
}

// ChapterCount returns the highest chapter number in a book, or 0 when the
// book is unknown.
func (idx *Index) ChapterCount(book string) int {
	return idx.chapterCount[book]
}

// MaxVerse returns the highest verse number in a chapter, or 0 when the
// chapter is unknown.
func (idx *Index) MaxVerse(book string, chapter int) int {
	return idx.maxVerse[book][chapter]
}

// Chapter returns the verses of a chapter in verse order. The returned slice
// is shared; callers must not modify it.
func (idx *Index) Chapter(book string, chapter int) []Verse {
	return idx.verses[book][chapter]
}

// Chapters returns a book's chapter numbers in ascending order.
func (idx *Index) Chapters(book string) []int {
	chapters := idx.verses[book]
	out := make([]int, 0, len(chapters))
	for ch := range chapters {
		out = append(out, ch)
	}
	sort.Ints(out)
	return out
}

// GlobalCount returns a reference id's occurrence count across the whole
// corpus.
func (idx *Index) GlobalCount(id string) int {
	return idx.globalCounts[id]
}

// CountVersesInRange counts verses spanned by an inclusive
// (startChapter, startVerse)..(endChapter, endVerse) range within a book.
// Chapters absent from the corpus contribute nothing.
func (idx *Index) CountVersesInRange(book string, startChapter, startVerse, endChapter, endVerse int) int {
	total := 0
	counts := idx.maxVerse[book]
	for ch := startChapter; ch <= endChapter; ch++ {
		max := counts[ch]
		if max == 0 {
			continue
		}
		lo := 1
		if ch == startChapter {
			lo = startVerse
		}
		hi := max
		if ch == endChapter {
			hi = endVerse
		}
		if hi > lo-1 {
			total += hi - lo + 1
		}
	}
	return total
}

// HeatCell is one chapter's occurrence count for a reference id.
type HeatCell struct {
	Chapter int `json:"chapter"`
	Count   int `json:"count"`
}

// Heatmap holds per-book, per-chapter occurrence counts for one id.
type Heatmap struct {
	ID    string                `json:"id"`
	Max   int                   `json:"max"`
	Books map[string][]HeatCell `json:"books"`
}

// HeatmapFor aggregates per-chapter occurrence counts of a reference id,
// one row per book covering chapters 1..ChapterCount.
func (idx *Index) HeatmapFor(id string) *Heatmap {
	hm := &Heatmap{ID: id, Books: make(map[string][]HeatCell, len(idx.books))}
	for _, book := range idx.books {
		row := make([]HeatCell, 0, idx.chapterCount[book])
		for ch := 1; ch <= idx.chapterCount[book]; ch++ {
			count := 0
			for _, v := range idx.verses[book][ch] {
				for _, mid := range refs.IDs(v.Text) {
					if mid == id {
						count++
					}
				}
			}
			if count > hm.Max {
				hm.Max = count
			}
			row = append(row, HeatCell{Chapter: ch, Count: count})
		}
		hm.Books[book] = row
	}
	return hm
}
