package soundmap

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/CedarLex/core/errors"
	"github.com/ulikunitz/xz"
)

// MarshalJSON emits the artifact with fully deterministic key ordering:
// books lexicographic, chapters and verses numeric ascending, annotation
// keys sorted. Running the batch twice on identical inputs produces
// byte-identical output.
func (a Annotations) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, book := range sortedStringKeys(a) {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(&b, book)
		writeChapters(&b, a[book])
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func writeChapters(b *bytes.Buffer, chapters map[int]map[int]*Annotation) {
	b.WriteByte('{')
	for i, ch := range sortedIntKeys(chapters) {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(b, strconv.Itoa(ch))
		writeVerses(b, chapters[ch])
	}
	b.WriteByte('}')
}

func writeVerses(b *bytes.Buffer, verses map[int]*Annotation) {
	b.WriteByte('{')
	for i, v := range sortedIntKeys(verses) {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(b, strconv.Itoa(v))
		verses[v].marshalInto(b)
	}
	b.WriteByte('}')
}

func (an *Annotation) marshalInto(b *bytes.Buffer) {
	b.WriteString(`{"local_roots":`)
	writePositions(b, an.LocalRoots)
	b.WriteString(`,"local_initials":`)
	writePositions(b, an.LocalInitials)
	b.WriteString(`,"unit_clusters":`)
	writeClusters(b, an.UnitClusters)
	b.WriteByte('}')
}

// MarshalJSON keeps standalone annotation encoding consistent with the
// artifact's ordering rules.
func (an *Annotation) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	an.marshalInto(&b)
	return b.Bytes(), nil
}

func writePositions(b *bytes.Buffer, m map[string][]int) {
	b.WriteByte('{')
	for i, k := range sortedStringKeys(m) {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(b, k)
		b.WriteByte('[')
		for j, p := range m[k] {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(p))
		}
		b.WriteByte(']')
	}
	b.WriteByte('}')
}

func writeClusters(b *bytes.Buffer, m map[string][]string) {
	b.WriteByte('{')
	for i, k := range sortedStringKeys(m) {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(b, k)
		refs, _ := json.Marshal(m[k])
		b.Write(refs)
	}
	b.WriteByte('}')
}

func writeKey(b *bytes.Buffer, k string) {
	quoted, _ := json.Marshal(k)
	b.Write(quoted)
	b.WriteByte(':')
}

func sortedStringKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Encode renders the artifact as indented UTF-8 JSON with a trailing
// newline.
func (a Annotations) Encode() ([]byte, error) {
	compact, err := json.Marshal(a)
	if err != nil {
		return nil, errors.NewParse("JSON", "", err.Error())
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, errors.NewParse("JSON", "", err.Error())
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Checksum returns the hex BLAKE3 digest of the encoded artifact.
func (a Annotations) Checksum() (string, error) {
	data, err := a.Encode()
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Write encodes the artifact to a writer.
func (a Annotations) Write(w io.Writer) error {
	data, err := a.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes the artifact to disk. Paths ending in ".xz" are
// xz-compressed.
func (a Annotations) WriteFile(path string) error {
	data, err := a.Encode()
	if err != nil {
		return err
	}

	if strings.HasSuffix(path, ".xz") {
		var buf bytes.Buffer
		zw, err := xz.NewWriter(&buf)
		if err != nil {
			return errors.NewIO("compress", path, err)
		}
		if _, err := zw.Write(data); err != nil {
			return errors.NewIO("compress", path, err)
		}
		if err := zw.Close(); err != nil {
			return errors.NewIO("compress", path, err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// ReadFile loads a previously written artifact, transparently
// decompressing ".xz" paths. The renderer treats the result as opaque
// lookup data.
func ReadFile(path string) (Annotations, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		zr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	var loose map[string]map[string]map[string]*rawAnnotation
	if err := json.Unmarshal(data, &loose); err != nil {
		return nil, errors.NewParse("JSON", path, err.Error())
	}

	out := Annotations{}
	for book, chapters := range loose {
		bookOut := map[int]map[int]*Annotation{}
		for chStr, verses := range chapters {
			ch, err := strconv.Atoi(chStr)
			if err != nil {
				return nil, errors.NewParse("JSON", path, "non-numeric chapter key "+strconv.Quote(chStr))
			}
			chapterOut := map[int]*Annotation{}
			for vStr, ra := range verses {
				v, err := strconv.Atoi(vStr)
				if err != nil {
					return nil, errors.NewParse("JSON", path, "non-numeric verse key "+strconv.Quote(vStr))
				}
				chapterOut[v] = ra.canonical()
			}
			bookOut[ch] = chapterOut
		}
		out[book] = bookOut
	}
	return out, nil
}

type rawAnnotation struct {
	LocalRoots    map[string][]int    `json:"local_roots"`
	LocalInitials map[string][]int    `json:"local_initials"`
	UnitClusters  map[string][]string `json:"unit_clusters"`
}

func (ra *rawAnnotation) canonical() *Annotation {
	a := &Annotation{
		LocalRoots:    ra.LocalRoots,
		LocalInitials: ra.LocalInitials,
		UnitClusters:  ra.UnitClusters,
	}
	if a.LocalRoots == nil {
		a.LocalRoots = map[string][]int{}
	}
	if a.LocalInitials == nil {
		a.LocalInitials = map[string][]int{}
	}
	if a.UnitClusters == nil {
		a.UnitClusters = map[string][]string{}
	}
	return a
}
