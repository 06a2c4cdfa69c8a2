// Package overrides implements the per-user dictionary that customizes
// translation phrases and highlight colors for specific reference ids.
//
// The store itself is plain data passed into the resolver by reference;
// persistence is a load/save/validate boundary. Uploaded stores are
// validated hard: a malformed entry is rejected with a specific reason,
// never silently coerced.
package overrides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/CedarLex/core/errors"
	"github.com/FocuswithJustin/CedarLex/core/refs"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Color is a tri-state highlight color: unset (inherit the default),
// explicitly none (suppress any color), or a concrete hex value. JSON
// distinguishes the three as an absent key, null, and a "#rrggbb" string.
type Color struct {
	// Present reports whether the color key appeared at all.
	Present bool

	// None reports an explicit "no color" (JSON null). Meaningful only
	// when Present.
	None bool

	// Hex is the "#rrggbb" value when one is set.
	Hex string
}

// Unset is the zero Color: no opinion, inherit defaults.
func (c Color) Unset() bool { return !c.Present }

// HexValue returns the hex string and whether a concrete color is set.
func (c Color) HexValue() (string, bool) {
	if !c.Present || c.None {
		return "", false
	}
	return c.Hex, true
}

// Override is one user customization for a reference id.
type Override struct {
	// Translations is the ordered list of candidate display phrases
	// tried by the phrase matcher, longest first. Never empty.
	Translations []string

	// Color is the user's highlight color for this id.
	Color Color
}

// rawOverride is the boundary shape; Color stays raw so null and absent
// can be told apart.
type rawOverride struct {
	Translations []string        `json:"translations"`
	Color        json.RawMessage `json:"color"`
}

// Store holds one user's overrides keyed by reference id.
type Store struct {
	// ID identifies the store instance (session or export id).
	ID string

	entries map[string]*Override
}

// NewStore creates an empty store with a fresh identifier.
func NewStore() *Store {
	return &Store{
		ID:      uuid.NewString(),
		entries: make(map[string]*Override),
	}
}

// Len returns the number of overridden ids.
func (s *Store) Len() int { return len(s.entries) }

// Get returns the override for an id, or nil.
func (s *Store) Get(id string) *Override {
	return s.entries[id]
}

// Set adds or replaces the override for an id. Translations must be
// non-empty.
func (s *Store) Set(id string, o *Override) error {
	norm, ok := refs.NormalizeID(id)
	if !ok {
		return errors.NewValidation("id", fmt.Sprintf("%q is not a reference id", id))
	}
	if len(o.Translations) == 0 {
		return errors.NewValidation("translations", "override must carry at least one translation")
	}
	s.entries[norm] = o
	return nil
}

// Delete removes the override for an id. Removing an absent id is a no-op.
func (s *Store) Delete(id string) {
	delete(s.entries, id)
}

// SetColor sets a concrete highlight color for an id that already has an
// override.
func (s *Store) SetColor(id, hex string) error {
	o := s.entries[id]
	if o == nil {
		return errors.NewNotFound("override", id)
	}
	if !hexColorPattern.MatchString(hex) {
		return errors.NewValidation("color", fmt.Sprintf("%q is not a #rrggbb color", hex))
	}
	o.Color = Color{Present: true, Hex: hex}
	return nil
}

// ClearColor records an explicit "no color" for an id's override,
// distinct from never having set one.
func (s *Store) ClearColor(id string) error {
	o := s.entries[id]
	if o == nil {
		return errors.NewNotFound("override", id)
	}
	o.Color = Color{Present: true, None: true}
	return nil
}

// IDs returns the overridden ids sorted by language prefix, then by
// numeric value (H430 before H7225).
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		na, _ := strconv.Atoi(a[1:])
		nb, _ := strconv.Atoi(b[1:])
		return na < nb
	})
	return ids
}

// Load reads and validates an override store from JSON. Every entry must
// be an object with a non-empty translations list; colors must be null or
// a #rrggbb string. The first violation aborts the load with a specific
// reason.
func Load(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	return parse(data, "")
}

// LoadFile reads an override store from a JSON file on disk.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, path string) (*Store, error) {
	var rawEntries map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawEntries); err != nil {
		return nil, errors.NewParse("JSON", path, err.Error())
	}

	s := NewStore()
	for key, raw := range rawEntries {
		id, ok := refs.NormalizeID(key)
		if !ok {
			return nil, errors.NewValidation("id", fmt.Sprintf("key %q is not a reference id", key))
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, errors.NewValidation(key, "override entry must be an object")
		}

		var ro rawOverride
		if err := json.Unmarshal(raw, &ro); err != nil {
			return nil, errors.NewParse("JSON", path, fmt.Sprintf("entry %s: %v", key, err))
		}
		if len(ro.Translations) == 0 {
			return nil, errors.NewValidation(key, "translations must be a non-empty list")
		}
		for i, tr := range ro.Translations {
			if tr == "" {
				return nil, errors.NewValidation(key, fmt.Sprintf("translation %d is empty", i))
			}
		}

		color, err := parseColor(key, ro.Color)
		if err != nil {
			return nil, err
		}

		s.entries[id] = &Override{
			Translations: ro.Translations,
			Color:        color,
		}
	}
	return s, nil
}

func parseColor(key string, raw json.RawMessage) (Color, error) {
	if raw == nil {
		return Color{}, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return Color{Present: true, None: true}, nil
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return Color{}, errors.NewValidation(key, "color must be null or a hex string")
	}
	if !hexColorPattern.MatchString(hex) {
		return Color{}, errors.NewValidation(key, fmt.Sprintf("color %q is not a #rrggbb value", hex))
	}
	return Color{Present: true, Hex: hex}, nil
}

// Save writes the store as indented JSON with ids in prefix-then-numeric
// order, the layout users exchange as dictionary exports.
func (s *Store) Save(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	ids := s.IDs()
	for i, id := range ids {
		o := s.entries[id]
		entry := map[string]interface{}{
			"translations": o.Translations,
		}
		if o.Color.Present {
			if o.Color.None {
				entry["color"] = nil
			} else {
				entry["color"] = o.Color.Hex
			}
		}
		payload, err := json.MarshalIndent(entry, "  ", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding override entry")
		}
		fmt.Fprintf(&buf, "  %s: %s", strconv.Quote(id), payload)
		if i < len(ids)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.NewIO("write", "", err)
	}
	return nil
}

// SaveFile writes the store to disk.
func (s *Store) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	defer f.Close()
	return s.Save(f)
}

// ExportName returns a unique filename for a dictionary export.
func (s *Store) ExportName() string {
	return fmt.Sprintf("dictionary-%s.json", s.ID)
}
