package validation

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		path    string
		want    string
		wantErr error
	}{
		{"simple relative", "/data", "corpus.json", "corpus.json", nil},
		{"nested relative", "/data", "lexicons/hebrew.json", "lexicons/hebrew.json", nil},
		{"dot segments resolved", "/data", "./a/./b.json", "a/b.json", nil},
		{"empty", "/data", "", "", ErrEmptyPath},
		{"parent escape", "/data", "../etc/passwd", "", ErrPathTraversal},
		{"embedded escape", "/data", "a/../../etc", "", ErrPathTraversal},
		{"absolute", "/data", "/etc/passwd", "", ErrPathTraversal},
		{"too long", "/data", strings.Repeat("a", MaxPathLength+1), "", ErrPathTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(tt.base, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	valid := []string{"soundmap.json", "dictionary-export.json", "a.json.xz", "kjv_tokens.json"}
	for _, name := range valid {
		if err := ValidateFilename(name); err != nil {
			t.Errorf("ValidateFilename(%q) = %v", name, err)
		}
	}

	invalid := []string{
		"", ".", "..", "a/b.json", "a\\b.json", "a\x00b", "-flag.json",
		"ctl\x07.json", strings.Repeat("x", MaxFilenameLength+1),
	}
	for _, name := range invalid {
		if err := ValidateFilename(name); err == nil {
			t.Errorf("ValidateFilename(%q) should fail", name)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my/export.json", "my_export.json"},
		{"  spaced.json  ", "spaced.json"},
		{"--flagged.json", "flagged.json"},
		{"nul\x00l.json", "null.json"},
	}
	for _, tt := range tests {
		got, err := SanitizeFilename(tt.in)
		if err != nil {
			t.Errorf("SanitizeFilename(%q) = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := SanitizeFilename(""); err == nil {
		t.Error("empty filename should fail")
	}
}

func TestValidateFileType(t *testing.T) {
	xzHeader := append([]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, make([]byte, 32)...)
	sqliteHeader := append([]byte("SQLite format 3\x00"), make([]byte, 32)...)

	tests := []struct {
		name     string
		content  []byte
		filename string
		want     FileType
		wantErr  bool
	}{
		{"xz artifact", xzHeader, "soundmap.json.xz", FileTypeXZ, false},
		{"sqlite lexicon", sqliteHeader, "lexicon.sqlite", FileTypeSQLite, false},
		{"json corpus", []byte(`{"verses": []}`), "corpus.json", FileTypeJSON, false},
		{"xml corpus", []byte(`<?xml version="1.0"?><bible/>`), "kjv.xml", FileTypeXML, false},
		{"mismatched extension", sqliteHeader, "corpus.json", FileTypeUnknown, true},
		{"unknown extension passes through", []byte("plain"), "notes.dat", FileTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFileType(bytes.NewReader(tt.content), tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got type %s", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
