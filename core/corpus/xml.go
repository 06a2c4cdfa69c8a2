package corpus

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/CedarLex/core/errors"
)

// LoadXML reads a corpus from an OSIS-style XML document of the shape
//
//	<bible>
//	  <book name="Genesis" order="1">
//	    <chapter number="1">
//	      <verse number="1">In the beginning{H7225} ...</verse>
//	    </chapter>
//	  </book>
//	</bible>
//
// Verse text keeps its inline reference markers verbatim. Structural
// attributes are required; a book without a name or a verse without a
// number is rejected.
func LoadXML(r io.Reader) (*Corpus, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.NewParse("XML", "", err.Error())
	}
	return corpusFromXML(doc, "")
}

// LoadXMLFile reads an XML corpus from disk.
func LoadXMLFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return nil, errors.NewParse("XML", path, err.Error())
	}
	return corpusFromXML(doc, path)
}

func corpusFromXML(doc *xmlquery.Node, path string) (*Corpus, error) {
	c := &Corpus{}
	for _, bookNode := range xmlquery.Find(doc, "//book") {
		name := bookNode.SelectAttr("name")
		if name == "" {
			return nil, errors.NewParse("XML", path, "book element is missing a name attribute")
		}
		order := 0
		if o := bookNode.SelectAttr("order"); o != "" {
			n, err := strconv.Atoi(o)
			if err != nil {
				return nil, errors.NewParse("XML", path, "book "+name+": bad order attribute "+strconv.Quote(o))
			}
			order = n
		}

		for _, chapterNode := range xmlquery.Find(bookNode, "chapter") {
			chapter, err := requiredNumber(chapterNode, "chapter", path)
			if err != nil {
				return nil, err
			}
			for _, verseNode := range xmlquery.Find(chapterNode, "verse") {
				verse, err := requiredNumber(verseNode, "verse", path)
				if err != nil {
					return nil, err
				}
				c.Verses = append(c.Verses, Verse{
					Book:      name,
					BookOrder: order,
					Chapter:   chapter,
					Verse:     verse,
					Text:      strings.TrimSpace(verseNode.InnerText()),
				})
			}
		}
	}
	if len(c.Verses) == 0 {
		return nil, errors.NewParse("XML", path, "document contains no verse elements")
	}
	return c, nil
}

func requiredNumber(node *xmlquery.Node, element, path string) (int, error) {
	raw := node.SelectAttr("number")
	if raw == "" {
		return 0, errors.NewParse("XML", path, element+" element is missing a number attribute")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.NewParse("XML", path, element+" number "+strconv.Quote(raw)+" out of range")
	}
	return n, nil
}
