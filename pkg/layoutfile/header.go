package layoutfile

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	errs "github.com/matzehuels/layoutview/pkg/errors"
)

// headerLexer splits LEF and DEF text into statements. Both formats are
// whitespace separated, end statements with ';' and use '#' comments.
var headerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "Word", Pattern: `[^\s;#]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	tokComment    = headerLexer.Symbols()["Comment"]
	tokWhitespace = headerLexer.Symbols()["Whitespace"]
	tokSemicolon  = headerLexer.Symbols()["Semicolon"]
)

// word is a significant token with its line placement.
type word struct {
	value string
	semi  bool
	line  int
	first bool // first on its line
	last  bool // last on its line
}

func scan(r io.Reader) ([]word, error) {
	lex, err := headerLexer.Lex("", r)
	if err != nil {
		return nil, err
	}
	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}
	words := make([]word, 0, len(toks))
	for _, t := range toks {
		if t.EOF() || t.Type == tokComment || t.Type == tokWhitespace {
			continue
		}
		words = append(words, word{value: t.Value, semi: t.Type == tokSemicolon, line: t.Pos.Line})
	}
	for i := range words {
		words[i].first = i == 0 || words[i-1].line != words[i].line
		words[i].last = i == len(words)-1 || words[i+1].line != words[i].line
	}
	return words, nil
}

// =============================================================================
// DEF
// =============================================================================

// DEFHeader is what InspectDEF reads from a DEF file.
type DEFHeader struct {
	Design string
	// Version is empty when the file has no VERSION statement.
	Version string
	// DBUPerMicron is 0 when the file has no UNITS statement.
	DBUPerMicron int
}

const errDEFHeader = "DEF error, missing or wrong design header"

// InspectDEF checks that a DEF file opens with a well-formed DESIGN
// statement and closes with END DESIGN on a line of its own, and returns
// the header fields it found on the way. A file that fails the check is a
// DEF_PARSE error.
func InspectDEF(r io.Reader) (*DEFHeader, error) {
	words, err := scan(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDEFParse, err, errDEFHeader)
	}

	h := &DEFHeader{}
	start := -1
	for i := 0; i+2 < len(words); i++ {
		w := words[i]
		if w.semi || !w.first {
			continue
		}
		switch w.value {
		case "VERSION":
			if h.Version == "" && !words[i+1].semi {
				h.Version = words[i+1].value
			}
		case "UNITS":
			if i+4 < len(words) && words[i+1].value == "DISTANCE" && words[i+2].value == "MICRONS" {
				if n, err := strconv.Atoi(words[i+3].value); err == nil {
					h.DBUPerMicron = n
				}
			}
		case "DESIGN":
			if start < 0 && validDesignName(words[i+1]) && words[i+2].semi {
				h.Design = words[i+1].value
				start = i + 3
			}
		}
	}
	if start < 0 || !hasEndDesign(words[start:]) {
		return nil, errs.New(errs.ErrCodeDEFParse, errDEFHeader)
	}
	return h, nil
}

// ValidateDEF checks the design header of a DEF file and returns the
// design name.
func ValidateDEF(r io.Reader) (string, error) {
	h, err := InspectDEF(r)
	if err != nil {
		return "", err
	}
	return h.Design, nil
}

func hasEndDesign(words []word) bool {
	for i := 0; i+1 < len(words); i++ {
		if words[i].first && words[i].value == "END" && words[i+1].value == "DESIGN" && words[i+1].last {
			return true
		}
	}
	return false
}

// validDesignName accepts word characters and the hierarchy separators
// '\', '/', '.' and '$'.
func validDesignName(w word) bool {
	if w.semi || w.value == "" {
		return false
	}
	for _, c := range w.value {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '\\', c == '/', c == '.', c == '$':
		default:
			return false
		}
	}
	return true
}

// =============================================================================
// LEF
// =============================================================================

// LEFKind classifies a LEF file by the top-level sections it contains.
type LEFKind struct {
	// IsTech is set by LAYER, VIA, VIARULE or UNITS sections.
	IsTech bool
	// IsLibrary is set by MACRO or SITE sections.
	IsLibrary bool
}

// sections maps top-level LEF section keywords to whether the section is
// closed by "END <name>" (true) or by "END <keyword>" (false).
var sections = map[string]bool{
	"LAYER":               true,
	"VIA":                 true,
	"VIARULE":             true,
	"NONDEFAULTRULE":      true,
	"SITE":                true,
	"MACRO":               true,
	"UNITS":               false,
	"PROPERTYDEFINITIONS": false,
	"SPACING":             false,
}

var (
	techSections    = map[string]bool{"LAYER": true, "VIA": true, "VIARULE": true, "UNITS": true}
	librarySections = map[string]bool{"MACRO": true, "SITE": true}
)

// InspectLEF reports which kinds of content a LEF file carries. Sections
// are only recognized at the top level, so a LAYER statement inside a
// MACRO pin does not make a library file a technology file.
func InspectLEF(r io.Reader) (LEFKind, error) {
	var kind LEFKind
	words, err := scan(r)
	if err != nil {
		return kind, errs.Wrap(errs.ErrCodeLEFParse, err, "LEF error, unreadable file")
	}

	for i := 0; i < len(words); i++ {
		w := words[i]
		named, ok := sections[w.value]
		if !ok || !w.first {
			continue
		}
		kind.IsTech = kind.IsTech || techSections[w.value]
		kind.IsLibrary = kind.IsLibrary || librarySections[w.value]

		end := w.value
		if named {
			if i+1 >= len(words) {
				break
			}
			end = words[i+1].value
		}
		i = skipSection(words, i+1, end)
	}
	return kind, nil
}

// skipSection returns the index of the last word of the "END name" line
// closing a section, or the last index if the section is never closed.
func skipSection(words []word, from int, name string) int {
	for i := from; i+1 < len(words); i++ {
		if words[i].first && words[i].value == "END" && words[i+1].value == name {
			return i + 1
		}
	}
	return len(words) - 1
}

// ClassifyLEF fills in the classification of a LEF file that the uploader
// left unset.
func ClassifyLEF(f *DesignFile, r io.Reader) error {
	if f.IsTech || f.IsLibrary {
		return nil
	}
	kind, err := InspectLEF(r)
	if err != nil {
		return fmt.Errorf("classify %s: %w", f.FileName, err)
	}
	f.IsTech, f.IsLibrary = kind.IsTech, kind.IsLibrary
	return nil
}
