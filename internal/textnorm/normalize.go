package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Mathematical Alphanumeric Symbols block, where the stylized bold/italic/
// script letter variants live.
const (
	mathAlnumFirst = 0x1D400
	mathAlnumLast  = 0x1D7FF
)

var (
	foldOnce  sync.Once
	foldTable map[rune]rune
)

// foldStylized maps a stylized mathematical letter variant to its ASCII
// counterpart via NFKC decomposition. Runes outside the block, and block
// runes without a single-letter decomposition, are returned unchanged.
func foldStylized(r rune) rune {
	if r < mathAlnumFirst || r > mathAlnumLast {
		return r
	}
	foldOnce.Do(buildFoldTable)
	if plain, ok := foldTable[r]; ok {
		return plain
	}
	return r
}

func buildFoldTable() {
	foldTable = make(map[rune]rune, mathAlnumLast-mathAlnumFirst+1)
	for r := rune(mathAlnumFirst); r <= mathAlnumLast; r++ {
		folded := norm.NFKC.String(string(r))
		if len(folded) == 1 {
			plain := rune(folded[0])
			if (plain >= 'A' && plain <= 'Z') || (plain >= 'a' && plain <= 'z') || (plain >= '0' && plain <= '9') {
				foldTable[r] = plain
			}
		}
	}
}

// Normalize produces a single-line, comparison-friendly form of raw text:
// stylized letters become ASCII, every whitespace run becomes one space, and
// leading/trailing whitespace is removed. All other characters are preserved.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	inSpace := false
	wrote := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && wrote {
			b.WriteByte(' ')
		}
		inSpace = false
		wrote = true
		b.WriteRune(foldStylized(r))
	}
	return b.String()
}
