package tui

// glyphHeight is the number of rows of a large glyph.
const glyphHeight = 5

// glyphs is a block font for the characters FormatRemaining produces.
var glyphs = map[rune][glyphHeight]string{
	'0': {"███", "█ █", "█ █", "█ █", "███"},
	'1': {"  █", "  █", "  █", "  █", "  █"},
	'2': {"███", "  █", "███", "█  ", "███"},
	'3': {"███", "  █", "███", "  █", "███"},
	'4': {"█ █", "█ █", "███", "  █", "  █"},
	'5': {"███", "█  ", "███", "  █", "███"},
	'6': {"███", "█  ", "███", "█ █", "███"},
	'7': {"███", "  █", "  █", "  █", "  █"},
	'8': {"███", "█ █", "███", "█ █", "███"},
	'9': {"███", "█ █", "███", "  █", "███"},
	':': {" ", "█", " ", "█", " "},
}

// bigText renders s in the block font, one string per row. Characters
// without a glyph are skipped.
func bigText(s string) [glyphHeight]string {
	var rows [glyphHeight]string

	first := true

	for _, r := range s {
		g, ok := glyphs[r]
		if !ok {
			continue
		}

		for i := range rows {
			if !first {
				rows[i] += " "
			}

			rows[i] += g[i]
		}

		first = false
	}

	return rows
}
