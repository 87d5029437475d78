package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	terminalMarks = ".!?…。！？"
	closingMarks  = "\"'”’»)]}」』"
)

// trimClosing strips trailing closing quotes and brackets.
func trimClosing(text string) string {
	return strings.TrimRight(text, closingMarks)
}

// endsSentence reports whether text ends in a terminal mark once trailing
// closing marks are ignored.
func endsSentence(text string) bool {
	trimmed := trimClosing(text)
	if trimmed == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return strings.ContainsRune(terminalMarks, r)
}

// closingOnly reports whether text is made only of closing marks.
func closingOnly(text string) bool {
	return text != "" && trimClosing(text) == ""
}

// endsWithPunctuation reports whether the last rune of text is punctuation.
func endsWithPunctuation(text string) bool {
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	return unicode.IsPunct(r)
}

// startsUpper reports whether text opens a new sentence: an uppercase letter,
// an inverted Spanish mark or an opening quote or bracket before either.
func startsUpper(text string) bool {
	for _, r := range text {
		switch {
		case r == '¿' || r == '¡':
			return true
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			return true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return false
		}
	}
	return false
}
