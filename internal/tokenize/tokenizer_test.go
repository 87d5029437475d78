package tokenize

import (
	"errors"
	"reflect"
	"testing"

	"timeweave/internal/temporal"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func TestTokenizeSplitsWordsAndPunctuation(t *testing.T) {
	tk := New(DefaultAbbreviations)
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"basic", "Hola mundo.", []string{"Hola", "mundo", "."}},
		{"abbreviation", "El Dr. Pérez llegó.", []string{"El", "Dr.", "Pérez", "llegó", "."}},
		{"dotted abbreviation", "Frutas, p.ej. peras", []string{"Frutas", ",", "p.ej.", "peras"}},
		{"decimals", "Cuesta 3.50 euros, o 1,000.25.", []string{"Cuesta", "3.50", "euros", ",", "o", "1,000.25", "."}},
		{"inverted marks", "¿Qué tal? ¡Bien!", []string{"¿", "Qué", "tal", "?", "¡", "Bien", "!"}},
		{"quotes", `"Hi." she said`, []string{`"`, "Hi", `."`, "she", "said"}},
		{"joiners", "don't well-known l'eau", []string{"don't", "well-known", "l'eau"}},
		{"signed number", "-2.5 grados", []string{"-2.5", "grados"}},
		{"ordinal", "the 3rd run", []string{"the", "3rd", "run"}},
		{"ellipsis", "Wait...", []string{"Wait", "..."}},
		{"brackets", "(-3)", []string{"(", "-3", ")"}},
		{"glued sentence", "fin.¿Sí?", []string{"fin", ".", "¿", "Sí", "?"}},
		{"dash", "uno - dos", []string{"uno", "-", "dos"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := tk.Tokenize(tt.text)
			if err != nil {
				t.Fatalf("Tokenize returned error: %v", err)
			}
			if got := texts(tokens); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizeSpansAreRuneOffsets(t *testing.T) {
	text := "Él  dijo:\n«sí»."
	tokens, err := New(nil).Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	runes := []rune(text)
	prevEnd := 0
	for i, tok := range tokens {
		if tok.CharStart >= tok.CharEnd {
			t.Fatalf("token %d has empty span %+v", i, tok)
		}
		if tok.CharStart < prevEnd {
			t.Fatalf("token %d overlaps previous token", i)
		}
		if got := string(runes[tok.CharStart:tok.CharEnd]); got != tok.Text {
			t.Fatalf("token %d span renders %q, want %q", i, got, tok.Text)
		}
		prevEnd = tok.CharEnd
	}
	want := []string{"Él", "dijo", ":", "«", "sí", "»."}
	if got := texts(tokens); !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %q, want %q", got, want)
	}
}

func TestTokenizePrecedence(t *testing.T) {
	plain, err := New(nil).Tokenize("2.º")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if got := texts(plain); !reflect.DeepEqual(got, []string{"2", ".", "º"}) {
		t.Fatalf("without abbreviation = %q", got)
	}
	withAbbr, err := New([]string{"2.º"}).Tokenize("2.º")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if got := texts(withAbbr); !reflect.DeepEqual(got, []string{"2.º"}) {
		t.Fatalf("abbreviation should win over number, got %q", got)
	}
	noAbbr, _ := New(nil).Tokenize("Dr. No")
	if got := texts(noAbbr); !reflect.DeepEqual(got, []string{"Dr", ".", "No"}) {
		t.Fatalf("unconfigured abbreviation = %q", got)
	}
	caseSensitive, _ := New([]string{"Dr."}).Tokenize("dr.")
	if got := texts(caseSensitive); !reflect.DeepEqual(got, []string{"dr", "."}) {
		t.Fatalf("abbreviation matching must be case-sensitive, got %q", got)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		tokens, err := New(nil).Tokenize(text)
		if err != nil {
			t.Fatalf("Tokenize(%q) returned error: %v", text, err)
		}
		if len(tokens) != 0 {
			t.Fatalf("Tokenize(%q) = %v, want none", text, tokens)
		}
	}
}

func TestTokenizeRejectsInvalidUTF8(t *testing.T) {
	_, err := New(nil).Tokenize("ok \xff tail")
	if !errors.Is(err, temporal.ErrTokenization) {
		t.Fatalf("expected tokenization error, got %v", err)
	}
	var tokErr *temporal.TokenizationError
	if !errors.As(err, &tokErr) || tokErr.Offset != 3 {
		t.Fatalf("expected offset 3, got %+v", tokErr)
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	tk := New(DefaultAbbreviations)
	text := "Sr. García, ¿vino el 3.5 de mayo? Sí; etc. Fin."
	first, _ := tk.Tokenize(text)
	for i := 0; i < 5; i++ {
		again, _ := tk.Tokenize(text)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestIsAbbreviation(t *testing.T) {
	tk := New([]string{" Dr. ", "", "etc."})
	if !tk.IsAbbreviation("Dr.") || !tk.IsAbbreviation("etc.") {
		t.Fatal("expected configured abbreviations")
	}
	if tk.IsAbbreviation("Sr.") {
		t.Fatal("unexpected abbreviation")
	}
}
