package textutil

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Canción", "cancion"},
		{"ÉXITO", "exito"},
		{"Straße", "strasse"},
		{"niño", "nino"},
		{"", ""},
		{"¿", "¿"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mundo.", "mundo"},
		{" ¿Qué ", "que"},
		{".", "."},
		{"?!", "?!"},
		{"3,5", "35"},
	}
	for _, tt := range tests {
		if got := MatchKey(tt.in); got != tt.want {
			t.Errorf("MatchKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "ab", 2},
		{"kitten", "sitting", 3},
		{"hola", "hola", 0},
		{"año", "ano", 1},
		{"holamundo", "hola", 5},
	}
	for _, tt := range tests {
		if got := EditDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalizedDistanceBounds(t *testing.T) {
	if got := NormalizedDistance("", ""); got != 0 {
		t.Fatalf("empty distance = %v", got)
	}
	if got := NormalizedDistance("abc", "xyz"); got != 1 {
		t.Fatalf("disjoint distance = %v", got)
	}
	if got := NormalizedDistance("mundo", "mundos"); got <= 0 || got >= 0.2 {
		t.Fatalf("near distance = %v", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WhisperX large-v3", "whisperx_large-v3"},
		{"  ", "unknown"},
		{"ElevenLabs / Alignment", "elevenlabs_alignment"},
		{"Canción #1", "cancion_1"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
