package export

import (
	"bytes"
	"strings"
	"testing"

	"timeweave/internal/temporal"
)

func sampleIndex() *temporal.Index {
	return &temporal.Index{
		RunID: "ep-01",
		Words: []temporal.Word{
			{Index: 0, Text: "Hola", CharStart: 0, CharEnd: 4, TimeStart: 0, TimeEnd: 0.4},
			{Index: 1, Text: "mundo", CharStart: 5, CharEnd: 10, TimeStart: 0.5, TimeEnd: 0.9},
			{Index: 2, Text: ".", CharStart: 10, CharEnd: 11, TimeStart: 0.9, TimeEnd: 0.95},
			{Index: 3, Text: "Adiós", CharStart: 12, CharEnd: 17, TimeStart: 3661.5, TimeEnd: 3662.0004},
		},
		Sentences: []temporal.Sentence{{Order: 0, WordStart: 0, WordEnd: 2}, {Order: 1, WordStart: 3, WordEnd: 3}},
		Scenes:    []temporal.Scene{{Order: 0, SentenceStart: 0, SentenceEnd: 1}},
		Cues: []temporal.SubtitleCue{
			{Order: 0, WordStart: 0, WordEnd: 2, Text: "Hola mundo.", Sentence: 0},
			{Order: 1, WordStart: 3, WordEnd: 3, Text: "Adiós", Sentence: 1},
		},
	}
}

func TestWriteSRT(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSRT(&buf, sampleIndex()); err != nil {
		t.Fatalf("WriteSRT returned error: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:00,950\nHola mundo.\n\n2\n01:01:01,500 --> 01:01:02,000\nAdiós\n"
	if buf.String() != want {
		t.Fatalf("WriteSRT() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteSRTRejectsBrokenIndex(t *testing.T) {
	index := sampleIndex()
	index.Cues[1].WordStart = 2
	if err := WriteSRT(&bytes.Buffer{}, index); err == nil {
		t.Fatal("expected error for overlapping cues")
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := map[float64]string{
		-1:        "00:00:00,000",
		0.0004:    "00:00:00,000",
		0.0006:    "00:00:00,001",
		59.9996:   "00:01:00,000",
		86399.999: "23:59:59,999",
	}
	for in, want := range tests {
		if got := FormatTimestamp(in); got != want {
			t.Errorf("FormatTimestamp(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestIndexJSONRoundTrip(t *testing.T) {
	var first bytes.Buffer
	if err := WriteIndexJSON(&first, sampleIndex()); err != nil {
		t.Fatalf("WriteIndexJSON returned error: %v", err)
	}
	if !strings.Contains(first.String(), `"warnings": []`) {
		t.Fatalf("nil warnings must render as an empty list:\n%s", first.String())
	}
	if !strings.HasSuffix(first.String(), "}\n") {
		t.Fatal("output must end with a newline")
	}

	index, err := ReadIndexJSON(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("ReadIndexJSON returned error: %v", err)
	}
	var second bytes.Buffer
	if err := WriteIndexJSON(&second, index); err != nil {
		t.Fatalf("WriteIndexJSON returned error: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatalf("round trip changed output:\n%s\n%s", first.String(), second.String())
	}
}

func TestReadIndexJSONRejectsInvalidDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field": `{"words":[],"sentences":[],"scenes":[],"cues":[],"warnings":[],"extra":1}`,
		"broken partition": `{"words":[{"index":0,"text":"a","char_start":0,"char_end":1,"time_start":0,"time_end":1}],
			"sentences":[],"scenes":[],"cues":[],"warnings":[]}`,
		"not json": `words`,
	} {
		if _, err := ReadIndexJSON(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
