package align

import (
	"fmt"
	"math"
	"unicode/utf8"

	"timeweave/internal/temporal"
	"timeweave/internal/textutil"
	"timeweave/internal/tokenize"
)

const (
	defaultErrorThreshold = 0.5
	defaultMaxSplit       = 4
	defaultSplitThreshold = 0.15
	maxSplitLimit         = 16

	// costTolerance keeps tie-breaking stable against float noise.
	costTolerance = 1e-12
)

// Options tune the aligner.
type Options struct {
	// ErrorThreshold is the highest acceptable cost / max(canonical, raw).
	ErrorThreshold float64
	// MaxSplit is the longest run of canonical tokens one raw token may
	// cover. 1 disables split matching.
	MaxSplit int
	// SplitThreshold is the largest normalized distance between a raw token
	// and the joined canonical run it is split across. Looser splits would
	// swallow tokens the recognizer simply missed.
	SplitThreshold float64
	// Band limits the dynamic program to cells within Band tokens of the
	// diagonal. 0 computes the full table.
	Band int
}

// DefaultOptions returns the aligner defaults.
func DefaultOptions() Options {
	return Options{ErrorThreshold: defaultErrorThreshold, MaxSplit: defaultMaxSplit, SplitThreshold: defaultSplitThreshold}
}

// Aligner reconciles canonical tokens with recognizer tokens. It keeps no
// state between calls and is safe for concurrent use.
type Aligner struct {
	opts Options
}

// New builds an aligner, replacing out of range options with defaults.
func New(opts Options) *Aligner {
	if opts.ErrorThreshold <= 0 {
		opts.ErrorThreshold = defaultErrorThreshold
	}
	if opts.MaxSplit < 1 {
		opts.MaxSplit = defaultMaxSplit
	}
	opts.MaxSplit = min(opts.MaxSplit, maxSplitLimit)
	if opts.SplitThreshold < 0 {
		opts.SplitThreshold = defaultSplitThreshold
	}
	opts.Band = max(opts.Band, 0)
	return &Aligner{opts: opts}
}

// Options returns the effective options.
func (a *Aligner) Options() Options {
	return a.opts
}

type opKind uint8

const (
	opNone opKind = iota
	opSub
	opDel
	opIns
	// opSplit + (k-2) encodes a split over k canonical tokens.
	opSplit
)

type step struct {
	op        opKind
	canonical int
	raw       int
	span      int
}

// Align returns one timed word per canonical token. Raw tokens with no
// canonical counterpart are dropped. When the normalized edit cost exceeds
// the threshold, Align returns a *temporal.AlignmentError and no words.
func (a *Aligner) Align(tokens []tokenize.Token, raw []temporal.RawToken) ([]temporal.Word, temporal.AlignmentStats, error) {
	n, m := len(tokens), len(raw)
	stats := temporal.AlignmentStats{}
	if n == 0 {
		stats.Dropped = m
		return []temporal.Word{}, stats, nil
	}

	table := a.solve(tokens, raw)
	stats.Cost = table.cost
	stats.NormalizedCost = table.cost / float64(max(n, m))
	if stats.NormalizedCost > a.opts.ErrorThreshold+costTolerance {
		return nil, temporal.AlignmentStats{}, &temporal.AlignmentError{
			Cost:           stats.Cost,
			NormalizedCost: stats.NormalizedCost,
			Threshold:      a.opts.ErrorThreshold,
			Canonical:      n,
			Raw:            m,
		}
	}

	steps, err := table.path()
	if err != nil {
		return nil, temporal.AlignmentStats{}, err
	}

	words := make([]temporal.Word, n)
	for i, tok := range tokens {
		words[i] = temporal.Word{Index: i, Text: tok.Text, CharStart: tok.CharStart, CharEnd: tok.CharEnd}
	}
	matched := make([]bool, n)
	for _, st := range steps {
		switch st.op {
		case opSub:
			r := raw[st.raw]
			words[st.canonical].TimeStart = r.TimeStart
			words[st.canonical].TimeEnd = r.TimeEnd
			matched[st.canonical] = true
			if table.keys[st.canonical] == table.rawKeys[st.raw] {
				stats.Matched++
			} else {
				stats.Substituted++
			}
		case opDel:
			stats.Interpolated++
		case opIns:
			stats.Dropped++
		default:
			splitInterval(words[st.canonical:st.canonical+st.span], raw[st.raw])
			for q := 0; q < st.span; q++ {
				matched[st.canonical+q] = true
			}
			stats.Split += st.span
		}
	}
	interpolate(words, matched)
	return words, stats, nil
}

// splitInterval divides one raw interval across words in proportion to their
// rune length. The last word ends exactly at the raw end.
func splitInterval(words []temporal.Word, r temporal.RawToken) {
	lengths := make([]int, len(words))
	total := 0
	for i, w := range words {
		lengths[i] = max(utf8.RuneCountInString(w.Text), 1)
		total += lengths[i]
	}
	span := r.TimeEnd - r.TimeStart
	cum := 0
	for i := range words {
		words[i].TimeStart = r.TimeStart + span*float64(cum)/float64(total)
		cum += lengths[i]
		words[i].TimeEnd = r.TimeStart + span*float64(cum)/float64(total)
	}
	words[len(words)-1].TimeEnd = r.TimeEnd
}

// interpolate fills each run of unmatched words with equal slices between
// the previous matched word's end and the next matched word's start.
func interpolate(words []temporal.Word, matched []bool) {
	n := len(words)
	for i := 0; i < n; {
		if matched[i] {
			i++
			continue
		}
		j := i
		for j < n && !matched[j] {
			j++
		}
		hasPrev, hasNext := i > 0, j < n
		var from, to float64
		switch {
		case hasPrev && hasNext:
			from, to = words[i-1].TimeEnd, words[j].TimeStart
		case hasPrev:
			from = words[i-1].TimeEnd
			to = from
		case hasNext:
			to = words[j].TimeStart
			from = to
		}
		to = math.Max(to, from)
		run := float64(j - i)
		for q := i; q < j; q++ {
			pos := float64(q - i)
			words[q].TimeStart = from + (to-from)*pos/run
			words[q].TimeEnd = from + (to-from)*(pos+1)/run
		}
		i = j
	}
}

type table struct {
	n, m    int
	cost    float64
	back    []opKind
	keys    []string
	rawKeys []string
}

func (t *table) at(i, j int) opKind {
	return t.back[i*(t.m+1)+j]
}

func (t *table) path() ([]step, error) {
	steps := make([]step, 0, max(t.n, t.m))
	i, j := t.n, t.m
	for i > 0 || j > 0 {
		switch op := t.at(i, j); {
		case op == opSub:
			steps = append(steps, step{op: opSub, canonical: i - 1, raw: j - 1})
			i, j = i-1, j-1
		case op == opDel:
			steps = append(steps, step{op: opDel, canonical: i - 1})
			i--
		case op == opIns:
			steps = append(steps, step{op: opIns, raw: j - 1})
			j--
		case op >= opSplit:
			k := int(op-opSplit) + 2
			steps = append(steps, step{op: op, canonical: i - k, raw: j - 1, span: k})
			i, j = i-k, j-1
		default:
			return nil, fmt.Errorf("alignment path broken at canonical=%d raw=%d", i, j)
		}
	}
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}
	return steps, nil
}

// solve fills the edit-distance table. Only MaxSplit+1 cost rows are kept;
// back pointers cover the whole table. Equal costs prefer substitution, then
// shorter splits, then deletion, then insertion.
func (a *Aligner) solve(tokens []tokenize.Token, raw []temporal.RawToken) *table {
	n, m := len(tokens), len(raw)
	k := a.opts.MaxSplit
	t := &table{n: n, m: m, back: make([]opKind, (n+1)*(m+1)), keys: make([]string, n), rawKeys: make([]string, m)}

	letters := make([]string, n)
	for i, tok := range tokens {
		t.keys[i] = textutil.MatchKey(tok.Text)
		letters[i] = textutil.LettersOnly(textutil.Fold(tok.Text))
	}
	rawLetters := make([]string, m)
	for j, r := range raw {
		t.rawKeys[j] = textutil.MatchKey(r.Text)
		rawLetters[j] = textutil.LettersOnly(textutil.Fold(r.Text))
	}
	// joined[i][s-2] is the letters of tokens i-s..i-1 concatenated.
	joined := make([][]string, n+1)
	for i := 2; i <= n; i++ {
		for s := 2; s <= min(k, i); s++ {
			concat := ""
			for q := i - s; q < i; q++ {
				concat += letters[q]
			}
			joined[i] = append(joined[i], concat)
		}
	}

	band := a.band(n, m)
	inBand := func(i, j int) bool {
		if band == 0 {
			return true
		}
		center := int(math.Round(float64(i) * float64(m) / float64(n)))
		return j >= center-band && j <= center+band
	}

	rows := make([][]float64, k+1)
	for r := range rows {
		rows[r] = make([]float64, m+1)
	}
	row := func(i int) []float64 { return rows[i%(k+1)] }
	inf := math.Inf(1)

	for i := 0; i <= n; i++ {
		cur := row(i)
		for j := 0; j <= m; j++ {
			idx := i*(m+1) + j
			switch {
			case i == 0 && j == 0:
				cur[j] = 0
				continue
			case !inBand(i, j):
				cur[j] = inf
				continue
			case i == 0:
				cur[j] = cur[j-1] + 1
				t.back[idx] = opIns
				if math.IsInf(cur[j], 1) {
					t.back[idx] = opNone
				}
				continue
			case j == 0:
				cur[j] = row(i - 1)[0] + 1
				t.back[idx] = opDel
				if math.IsInf(cur[j], 1) {
					t.back[idx] = opNone
				}
				continue
			}

			best := row(i - 1)[j-1] + textutil.NormalizedDistance(t.keys[i-1], t.rawKeys[j-1])
			op := opSub
			for s := 2; s <= min(k, i); s++ {
				prev := row(i - s)[j-1]
				if math.IsInf(prev, 1) {
					continue
				}
				d := textutil.NormalizedDistance(joined[i][s-2], rawLetters[j-1])
				if d > a.opts.SplitThreshold+costTolerance {
					continue
				}
				if c := prev + d; c < best-costTolerance {
					best, op = c, opSplit+opKind(s-2)
				}
			}
			if c := row(i - 1)[j] + 1; c < best-costTolerance {
				best, op = c, opDel
			}
			if c := cur[j-1] + 1; c < best-costTolerance {
				best, op = c, opIns
			}
			if math.IsInf(best, 1) {
				op = opNone
			}
			cur[j] = best
			t.back[idx] = op
		}
	}
	t.cost = row(n)[m]
	return t
}

// band widens the configured band so the diagonal stays reachable when the
// sequences differ a lot in length.
func (a *Aligner) band(n, m int) int {
	if a.opts.Band == 0 {
		return 0
	}
	ratio := int(math.Ceil(float64(m)/float64(n)))*2 + 1
	return max(a.opts.Band, ratio, abs(n-m)+1)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
