package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"timeweave/internal/temporal"
)

// WriteSRT writes one numbered SRT block per cue of index.
func WriteSRT(w io.Writer, index *temporal.Index) error {
	if index == nil {
		return errors.New("write srt: nil index")
	}
	if err := index.Verify(); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	bw := bufio.NewWriter(w)
	for i, cue := range index.Cues {
		start, _ := index.CueStart(i)
		end, _ := index.CueEnd(i)
		end = math.Max(end, start)
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n", i+1, FormatTimestamp(start), FormatTimestamp(end), cue.Text)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// FormatTimestamp renders seconds as an SRT timestamp, rounded to the
// nearest millisecond. Negative values render as zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
