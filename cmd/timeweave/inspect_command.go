package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"timeweave/internal/export"
	"timeweave/internal/temporal"
)

var inspectLayers = []string{"summary", "words", "sentences", "scenes", "cues", "warnings"}

func newInspectCommand() *cobra.Command {
	var (
		layer    string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:         "inspect INDEX.json",
		Short:       "Show the layers of a stored index",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			layer = strings.ToLower(strings.TrimSpace(layer))
			if !containsString(inspectLayers, layer) {
				return fmt.Errorf("unknown layer %q (valid: %s)", layer, strings.Join(inspectLayers, ", "))
			}
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer file.Close()
			index, err := export.ReadIndexJSON(file)
			if err != nil {
				return err
			}

			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), layerValue(index, layer))
			}
			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			if layer == "summary" {
				fmt.Fprintln(out, colorize(sectionTitle(layer, 0), ansiBlue, color))
				fmt.Fprintln(out, renderSummary(index, false))
				return nil
			}
			rows := layerRows(index, layer, color)
			headers, aligns := layerColumns(layer)
			fmt.Fprintln(out, colorize(sectionTitle(layer, len(rows)), ansiBlue, color))
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVar(&layer, "layer", "summary", "Layer to show: "+strings.Join(inspectLayers, ", "))
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Emit the layer as JSON")
	return cmd
}

func sectionTitle(layer string, rows int) string {
	title := cases.Title(language.English).String(layer)
	if layer == "summary" {
		return fmt.Sprintf("== %s ==", title)
	}
	return fmt.Sprintf("== %s (%d) ==", title, rows)
}

func layerValue(index *temporal.Index, layer string) any {
	switch layer {
	case "words":
		return index.Words
	case "sentences":
		return index.Sentences
	case "scenes":
		return index.Scenes
	case "cues":
		return index.Cues
	case "warnings":
		return index.Warnings
	}
	return index
}

func layerColumns(layer string) ([]string, []columnAlignment) {
	switch layer {
	case "words":
		return []string{"#", "Text", "Chars", "Start", "End"},
			[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight}
	case "sentences":
		return []string{"#", "Words", "Start", "End", "Text"},
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft}
	case "scenes":
		return []string{"#", "Sentences", "Start", "End", "Duration", "Text"},
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	case "cues":
		return []string{"#", "Start", "End", "Sentence", "Text"},
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft}
	case "warnings":
		return []string{"Stage", "Code", "Index", "Detail"},
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}
	}
	return nil, nil
}

func layerRows(index *temporal.Index, layer string, color bool) [][]string {
	var rows [][]string
	switch layer {
	case "words":
		for _, w := range index.Words {
			rows = append(rows, []string{
				strconv.Itoa(w.Index), w.Text, fmt.Sprintf("%d-%d", w.CharStart, w.CharEnd),
				formatSeconds(w.TimeStart), formatSeconds(w.TimeEnd),
			})
		}
	case "sentences":
		for _, s := range index.Sentences {
			text, _ := index.SentenceText(s.Order)
			rows = append(rows, []string{
				strconv.Itoa(s.Order), fmt.Sprintf("%d-%d", s.WordStart, s.WordEnd),
				formatSeconds(index.Words[s.WordStart].TimeStart), formatSeconds(index.Words[s.WordEnd].TimeEnd), text,
			})
		}
	case "scenes":
		for _, sc := range index.Scenes {
			start, _ := index.SceneStart(sc.Order)
			end, _ := index.SceneEnd(sc.Order)
			duration, _ := index.SceneDuration(sc.Order)
			text, _ := index.SceneText(sc.Order)
			rows = append(rows, []string{
				strconv.Itoa(sc.Order), fmt.Sprintf("%d-%d", sc.SentenceStart, sc.SentenceEnd),
				formatSeconds(start), formatSeconds(end), formatSeconds(duration), text,
			})
		}
	case "cues":
		for _, cue := range index.Cues {
			start, _ := index.CueStart(cue.Order)
			end, _ := index.CueEnd(cue.Order)
			rows = append(rows, []string{
				strconv.Itoa(cue.Order), export.FormatTimestamp(start), export.FormatTimestamp(end),
				strconv.Itoa(cue.Sentence), cue.Text,
			})
		}
	case "warnings":
		for _, w := range index.Warnings {
			c := warningColor(w)
			rows = append(rows, []string{
				w.Stage, colorize(w.Code, c, color), strconv.Itoa(w.Index), w.Detail,
			})
		}
	}
	return rows
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
