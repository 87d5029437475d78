package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"timeweave/internal/pipeline"
	"timeweave/internal/recognition"
)

type inputFiles struct {
	TextPath       string
	TimestampsPath string
	Format         string
	Engine         string
	Duration       float64
}

// loadInput reads the canonical text and its timestamps. Without a
// timestamp file the words are spread evenly over Duration.
func loadInput(files inputFiles) (pipeline.Input, error) {
	textPath := strings.TrimSpace(files.TextPath)
	if textPath == "" {
		return pipeline.Input{}, errors.New("text file is required")
	}
	text, err := os.ReadFile(textPath)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read text: %w", err)
	}
	in := pipeline.Input{
		ID:     strings.TrimSuffix(filepath.Base(textPath), filepath.Ext(textPath)),
		Text:   string(text),
		Engine: strings.TrimSpace(files.Engine),
	}

	switch timestampsPath := strings.TrimSpace(files.TimestampsPath); {
	case timestampsPath != "":
		payload, err := os.ReadFile(timestampsPath)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("read timestamps: %w", err)
		}
		raw, format, err := recognition.Decode(files.Format, payload)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("%s: %w", timestampsPath, err)
		}
		in.Raw = raw
		if in.Engine == "" {
			in.Engine = format
		}
	case files.Duration > 0:
		raw, err := recognition.Uniform(in.Text, files.Duration)
		if err != nil {
			return pipeline.Input{}, err
		}
		in.Raw = raw
		if in.Engine == "" {
			in.Engine = "uniform"
		}
	default:
		return pipeline.Input{}, errors.New("either a timestamps file or a positive duration is required")
	}
	return in, nil
}
