package config

const (
	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultErrorThreshold = 0.5
	defaultMaxSplit       = 4
	defaultSplitThreshold = 0.15

	defaultMinWordDuration = 0.010
	defaultDurationFloor   = 0.010

	defaultMinSentenceWords = 2
	defaultMaxSceneDuration = 30.0

	defaultMaxSubtitleChars      = 42
	defaultMaxSubtitleDuration   = 4.0
	defaultPauseThreshold        = 0.4
	defaultSubtitleLookbackWords = 3

	defaultCacheMaxEntries = 500
	defaultBatchWorkers    = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
		},
		Tokenizer: Tokenizer{
			UseDefaultAbbreviations: true,
		},
		Alignment: Alignment{
			ErrorThreshold: defaultErrorThreshold,
			MaxSplit:       defaultMaxSplit,
			SplitThreshold: defaultSplitThreshold,
		},
		Validation: Validation{
			MinWordDuration: defaultMinWordDuration,
			DurationFloor:   defaultDurationFloor,
		},
		Sentences: Sentences{
			MinWords: defaultMinSentenceWords,
		},
		Scenes: Scenes{
			MaxDuration: defaultMaxSceneDuration,
		},
		Subtitles: Subtitles{
			MaxChars:       defaultMaxSubtitleChars,
			MaxDuration:    defaultMaxSubtitleDuration,
			PauseThreshold: defaultPauseThreshold,
			LookbackWords:  defaultSubtitleLookbackWords,
		},
		Cache: Cache{
			Enabled:    true,
			MaxEntries: defaultCacheMaxEntries,
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
