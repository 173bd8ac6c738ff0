// Package mathnorm normalizes the mathematical notation in language-model
// output into LaTeX a renderer can display: inline math as \( \), display
// math as \[ \], plus a whitelist of math environments.
//
// Every pass is a plain text-to-text rewrite. Passes that need to know where
// math already is locate the spans of their own input, so offsets never
// outlive the text they were computed on.
package mathnorm

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"ragtex/internal/logger"
	"ragtex/internal/types"
)

// BareCommandMode selects how commands typed outside math are wrapped.
type BareCommandMode string

const (
	// BareBlanket wraps every bare command.
	BareBlanket BareCommandMode = "blanket"
	// BareWhitelist wraps only relations, set operators, \det and vector macros.
	BareWhitelist BareCommandMode = "whitelist"
	// BareOff leaves bare commands alone.
	BareOff BareCommandMode = "off"
)

// Options holds the tunable thresholds of the normalizer.
type Options struct {
	BareCommandMode  BareCommandMode
	WrapProseIndices bool

	// a line with at least this many words, or this many word characters,
	// is prose and never promoted
	ProseMaxWords     int
	ProseMaxWordChars int

	FormulaMinCommands           int
	FormulaMinSymbolsWithCommand int
	FormulaMinScriptGroups       int

	DenseMinSymbols int
	DenseMaxWords   int
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		BareCommandMode:              BareBlanket,
		WrapProseIndices:             true,
		ProseMaxWords:                8,
		ProseMaxWordChars:            30,
		FormulaMinCommands:           2,
		FormulaMinSymbolsWithCommand: 4,
		FormulaMinScriptGroups:       2,
		DenseMinSymbols:              4,
		DenseMaxWords:                1,
	}
}

// OptionsFromConfig converts the persisted normalizer settings. Zero
// thresholds fall back to the defaults; DenseMaxWords may legitimately be 0.
func OptionsFromConfig(cfg types.NormalizerConfig) (Options, error) {
	opts := DefaultOptions()
	switch mode := BareCommandMode(cfg.BareCommandMode); mode {
	case "":
	case BareBlanket, BareWhitelist, BareOff:
		opts.BareCommandMode = mode
	default:
		return opts, types.NewAppErrorWithDetails(types.ErrConfig, "invalid bare_command_mode", cfg.BareCommandMode, nil)
	}
	opts.WrapProseIndices = cfg.WrapProseIndices

	setIfPositive(&opts.ProseMaxWords, cfg.ProseMaxWords)
	setIfPositive(&opts.ProseMaxWordChars, cfg.ProseMaxWordChars)
	setIfPositive(&opts.FormulaMinCommands, cfg.FormulaMinCommands)
	setIfPositive(&opts.FormulaMinSymbolsWithCommand, cfg.FormulaMinSymbolsWithCommand)
	setIfPositive(&opts.FormulaMinScriptGroups, cfg.FormulaMinScriptGroups)
	setIfPositive(&opts.DenseMinSymbols, cfg.DenseMinSymbols)
	if cfg.DenseMaxWords >= 0 {
		opts.DenseMaxWords = cfg.DenseMaxWords
	}
	return opts, nil
}

func setIfPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Normalizer runs the full normalization pipeline. It holds no mutable
// state and is safe for concurrent use.
type Normalizer struct {
	opts Options
	log  logger.Logger
}

// New creates a Normalizer. A nil opts selects DefaultOptions; a nil log
// discards log output.
func New(opts *Options, log logger.Logger) *Normalizer {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{opts: o, log: log}
}

// Options returns the options the normalizer was built with.
func (n *Normalizer) Options() Options {
	return n.opts
}

// Enforce normalizes the math notation of raw. The only failure is input that
// is not valid UTF-8; everything else degrades to less normalized output.
func (n *Normalizer) Enforce(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", types.NewAppError(types.ErrEncoding, "input is not valid UTF-8", nil)
	}

	text := norm.NFC.String(raw)
	text = Transliterate(text)
	text = NormalizeDelimiters(text)

	switch n.opts.BareCommandMode {
	case BareWhitelist:
		text = WrapWhitelistedCommands(text)
	case BareOff:
	default:
		text = WrapBareCommands(text)
	}

	text = RepairSpans(text)
	text = WrapFormulaLines(text, n.opts)
	if n.opts.WrapProseIndices {
		text = WrapProseIndices(text)
	}
	text = Cleanup(text)

	if n.opts.BareCommandMode != BareOff {
		text = WrapWhitelistedCommands(text)
	}
	text = RepairSpans(text)
	text = Cleanup(text)
	text = norm.NFC.String(text)

	if text != raw {
		n.log.Debug("math notation normalized",
			logger.Int("in_bytes", len(raw)),
			logger.Int("out_bytes", len(text)),
			logger.Int("spans", len(Locate(text))))
	}
	return text, nil
}

var defaultNormalizer = New(nil, nil)

// EnforceTeX normalizes raw with the default options.
func EnforceTeX(raw string) (string, error) {
	return defaultNormalizer.Enforce(raw)
}
