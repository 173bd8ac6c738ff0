// Command texnorm normalizes the math notation of a text file or stdin.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"ragtex/internal/config"
	"ragtex/internal/logger"
	"ragtex/internal/mathnorm"
	"ragtex/internal/types"
)

type options struct {
	configPath string
	in         string
	out        string
	mode       string
	verbose    bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("texnorm", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "texnorm - normalize LaTeX math notation in model output")
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Usage:")
		fmt.Fprintln(output, "  texnorm [-config path] [-in file] [-out file] [-mode blanket|whitelist|off] [-v]")
		fmt.Fprintln(output)
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/ragtex/"+config.DefaultConfigFileName+")")
	fs.StringVar(&opts.in, "in", "", "input file (default stdin)")
	fs.StringVar(&opts.out, "out", "", "output file (default stdout)")
	fs.StringVar(&opts.mode, "mode", "", "bare command mode: blanket, whitelist or off (overrides config)")
	fs.BoolVar(&opts.verbose, "v", false, "log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if opts.in == "" && (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "error: no input; pass -in or pipe text on stdin")
		os.Exit(1)
	}

	if err := run(opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options, stdin io.Reader, stdout, stderr io.Writer) error {
	level := logger.LevelWarn
	if opts.verbose {
		level = logger.LevelDebug
	}
	log := logger.NewWriterLogger(stderr, level)
	logger.SetGlobalLogger(log)

	cm, err := config.NewConfigManager(opts.configPath)
	if err != nil {
		return err
	}
	if err := cm.Load(); err != nil {
		return err
	}
	cfg := cm.GetConfig()
	if opts.mode != "" {
		cfg.Normalizer.BareCommandMode = opts.mode
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	normOpts, err := mathnorm.OptionsFromConfig(cfg.Normalizer)
	if err != nil {
		return err
	}
	normalizer := mathnorm.New(&normOpts, log)

	input, err := readInput(opts.in, stdin, cfg.MaxAnswerBytes)
	if err != nil {
		return err
	}

	output, err := normalizer.Enforce(input)
	if err != nil {
		return err
	}

	if opts.out == "" {
		_, err = io.WriteString(stdout, output)
		return err
	}
	if err := os.WriteFile(opts.out, []byte(output), 0644); err != nil {
		return types.NewAppErrorWithDetails(types.ErrInternal, "failed to write output", opts.out, err)
	}
	log.Debug("output written", logger.String("path", opts.out), logger.Int("bytes", len(output)))
	return nil
}

// readInput reads at most maxBytes from path, or from stdin when path is
// empty.
func readInput(path string, stdin io.Reader, maxBytes int) (string, error) {
	r := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", types.NewAppErrorWithDetails(types.ErrFileNotFound, "input file not found", path, err)
			}
			return "", types.NewAppErrorWithDetails(types.ErrInvalidInput, "cannot open input", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)+1))
	if err != nil {
		return "", types.NewAppError(types.ErrInvalidInput, "failed to read input", err)
	}
	if len(data) > maxBytes {
		return "", types.NewAppErrorWithDetails(types.ErrInputTooLarge, "input exceeds max_answer_bytes",
			"limit "+strconv.Itoa(maxBytes)+" bytes", nil)
	}
	return string(data), nil
}
