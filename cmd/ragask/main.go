// Command ragask ingests PDFs and text files, asks a question about them and
// prints the normalized answer with its sources.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"ragtex/internal/config"
	"ragtex/internal/llm"
	"ragtex/internal/logger"
	"ragtex/internal/rag"
	"ragtex/internal/types"
)

type options struct {
	configPath string
	question   string
	k          int
	verbose    bool
	files      []string
}

// chatFactory builds the chat model from the loaded config.
type chatFactory func(ctx context.Context, cfg *types.Config) (rag.Generator, error)

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("ragask", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "ragask - answer a question from documents")
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Usage:")
		fmt.Fprintln(output, "  ragask -q question [-k n] [-config path] [-v] files...")
		fmt.Fprintln(output)
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/ragtex/"+config.DefaultConfigFileName+")")
	fs.StringVar(&opts.question, "q", "", "question to ask")
	fs.IntVar(&opts.k, "k", 0, "number of chunks to retrieve (default top_k from config)")
	fs.BoolVar(&opts.verbose, "v", false, "log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.question) == "" {
		return nil, errors.New("-q is required")
	}
	opts.files = fs.Args()
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	newChat := func(ctx context.Context, cfg *types.Config) (rag.Generator, error) {
		chatModel, err := llm.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return chatModel, nil
	}
	if err := run(ctx, opts, newChat, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, newChat chatFactory, stdout, stderr io.Writer) error {
	cm, err := config.NewConfigManager(opts.configPath)
	if err != nil {
		return err
	}
	if err := cm.Load(); err != nil {
		return err
	}
	cfg := cm.GetConfig()
	if err := config.Validate(cfg); err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	if opts.verbose {
		level = logger.LevelDebug
	}
	log := logger.NewWriterLogger(stderr, level)
	logger.SetGlobalLogger(log)

	if len(opts.files) == 0 && cfg.StorePath == "" {
		return types.NewAppError(types.ErrInvalidInput, "no files given and no store_path configured", nil)
	}

	embedder, err := rag.NewHashEmbedder(cfg.EmbedDim)
	if err != nil {
		return err
	}
	store, err := rag.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	chat, err := newChat(ctx, cfg)
	if err != nil {
		return err
	}

	svc, err := rag.NewService(cfg, embedder, store, chat, log)
	if err != nil {
		return err
	}

	if len(opts.files) > 0 {
		if _, err := svc.IngestFiles(ctx, opts.files); err != nil {
			return err
		}
	}

	answer, err := svc.Ask(ctx, opts.question, opts.k)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Sources:")
		for _, src := range answer.Sources {
			fmt.Fprintf(stdout, "[%d] %s#%d\n", src.Rank, src.Source, src.ChunkID)
		}
	}
	return nil
}
