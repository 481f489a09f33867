package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jparkerweb/go-punct/internal/app"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	modelPath := flag.String("model", "", "Path to ONNX model file (downloads when empty)")
	tokenizerPath := flag.String("tokenizer", "", "Path to SentencePiece model file")
	modelDir := flag.String("model-dir", "", "Directory for downloaded models")
	mode := flag.String("mode", "sentences", "Mode: sentences or text")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")

	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := app.OverrideModel(cfg, *modelPath, *tokenizerPath, *modelDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	} else if *configPath == "" {
		cfg.Logging.Level = "warn"
	}

	texts := flag.Args()
	if len(texts) == 0 {
		// One text per input line
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				texts = append(texts, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}
	} else {
		texts = []string{strings.Join(texts, " ")}
	}
	if len(texts) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: punct-cli [OPTIONS] TEXT, or text lines on stdin")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger, err := app.Logger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, closeCache, err := app.Cache(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting cache: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeCache() }()

	r, err := app.OpenRestorer(ctx, cfg, logger, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = r.Close() }() // Cleanup error ignored in CLI

	switch *mode {
	case "sentences":
		sentences, err := r.Restore(ctx, texts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, s := range sentences {
			fmt.Println(s)
		}

	case "text":
		for _, text := range texts {
			out, err := r.Punctuate(ctx, text)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(out)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}
