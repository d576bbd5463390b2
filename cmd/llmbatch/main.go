// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/poiesic/llmbatch/ai"
	"github.com/poiesic/llmbatch/batch"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	defaults := batch.DefaultConfig()
	params := batch.DefaultChatParams()

	return &cli.App{
		Name:  "llmbatch",
		Usage: "Send batches of chat prompts or embedding inputs to an OpenAI-compatible API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "chat",
				Usage:     "Send one chat completion per input line and write JSONL results",
				ArgsUsage: " ",
				Action:    chatCommand,
				Flags: append(commonFlags(defaults),
					&cli.StringFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Chat model name",
						Value:   params.Model,
					},
					&cli.StringFlag{
						Name:  "system-prompt",
						Usage: "System prompt sent with every request",
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Maximum tokens per completion",
						Value: params.MaxTokens,
					},
					&cli.Float64Flag{
						Name:  "temperature",
						Usage: "Sampling temperature",
						Value: params.Temperature,
					},
					&cli.Float64Flag{
						Name:  "top-p",
						Usage: "Nucleus sampling probability mass",
						Value: params.TopP,
					},
					&cli.Float64Flag{
						Name:  "frequency-penalty",
						Usage: "Frequency penalty",
					},
					&cli.Float64Flag{
						Name:  "presence-penalty",
						Usage: "Presence penalty",
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Record failed prompts in the output instead of aborting",
					},
					&cli.StringFlag{
						Name:  "response-format",
						Usage: "Response format (text, json_object)",
						Value: string(ai.FormatText),
					},
				),
			},
			{
				Name:      "embed",
				Usage:     "Embed every input line and write JSONL vectors",
				ArgsUsage: " ",
				Action:    embedCommand,
				Flags: append(commonFlags(defaults),
					&cli.StringFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Embedding model name",
						Value:   ai.DefaultConfig().EmbeddingModel,
					},
				),
			},
		},
	}
}

// commonFlags returns the connection, batching and cache flags shared by all commands.
func commonFlags(defaults batch.Config) []cli.Flag {
	retry := defaults.Retry
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "API base URL",
			Value: ai.DefaultConfig().Host,
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key",
			EnvVars: []string{ai.APIKeyEnv},
		},
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Input file (default: stdin)",
		},
		&cli.BoolFlag{
			Name:  "jsonl",
			Usage: "Read input as JSON lines with a \"text\" field instead of plain lines",
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of inputs in each batch",
			Value: defaults.BatchSize,
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Maximum in-flight requests (0 means batch size)",
		},
		&cli.DurationFlag{
			Name:  "sleep-interval",
			Usage: "Pause after every full chat batch",
			Value: defaults.SleepInterval,
		},
		&cli.IntFlag{
			Name:  "rpm",
			Usage: "Requests per minute limit (0 disables)",
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Maximum attempts per request",
			Value: retry.MaxAttempts,
		},
		&cli.DurationFlag{
			Name:  "min-wait",
			Usage: "Minimum wait between attempts",
			Value: retry.MinWait,
		},
		&cli.DurationFlag{
			Name:  "max-wait",
			Usage: "Maximum wait between attempts",
			Value: retry.MaxWait,
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Directory for the result cache (disabled when empty)",
		},
		&cli.DurationFlag{
			Name:  "cache-ttl",
			Usage: "Lifetime of cached results (0 keeps them forever)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log batch dispatch and pacing at info level",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Report progress to stderr",
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
