// Package main provides the arbiter CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/richinex/arbiter/cli"
	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/config"
	"github.com/richinex/arbiter/llm"
	"github.com/richinex/arbiter/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	backend  string
	dataPath string
	stateKey string
	redisURL string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "arbiter",
		Short: "Compare AI responses side by side and build arbitration requests",
		Long: `A CLI tool for comparing answers from several AI models.

Paste or fetch up to four responses into slots A-D, quote the passages that
matter, add notes, and produce a markdown arbitration request for a judging
model. Every change is persisted, and saved comparisons can be revisited.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "Storage backend ("+strings.Join(storage.Backends(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&dataPath, "path", "", "Data directory or database file for on-disk backends")
	rootCmd.PersistentFlags().StringVarP(&stateKey, "key", "k", "", "Persistence key (default \""+comparison.DefaultKey+"\")")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "Redis URL for the redis backend")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(quoteCmd())
	rootCmd.AddCommand(unquoteCmd())
	rootCmd.AddCommand(clearQuotesCmd())
	rootCmd.AddCommand(notesCmd())
	rootCmd.AddCommand(selectCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(navCmd())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(templateCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(arbitrateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(providersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withSession opens the comparison store for one command and closes it afterwards.
func withSession(fn func(ctx context.Context, s *cli.Session) error) error {
	settings, err := config.New()
	if err != nil {
		return err
	}

	log, err := cli.NewLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	s, err := cli.Open(ctx, settings, log, cli.Options{
		Backend:  backend,
		Path:     dataPath,
		RedisURL: redisURL,
		Key:      stateKey,
		Verbose:  verbose,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn("close failed", zap.Error(err))
		}
	}()

	return fn(ctx, s)
}

func slotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots [2-4]",
		Short: "Set the number of active response slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Slots(args[0])
			})
		},
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [slot] [text|-]",
		Short: "Store a response in a slot (A-D); '-' or no text reads stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := "-"
			if len(args) == 2 {
				text = args[1]
			}
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.SetResponse(args[0], text)
			})
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show active responses, quotes and notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Show()
			})
		},
	}
}

func quoteCmd() *cobra.Command {
	var rng string
	var label string

	cmd := &cobra.Command{
		Use:   "quote [slot]",
		Short: "Quote a slot's response, or a character range of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Quote(args[0], rng, label)
			})
		},
	}

	cmd.Flags().StringVarP(&rng, "range", "r", "", "Character range start-end (end exclusive)")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Model label (default: slot name)")

	return cmd
}

func unquoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unquote [id]",
		Short: "Remove a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Unquote(args[0])
			})
		},
	}
}

func clearQuotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-quotes",
		Short: "Remove every quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.ClearQuotes()
			})
		},
	}
}

func notesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes [text]",
		Short: "Set the arbitration context notes (no text clears them)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			}
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Notes(text)
			})
		},
	}
}

func selectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select [id]",
		Short: "Select a quote (no id clears the selection)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Select(id)
			})
		},
	}
}

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the current responses to history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Save()
			})
		},
	}
}

func navCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "nav [prev|next]",
		Short:     "Load the previous or next saved comparison",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"prev", "next"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Nav(args[0])
			})
		},
	}
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [n]",
		Short: "Load saved comparison n (as numbered by history)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Load(args[0])
			})
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List saved comparisons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.History()
			})
		},
	}
}

func templateCmd() *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print the arbitration request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Template(html)
			})
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Render as HTML")

	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear all comparison data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, s *cli.Session) error {
				return s.Reset()
			})
		},
	}
}

func askCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "ask [slot] [prompt]",
		Short: "Ask one model and store its answer in a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *cli.Session) error {
				return s.Ask(ctx, args[0], args[1], provider)
			})
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")

	return cmd
}

func compareCmd() *cobra.Command {
	var providers []string

	cmd := &cobra.Command{
		Use:   "compare [prompt]",
		Short: "Ask several models the same prompt and fill slots A onward",
		Long: `Ask several models the same prompt concurrently.

Answers fill slots A, B, C and D in the order the providers are given, and the
result is saved to history. Example:

  arbiter compare -p openai -p claude -p deepseek "Explain CAP theorem"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *cli.Session) error {
				return s.Compare(ctx, args[0], providers)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&providers, "provider", "p", nil, "LLM provider (repeatable, 1-4)")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}

func arbitrateCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "arbitrate",
		Short: "Send the arbitration request to a model and print its verdict",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *cli.Session) error {
				return s.Arbitrate(ctx, provider)
			})
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider (default: ARBITER_PROVIDER)")

	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *cli.Session) error {
				return s.Serve(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: ARBITER_ADDR or :8080)")

	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported LLM providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range llm.ProviderTypes() {
				model, err := config.ModelFor(p.String())
				if err != nil {
					return err
				}
				fmt.Printf("%-10s %-28s %s\n", p, model, p.EnvVar())
			}
			return nil
		},
	}
}
