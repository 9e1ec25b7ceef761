package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/james-see/codecomposer/pkg/archive"
	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/render"
	"github.com/james-see/codecomposer/pkg/token"
)

var (
	outputFile    string
	languageName  string
	voicesName    string
	saveHistory   bool
	composeFlags  composer.Options
	printTree     bool
	tokensAsInput bool
)

var composeCmd = &cobra.Command{
	Use:   "compose <source>",
	Short: "Compose a source file (or - for stdin)",
	Long: `Lexes the source, composes it and writes the result. The output format follows
the -o extension: .mid/.midi, .alda, .json or .txt (outline). Without -o the
composition is written next to the source as .mid, or printed as an outline for stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize <source>",
	Short: "Print the token stream of a source file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	f := composeCmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "Output file path")
	f.StringVarP(&languageName, "language", "l", "", "Source language (c, go, python); inferred from the extension")
	f.StringVar(&voicesName, "voices", "both", "Voices to render: melody, accompaniment or both")
	f.BoolVar(&saveHistory, "save", false, "Store the composition in the history database")
	f.BoolVar(&printTree, "tree", false, "Also print the bar outline to stdout")
	f.BoolVar(&tokensAsInput, "tokens", false, "Treat the input as a JSON token list instead of source")

	f.StringVarP(&composeFlags.Style, "style", "s", "", "Style name (default from CODECOMPOSER_STYLE or \"default\")")
	f.StringVarP(&composeFlags.Key, "key", "k", "", "Key override, e.g. C, F#, Eb")
	f.StringVar(&composeFlags.Scale, "scale", "", "Scale override")
	f.StringVarP(&composeFlags.Progression, "progression", "p", "", "Progression override, e.g. I_vi_IV_V")
	f.StringVar(&composeFlags.BassPattern, "bass", "", "Bass pattern override")
	f.IntVarP(&composeFlags.Tempo, "tempo", "t", 0, "Tempo override in BPM")
	f.IntVar(&composeFlags.BarsPerPhrase, "bars-per-phrase", 0, "Phrase length override")
	f.IntVar(&composeFlags.BarsPerToken, "bars-per-token", 1, "Bars per token (1 or 2)")
	f.IntVar(&composeFlags.Octave, "octave", 0, "Melody octave override")
	f.StringVarP(&composeFlags.Instrument, "instrument", "i", "", "Instrument override, e.g. violin (see styles)")
	f.Int64Var(&composeFlags.Seed, "seed", 0, "Random seed")
	f.BoolVar(&composeFlags.Parallel, "parallel", false, "Plan tokens concurrently")

	tokenizeCmd.Flags().StringVarP(&languageName, "language", "l", "", "Source language (c, go, python)")
}

// composeOptions fills unset flags from the environment configuration
func composeOptions(cmd *cobra.Command) composer.Options {
	opts := composeFlags
	flags := cmd.Flags()
	if !flags.Changed("style") {
		opts.Style = cfg.Style
	}
	if !flags.Changed("key") && cfg.Key != "" {
		opts.Key = cfg.Key
	}
	if !flags.Changed("tempo") && cfg.Tempo > 0 {
		opts.Tempo = cfg.Tempo
	}
	if !flags.Changed("seed") {
		opts.Seed = cfg.Seed
	}
	return opts
}

// readTokens loads the token stream from source text or a JSON token list
func readTokens(input string) ([]token.Token, token.Language, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input: %w", err)
	}

	if tokensAsInput {
		var tokens []token.Token
		if err := json.Unmarshal(data, &tokens); err != nil {
			return nil, "", fmt.Errorf("failed to decode tokens: %w", err)
		}
		return tokens, "", nil
	}

	var lang token.Language
	if languageName != "" {
		lang, err = token.ParseLanguage(languageName)
	} else {
		lang, err = token.LanguageForFile(input)
	}
	if err != nil {
		return nil, "", err
	}

	tokens, err := token.Lex(string(data), lang)
	if err != nil {
		return nil, "", fmt.Errorf("failed to tokenize %s: %w", input, err)
	}
	return tokens, lang, nil
}

func getOutputPath(input string) string {
	if outputFile != "" {
		return outputFile
	}
	if input == "-" {
		return ""
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".mid"
}

func runCompose(cmd *cobra.Command, args []string) error {
	input := args[0]

	voices, err := render.ParseVoices(voicesName)
	if err != nil {
		return err
	}
	tokens, lang, err := readTokens(input)
	if err != nil {
		return err
	}
	c, err := newComposer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := composeOptions(cmd)
	comp, err := c.Compose(ctx, tokens, opts)
	if err != nil {
		return err
	}
	logger.Debug("composed", "tokens", len(tokens), "bars", len(comp.Bars),
		"style", comp.Metadata.Style, "progression", comp.Metadata.Progression)

	output := getOutputPath(input)
	if output == "" || printTree {
		fmt.Print(render.Tree(comp))
	}
	if output != "" {
		if err := render.WriteFile(comp, output, voices); err != nil {
			return err
		}
		fmt.Printf("Composed %s -> %s (%d tokens, %d bars, %s %s %s)\n",
			input, output, len(tokens), len(comp.Bars), comp.Metadata.Key, comp.Metadata.Scale, comp.Metadata.Progression)
	}
	for _, w := range comp.Metadata.Warnings {
		logger.Warn(w)
	}

	if saveHistory {
		store, err := openHistory()
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("history is disabled: set --db or CODECOMPOSER_DB")
		}
		defer store.Close()

		rec, err := store.Save(ctx, archive.SaveParams{
			Source:      input,
			Language:    string(lang),
			Options:     opts,
			Composition: comp,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Saved as %s\n", rec.ID)
	}
	return nil
}

func runTokenize(cmd *cobra.Command, args []string) error {
	tokens, _, err := readTokens(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tokens)
}
