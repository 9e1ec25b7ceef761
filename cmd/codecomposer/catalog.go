package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/james-see/codecomposer/pkg/errs"
	"github.com/james-see/codecomposer/pkg/render"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
)

var (
	catalogKey   string
	catalogScale string
	catalogTempo int
	showPreview  bool
)

var stylesCmd = &cobra.Command{
	Use:   "styles [name]",
	Short: "List styles, or print one style as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStyles,
}

var scalesCmd = &cobra.Command{
	Use:   "scales [name]",
	Short: "List scales, or play one up and down as Alda",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScales,
}

var progressionsCmd = &cobra.Command{
	Use:   "progressions",
	Short: "List the progressions of a scale resolved in a key",
	Args:  cobra.NoArgs,
	RunE:  runProgressions,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Summarize a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	scalesCmd.Flags().StringVarP(&catalogKey, "key", "k", "C", "Tonic for the preview")
	scalesCmd.Flags().IntVarP(&catalogTempo, "tempo", "t", 0, "Preview tempo")

	progressionsCmd.Flags().StringVarP(&catalogKey, "key", "k", "C", "Tonic")
	progressionsCmd.Flags().StringVar(&catalogScale, "scale", "major", "Scale")
	progressionsCmd.Flags().IntVarP(&catalogTempo, "tempo", "t", 0, "Preview tempo")
	progressionsCmd.Flags().BoolVar(&showPreview, "preview", false, "Print an Alda preview of each compatible progression")
}

func runStyles(cmd *cobra.Command, args []string) error {
	reg, err := registry()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		st, err := reg.Resolve(args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(st)
		if err != nil {
			return fmt.Errorf("failed to encode style: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKEY\tSCALE\tPROGRESSION\tBASS\tINSTRUMENT\tTEMPO\tDESCRIPTION")
	for _, st := range reg.Styles() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			st.Name, st.Key, st.Scale, st.Progression, st.BassPattern, st.Instrument, st.Tempo, st.Description)
	}
	fmt.Fprintf(w, "\nBass patterns: %s\n", strings.Join(style.BassPatterns(), ", "))
	fmt.Fprintf(w, "Instruments: %s\n", strings.Join(style.Instruments(), ", "))
	return w.Flush()
}

func runScales(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		alda, err := render.ScalePreview(catalogKey, args[0], catalogTempo)
		if err != nil {
			return err
		}
		fmt.Print(alda)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNOTES\tDEFAULT PROGRESSION\tDESCRIPTION")
	for _, name := range theory.ScaleNames() {
		def, _ := theory.LookupScale(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", def.Name, len(def.Intervals), def.DefaultProgression, def.Description)
	}
	return w.Flush()
}

func runProgressions(cmd *cobra.Command, args []string) error {
	def, ok := theory.LookupScale(catalogScale)
	if !ok {
		return &errs.ConfigurationError{Kind: "scale", Name: catalogScale, Reason: "not registered"}
	}

	fmt.Printf("Progressions for %s %s:\n", catalogKey, def.Name)
	for _, name := range def.Progressions {
		marker := " "
		if name == def.DefaultProgression {
			marker = "*"
		}
		if !theory.Compatible(catalogKey, catalogScale, name) {
			fmt.Printf(" %s %s (incompatible)\n", marker, name)
			continue
		}

		p, err := render.ProgressionPreview(catalogKey, catalogScale, name, catalogTempo)
		if err != nil {
			return err
		}
		fmt.Printf(" %s %-22s %s\n", marker, name, strings.Join(p.Chords, "  "))
		if showPreview {
			fmt.Println(indent(p.Alda, "     "))
		}
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	summary, err := render.Inspect(data)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d ticks per quarter, %.0f bpm, %s\n", args[0], summary.Resolution, summary.Tempo, summary.Meter)
	fmt.Printf("%d notes over %.2f bars (%d ticks)\n", summary.Notes, summary.Bars, summary.Ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRACK\tCHANNELS\tNOTES\tTICKS")
	for _, t := range summary.Tracks {
		fmt.Fprintf(w, "%s\t%v\t%d\t%d\n", t.Name, t.Channels, t.Notes, t.Ticks)
	}
	return w.Flush()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
