package main

import (
	"fmt"
	"os"

	"github.com/aretw0/glyph/internal/presentation/tui"
	"github.com/aretw0/glyph/internal/replay"
	"github.com/aretw0/glyph/pkg/observability"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replayCmd = &cobra.Command{
	Use:   "replay [script.yaml]",
	Short: "Replay a recorded gesture script",
	Long: `Feeds the strokes, waits, clears and resizes of a YAML script through a
drawing pad driven by a virtual clock and scripted predictions, then prints
a Markdown transcript of every captured gesture session.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		script, err := replay.LoadScript(args[0])
		if err != nil {
			return err
		}

		opts := []replay.Option{replay.WithLogger(logger)}
		if trace, _ := cmd.Flags().GetBool("trace"); trace {
			opts = append(opts, replay.WithLifecycleHooks(observability.LoggingHooks(logger)))
		}

		transcript, err := replay.NewRunner(opts...).Run(cmd.Context(), script)
		if err != nil {
			return err
		}

		out := transcript.Markdown()
		if diagram, _ := cmd.Flags().GetBool("diagram"); diagram {
			out += "\n## State machine\n\n" + transcript.Diagram()
		}
		if raw, _ := cmd.Flags().GetBool("raw"); !raw && term.IsTerminal(int(os.Stdout.Fd())) {
			if out, err = tui.NewRenderer(80)(out); err != nil {
				return err
			}
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("trace", false, "Log every gesture session event")
	replayCmd.Flags().Bool("diagram", false, "Append a Mermaid diagram of the states the replay went through")
	replayCmd.Flags().Bool("raw", false, "Print raw Markdown even on a terminal")
}
