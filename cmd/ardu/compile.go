package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/ardu/internal/arduino"
)

var compileFQBN string

var compileCmd = &cobra.Command{
	Use:   "compile <sketch-path-or-name>",
	Short: "Compile a sketch into a flashable artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit()
		if err != nil {
			return err
		}

		sketchPath := resolveSketchArg(tk, args[0])
		fqbn := compileFQBN
		if fqbn == "" {
			fqbn = cfg.DefaultFQBN
		}

		result, err := tk.compiler.Compile(cmd.Context(), sketchPath, fqbn)
		if err != nil {
			return err
		}
		for _, line := range result.Diagnostics {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		if !result.Success {
			return fmt.Errorf("compile failed (exit %d)", result.ExitCode)
		}
		fmt.Println(result.ArtifactPath)
		return nil
	},
}

// resolveSketchArg accepts either a sketch directory path or a bare
// sketch name in the workspace sketches root.
func resolveSketchArg(tk *toolkit, arg string) string {
	if arduino.ValidateSketchName(arg) == nil {
		if _, err := os.Stat(tk.sketches.Path(arg)); err == nil {
			return tk.sketches.Path(arg)
		}
	}
	return arg
}

func init() {
	compileCmd.Flags().StringVarP(&compileFQBN, "fqbn", "b", "", "fully qualified board name (default: configured)")
	rootCmd.AddCommand(compileCmd)
}
