package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <name> [file]",
	Short: "Write a sketch into the sketches directory",
	Long: `Stores source as <sketches>/<name>/<name>.ino, overwriting atomically.
Reads from the given file, or from stdin when the file is omitted or "-".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit()
		if err != nil {
			return err
		}

		source, err := readSource(args)
		if err != nil {
			return err
		}

		path, err := tk.sketches.Write(args[0], source)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

// readSource returns sketch source from args[1] or stdin.
func readSource(args []string) (string, error) {
	if len(args) > 1 && args[1] != "-" {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
