package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/ardu/internal/arduino"
)

var (
	uploadPort string
	uploadFQBN string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <artifact>",
	Short: "Flash a compiled artifact to a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit()
		if err != nil {
			return err
		}

		board, err := targetBoard(cmd, tk, uploadPort, uploadFQBN)
		if err != nil {
			return err
		}

		result, err := tk.uploader.Upload(cmd.Context(), args[0], board)
		for _, line := range result.Diagnostics {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("upload failed (exit %d)", result.ExitCode)
		}
		fmt.Printf("Flashed %s to %s\n", args[0], board.Port)
		return nil
	},
}

// targetBoard builds the Board for a flash-style command. An explicit
// port is taken as-is; otherwise the configured port, and failing that
// the single attached board, is used.
func targetBoard(cmd *cobra.Command, tk *toolkit, port, fqbn string) (arduino.Board, error) {
	if fqbn == "" {
		fqbn = cfg.DefaultFQBN
	}
	if port == "" {
		port = cfg.SerialPort
	}
	if port != "" {
		return arduino.Board{Port: port, FQBN: fqbn}, nil
	}

	boards, err := tk.locator.List(cmd.Context())
	if err != nil {
		return arduino.Board{}, err
	}
	if len(boards) != 1 {
		return arduino.Board{}, fmt.Errorf("%d boards attached; pick one with --port", len(boards))
	}
	b := boards[0]
	if fqbn != cfg.DefaultFQBN {
		b.FQBN = fqbn
	}
	return b, nil
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadPort, "port", "p", "", "serial port (default: configured or the single attached board)")
	uploadCmd.Flags().StringVarP(&uploadFQBN, "fqbn", "b", "", "fully qualified board name (default: configured)")
	rootCmd.AddCommand(uploadCmd)
}
