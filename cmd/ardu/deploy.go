package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deployPort string
	deployFQBN string
	deployJSON bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy <name> [file]",
	Short: "Write, compile and flash a sketch in one step",
	Long: `Runs the full pipeline: write the sketch, compile it, flash it to the
board. Stops at the first failing stage; a failed compile leaves the
written sketch on disk for inspection and never attempts the upload.`,
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

		board, err := targetBoard(cmd, tk, deployPort, deployFQBN)
		if err != nil {
			return err
		}

		result := tk.pipeline.Deploy(cmd.Context(), args[0], source, board)

		if deployJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			if !result.Success {
				return fmt.Errorf("deploy failed at %s stage", result.Stage)
			}
			return nil
		}

		if result.Compile != nil {
			for _, line := range result.Compile.Diagnostics {
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}
		}
		if result.Upload != nil {
			for _, line := range result.Upload.Diagnostics {
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}
		}
		if !result.Success {
			return fmt.Errorf("deploy failed at %s stage: %s", result.Stage, result.Error)
		}
		fmt.Printf("Deployed %s to %s\n", args[0], board.Port)
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVarP(&deployPort, "port", "p", "", "serial port (default: configured or the single attached board)")
	deployCmd.Flags().StringVarP(&deployFQBN, "fqbn", "b", "", "fully qualified board name (default: configured)")
	deployCmd.Flags().BoolVar(&deployJSON, "json", false, "print the full deploy result as JSON")
	rootCmd.AddCommand(deployCmd)
}
