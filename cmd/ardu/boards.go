package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List attached boards",
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit()
		if err != nil {
			return err
		}

		boards, err := tk.locator.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(boards) == 0 {
			fmt.Println("No boards attached.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PORT\tFQBN\tLABEL")
		for _, b := range boards {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.Port, b.FQBN, b.Label)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(boardsCmd)
}
