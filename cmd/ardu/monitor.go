package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	monitorPort     string
	monitorBaud     int
	monitorDuration time.Duration
	monitorSave     bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream serial output from a board",
	Long: `Opens an exclusive read session on the port and prints decoded lines
until the duration elapses or the command is interrupted. Fails with
"port busy" if an upload is in progress on the same port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit()
		if err != nil {
			return err
		}

		board, err := targetBoard(cmd, tk, monitorPort, "")
		if err != nil {
			return err
		}
		baud := monitorBaud
		if baud == 0 {
			baud = cfg.SerialBaudRate
		}

		openCtx, cancel := context.WithTimeout(cmd.Context(), time.Second)
		session, err := tk.monitor.Open(openCtx, board.Port, baud)
		cancel()
		if err != nil {
			return err
		}
		defer session.Close()

		logger.Info().Str("port", board.Port).Int("baud", baud).Msg("monitoring; Ctrl-C to stop")

		readCtx := cmd.Context()
		if monitorDuration > 0 {
			var cancelRead context.CancelFunc
			readCtx, cancelRead = context.WithTimeout(readCtx, monitorDuration)
			defer cancelRead()
		}

		var captured []string
		for {
			line, err := session.ReadLine(readCtx)
			if err != nil {
				if monitorSave {
					path, serr := tk.logs.SaveCapture(board.Port, baud, captured)
					if serr != nil {
						return serr
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d lines to %s\n", len(captured), path)
				}
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			fmt.Println(line)
			if monitorSave {
				captured = append(captured, line)
			}
		}
	},
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorPort, "port", "p", "", "serial port (default: configured or the single attached board)")
	monitorCmd.Flags().IntVar(&monitorBaud, "baud", 0, "baud rate (default: configured)")
	monitorCmd.Flags().DurationVarP(&monitorDuration, "duration", "d", 0, "stop after this long (default: until interrupted)")
	monitorCmd.Flags().BoolVar(&monitorSave, "save", false, "save the capture to the workspace logbook")
	rootCmd.AddCommand(monitorCmd)
}
