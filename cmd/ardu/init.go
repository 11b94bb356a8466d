package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/ardu/internal/config"
)

var initGlobal bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an ardu workspace in the current directory",
	Long: `Creates the .ardu/ marker with a config file and the sketches
directory. Subsequent ardu invocations anywhere below this directory
resolve to this workspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := workspaceFlag
		if root == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			root = cwd
		}

		if err := config.Save(config.Defaults(), root, initGlobal); err != nil {
			return err
		}
		sketchDir := filepath.Join(root, config.DefaultSketchDirName)
		if err := os.MkdirAll(sketchDir, 0o755); err != nil {
			return err
		}

		fmt.Printf("Initialized workspace at %s (sketches in %s)\n", root, sketchDir)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write the config to ~/.config/ardu instead")
	rootCmd.AddCommand(initCmd)
}
