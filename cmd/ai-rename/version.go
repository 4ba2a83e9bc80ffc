package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of ai-rename",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ai-rename %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
