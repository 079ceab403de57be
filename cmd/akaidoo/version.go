package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"akaidoo/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the akaidoo version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("akaidoo version %s\n", version.Info())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
