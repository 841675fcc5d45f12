package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/glyph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of glyph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("glyph version %s\n", strings.TrimSpace(glyph.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
