package main

import (
	"fmt"
	"os"

	akerr "akaidoo/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var coded *akerr.Error
		if asCoded(err, &coded) {
			if fix := akerr.SuggestedFix(coded.Code); fix != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", fix)
			}
		}
		os.Exit(1)
	}
}
