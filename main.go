package main

import (
	"os"

	"github.com/postlinehq/postline/cmd"
	"github.com/postlinehq/postline/internal/logutil"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logutil.Errorf("%v", err)
		os.Exit(1)
	}
}
