package main

import (
	"os"

	"genstudio/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
