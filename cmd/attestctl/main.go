package main

import (
	"os"

	"github.com/trustgate/attest/cmd/attestctl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
