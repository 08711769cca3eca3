// Command simplex compiles and runs a Simplex (.s3d) source file, per
// spec.md §6's external CLI interface.
package main

import (
	"os"

	"github.com/markchucarroll/simplex/cmd/simplex/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
