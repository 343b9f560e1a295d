// mzalign - mass-aware peptide alignment tool
package main

import (
	"fmt"
	"os"

	"github.com/rusteomics/mzalign/cmd/mzalign/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
