package cmd

import (
	"fmt"

	"github.com/rusteomics/mzalign/pkg/mzalign"
	"github.com/spf13/cobra"
)

func newMassCmd() *cobra.Command {
	var charge int

	cmd := &cobra.Command{
		Use:   "mass <peptide>...",
		Short: "Show peptide formula and masses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if charge <= 0 {
				return fmt.Errorf("charge must be positive")
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				p, err := mzalign.NewPeptide(arg)
				if err != nil {
					return err
				}
				s := mzalign.PeptideStats(p)
				fmt.Fprintf(out, "%s\n", p)
				fmt.Fprintf(out, "  Formula: %s\n", s.Formula)
				fmt.Fprintf(out, "  Monoisotopic mass: %.6f\n", s.MonoisotopicMass)
				fmt.Fprintf(out, "  m/z (%d+): %.6f\n", charge, p.MZ(charge))
				fmt.Fprintf(out, "  Modified residues: %d/%d\n", s.ModifiedCount, s.Length)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&charge, "charge", "z", 1, "Charge state for m/z")
	return cmd
}
