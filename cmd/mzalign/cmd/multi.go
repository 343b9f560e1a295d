package cmd

import (
	"fmt"

	"github.com/rusteomics/mzalign/pkg/mzalign"
	"github.com/spf13/cobra"
)

func newMultiCmd(flags *profileFlags) *cobra.Command {
	var (
		file        string
		maxDistance float64
	)

	cmd := &cobra.Command{
		Use:   "multi [peptides...]",
		Short: "Progressively align many peptides",
		Long: `Merge the closest peptides or groups first until one alignment remains,
or until the closest groups are further apart than --max-distance.

Examples:
  mzalign multi PEPTIDE PEPTLDE KLVNELTEFAK KLVNEVTEFAK
  mzalign multi --file peptides.txt --max-distance 0.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := flags.options()
			if err != nil {
				return err
			}
			peptides, err := readPeptides(file, args)
			if err != nil {
				return err
			}
			if len(peptides) == 0 {
				return fmt.Errorf("no peptides given")
			}

			multiOpts := mzalign.DefaultMultiOptions()
			multiOpts.Alignment = opts
			switch {
			case cmd.Flags().Changed("max-distance"):
				multiOpts.MaxDistance = maxDistance
			case cfg.MaxDistance > 0:
				multiOpts.MaxDistance = cfg.MaxDistance
			}

			result, err := mzalign.AlignMany(peptides, multiOpts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, c := range result.Clusters {
				fmt.Fprintf(out, "Cluster %d: %v\n", i+1, c.Members)
				if c.Alignment == nil {
					fmt.Fprintf(out, "%s\n\n", peptides[c.Members[0]])
					continue
				}
				fmt.Fprint(out, c.Alignment)
				fmt.Fprintf(out, "Path: %s\n\n", c.Alignment.ShortPath())
			}
			for _, m := range result.Merges {
				fmt.Fprintf(out, "Merged %v + %v at %.3f\n", m.Left, m.Right, m.Distance)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Peptide list file, '-' for stdin")
	cmd.Flags().Float64Var(&maxDistance, "max-distance", 0, "Stop merging above this distance")
	return cmd
}
