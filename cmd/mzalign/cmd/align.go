package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rusteomics/mzalign/pkg/mzalign"
	"github.com/spf13/cobra"
)

func newAlignCmd(flags *profileFlags) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "align <peptide-a> <peptide-b>",
		Short: "Align two peptides",
		Long: `Align two peptides in bracket notation and print the alignment, its
short path and a column summary.

Examples:
  mzalign align WGGD WND
  mzalign align --type local GGGPEPTIDEGGG WWPEPTIDEWW
  mzalign align --tolerance "0.01 da" "PEPM[Oxidation]K" PEPMK
  mzalign align --db alignments.db --save PEPTIDE PEPTLDE`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := flags.options()
			if err != nil {
				return err
			}
			a, err := mzalign.NewPeptide(args[0])
			if err != nil {
				return fmt.Errorf("peptide a: %w", err)
			}
			b, err := mzalign.NewPeptide(args[1])
			if err != nil {
				return fmt.Errorf("peptide b: %w", err)
			}

			msa, err := mzalign.Align(a, b, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := printAlignment(out, msa); err != nil {
				return err
			}

			if save {
				s, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer s.Close()
				id, err := s.Save(msa)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved as %d\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the alignment to the store")
	return cmd
}

func printAlignment(out io.Writer, msa *mzalign.Alignment) error {
	fmt.Fprint(out, msa)
	fmt.Fprintf(out, "Score: %d\n", msa.Score)
	fmt.Fprintf(out, "Path: %s\n", msa.ShortPath())

	if len(msa.Sequences) == 2 {
		s, err := mzalign.AlignmentStats(msa)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Identity: %.1f%% (%d/%d)\n", s.IdentityRatio()*100, s.Identical, s.Length)
		fmt.Fprintf(out, "Similarity: %.1f%% (%d/%d)\n", s.SimilarityRatio()*100, s.Similar, s.Length)
		fmt.Fprintf(out, "Gaps: %d\n", s.Gaps)
	}
	return nil
}

// readPeptides reads peptides from a list file, or from args when no file
// is given.
func readPeptides(file string, args []string) ([]*mzalign.Peptide, error) {
	if file == "-" {
		return mzalign.ParsePeptides(os.Stdin)
	}
	if file != "" {
		return mzalign.ReadPeptides(file)
	}
	peptides := make([]*mzalign.Peptide, len(args))
	for i, arg := range args {
		p, err := mzalign.NewPeptide(arg)
		if err != nil {
			return nil, fmt.Errorf("peptide %d: %w", i+1, err)
		}
		peptides[i] = p
	}
	return peptides, nil
}
