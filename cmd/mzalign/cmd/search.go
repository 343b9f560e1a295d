package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/rusteomics/mzalign/internal/index"
	"github.com/rusteomics/mzalign/pkg/mzalign"
	"github.com/spf13/cobra"
)

func newSearchCmd(flags *profileFlags) *cobra.Command {
	var (
		library string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a peptide library",
		Long: `Align a query against every library peptide sharing enough k-mers with
it and list the hits passing the profile's score filter, best first.

Examples:
  mzalign search --library library.txt PEPTIDE
  mzalign search --library library.txt --limit 5 --tolerance "0.02 da" PEPTLDE`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.profile()
			if err != nil {
				return err
			}
			if flags.alignType != "" {
				cfg.Search.Type = flags.alignType
			}
			opts, err := cfg.SearchOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit = limit
			}

			query, err := mzalign.NewPeptide(args[0])
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			peptides, err := mzalign.ReadPeptides(library)
			if err != nil {
				return err
			}
			ix, err := index.New(peptides, cfg.Search.K)
			if err != nil {
				return err
			}

			hits, err := ix.Search(query, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d hits in %d peptides\n", len(hits), ix.Len())
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTRY\tID\tPEPTIDE\tSCORE\tNORMALISED\tPATH")
			for _, hit := range hits {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.3f\t%s\n",
					hit.Entry, hit.Peptide.ID, hit.Peptide, hit.Alignment.Score, hit.Score, hit.Alignment.ShortPath())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&library, "library", "l", "", "Peptide list file (required)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Keep only the best hits (0 = all)")
	cmd.MarkFlagRequired("library")
	return cmd
}
