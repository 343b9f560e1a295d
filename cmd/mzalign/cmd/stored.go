package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newStoredCmd(flags *profileFlags) *cobra.Command {
	storedCmd := &cobra.Command{
		Use:   "stored",
		Short: "Inspect alignments saved in the store",
	}

	storedCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored alignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.profile()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			summaries, err := s.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSEQUENCES\tSCORE\tPATH\tCREATED")
			for _, sum := range summaries {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n",
					sum.ID, sum.Type, sum.Sequences, sum.Score, sum.ShortPath, sum.Created.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})

	storedCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored alignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid alignment id %q", args[0])
			}
			cfg, err := flags.profile()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			msa, err := s.Load(id)
			if err != nil {
				return err
			}
			return printAlignment(cmd.OutOrStdout(), msa)
		},
	})

	storedCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored alignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid alignment id %q", args[0])
			}
			cfg, err := flags.profile()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
			return nil
		},
	})

	return storedCmd
}
