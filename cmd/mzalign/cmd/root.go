// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"

	"github.com/rusteomics/mzalign/pkg/mzalign"
	"github.com/spf13/cobra"
)

// profileFlags are the persistent flags overriding the loaded profile.
type profileFlags struct {
	configFile string
	alignType  string
	steps      int
	tolerance  string
	matrix     string
	database   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &profileFlags{}

	rootCmd := &cobra.Command{
		Use:   "mzalign",
		Short: "mzalign - Mass-aware peptide alignment",
		Long: `mzalign aligns peptides while recognising isobaric and rotated windows
by mass, so sequences that differ only in ways a mass spectrometer cannot
tell apart still align.

Supports:
- Global, local and semi-global alignment
- Named and mass-shift modifications
- Progressive multiple alignment
- Library search with a k-mer prefilter
- SQLite storage of alignments`,
		Version:       mzalign.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "YAML alignment profile")
	pf.StringVarP(&flags.alignType, "type", "t", "", "Alignment type: global, local, global-a, global-b or a 4 digit flag")
	pf.IntVar(&flags.steps, "steps", 0, "Maximal residues per alignment step (0 = profile value)")
	pf.StringVar(&flags.tolerance, "tolerance", "", "Mass tolerance, e.g. '10 ppm' or '0.02 da'")
	pf.StringVar(&flags.matrix, "matrix", "", "Substitution matrix: blosum62 or identity")
	pf.StringVar(&flags.database, "db", "", "SQLite alignment store")

	rootCmd.AddCommand(newAlignCmd(flags))
	rootCmd.AddCommand(newMultiCmd(flags))
	rootCmd.AddCommand(newSearchCmd(flags))
	rootCmd.AddCommand(newMassCmd())
	rootCmd.AddCommand(newStoredCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), mzalign.Info())
		},
	})

	return rootCmd
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// profile loads the profile and applies the flags on top of it.
func (f *profileFlags) profile() (*mzalign.Config, error) {
	cfg, err := mzalign.LoadConfig(f.configFile)
	if err != nil {
		return nil, err
	}
	if f.alignType != "" {
		cfg.Type = f.alignType
	}
	if f.steps != 0 {
		cfg.Steps = f.steps
	}
	if f.tolerance != "" {
		cfg.Scoring.Tolerance = f.tolerance
	}
	if f.matrix != "" {
		cfg.Scoring.Matrix = f.matrix
		cfg.Scoring.MatrixFile = ""
	}
	if f.database != "" {
		cfg.Database = f.database
	}
	return cfg, nil
}

func (f *profileFlags) options() (mzalign.Options, *mzalign.Config, error) {
	cfg, err := f.profile()
	if err != nil {
		return mzalign.Options{}, nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return mzalign.Options{}, nil, err
	}
	return opts, cfg, nil
}

// openStore opens the configured store.
func openStore(cfg *mzalign.Config) (*mzalign.Store, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("no alignment store, use --db or set database in the profile")
	}
	return mzalign.OpenStore(cfg.Database)
}

func newConfigCmd(flags *profileFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective alignment profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.profile()
			if err != nil {
				return err
			}
			if _, err := cfg.SearchOptions(); err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
}
