package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsalign/internal/config"
	"github.com/Sumatoshi-tech/tsalign/internal/observability"
	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
	"github.com/Sumatoshi-tech/tsalign/pkg/fasta"
)

func newShowCommand(root *rootOptions) *cobra.Command {
	var (
		stats bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "show <alignment> <fasta> [<fasta>]",
		Short: "Render a saved alignment against its sequences",
		Long: `Render an alignment saved by "align --output" against the FASTA sequences it
was computed from: a three-row view of reference and query followed by one
block per template switch showing the primary track against the reverse
complement it was copied from.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return err
			}

			return root.withObservability(cmd, cfg, func(providers observability.Providers) error {
				result, err := alignment.ReadFile(args[0])
				if err != nil {
					return err
				}

				reference, query, err := fasta.ReadPair(args[1:]...)
				if err != nil {
					return err
				}

				if reference.Name != result.ReferenceName || query.Name != result.QueryName {
					providers.Logger.WarnContext(cmd.Context(), "sequence names differ from the saved alignment",
						"reference", reference.Name, "saved_reference", result.ReferenceName,
						"query", query.Name, "saved_query", result.QueryName)
				}

				abc, err := alphabet.ByName(cfg.Alignment.Alphabet)
				if err != nil {
					return err
				}

				refSeq, err := abc.Normalize(reference.Sequence)
				if err != nil {
					return err
				}

				qrySeq, err := abc.Normalize(query.Sequence)
				if err != nil {
					return err
				}

				view := outputView{draw: true, stats: stats, width: width, alphabet: abc}

				return view.print(cmd.OutOrStdout(), root, result, refSeq, qrySeq)
			})
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "print the saved search statistics")
	cmd.Flags().IntVar(&width, "width", 0, "wrap rows after this many columns (negative disables)")

	return cmd
}
