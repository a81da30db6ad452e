package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsalign/internal/config"
	"github.com/Sumatoshi-tech/tsalign/internal/observability"
	"github.com/Sumatoshi-tech/tsalign/pkg/aligner"
	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
	"github.com/Sumatoshi-tech/tsalign/pkg/fasta"
	"github.com/Sumatoshi-tech/tsalign/pkg/render"
)

// alignFlags holds the align flags. They override the configuration only
// when set on the command line.
type alignFlags struct {
	output                  string
	render                  bool
	stats                   bool
	width                   int
	alphabet                string
	costLimit               int64
	memLimit                string
	noTS                    bool
	maxTS                   int
	leftFlank               int
	rightFlank              int
	minLength               int
	nodeOrd                 string
	minLengthStrategy       string
	chaining                string
	shortcut                bool
	forbidSecondaryDeletion bool
	maxMatches              int
}

func newAlignCommand(root *rootOptions) *cobra.Command {
	flags := &alignFlags{}

	cmd := &cobra.Command{
		Use:   "align <fasta> [<fasta>]",
		Short: "Align a query against a reference",
		Long: `Align a query against a reference allowing template switches.

The sequences come either from one FASTA file with two records (reference
first) or from two FASTA files with one record each. The alignment is printed
as cost and operation stream; --output saves it as YAML, compressed with LZ4
when the path ends in .lz4.

A search stopped by --cost-limit or --memory-limit exits with status 2.`,
		Example: `  tsalign align pair.fa
  tsalign align ref.fa query.fa --render -o result.yaml.lz4
  tsalign align ref.fa query.fa --no-ts --chaining none`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return err
			}

			err = flags.apply(cmd.Flags().Changed, cfg)
			if err != nil {
				return err
			}

			return root.withObservability(cmd, cfg, func(providers observability.Providers) error {
				return runAlign(cmd, root, flags, cfg, providers, args)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "save the alignment as YAML (.lz4 suffix compresses)")
	f.BoolVar(&flags.render, "render", false, "draw the alignment against the sequences")
	f.BoolVar(&flags.stats, "stats", true, "print search statistics")
	f.IntVar(&flags.width, "width", 0, "wrap rendered rows after this many columns (negative disables)")
	f.StringVar(&flags.alphabet, "alphabet", "", "sequence alphabet: dna, dna-n or rna")
	f.Int64Var(&flags.costLimit, "cost-limit", 0, "abort once the cheapest open path exceeds this cost (0 = unlimited)")
	f.StringVar(&flags.memLimit, "memory-limit", "", "abort once the search uses this much memory, e.g. 2GiB")
	f.BoolVar(&flags.noTS, "no-ts", false, "disable template switches")
	f.IntVar(&flags.maxTS, "max-ts", aligner.Unlimited, "maximum number of template switches (-1 = unlimited)")
	f.IntVar(&flags.leftFlank, "left-flank", 0, "flank length before each template switch")
	f.IntVar(&flags.rightFlank, "right-flank", 0, "flank length after each template switch")
	f.IntVar(&flags.minLength, "min-length", 0, "minimum template switch length for the lookahead strategy")
	f.StringVar(&flags.nodeOrd, "node-ord", "", "node ordering: cost-only or anti-diagonal")
	f.StringVar(&flags.minLengthStrategy, "min-length-strategy", "", "template switch min length strategy: none or lookahead")
	f.StringVar(&flags.chaining, "chaining", "", "chaining strategy: none, precompute-only or lower-bound")
	f.BoolVar(&flags.shortcut, "shortcut", false, "jump over exact match runs")
	f.BoolVar(&flags.forbidSecondaryDeletion, "forbid-secondary-deletion", false, "disallow deletions inside template switches")
	f.IntVar(&flags.maxMatches, "max-consecutive-matches", aligner.Unlimited,
		"maximum run of primary matches (-1 = unlimited)")

	return cmd
}

// apply copies the flags set on the command line into cfg and revalidates it.
func (f *alignFlags) apply(changed func(string) bool, cfg *config.Config) error {
	a, s := &cfg.Alignment, &cfg.Strategies

	overrides := []struct {
		flag  string
		apply func()
	}{
		{"alphabet", func() { a.Alphabet = f.alphabet }},
		{"cost-limit", func() { a.CostLimit = f.costLimit }},
		{"memory-limit", func() { a.MemoryLimit = f.memLimit }},
		{"max-ts", func() { a.MaxTemplateSwitchCount = f.maxTS }},
		{"left-flank", func() { a.LeftFlankLength = f.leftFlank }},
		{"right-flank", func() { a.RightFlankLength = f.rightFlank }},
		{"min-length", func() { a.TemplateSwitchMinLength = f.minLength }},
		{"node-ord", func() { s.NodeOrd = f.nodeOrd }},
		{"min-length-strategy", func() { s.MinLength = f.minLengthStrategy }},
		{"chaining", func() { s.Chaining = f.chaining }},
		{"shortcut", func() { s.Shortcut = f.shortcut }},
		{"forbid-secondary-deletion", func() { s.SecondaryDeletion = !f.forbidSecondaryDeletion }},
		{"max-consecutive-matches", func() { s.MaxConsecutivePrimaryMatches = f.maxMatches }},
	}

	for _, o := range overrides {
		if changed(o.flag) {
			o.apply()
		}
	}

	if f.noTS {
		a.MaxTemplateSwitchCount = 0
	}

	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("command line: %w", err)
	}

	return nil
}

func runAlign(
	cmd *cobra.Command, root *rootOptions, flags *alignFlags, cfg *config.Config,
	providers observability.Providers, args []string,
) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	reference, query, err := fasta.ReadPair(args...)
	if err != nil {
		return err
	}

	opts, err := cfg.AlignerOptions()
	if err != nil {
		return err
	}

	opts.ReferenceName = reference.Name
	opts.QueryName = query.Name
	opts.Logger = providers.Logger

	refSeq, err := opts.Alphabet.Normalize(reference.Sequence)
	if err != nil {
		return fmt.Errorf("reference %s: %w", reference.Name, err)
	}

	qrySeq, err := opts.Alphabet.Normalize(query.Sequence)
	if err != nil {
		return fmt.Errorf("query %s: %w", query.Name, err)
	}

	metrics, err := observability.NewSearchMetrics(providers.Meter)
	if err != nil {
		return err
	}

	start := time.Now()
	result, alignErr := aligner.Align(ctx, refSeq, qrySeq, opts)
	metrics.RecordAlignment(ctx, result, alignErr, time.Since(start))

	if alignErr != nil {
		return alignErr
	}

	if flags.output != "" {
		err = result.WriteFile(flags.output)
		if err != nil {
			return err
		}

		providers.Logger.InfoContext(ctx, "alignment saved", "path", flags.output)
	}

	if root.quiet {
		return nil
	}

	view := outputView{draw: flags.render, stats: flags.stats, width: flags.width, alphabet: opts.Alphabet}

	return view.print(out, root, result, refSeq, qrySeq)
}

// outputView selects how a finished alignment is printed.
type outputView struct {
	draw     bool
	stats    bool
	width    int
	alphabet *alphabet.Alphabet
}

func (v outputView) print(out io.Writer, root *rootOptions, result *alignment.Alignment, reference, query []byte) error {
	if v.draw {
		r := render.New(render.Options{Color: root.colorEnabled(), Width: v.width, Alphabet: v.alphabet})

		err := r.Render(out, result, reference, query)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s\n", result.CIGAR())
	} else {
		fmt.Fprintln(out, result.String())
	}

	if v.stats {
		fmt.Fprintf(out, "\n%s\n", render.StatisticsTable(result))
	}

	return nil
}
