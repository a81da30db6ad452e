package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// Sentinel errors of the costs command.
var (
	// ErrUnknownDefaultFunction is returned for a --default name without a built-in function.
	ErrUnknownDefaultFunction = errors.New("unknown default cost function")
	// ErrNoFunction is returned when neither a file nor --default is given.
	ErrNoFunction = errors.New("a cost function file or --default is required")
)

func newCostsCommand() *cobra.Command {
	var (
		defaultName string
		intervals   bool
	)

	cmd := &cobra.Command{
		Use:   "costs [<file>|-]",
		Short: "Check and reformat a plain-text cost function",
		Long: `Parse a cost function in the two-row plain-text format (indices, then costs)
and print it in canonical formatting. Reads stdin for "-". With --default,
prints one of the built-in template switch functions instead.`,
		Example: `  tsalign costs offset.txt
  tsalign costs --default length-difference --intervals`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := loadFunction(cmd.InOrStdin(), defaultName, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, fn.String())

			if intervals {
				for _, iv := range fn.FiniteIntervals() {
					fmt.Fprintf(out, "finite on [%s, %s]\n", boundString(iv.From), boundString(iv.To))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&defaultName, "default", "", "print a built-in function: offset, length or length-difference")
	cmd.Flags().BoolVar(&intervals, "intervals", false, "list the index ranges with finite cost")

	return cmd
}

func loadFunction(stdin io.Reader, defaultName string, args []string) (cost.Function, error) {
	if defaultName != "" {
		table := cost.DefaultTable()

		switch defaultName {
		case "offset":
			return table.Offset, nil
		case "length":
			return table.Length, nil
		case "length-difference":
			return table.LengthDifference, nil
		default:
			return cost.Function{}, fmt.Errorf("%w: %q", ErrUnknownDefaultFunction, defaultName)
		}
	}

	if len(args) == 0 {
		return cost.Function{}, ErrNoFunction
	}

	var (
		data []byte
		err  error
	)

	if args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}

	if err != nil {
		return cost.Function{}, fmt.Errorf("read cost function: %w", err)
	}

	fn, err := cost.ParseFunction(string(data))
	if err != nil {
		return cost.Function{}, fmt.Errorf("%s: %w", args[0], err)
	}

	return fn, nil
}

func boundString(index int64) string {
	switch index {
	case cost.IndexMin:
		return "-inf"
	case cost.IndexMax:
		return "inf"
	default:
		return fmt.Sprint(index)
	}
}
