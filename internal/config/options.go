package config

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/tsalign/pkg/aligner"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// Selection converts the strategies section and the switch limits into an
// aligner strategy selection.
func (c *Config) Selection() (aligner.Selection, error) {
	s := c.Strategies
	sel := aligner.DefaultSelection()

	var err error

	sel.NodeOrd, err = aligner.ParseNodeOrd(s.NodeOrd)
	if err != nil {
		return sel, fmt.Errorf("%w: %w", ErrUnknownNodeOrd, err)
	}

	sel.MinLength, err = aligner.ParseMinLength(s.MinLength)
	if err != nil {
		return sel, fmt.Errorf("%w: %w", ErrUnknownMinLength, err)
	}

	sel.Chaining, err = aligner.ParseChaining(s.Chaining)
	if err != nil {
		return sel, fmt.Errorf("%w: %w", ErrUnknownChaining, err)
	}

	if s.MaxConsecutivePrimaryMatches < aligner.Unlimited {
		return sel, ErrInvalidPrimaryMatches
	}

	sel.MinLengthValue = c.Alignment.TemplateSwitchMinLength
	sel.MaxTemplateSwitches = c.Alignment.MaxTemplateSwitchCount
	sel.Shortcut = s.Shortcut
	sel.ForbidSecondaryDeletion = !s.SecondaryDeletion
	sel.MaxConsecutivePrimaryMatches = s.MaxConsecutivePrimaryMatches

	return sel, nil
}

func editCosts(name string, e EditCostsConfig) (cost.EditCosts, error) {
	if e.Match < 0 || e.Substitution < 0 || e.Insertion < 0 || e.Deletion < 0 {
		return cost.EditCosts{}, fmt.Errorf("%w: costs.%s", ErrNegativeCost, name)
	}

	return cost.EditCosts{
		Match:        cost.Cost(e.Match),
		Substitution: cost.Cost(e.Substitution),
		Insertion:    cost.Cost(e.Insertion),
		Deletion:     cost.Cost(e.Deletion),
	}, nil
}

// CostTable builds the cost table described by the costs section.
func (c *Config) CostTable() (cost.Table, error) {
	var (
		table cost.Table
		err   error
	)

	edits := []struct {
		name   string
		source EditCostsConfig
		target *cost.EditCosts
	}{
		{"primary", c.Costs.Primary, &table.Primary},
		{"secondary", c.Costs.Secondary, &table.Secondary},
		{"left_flank", c.Costs.LeftFlank, &table.LeftFlank},
		{"right_flank", c.Costs.RightFlank, &table.RightFlank},
	}

	for _, e := range edits {
		*e.target, err = editCosts(e.name, e.source)
		if err != nil {
			return cost.Table{}, err
		}
	}

	ts := c.Costs.TemplateSwitch
	if ts.Entrance.Reference < 0 || ts.Entrance.Query < 0 || ts.Exit < 0 {
		return cost.Table{}, fmt.Errorf("%w: costs.template_switch", ErrNegativeCost)
	}

	table.EntranceReference = cost.Cost(ts.Entrance.Reference)
	table.EntranceQuery = cost.Cost(ts.Entrance.Query)
	table.Exit = cost.Cost(ts.Exit)

	functions := []struct {
		name   string
		source string
		target *cost.Function
	}{
		{"offset", ts.Offset, &table.Offset},
		{"length", ts.Length, &table.Length},
		{"length_difference", ts.LengthDifference, &table.LengthDifference},
	}

	for _, f := range functions {
		*f.target, err = cost.ParseFunction(f.source)
		if err != nil {
			return cost.Table{}, fmt.Errorf("%w: costs.template_switch.%s: %w", ErrInvalidCostFunction, f.name, err)
		}
	}

	err = table.Validate()
	if errors.Is(err, cost.ErrNegativeCost) {
		return cost.Table{}, fmt.Errorf("%w: %w", ErrNegativeCost, err)
	}

	if err != nil {
		return cost.Table{}, fmt.Errorf("%w: %w", ErrInvalidCostFunction, err)
	}

	return table, nil
}

// AlignerOptions converts the configuration into options for aligner.Align.
// Sequence names and the logger are left to the caller.
func (c *Config) AlignerOptions() (aligner.Options, error) {
	opts := aligner.DefaultOptions()

	var err error

	opts.Alphabet, err = alphabet.ByName(c.Alignment.Alphabet)
	if err != nil {
		return opts, fmt.Errorf("%w: %w", ErrUnknownAlphabet, err)
	}

	opts.Costs, err = c.CostTable()
	if err != nil {
		return opts, err
	}

	opts.Selection, err = c.Selection()
	if err != nil {
		return opts, err
	}

	opts.MemoryLimit, err = c.MemoryLimitBytes()
	if err != nil {
		return opts, err
	}

	opts.LeftFlankLength = c.Alignment.LeftFlankLength
	opts.RightFlankLength = c.Alignment.RightFlankLength
	opts.CostLimit = cost.Cost(c.Alignment.CostLimit)

	return opts, nil
}
