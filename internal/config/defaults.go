package config

import (
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/tsalign/pkg/aligner"
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// Default configuration values.
const (
	DefaultAlphabet                = "dna"
	DefaultFlankLength             = 0
	DefaultTemplateSwitchMinLength = 0
	DefaultCostLimit               = 0
	DefaultMemoryLimit             = ""
	DefaultMaxTemplateSwitchCount  = aligner.Unlimited

	DefaultNodeOrd                      = "anti-diagonal"
	DefaultMinLength                    = "none"
	DefaultChaining                     = "lower-bound"
	DefaultShortcut                     = false
	DefaultSecondaryDeletion            = true
	DefaultMaxConsecutivePrimaryMatches = aligner.Unlimited

	DefaultLogLevel    = "info"
	DefaultSampleRatio = 1.0
)

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("alignment.alphabet", DefaultAlphabet)
	viperCfg.SetDefault("alignment.left_flank_length", DefaultFlankLength)
	viperCfg.SetDefault("alignment.right_flank_length", DefaultFlankLength)
	viperCfg.SetDefault("alignment.template_switch_min_length", DefaultTemplateSwitchMinLength)
	viperCfg.SetDefault("alignment.cost_limit", DefaultCostLimit)
	viperCfg.SetDefault("alignment.memory_limit", DefaultMemoryLimit)
	viperCfg.SetDefault("alignment.max_template_switch_count", DefaultMaxTemplateSwitchCount)

	viperCfg.SetDefault("strategies.node_ord", DefaultNodeOrd)
	viperCfg.SetDefault("strategies.min_length", DefaultMinLength)
	viperCfg.SetDefault("strategies.chaining", DefaultChaining)
	viperCfg.SetDefault("strategies.shortcut", DefaultShortcut)
	viperCfg.SetDefault("strategies.secondary_deletion", DefaultSecondaryDeletion)
	viperCfg.SetDefault("strategies.max_consecutive_primary_matches", DefaultMaxConsecutivePrimaryMatches)

	table := cost.DefaultTable()

	for name, edits := range map[string]cost.EditCosts{
		"primary":     table.Primary,
		"secondary":   table.Secondary,
		"left_flank":  table.LeftFlank,
		"right_flank": table.RightFlank,
	} {
		viperCfg.SetDefault("costs."+name+".match", edits.Match.Int64())
		viperCfg.SetDefault("costs."+name+".substitution", edits.Substitution.Int64())
		viperCfg.SetDefault("costs."+name+".insertion", edits.Insertion.Int64())
		viperCfg.SetDefault("costs."+name+".deletion", edits.Deletion.Int64())
	}

	viperCfg.SetDefault("costs.template_switch.entrance.reference", table.EntranceReference.Int64())
	viperCfg.SetDefault("costs.template_switch.entrance.query", table.EntranceQuery.Int64())
	viperCfg.SetDefault("costs.template_switch.exit", table.Exit.Int64())
	viperCfg.SetDefault("costs.template_switch.offset", table.Offset.String())
	viperCfg.SetDefault("costs.template_switch.length", table.Length.String())
	viperCfg.SetDefault("costs.template_switch.length_difference", table.LengthDifference.String())

	viperCfg.SetDefault("observability.log_level", DefaultLogLevel)
	viperCfg.SetDefault("observability.log_json", false)
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("observability.metrics_textfile", "")
}
