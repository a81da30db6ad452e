// Package config loads tsalign settings from files, environment variables and
// defaults, validates them and converts them into aligner options.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/tsalign/pkg/aligner"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
)

// Config is the top-level configuration struct for tsalign.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Alignment     AlignmentConfig     `mapstructure:"alignment"`
	Strategies    StrategiesConfig    `mapstructure:"strategies"`
	Costs         CostsConfig         `mapstructure:"costs"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AlignmentConfig holds the search limits and the template switch shape.
type AlignmentConfig struct {
	Alphabet                string `mapstructure:"alphabet"`
	LeftFlankLength         int    `mapstructure:"left_flank_length"`
	RightFlankLength        int    `mapstructure:"right_flank_length"`
	TemplateSwitchMinLength int    `mapstructure:"template_switch_min_length"`
	// CostLimit of 0 disables the limit.
	CostLimit int64 `mapstructure:"cost_limit"`
	// MemoryLimit is a humanized byte size such as "2GiB". Empty disables it.
	MemoryLimit string `mapstructure:"memory_limit"`
	// MaxTemplateSwitchCount of -1 allows any number of switches.
	MaxTemplateSwitchCount int `mapstructure:"max_template_switch_count"`
}

// StrategiesConfig selects one strategy per search axis.
type StrategiesConfig struct {
	NodeOrd                      string `mapstructure:"node_ord"`
	MinLength                    string `mapstructure:"min_length"`
	Chaining                     string `mapstructure:"chaining"`
	Shortcut                     bool   `mapstructure:"shortcut"`
	SecondaryDeletion            bool   `mapstructure:"secondary_deletion"`
	MaxConsecutivePrimaryMatches int    `mapstructure:"max_consecutive_primary_matches"`
}

// EditCostsConfig prices the edits of one track.
type EditCostsConfig struct {
	Match        int64 `mapstructure:"match"`
	Substitution int64 `mapstructure:"substitution"`
	Insertion    int64 `mapstructure:"insertion"`
	Deletion     int64 `mapstructure:"deletion"`
}

// EntranceConfig holds the base entrance cost per secondary.
type EntranceConfig struct {
	Reference int64 `mapstructure:"reference"`
	Query     int64 `mapstructure:"query"`
}

// TemplateSwitchConfig prices template switches. The functions use the
// two-row plain-text cost function format.
type TemplateSwitchConfig struct {
	Entrance         EntranceConfig `mapstructure:"entrance"`
	Exit             int64          `mapstructure:"exit"`
	Offset           string         `mapstructure:"offset"`
	Length           string         `mapstructure:"length"`
	LengthDifference string         `mapstructure:"length_difference"`
}

// CostsConfig holds the whole cost model.
type CostsConfig struct {
	Primary        EditCostsConfig      `mapstructure:"primary"`
	Secondary      EditCostsConfig      `mapstructure:"secondary"`
	LeftFlank      EditCostsConfig      `mapstructure:"left_flank"`
	RightFlank     EditCostsConfig      `mapstructure:"right_flank"`
	TemplateSwitch TemplateSwitchConfig `mapstructure:"template_switch"`
}

// ObservabilityConfig holds logging, tracing and metrics export settings.
type ObservabilityConfig struct {
	LogLevel        string  `mapstructure:"log_level"`
	LogJSON         bool    `mapstructure:"log_json"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure    bool    `mapstructure:"otlp_insecure"`
	SampleRatio     float64 `mapstructure:"sample_ratio"`
	MetricsTextfile string  `mapstructure:"metrics_textfile"`
}

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Sentinel errors for configuration validation.
var (
	// ErrUnknownAlphabet indicates an alphabet name other than dna, dna-n or rna.
	ErrUnknownAlphabet = fmt.Errorf("%w: alignment.alphabet must be dna, dna-n or rna", ErrInvalidConfig)
	// ErrInvalidFlankLength indicates a negative flank length.
	ErrInvalidFlankLength = fmt.Errorf("%w: flank lengths must be non-negative", ErrInvalidConfig)
	// ErrInvalidMinLength indicates a negative template switch minimum length.
	ErrInvalidMinLength = fmt.Errorf("%w: alignment.template_switch_min_length must be non-negative", ErrInvalidConfig)
	// ErrInvalidCostLimit indicates a negative cost limit.
	ErrInvalidCostLimit = fmt.Errorf("%w: alignment.cost_limit must be non-negative", ErrInvalidConfig)
	// ErrInvalidMemoryLimit indicates an unparsable memory limit.
	ErrInvalidMemoryLimit = fmt.Errorf("%w: alignment.memory_limit must be a byte size", ErrInvalidConfig)
	// ErrInvalidSwitchCount indicates a switch count below -1.
	ErrInvalidSwitchCount = fmt.Errorf("%w: alignment.max_template_switch_count must be -1 or more", ErrInvalidConfig)
	// ErrUnknownNodeOrd indicates an unknown node ordering strategy.
	ErrUnknownNodeOrd = fmt.Errorf("%w: unknown strategies.node_ord", ErrInvalidConfig)
	// ErrUnknownMinLength indicates an unknown min length strategy.
	ErrUnknownMinLength = fmt.Errorf("%w: unknown strategies.min_length", ErrInvalidConfig)
	// ErrUnknownChaining indicates an unknown chaining strategy.
	ErrUnknownChaining = fmt.Errorf("%w: unknown strategies.chaining", ErrInvalidConfig)
	// ErrInvalidPrimaryMatches indicates a consecutive match limit below -1.
	ErrInvalidPrimaryMatches = fmt.Errorf(
		"%w: strategies.max_consecutive_primary_matches must be -1 or more", ErrInvalidConfig)
	// ErrNegativeCost indicates a negative entry in the cost model.
	ErrNegativeCost = fmt.Errorf("%w: costs must not be negative", ErrInvalidConfig)
	// ErrInvalidCostFunction indicates a cost function that does not parse.
	ErrInvalidCostFunction = fmt.Errorf("%w: malformed cost function", ErrInvalidConfig)
	// ErrInvalidLogLevel indicates a log level slog does not know.
	ErrInvalidLogLevel = fmt.Errorf("%w: observability.log_level must be debug, info, warn or error", ErrInvalidConfig)
	// ErrInvalidSampleRatio indicates a trace sample ratio outside [0, 1].
	ErrInvalidSampleRatio = fmt.Errorf("%w: observability.sample_ratio must be between 0 and 1", ErrInvalidConfig)
	// ErrSchemaViolation indicates a config file rejected by the JSON schema.
	ErrSchemaViolation = fmt.Errorf("%w: schema violation", ErrInvalidConfig)
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	alignmentErr := c.validateAlignment()
	if alignmentErr != nil {
		return alignmentErr
	}

	strategiesErr := c.validateStrategies()
	if strategiesErr != nil {
		return strategiesErr
	}

	_, costsErr := c.CostTable()
	if costsErr != nil {
		return costsErr
	}

	return c.validateObservability()
}

func (c *Config) validateAlignment() error {
	a := c.Alignment

	_, err := alphabet.ByName(a.Alphabet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownAlphabet, err)
	}

	if a.LeftFlankLength < 0 || a.RightFlankLength < 0 {
		return ErrInvalidFlankLength
	}

	if a.TemplateSwitchMinLength < 0 {
		return ErrInvalidMinLength
	}

	if a.CostLimit < 0 {
		return ErrInvalidCostLimit
	}

	_, err = c.MemoryLimitBytes()
	if err != nil {
		return err
	}

	if a.MaxTemplateSwitchCount < aligner.Unlimited {
		return ErrInvalidSwitchCount
	}

	return nil
}

func (c *Config) validateStrategies() error {
	_, err := c.Selection()

	return err
}

func (c *Config) validateObservability() error {
	_, err := c.LogLevel()
	if err != nil {
		return err
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}

// MemoryLimitBytes parses alignment.memory_limit. Zero means unlimited.
func (c *Config) MemoryLimitBytes() (uint64, error) {
	if strings.TrimSpace(c.Alignment.MemoryLimit) == "" {
		return 0, nil
	}

	limit, err := humanize.ParseBytes(c.Alignment.MemoryLimit)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMemoryLimit, err)
	}

	return limit, nil
}

// LogLevel parses observability.log_level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Observability.LogLevel))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Observability.LogLevel)
	}

	return level, nil
}
