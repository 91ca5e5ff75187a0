package core

// Profile names a predefined rule configuration.
type Profile string

const (
	// ProfileDefault enables every rule family.
	ProfileDefault Profile = "default"
	// ProfileMinimal enables only function and data-type mapping.
	ProfileMinimal Profile = "minimal"
	// ProfileStrict enables everything and tightens warning thresholds.
	ProfileStrict Profile = "strict"
)

// RuleConfig selects which rule families run and tunes warning thresholds.
// The orchestrator snapshots one of these at request start; the engine never
// reads ambient state.
type RuleConfig struct {
	Profile Profile `json:"profile" yaml:"profile"`

	// Rule family toggles.
	DataTypes bool `json:"data_types" yaml:"data_types"`
	Functions bool `json:"functions" yaml:"functions"`
	DDL       bool `json:"ddl" yaml:"ddl"`
	Syntax    bool `json:"syntax" yaml:"syntax"`
	Warnings  bool `json:"warnings" yaml:"warnings"`

	// Validation thresholds.
	MaxInListSize    int `json:"max_in_list_size" yaml:"max_in_list_size"`
	MaxSubqueryDepth int `json:"max_subquery_depth" yaml:"max_subquery_depth"`
}

// DefaultConfig returns the configuration used when a request carries none:
// all rule families active.
func DefaultConfig() RuleConfig {
	return RuleConfig{
		Profile:          ProfileDefault,
		DataTypes:        true,
		Functions:        true,
		DDL:              true,
		Syntax:           true,
		Warnings:         true,
		MaxInListSize:    100,
		MaxSubqueryDepth: 3,
	}
}

// MinimalConfig returns the safe subset: function and type mapping only.
func MinimalConfig() RuleConfig {
	cfg := DefaultConfig()
	cfg.Profile = ProfileMinimal
	cfg.DDL = false
	cfg.Syntax = false
	return cfg
}

// StrictConfig returns the default set with tightened warning thresholds.
func StrictConfig() RuleConfig {
	cfg := DefaultConfig()
	cfg.Profile = ProfileStrict
	cfg.MaxInListSize = 50
	return cfg
}

// ConfigForProfile resolves a profile name to its configuration.
// Unknown profiles fall back to the default profile.
func ConfigForProfile(p Profile) RuleConfig {
	switch p {
	case ProfileMinimal:
		return MinimalConfig()
	case ProfileStrict:
		return StrictConfig()
	default:
		return DefaultConfig()
	}
}
