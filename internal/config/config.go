// Package config loads run settings from environment variables with
// defaults and validates them before a run starts.
package config

// Config holds all run settings.
type Config struct {
	Mapping  MappingConfig
	Pivot    PivotConfig
	Template TemplateConfig
	Store    StoreConfig
	Logging  LoggingConfig
}

// MappingConfig holds field-mapper settings.
type MappingConfig struct {
	// ConfidenceThreshold: mappings whose lowest confidence falls below it
	// go to the manual-mapping prompt (default: 70)
	ConfidenceThreshold int `env:"RATEBRIDGE_CONFIDENCE_THRESHOLD" default:"70"`

	// FuzzyThreshold: fuzzy matches must score strictly above it (default: 60)
	FuzzyThreshold int `env:"RATEBRIDGE_FUZZY_THRESHOLD" default:"60"`

	// MinResolvedFields is the least number of non-pivot canonical fields
	// that must resolve for a run to continue (default: 1)
	MinResolvedFields int `env:"RATEBRIDGE_MIN_RESOLVED_FIELDS" default:"1"`

	// SynonymsFile optionally overrides synonym lists (YAML)
	SynonymsFile string `env:"RATEBRIDGE_SYNONYMS_FILE"`
}

// PivotConfig holds tier and primary-tier settings.
type PivotConfig struct {
	DefaultTier    int      `env:"RATEBRIDGE_DEFAULT_TIER" default:"100"`
	LowTierClasses []string `env:"RATEBRIDGE_LOW_TIER_CLASSES" default:"C,D"`
	StandardTiers  []int    `env:"RATEBRIDGE_STANDARD_TIERS" default:"0,50,100,200,250,500"`
	Policy         []string `env:"RATEBRIDGE_PRIMARY_TIER_POLICY" default:"default,low-tier-class,tier:100,lowest"`

	// ValueCeiling bounds plausible rate values for column detection
	ValueCeiling float64 `env:"RATEBRIDGE_VALUE_CEILING" default:"10000"`
}

// TemplateConfig holds destination settings.
type TemplateConfig struct {
	// RowThreshold: destinations with fewer rows are structural templates
	RowThreshold int `env:"RATEBRIDGE_TEMPLATE_ROW_THRESHOLD" default:"5"`

	// SourceSheet is the source sheet; empty means pick the main sheet
	SourceSheet string `env:"RATEBRIDGE_SOURCE_SHEET"`

	TemplateSheet string `env:"RATEBRIDGE_TEMPLATE_SHEET" default:"Sheet1"`
}

// StoreConfig holds mapping-cache settings.
type StoreConfig struct {
	// Path selects the backend by extension: .db/.sqlite for SQLite,
	// .json for JSON, anything else YAML
	Path string `env:"RATEBRIDGE_STORE_PATH" default:"mappings.yaml"`

	UseSaved bool `env:"RATEBRIDGE_USE_SAVED_MAPPINGS" default:"true"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}
