package crossfold

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seiche/crossfold/types"
)

// Config is the configuration of a CrossValidation run.
//
// The zero value is not usable directly; pass it through SetDefaults or
// start from DefaultConfig. The same settings can also be given as a
// colon-separated option string via ParseOptions, e.g.
//
//	"!V:!Silent:ModelPersistence:AnalysisType=Classification:NumFolds=4:SplitExpr=int(fabs([eventID]))%int([NumFolds])"
type Config struct {
	// Verbose enables extra progress logging.
	Verbose bool `yaml:"verbose"`

	// Silent suppresses all library logging. Takes precedence over Verbose.
	Silent bool `yaml:"silent"`

	// ModelPersistence stores each fold's trained model (plus a manifest of
	// the split configuration) in the configured model store, so that the
	// models can later be applied to new data via LoadApplier.
	ModelPersistence bool `yaml:"modelPersistence"`

	// AnalysisType selects classification (fold metric: ROC AUC) or
	// regression (fold metric: RMSE).
	AnalysisType types.AnalysisType `yaml:"analysisType"`

	// NumFolds is the number of folds k. Each record is deterministically
	// assigned to one fold; fold f's model trains on the other k-1 folds.
	NumFolds int `yaml:"numFolds"`

	// SplitExpr is the deterministic split expression, e.g.
	// "int(fabs([eventID]))%int([NumFolds])". It may reference any declared
	// variable or spectator. Leave empty only when a custom splitter is
	// injected with WithSplitter.
	SplitExpr string `yaml:"splitExpr"`
}

// DefaultConfig returns a Config with sensible defaults: 2 folds,
// classification, no persistence.
func DefaultConfig() Config {
	return Config{
		AnalysisType: types.AnalysisClassification,
		NumFolds:     2,
	}
}

// SetDefaults fills in missing configuration values.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.NumFolds == 0 {
		cfg.NumFolds = defaults.NumFolds
	}
}

// Validate checks configuration constraints.
//
// Returns:
//   - error: Wrapping ErrInvalidConfig with an explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.NumFolds <= 0 {
		return fmt.Errorf("%w: NumFolds must be > 0, got %d", ErrInvalidConfig, cfg.NumFolds)
	}
	if cfg.AnalysisType != types.AnalysisClassification && cfg.AnalysisType != types.AnalysisRegression {
		return fmt.Errorf("%w: unknown analysis type %d", ErrInvalidConfig, int(cfg.AnalysisType))
	}

	return nil
}

// ParseOptions parses the colon-separated option-string form of a Config.
//
// Recognized tokens:
//   - "V" or "Verbose", "Silent", "ModelPersistence" — boolean flags,
//     negated with a leading "!" (e.g. "!Silent")
//   - "AnalysisType=Classification|Regression"
//   - "NumFolds=<int>"
//   - "SplitExpr=<expression>"
//
// Unrecognized tokens are an error; empty tokens are ignored. Values not
// mentioned keep their DefaultConfig value.
//
// Parameters:
//   - opts: Option string, e.g. "!V:!Silent:ModelPersistence:NumFolds=2:SplitExpr=int(fabs([eventID]))%int([NumFolds])"
//
// Returns:
//   - Config: Parsed configuration
//   - error: Wrapping ErrInvalidConfig on any unrecognized or malformed token
func ParseOptions(opts string) (Config, error) {
	cfg := DefaultConfig()

	for _, tok := range strings.Split(opts, ":") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		if key, value, found := strings.Cut(tok, "="); found {
			if err := cfg.setOption(key, value); err != nil {
				return Config{}, err
			}
			continue
		}

		name := tok
		enabled := true
		if strings.HasPrefix(name, "!") {
			name = name[1:]
			enabled = false
		}
		if err := cfg.setFlag(name, enabled); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func (cfg *Config) setFlag(name string, enabled bool) error {
	switch name {
	case "V", "Verbose":
		cfg.Verbose = enabled
	case "Silent":
		cfg.Silent = enabled
	case "ModelPersistence":
		cfg.ModelPersistence = enabled
	default:
		return fmt.Errorf("%w: unrecognized option %q", ErrInvalidConfig, name)
	}

	return nil
}

func (cfg *Config) setOption(key, value string) error {
	switch key {
	case "AnalysisType":
		at, err := types.ParseAnalysisType(value)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
		}
		cfg.AnalysisType = at
	case "NumFolds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: NumFolds: %s", ErrInvalidConfig, err)
		}
		cfg.NumFolds = n
	case "SplitExpr":
		cfg.SplitExpr = value
	default:
		return fmt.Errorf("%w: unrecognized option %q", ErrInvalidConfig, key)
	}

	return nil
}
