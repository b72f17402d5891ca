package qvcodec

import (
	"fmt"

	"github.com/qvgen/qvcodec/distortion"
)

// Config is the frozen, validated set of options a single Generate run
// needs. The zero value is not valid; build one with NewConfig.
type Config struct {
	alphabetSize int
	distortion   distortion.Measure
	comp         float64
	clusters     int
}

// NewConfig validates and freezes a Config. alphabetSize must be in
// [1, 64]; comp (the entropy-budget multiplier applied to each column's
// empirical entropy) must be >= 0; clusters (the number of independent
// codebooks the caller intends to train, one per class) must be >= 1.
func NewConfig(alphabetSize int, measure distortion.Measure, comp float64, clusters int) (Config, error) {
	if alphabetSize < 1 || alphabetSize > 64 {
		return Config{}, fmt.Errorf("%w: alphabet size %d out of [1,64]", ErrConfigurationInvalid, alphabetSize)
	}
	switch measure {
	case distortion.MSE, distortion.Manhattan, distortion.Lorentz:
	default:
		return Config{}, fmt.Errorf("%w: unknown distortion measure %v", ErrConfigurationInvalid, measure)
	}
	if comp < 0 {
		return Config{}, fmt.Errorf("%w: comp %v is negative", ErrConfigurationInvalid, comp)
	}
	if clusters < 1 {
		return Config{}, fmt.Errorf("%w: clusters %d must be >= 1", ErrConfigurationInvalid, clusters)
	}
	return Config{alphabetSize: alphabetSize, distortion: measure, comp: comp, clusters: clusters}, nil
}

// AlphabetSize returns the configured symbol alphabet size.
func (c Config) AlphabetSize() int { return c.alphabetSize }

// Distortion returns the configured distortion measure.
func (c Config) Distortion() distortion.Measure { return c.distortion }

// Comp returns the entropy-budget multiplier.
func (c Config) Comp() float64 { return c.comp }

// Clusters returns the configured cluster count. Generate itself always
// trains exactly one codebook per call; clustering training lines into
// Clusters classes and invoking Generate once per class is the caller's
// responsibility.
func (c Config) Clusters() int { return c.clusters }
