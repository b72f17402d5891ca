package qvcodec

import "errors"

// ErrConfigurationInvalid is returned by NewConfig when an option is out of
// its documented range.
var ErrConfigurationInvalid = errors.New("qvcodec: configuration invalid")

// ErrTrainingCorpusEmpty is returned by Generate when the training corpus
// has zero lines or zero columns.
var ErrTrainingCorpusEmpty = errors.New("qvcodec: training corpus empty")

// ErrEmptyDistribution names the empty-distribution error kind. Generate
// does not return it: a per-context design PMF with no mass is replaced by
// a uniform one, and a failed quantizer design is reported as
// ErrInternalInvariantViolated.
var ErrEmptyDistribution = errors.New("qvcodec: empty distribution")

// ErrAlphabetLookupMiss names the alphabet-lookup-miss error kind. Nothing
// in this module returns it; a context symbol absent from a column's input
// alphabet is reported by the quantizer store as store.ErrAlphabetLookupMiss,
// which does not wrap this sentinel.
var ErrAlphabetLookupMiss = errors.New("qvcodec: alphabet lookup miss")

// ErrInternalInvariantViolated is the catch-all the generator surfaces for
// unreachable branches: a column or symbol index is attached via %w so
// errors.Is still matches this sentinel while fmt.Errorf's message carries
// the diagnostic context.
var ErrInternalInvariantViolated = errors.New("qvcodec: internal invariant violated")
