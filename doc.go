// Package qvcodec generates conditional scalar-quantizer codebooks for
// column-structured, fixed-alphabet symbol streams such as per-base quality
// values. Given a training corpus and a target entropy budget, Generate
// walks the corpus's columns left to right, fitting a pair of quantizers
// (and a stochastic mixing ratio between them) to every left-context
// encountered, and returns the resulting store together with a telemetry
// report.
//
// The subpackages factor the pipeline the way the algorithm itself does:
// alphabet and pmf are the statistical primitives, distortion and bitalloc
// turn a rate budget into concrete quantizer shapes, quantizer performs the
// actual scalar quantizer design, and store holds both the empirical
// statistics (PMFStore) and the generator's output (QuantizerStore). rng,
// corpus, codebookio, and rangecoder are the ambient and persistence
// boundaries around that core.
package qvcodec
