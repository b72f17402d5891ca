package qvcodec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qvgen/qvcodec/alphabet"
	"github.com/qvgen/qvcodec/bitalloc"
	"github.com/qvgen/qvcodec/corpus"
	"github.com/qvgen/qvcodec/distortion"
	"github.com/qvgen/qvcodec/pmf"
	"github.com/qvgen/qvcodec/quantizer"
	"github.com/qvgen/qvcodec/store"
)

const prngSeed = 1

// ColumnStats is one column's entry in a GenerationReport.
type ColumnStats struct {
	Column                 int
	Contexts               int
	MeanAchievedRate       float64
	MeanExpectedDistortion float64
}

// GenerationReport is Generate's telemetry sidecar. Nothing in this package
// reads it back; it exists purely so callers can log or export per-column
// outcomes without re-deriving them from the store.
type GenerationReport struct {
	Columns []ColumnStats
}

// GenerateOption configures a single Generate call.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	logger *slog.Logger
	seed   uint64
}

// WithLogger injects the structured logger Generate writes one line to per
// closed column. A nil logger (the default if this option is omitted)
// falls back to slog.Default().
func WithLogger(l *slog.Logger) GenerateOption {
	return func(o *generateOptions) { o.logger = l }
}

// WithSeed fixes the conditional quantizer store's WELL1024a seed. Tests
// that need reproducible Choose sequences across independent Generate runs
// should set this explicitly; production training does not need to, since
// the seed only affects the order encode/decode draw from, not the
// codebook's content.
func WithSeed(seed uint64) GenerateOption {
	return func(o *generateOptions) { o.seed = seed }
}

// Generate runs the codebook-generation pipeline over c under cfg, column
// by column, and returns the resulting conditional quantizer store together
// with a telemetry report. ctx is checked once per column boundary; it is
// never consulted mid-column since the core itself never suspends.
func Generate(ctx context.Context, c corpus.Corpus, cfg Config) (*store.QuantizerStore, *GenerationReport, error) {
	return GenerateWithOptions(ctx, c, cfg)
}

// GenerateWithOptions is Generate plus injectable ambient options (logger,
// PRNG seed). Generate itself is the zero-option convenience wrapper.
func GenerateWithOptions(ctx context.Context, c corpus.Corpus, cfg Config, opts ...GenerateOption) (*store.QuantizerStore, *GenerationReport, error) {
	o := generateOptions{seed: prngSeed}
	for _, apply := range opts {
		apply(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	if c.LineCount() == 0 || c.Columns() == 0 {
		return nil, nil, ErrTrainingCorpusEmpty
	}

	pmfStore, err := store.NewPMFStore(c, cfg.AlphabetSize())
	if err != nil {
		return nil, nil, fmt.Errorf("qvcodec: building empirical statistics: %w", err)
	}

	domain := pmfStore.Domain()
	distTable, err := distortion.NewTable(cfg.Distortion(), domain.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("qvcodec: building distortion table: %w", err)
	}

	qstore := store.NewQuantizerStore(domain, o.seed)
	report := &GenerationReport{}
	columns := pmfStore.Columns()

	g := &columnGenerator{
		domain:   domain,
		dist:     distTable,
		comp:     cfg.Comp(),
		pmfStore: pmfStore,
		qstore:   qstore,
		logger:   logger,
	}

	if err := g.runColumn0(); err != nil {
		return nil, nil, err
	}
	report.Columns = append(report.Columns, g.lastStats)

	for col := 1; col < columns; col++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("qvcodec: cancelled before column %d: %w", col, err)
		}
		if err := g.runColumn(col, col == columns-1); err != nil {
			return nil, nil, err
		}
		report.Columns = append(report.Columns, g.lastStats)
	}

	return qstore, report, nil
}

// columnGenerator holds the state threaded between consecutive columns:
// the forward selector distribution selectorGivenX[x] gives, for every
// source symbol x at the column just closed, the probability that the
// encoder's stochastic choose would have landed on each context symbol of
// the NEXT column (i.e. each reproduction symbol the closed column's
// quantizers can produce). This is the one quantity §4.8's qpmf_list /
// xpmf_list pair reduces to once both are expressed as a single forward
// Bayes chain; see DESIGN.md for why this derivation, rather than a literal
// transliteration of the source recursion, is authoritative here.
type columnGenerator struct {
	domain   alphabet.Alphabet
	dist     *distortion.Table
	comp     float64
	pmfStore *store.PMFStore
	qstore   *store.QuantizerStore
	logger   *slog.Logger

	selectorGivenX []*pmf.PMF // selectorGivenX[x]: PMF over the next column's input alphabet
	lastStats      ColumnStats
}

// column 0's quantizer context is the fixed symbol 0; this constant names
// it so the magic literal only appears once.
const column0Context = alphabet.Symbol(0)

// runColumn0 implements §4.8's "Column 0": the unconditional column, opened
// with the implicit singleton context {0}.
func (g *columnGenerator) runColumn0() error {
	p0 := g.pmfStore.Unconditional()
	h := p0.Entropy() * g.comp
	alloc, err := bitalloc.Allocate(h)
	if err != nil {
		return fmt.Errorf("qvcodec: column 0: %w: %w", ErrInternalInvariantViolated, err)
	}
	lo, err := quantizer.Design(p0, g.dist, alloc.Low, alloc.Ratio)
	if err != nil {
		return fmt.Errorf("qvcodec: column 0 low quantizer: %w: %w", ErrInternalInvariantViolated, err)
	}
	hi, err := quantizer.Design(p0, g.dist, alloc.High, 1-alloc.Ratio)
	if err != nil {
		return fmt.Errorf("qvcodec: column 0 high quantizer: %w: %w", ErrInternalInvariantViolated, err)
	}

	col := g.qstore.OpenColumn(alphabet.New([]alphabet.Symbol{column0Context}))
	if err := g.qstore.Store(col, column0Context, lo, hi, alloc.Ratio); err != nil {
		return fmt.Errorf("qvcodec: column 0: %w: %w", ErrInternalInvariantViolated, err)
	}
	g.qstore.CloseColumn(col)

	g.selectorGivenX = make([]*pmf.PMF, g.domain.Size())
	outputUnion := alphabet.Union(lo.OutputAlphabet(), hi.OutputAlphabet())
	for i := 0; i < g.domain.Size(); i++ {
		x := g.domain.At(i)
		sel := pmf.New(outputUnion)
		addMass(sel, lo.Apply(x), alloc.Ratio)
		addMass(sel, hi.Apply(x), 1-alloc.Ratio)
		if err := sel.Normalize(); err != nil {
			// Not reached in practice: the two weights alloc.Ratio and
			// 1-alloc.Ratio sum to 1 for every x, and addMass drops only
			// the zero one when the ratio is 0 or 1. Kept as a guard.
			sel = uniformPMF(outputUnion)
		}
		g.selectorGivenX[i] = sel
	}

	g.lastStats = ColumnStats{Column: 0, Contexts: 1, MeanAchievedRate: h, MeanExpectedDistortion: lo.ExpectedDistortion()*alloc.Ratio + hi.ExpectedDistortion()*(1-alloc.Ratio)}
	g.logger.Info("codebook column closed", "column", 0, "contexts", 1, "low_states", alloc.Low, "high_states", alloc.High, "ratio", alloc.Ratio)
	return nil
}

// runColumn implements §4.8's "Column c >= 1". last reports whether this is
// the final column, in which case no forward selector is propagated.
func (g *columnGenerator) runColumn(c int, last bool) error {
	inputAlphabet := g.selectorGivenX[0].Domain() // every selectorGivenX[x] shares the same domain
	cond := make([]*pmf.PMF, g.domain.Size())
	for i := 0; i < g.domain.Size(); i++ {
		x := g.domain.At(i)
		p, ok := g.pmfStore.Conditional(c, x)
		if ok {
			cond[i] = p
		}
	}
	marginalPrev := g.pmfStore.Marginal(c - 1)

	// weight[j][x] = unnormalized joint mass of (context=j, X_c=x).
	weight := make([][]float64, inputAlphabet.Size())
	for j := range weight {
		weight[j] = make([]float64, g.domain.Size())
	}
	for xi := 0; xi < g.domain.Size(); xi++ {
		x := g.domain.At(xi)
		cpd := cond[xi]
		if cpd == nil {
			continue
		}
		px := marginalPrev.Probability(x)
		if px == 0 {
			continue
		}
		sel := g.selectorGivenX[xi]
		for j := 0; j < inputAlphabet.Size(); j++ {
			pj := sel.ProbabilityAt(j)
			if pj == 0 {
				continue
			}
			w := pj * px
			for ki := 0; ki < g.domain.Size(); ki++ {
				weight[j][ki] += w * cpd.ProbabilityAt(ki)
			}
		}
	}

	col := g.qstore.OpenColumn(inputAlphabet)

	var nextSelector []*pmf.PMF
	if !last {
		nextSelector = make([]*pmf.PMF, g.domain.Size())
	}
	nextOutputSymbols := map[alphabet.Symbol]struct{}{}
	type contextResult struct {
		lo, hi *quantizer.Quantizer
		ratio  float64
	}
	results := make([]contextResult, inputAlphabet.Size())

	var sumRate, sumDistortion float64
	for j := 0; j < inputAlphabet.Size(); j++ {
		xpmf := pmf.New(g.domain)
		for ki := 0; ki < g.domain.Size(); ki++ {
			xpmf.IncrementBy(g.domain.At(ki), weight[j][ki])
		}
		if err := xpmf.Normalize(); err != nil {
			// This context symbol is in the union of output alphabets
			// (invariant 2 requires it be present) but is never actually
			// reachable under this training corpus's distribution. Fall
			// back to a uniform distribution so the column stays total;
			// the encoder will simply never draw this context in practice.
			xpmf = uniformPMF(g.domain)
			g.logger.Warn("codebook context unreachable under training corpus, using uniform fallback", "column", c, "context_index", j)
		}

		h := xpmf.Entropy() * g.comp
		alloc, err := bitalloc.Allocate(h)
		if err != nil {
			return fmt.Errorf("qvcodec: column %d context %d: %w: %w", c, j, ErrInternalInvariantViolated, err)
		}
		lo, err := quantizer.Design(xpmf, g.dist, alloc.Low, alloc.Ratio)
		if err != nil {
			return fmt.Errorf("qvcodec: column %d context %d low quantizer: %w: %w", c, j, ErrInternalInvariantViolated, err)
		}
		hi, err := quantizer.Design(xpmf, g.dist, alloc.High, 1-alloc.Ratio)
		if err != nil {
			return fmt.Errorf("qvcodec: column %d context %d high quantizer: %w: %w", c, j, ErrInternalInvariantViolated, err)
		}
		results[j] = contextResult{lo: lo, hi: hi, ratio: alloc.Ratio}
		for _, s := range lo.OutputAlphabet().Symbols() {
			nextOutputSymbols[s] = struct{}{}
		}
		for _, s := range hi.OutputAlphabet().Symbols() {
			nextOutputSymbols[s] = struct{}{}
		}
		sumRate += h
		sumDistortion += lo.ExpectedDistortion()*alloc.Ratio + hi.ExpectedDistortion()*(1-alloc.Ratio)
	}

	var nextOutputUnion alphabet.Alphabet
	if !last {
		syms := make([]alphabet.Symbol, 0, len(nextOutputSymbols))
		for s := range nextOutputSymbols {
			syms = append(syms, s)
		}
		nextOutputUnion = alphabet.New(syms)
		for xi := range nextSelector {
			nextSelector[xi] = pmf.New(nextOutputUnion)
		}
	}

	for j := 0; j < inputAlphabet.Size(); j++ {
		contextSymbol := inputAlphabet.At(j)
		r := results[j]
		if err := g.qstore.Store(col, contextSymbol, r.lo, r.hi, r.ratio); err != nil {
			return fmt.Errorf("qvcodec: column %d context %d: %w: %w", c, contextSymbol, ErrInternalInvariantViolated, err)
		}
	}
	g.qstore.CloseColumn(col)

	if !last {
		for xi := 0; xi < g.domain.Size(); xi++ {
			x := g.domain.At(xi)
			totalAtX := 0.0
			for j := 0; j < inputAlphabet.Size(); j++ {
				totalAtX += weight[j][xi]
			}
			sel := nextSelector[xi]
			if totalAtX == 0 {
				g.selectorGivenXAssignUniform(sel, nextOutputUnion)
				continue
			}
			for j := 0; j < inputAlphabet.Size(); j++ {
				pj := weight[j][xi] / totalAtX
				if pj == 0 {
					continue
				}
				r := results[j]
				addMass(sel, r.lo.Apply(x), pj*r.ratio)
				addMass(sel, r.hi.Apply(x), pj*(1-r.ratio))
			}
			if err := sel.Normalize(); err != nil {
				g.selectorGivenXAssignUniform(sel, nextOutputUnion)
			}
		}
		g.selectorGivenX = nextSelector
	}

	n := float64(inputAlphabet.Size())
	g.lastStats = ColumnStats{Column: c, Contexts: inputAlphabet.Size(), MeanAchievedRate: sumRate / n, MeanExpectedDistortion: sumDistortion / n}
	g.logger.Info("codebook column closed", "column", c, "contexts", inputAlphabet.Size(), "mean_rate", g.lastStats.MeanAchievedRate, "mean_distortion", g.lastStats.MeanExpectedDistortion)
	return nil
}

func (g *columnGenerator) selectorGivenXAssignUniform(sel *pmf.PMF, domain alphabet.Alphabet) {
	*sel = *uniformPMF(domain)
}

// addMass increments a counting-phase PMF at s by weight w, skipping
// weights that are zero or negative (a zero-weight IncrementBy would change
// nothing).
func addMass(p *pmf.PMF, s alphabet.Symbol, w float64) {
	if w <= 0 {
		return
	}
	p.IncrementBy(s, w)
}

func uniformPMF(a alphabet.Alphabet) *pmf.PMF {
	p := pmf.New(a)
	for i := 0; i < a.Size(); i++ {
		p.IncrementBy(a.At(i), 1)
	}
	_ = p.Normalize()
	return p
}
