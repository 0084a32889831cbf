package unit

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/MySchizoBuddy/pint/core/dimension"
	coreerrors "github.com/MySchizoBuddy/pint/core/errors"
	"github.com/MySchizoBuddy/pint/core/rational"
)

// Options configures registry behavior.
type Options struct {
	// AutoconvertOffsetToBaseUnit converts the affine operand of a
	// multiplicative operation to base units instead of failing with
	// OffsetUnitCalculusError.
	AutoconvertOffsetToBaseUnit bool

	// CacheSize bounds the conversion-factor cache. Zero means the
	// default (1024 entries); negative disables caching.
	CacheSize int
}

// tables holds the definition graph. A load builds a staged copy and the
// registry swaps to it atomically, so readers never observe a partial load.
type tables struct {
	units       map[string]*Definition             // canonical name -> definition
	index       map[string]string                  // name/symbol/alias -> canonical name
	prefixes    map[string]*Prefix                 // canonical name -> prefix
	prefixIndex map[string]*Prefix                 // name/symbol/alias -> prefix
	baseDims    map[dimension.Dimension]string     // dimension -> anchoring base unit
	derivedDims map[dimension.Dimension]dimension.Dimensionality // expanded to base dims
}

func newTables() *tables {
	return &tables{
		units:       map[string]*Definition{},
		index:       map[string]string{},
		prefixes:    map[string]*Prefix{},
		prefixIndex: map[string]*Prefix{},
		baseDims:    map[dimension.Dimension]string{},
		derivedDims: map[dimension.Dimension]dimension.Dimensionality{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.units {
		c.units[k] = v
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	for k, v := range t.prefixes {
		c.prefixes[k] = v
	}
	for k, v := range t.prefixIndex {
		c.prefixIndex[k] = v
	}
	for k, v := range t.baseDims {
		c.baseDims[k] = v
	}
	for k, v := range t.derivedDims {
		c.derivedDims[k] = v
	}
	return c
}

// Registry owns the dimension model, the unit-definition graph, and the
// prefix table. It is safe for concurrent use: lookups, parses, and
// conversions take a read lock; Define stages its changes and commits under
// the write lock.
type Registry struct {
	mu    sync.RWMutex
	opts  Options
	tab   *tables
	cache *conversionCache
}

// New returns an empty registry. Most callers want Default instead.
func New(opts Options) *Registry {
	return &Registry{
		opts:  opts,
		tab:   newTables(),
		cache: newConversionCache(opts.CacheSize),
	}
}

// Options returns the options the registry was built with.
func (r *Registry) Options() Options { return r.opts }

// LoadDefinitions parses and registers a definition source. The load is
// atomic: on any error the registry keeps its prior state and the combined
// per-line errors are returned.
func (r *Registry) LoadDefinitions(src io.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := r.tab.clone()
	var errs error
	scanner := bufio.NewScanner(src)
	lineno := 0
	for scanner.Scan() {
		lineno++
		raw, err := parseDefinitionLine(scanner.Text())
		if err != nil {
			errs = multierr.Append(errs, coreerrors.Wrapf(err, "line %d", lineno))
			continue
		}
		if raw == nil {
			continue
		}
		if err := applyDefinition(staged, raw); err != nil {
			errs = multierr.Append(errs, coreerrors.Wrapf(err, "line %d", lineno))
		}
	}
	if err := scanner.Err(); err != nil {
		errs = multierr.Append(errs, coreerrors.Wrap(err, "reading definitions"))
	}
	if errs != nil {
		return errs
	}
	r.tab = staged
	r.cache.purge()
	return nil
}

// Define registers one or more additional definitions given as text, with
// the same atomicity guarantee as LoadDefinitions.
func (r *Registry) Define(text string) error {
	return r.LoadDefinitions(strings.NewReader(text))
}

// applyDefinition validates one raw definition against the staged tables
// and registers it.
func applyDefinition(tab *tables, raw *rawDefinition) error {
	switch raw.kind {
	case rawDimension:
		return applyDimension(tab, raw)
	case rawPrefix:
		return applyPrefix(tab, raw)
	case rawBaseUnit:
		return applyBaseUnit(tab, raw)
	default:
		return applyDerivedUnit(tab, raw)
	}
}

func applyDimension(tab *tables, raw *rawDefinition) error {
	dim := dimension.Dimension(raw.name)
	if !dim.IsValid() {
		return coreerrors.NewParse(raw.original, 0, "malformed dimension tag")
	}
	if _, ok := tab.baseDims[dim]; ok {
		return coreerrors.NewDefinitionConflict(raw.name, tab.baseDims[dim])
	}
	if _, ok := tab.derivedDims[dim]; ok {
		return coreerrors.NewDefinitionConflict(raw.name, raw.name)
	}
	node, err := parseExpr(raw.expr)
	if err != nil {
		return err
	}
	mag, exps, err := evalExpr(raw.expr, node, dimResolver(tab, raw.expr))
	if err != nil {
		return err
	}
	if mag != 1 {
		return coreerrors.NewParse(raw.original, -1, "dimension expressions cannot carry a factor")
	}
	dims := make(dimension.Dimensionality, len(exps))
	for tag, exp := range exps {
		dims[dimension.Dimension(tag)] = exp
	}
	tab.derivedDims[dim] = dims
	return nil
}

func applyPrefix(tab *tables, raw *rawDefinition) error {
	node, err := parseExpr(raw.expr)
	if err != nil {
		return err
	}
	value, exps, err := evalExpr(raw.expr, node, numericOnlyResolver(raw.expr))
	if err != nil {
		return err
	}
	if len(exps) != 0 {
		return coreerrors.NewParse(raw.original, -1, "prefix multipliers must be numeric")
	}
	p := &Prefix{Name: raw.name, Symbol: raw.symbol, Aliases: raw.aliases, Value: value}
	for _, n := range p.allNames() {
		if prev, ok := tab.prefixIndex[n]; ok {
			return coreerrors.NewDefinitionConflict(n, prev.Name+"-")
		}
	}
	tab.prefixes[p.Name] = p
	for _, n := range p.allNames() {
		tab.prefixIndex[n] = p
	}
	return nil
}

func applyBaseUnit(tab *tables, raw *rawDefinition) error {
	dim := dimension.Dimension(raw.expr)
	if !dim.IsValid() {
		return coreerrors.NewParse(raw.original, -1, "malformed dimension tag")
	}
	if anchor, ok := tab.baseDims[dim]; ok {
		return coreerrors.NewDefinitionConflict(raw.name, anchor)
	}
	if _, ok := tab.derivedDims[dim]; ok {
		return coreerrors.NewDefinitionConflict(raw.name, string(dim))
	}
	def := &Definition{
		Name:      raw.name,
		Symbol:    raw.symbol,
		Aliases:   raw.aliases,
		IsBase:    true,
		Dimension: dim,
		Scale:     1,
		Dims:      dimension.Single(dim),
	}
	if err := registerUnit(tab, def); err != nil {
		return err
	}
	tab.baseDims[dim] = def.Name
	return nil
}

func applyDerivedUnit(tab *tables, raw *rawDefinition) error {
	node, err := parseExpr(raw.expr)
	if err != nil {
		return err
	}
	mag, exps, err := evalExpr(raw.expr, node, unitOnlyResolver(tab))
	if err != nil {
		return err
	}
	def := &Definition{
		Name:      raw.name,
		Symbol:    raw.symbol,
		Aliases:   raw.aliases,
		Reference: NewContainer(exps),
		Scale:     mag,
	}
	if raw.hasOfs {
		offset, err := rational.Parse(raw.offset)
		if err != nil {
			return coreerrors.NewParse(raw.original, -1, "invalid offset: "+err.Error())
		}
		def.Offset = offset.Float64()
		def.IsOffset = !offset.IsZero()
	}

	// Resolving dimensionality also walks the reference chain, which
	// surfaces cycles before anything is registered.
	if _, _, err := reduceLinear(tab, def.Reference, []string{def.Name}); err != nil &&
		!coreerrors.Is(err, coreerrors.ErrOffsetCalculus) {
		return err
	}
	def.Dims, err = dimensionalityIn(tab, def.Reference)
	if err != nil {
		return err
	}
	if err := registerUnit(tab, def); err != nil {
		return err
	}
	if def.IsOffset {
		return registerUnit(tab, deltaDefinition(def))
	}
	return nil
}

// deltaDefinition synthesizes the relative (difference) counterpart of an
// offset unit: same scale and dimensionality, zero point at physical zero.
func deltaDefinition(def *Definition) *Definition {
	delta := &Definition{
		Name:      "delta_" + def.Name,
		Reference: def.Reference,
		Scale:     def.Scale,
		Dims:      def.Dims,
	}
	if def.Symbol != "" {
		delta.Symbol = "Δ" + def.Symbol
	}
	for _, alias := range def.Aliases {
		delta.Aliases = append(delta.Aliases, "delta_"+alias)
	}
	return delta
}

func registerUnit(tab *tables, def *Definition) error {
	for _, n := range def.allNames() {
		if prev, ok := tab.index[n]; ok {
			return coreerrors.NewDefinitionConflict(n, prev)
		}
	}
	tab.units[def.Name] = def
	for _, n := range def.allNames() {
		tab.index[n] = def.Name
	}
	return nil
}

// resolveIn maps an identifier to its definition: exact match first, then
// longest-prefix decomposition, then a single plural strip. The precedence
// means a unit literally named "min" always beats "milli"+"in".
func resolveIn(tab *tables, name string) (*Definition, error) {
	if def, ok := lookupDirect(tab, name); ok {
		return def, nil
	}
	if def, ok := lookupPrefixed(tab, name); ok {
		return def, nil
	}
	if strings.HasSuffix(name, "s") && len(name) > 1 {
		stripped := name[:len(name)-1]
		if def, ok := lookupDirect(tab, stripped); ok {
			return def, nil
		}
		if def, ok := lookupPrefixed(tab, stripped); ok {
			return def, nil
		}
	}
	return nil, coreerrors.NewUndefinedUnit(name)
}

func lookupDirect(tab *tables, name string) (*Definition, bool) {
	canon, ok := tab.index[name]
	if !ok {
		return nil, false
	}
	return tab.units[canon], true
}

// lookupPrefixed tries to split name into a known prefix and a known unit,
// longest prefix first, and synthesizes the implicit prefixed unit. The
// synthesized definition is ephemeral; it is never added to the graph.
func lookupPrefixed(tab *tables, name string) (*Definition, bool) {
	for plen := len(name) - 1; plen >= 1; plen-- {
		p, ok := tab.prefixIndex[name[:plen]]
		if !ok {
			continue
		}
		base, ok := lookupDirect(tab, name[plen:])
		if !ok {
			continue
		}
		def := &Definition{
			Name:      p.Name + base.Name,
			Reference: Single(base.Name),
			Scale:     p.Value,
			Dims:      base.Dims,
		}
		if p.Symbol != "" && base.Symbol != "" {
			def.Symbol = p.Symbol + base.Symbol
		}
		return def, true
	}
	return nil, false
}

// unitOnlyResolver resolves identifiers as units and rejects dimension tags.
func unitOnlyResolver(tab *tables) atomResolver {
	return atomResolver{
		ident: func(name string) (map[string]rational.Rational, error) {
			if name == "dimensionless" {
				return nil, nil
			}
			def, err := resolveIn(tab, name)
			if err != nil {
				return nil, err
			}
			return map[string]rational.Rational{def.Name: rational.One}, nil
		},
		dim: func(tag string) (map[string]rational.Rational, error) {
			return nil, coreerrors.NewParse(tag, -1, "dimension tag in unit expression")
		},
	}
}

// dimResolver resolves dimension tags, expanding derived dimensions down to
// base dimensions, and rejects unit identifiers.
func dimResolver(tab *tables, input string) atomResolver {
	return atomResolver{
		ident: func(name string) (map[string]rational.Rational, error) {
			return nil, coreerrors.NewParse(input, -1, "unit identifier in dimension expression: "+name)
		},
		dim: func(tag string) (map[string]rational.Rational, error) {
			dim := dimension.Dimension(tag)
			if dim == dimension.Dimensionless {
				return nil, nil
			}
			if _, ok := tab.baseDims[dim]; ok {
				return map[string]rational.Rational{tag: rational.One}, nil
			}
			if dims, ok := tab.derivedDims[dim]; ok {
				out := make(map[string]rational.Rational, len(dims))
				for d, exp := range dims {
					out[string(d)] = exp
				}
				return out, nil
			}
			return nil, coreerrors.NewUndefinedUnit(tag)
		},
	}
}

// numericOnlyResolver rejects all symbols; used for prefix multipliers.
func numericOnlyResolver(input string) atomResolver {
	reject := func(name string) (map[string]rational.Rational, error) {
		return nil, coreerrors.NewParse(input, -1, "expected a numeric expression, found "+name)
	}
	return atomResolver{ident: reject, dim: reject}
}

// ParseExpression parses a unit or quantity expression into its magnitude
// and canonical container. A pure unit expression has magnitude 1.
func (r *Registry) ParseExpression(input string) (float64, Container, error) {
	node, err := parseExpr(input)
	if err != nil {
		return 0, Container{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	mag, exps, err := evalExpr(input, node, unitOnlyResolver(r.tab))
	if err != nil {
		return 0, Container{}, err
	}
	return mag, NewContainer(exps), nil
}

// ParseUnits parses an expression that must denote pure units: a magnitude
// other than 1 is rejected.
func (r *Registry) ParseUnits(input string) (Container, error) {
	mag, units, err := r.ParseExpression(input)
	if err != nil {
		return Container{}, err
	}
	if mag != 1 {
		return Container{}, coreerrors.NewParse(input, -1, "expected units, found a quantity with magnitude")
	}
	return units, nil
}

// Get returns the container for a single named unit, e.g. Get("km") is
// {kilometer: 1}. The name follows the same prefix and plural resolution as
// expressions.
func (r *Registry) Get(name string) (Container, error) {
	if name == "dimensionless" {
		return Dimensionless(), nil
	}
	def, err := r.GetDefinition(name)
	if err != nil {
		return Container{}, err
	}
	return Single(def.Name), nil
}

// GetDefinition resolves a name, symbol, or alias to its definition.
// Prefixed forms ("km") yield a synthesized definition referencing the
// unprefixed unit. The returned definition must not be mutated.
func (r *Registry) GetDefinition(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolveIn(r.tab, name)
}

// Dimensionality returns the reduced dimensionality vector of a container.
func (r *Registry) Dimensionality(c Container) (dimension.Dimensionality, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return dimensionalityIn(r.tab, c)
}

func dimensionalityIn(tab *tables, c Container) (dimension.Dimensionality, error) {
	out := dimension.Dimensionality{}
	for name, exp := range c.entries() {
		def, err := resolveIn(tab, name)
		if err != nil {
			return nil, err
		}
		out = out.Mul(def.Dims.Pow(exp))
	}
	return out, nil
}

// UnitNames lists the canonical names of all registered units, sorted.
// Implicit prefixed forms are not enumerated.
func (r *Registry) UnitNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tab.units))
	for name := range r.tab.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dimensions lists the known base dimensions and their anchoring base units.
func (r *Registry) Dimensions() map[dimension.Dimension]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[dimension.Dimension]string, len(r.tab.baseDims))
	for dim, name := range r.tab.baseDims {
		out[dim] = name
	}
	return out
}
