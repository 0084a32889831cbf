package unit

import (
	"math"
	"sync"

	"github.com/golang/groupcache/lru"

	coreerrors "github.com/MySchizoBuddy/pint/core/errors"
)

const defaultCacheSize = 1024

// conversionCache memoizes linear conversion factors. Keys are the canonical
// strings of the two containers, which is sound because the registry tables
// are immutable between loads; every committed load purges the cache.
type conversionCache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

func newConversionCache(size int) *conversionCache {
	if size < 0 {
		return &conversionCache{}
	}
	if size == 0 {
		size = defaultCacheSize
	}
	return &conversionCache{lru: lru.New(size)}
}

func (c *conversionCache) get(key string) (float64, bool) {
	if c.lru == nil {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(key)
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

func (c *conversionCache) put(key string, factor float64) {
	if c.lru == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, factor)
}

func (c *conversionCache) purge() {
	if c.lru == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}

// reduceLinear reduces a container to base units by substituting every
// non-base unit with its reference raised to the held exponent, multiplying
// scales. It returns (factor, base) such that a value v in the input units
// equals v*factor in the base units. Offset units cannot be reduced
// linearly and fail with OffsetUnitCalculusError; reference cycles fail
// with CyclicDefinitionError.
func reduceLinear(tab *tables, c Container, visiting []string) (float64, Container, error) {
	factor := 1.0
	base := Dimensionless()
	for name, exp := range c.entries() {
		def, err := resolveIn(tab, name)
		if err != nil {
			return 0, Container{}, err
		}
		if def.IsBase {
			base = base.Mul(Single(def.Name).Pow(exp))
			continue
		}
		if def.IsOffset {
			return 0, Container{}, coreerrors.NewOffsetCalculus("reduce to base units", name)
		}
		for _, seen := range visiting {
			if seen == def.Name {
				return 0, Container{}, coreerrors.NewCyclicDefinition(def.Name, append(visiting, def.Name))
			}
		}
		refFactor, refBase, err := reduceLinear(tab, def.Reference, append(visiting, def.Name))
		if err != nil {
			return 0, Container{}, err
		}
		factor *= math.Pow(def.Scale*refFactor, exp.Float64())
		base = base.Mul(refBase.Pow(exp))
	}
	return factor, base, nil
}

// BaseUnits reduces a container to base units, returning the scale factor
// and the reduced container.
func (r *Registry) BaseUnits(c Container) (float64, Container, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return reduceLinear(r.tab, c, nil)
}

// BaseContainer returns the base-unit container a value in c converts into.
// For a lone offset unit this is the base form of its reference, which is
// the only base target its values can be expressed in.
func (r *Registry) BaseContainer(c Container) (Container, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, lone := loneOffsetUnit(r.tab, c); lone {
		_, base, err := reduceLinear(r.tab, def.Reference, nil)
		return base, err
	}
	_, base, err := reduceLinear(r.tab, c, nil)
	return base, err
}

// ContainsOffsetUnits reports whether any unit in c is affine.
func (r *Registry) ContainsOffsetUnits(c Container) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return containsOffset(r.tab, c)
}

// SingleOffsetUnit returns the definition of c's unit when c is exactly one
// affine unit with exponent 1.
func (r *Registry) SingleOffsetUnit(c Container) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return loneOffsetUnit(r.tab, c)
}

// DeltaContainer returns the relative (delta) counterpart registered for an
// offset unit definition.
func (r *Registry) DeltaContainer(def *Definition) (Container, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name := "delta_" + def.Name
	if _, ok := r.tab.index[name]; !ok {
		return Container{}, false
	}
	return Single(name), true
}

func containsOffset(tab *tables, c Container) bool {
	for name := range c.entries() {
		if def, err := resolveIn(tab, name); err == nil && def.IsOffset {
			return true
		}
	}
	return false
}

func loneOffsetUnit(tab *tables, c Container) (*Definition, bool) {
	if c.Len() != 1 {
		return nil, false
	}
	name := c.Names()[0]
	if !c.Exponent(name).IsOne() {
		return nil, false
	}
	def, err := resolveIn(tab, name)
	if err != nil || !def.IsOffset {
		return nil, false
	}
	return def, true
}

// ConversionFactor returns the multiplicative factor between two
// dimensionally compatible, non-affine containers. Results are memoized.
func (r *Registry) ConversionFactor(src, dst Container) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if containsOffset(r.tab, src) || containsOffset(r.tab, dst) {
		return 0, coreerrors.NewOffsetCalculus("compute a pure factor", src.String()+" -> "+dst.String())
	}
	return factorBetween(r.tab, r.cache, src, dst)
}

func factorBetween(tab *tables, cache *conversionCache, src, dst Container) (float64, error) {
	if src.Equal(dst) {
		return 1, nil
	}
	key := src.String() + " -> " + dst.String()
	if factor, ok := cache.get(key); ok {
		return factor, nil
	}
	srcFactor, srcBase, err := reduceLinear(tab, src, nil)
	if err != nil {
		return 0, err
	}
	dstFactor, dstBase, err := reduceLinear(tab, dst, nil)
	if err != nil {
		return 0, err
	}
	if !srcBase.Equal(dstBase) {
		return 0, dimensionalityError(tab, src, dst)
	}
	factor := srcFactor / dstFactor
	cache.put(key, factor)
	return factor, nil
}

func dimensionalityError(tab *tables, src, dst Container) error {
	srcDims, err := dimensionalityIn(tab, src)
	if err != nil {
		return err
	}
	dstDims, err := dimensionalityIn(tab, dst)
	if err != nil {
		return err
	}
	return coreerrors.NewDimensionality(src.String(), dst.String(), srcDims.String(), dstDims.String())
}

// Convert computes the value expressed in src units as a value in dst
// units, handling the affine (offset) special cases:
//
//   - src and dst both free of offset units: pure factor, memoized.
//   - a lone offset unit on either side: the value passes through base
//     units with the affine offset applied.
//   - an offset unit with a non-unit exponent, or mixed into a compound
//     container, is ambiguous and fails with OffsetUnitCalculusError.
func (r *Registry) Convert(value float64, src, dst Container) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return convertIn(r.tab, r.cache, value, src, dst)
}

func convertIn(tab *tables, cache *conversionCache, value float64, src, dst Container) (float64, error) {
	srcDef, srcLone := loneOffsetUnit(tab, src)
	dstDef, dstLone := loneOffsetUnit(tab, dst)
	srcHas := srcLone || containsOffset(tab, src)
	dstHas := dstLone || containsOffset(tab, dst)

	if srcHas && !srcLone {
		return 0, coreerrors.NewOffsetCalculus("convert", src.String())
	}
	if dstHas && !dstLone {
		return 0, coreerrors.NewOffsetCalculus("convert", dst.String())
	}
	if !srcHas && !dstHas {
		factor, err := factorBetween(tab, cache, src, dst)
		if err != nil {
			return 0, err
		}
		return value * factor, nil
	}

	// Affine path: through base units, never cached.
	var vBase float64
	var srcBase Container
	if srcLone {
		refFactor, refBase, err := reduceLinear(tab, srcDef.Reference, nil)
		if err != nil {
			return 0, err
		}
		vBase = (value*srcDef.Scale + srcDef.Offset) * refFactor
		srcBase = refBase
	} else {
		factor, base, err := reduceLinear(tab, src, nil)
		if err != nil {
			return 0, err
		}
		vBase = value * factor
		srcBase = base
	}

	if dstLone {
		refFactor, refBase, err := reduceLinear(tab, dstDef.Reference, nil)
		if err != nil {
			return 0, err
		}
		if !srcBase.Equal(refBase) {
			return 0, dimensionalityError(tab, src, dst)
		}
		return (vBase/refFactor - dstDef.Offset) / dstDef.Scale, nil
	}
	factor, base, err := reduceLinear(tab, dst, nil)
	if err != nil {
		return 0, err
	}
	if !srcBase.Equal(base) {
		return 0, dimensionalityError(tab, src, dst)
	}
	return vBase / factor, nil
}
