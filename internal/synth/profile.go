package synth

import (
	"math"
	"strconv"

	"github.com/patrickmn/go-cache"
)

// ProfileCache produces normalized Gaussian broadening profiles for line
// centers on the shared wavelength grid, memoized by exact center value.
// Entries never expire; the cache lives as long as the process run.
type ProfileCache struct {
	grid  []float64
	sigma float64
	cache *cache.Cache
}

// NewProfileCache creates a cache over the given grid with per-line
// broadening width sigma (nm).
func NewProfileCache(grid []float64, sigma float64) *ProfileCache {
	return &ProfileCache{
		grid:  grid,
		sigma: sigma,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Profile returns the Gaussian profile centered at the given wavelength,
// evaluated over the whole grid. Repeated calls for the same center return
// the same cached array.
func (p *ProfileCache) Profile(center float64) []float64 {
	key := strconv.FormatFloat(center, 'b', -1, 64)
	if v, found := p.cache.Get(key); found {
		return v.([]float64)
	}

	profile := make([]float64, len(p.grid))
	norm := 1.0 / (p.sigma * math.Sqrt(2*math.Pi))
	for i, x := range p.grid {
		d := (x - center) / p.sigma
		profile[i] = norm * math.Exp(-0.5*d*d)
	}

	p.cache.Set(key, profile, cache.NoExpiration)
	return profile
}

// Len returns the number of cached profiles.
func (p *ProfileCache) Len() int {
	return p.cache.ItemCount()
}
