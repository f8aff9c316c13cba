// Package pagination provides page-size normalization and opaque feed
// cursor encoding for keyset pagination.
package pagination

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Min     int
	Max     int
}

// RadiusConfig configures near-mode radius normalization in meters.
type RadiusConfig struct {
	Default float64
	Min     float64
	Max     float64
}

// DefaultPageSize is the feed page size configuration.
var DefaultPageSize = PageSizeConfig{Default: 30, Min: 10, Max: 50}

// DefaultRadius is the near-mode radius configuration.
var DefaultRadius = RadiusConfig{Default: 10000, Min: 100, Max: 50000}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Min > 0 && pageSize < cfg.Min {
		pageSize = cfg.Min
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	return pageSize
}

// ClampRadius applies defaults and limits for search radii.
func ClampRadius(value float64, cfg RadiusConfig) float64 {
	radius := value
	if radius <= 0 {
		radius = cfg.Default
	}
	if cfg.Min > 0 && radius < cfg.Min {
		radius = cfg.Min
	}
	if cfg.Max > 0 && radius > cfg.Max {
		radius = cfg.Max
	}
	return radius
}
