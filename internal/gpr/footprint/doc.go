// Package footprint turns finished voxel clusters into per-depth-band
// features: a 2D footprint geometry and a mean amplitude.
//
// Responsibilities: depth bands (Layer), the position lookup that maps grid
// indices to projected coordinates, pluggable footprint strategies and the
// parallel Extractor that evaluates every (cluster, band) pair.
// Key types: Layer, Feature, PositionLookup, PositionGrid, Strategy,
// StitchedConvex, ConcaveHull, Extractor.
//
// Clusters are only read here. Geometry uses github.com/paulmach/orb types
// throughout so features can be written as WKT without conversion.
package footprint
