// Package clustering owns incremental connected-component labelling of
// sparse radar voxels.
//
// Responsibilities: grid-index bounding volumes, fixed-size buckets that
// localise adjacency scans, clusters of buckets, and the single-pass
// Clusterer that merges clusters when a voxel bridges them.
// Key types: Voxel, Bounds, BucketKey, Bucket, Cluster, Clusterer.
//
// Dependency rule: clustering depends on nothing else in this module.
// Geometry, positions and depth bands live in package footprint.
package clustering
