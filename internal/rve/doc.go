// Package rve generates periodic packings of spherical inclusions for
// representative volume element (RVE) models.
//
// Responsibilities: rejection sampling of non-overlapping spheres inside a
// periodic box, materialisation of periodic images, and extraction of the
// inclusions that touch an arbitrary axis-aligned sub-cube.
// Key types: Inclusion, Packing, Generator, SpatialIndex.
//
// The generator is single-threaded. A Generator owns its random source and
// spatial index for one run; the returned Packing is owned by the caller.
package rve
