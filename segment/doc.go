// Package segment decomposes a raster of numeric pixel samples into
// connected regions of similar-valued pixels.
//
// The decomposition runs in two stages:
//
//  1. Link building: for every pixel, record which of its four neighbours
//     (east, west, north, south) holds a sample within a tolerance of the
//     pixel's own sample. The result is a per-pixel bitmask; links are
//     always symmetric.
//
//  2. Region extraction: flood-fill the link map into an ordered list of
//     segments. Regions are seeded in raster-scan order and traversed
//     breadth-first, so the output is deterministic.
//
// The result is a Segmentation: an immutable, reference-counted handle over
// the segments, their bounding boxes, and the packed buffer of points. A
// subset of segments can be copied out with Select. Segmentations feed the
// chain package, which discovers approximately horizontal chains of
// segments that plausibly form lines of characters.
//
// # Pixel types
//
// The link builder is polymorphic over the usual numeric sample types
// (8/16/32/64-bit signed and unsigned integers, float32, float64). Complex
// and colour tags are recognised but rejected: segmentation is defined on
// scalar samples only. The imgio package converts image.Image values into
// scalar rasters.
//
// # Coordinate system
//
// Origin (0, 0) at the top-left corner, x increasing rightward, y increasing
// downward. Bounding boxes are inclusive on both ends. North is the
// neighbour at y+1, south at y-1.
package segment
