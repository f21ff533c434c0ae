// Package chain discovers approximately horizontal chains of image
// segments that plausibly form a line of characters.
//
// Starting from a segment.Segmentation, the builder sorts segments by
// centre abscissa and links pairs whose relative size, spacing and slope
// are compatible with two neighbouring characters on one text line. Pairs
// are then extended into longer chains level by level; a candidate
// extension is accepted when its last segment stays aligned with the
// least-squares line through the chain's segment centres. Chains that are
// not covered by a longer chain and that satisfy the length bounds are
// emitted into a Pool.
//
// For every emitted chain the builder fits two shear coefficients of a 2x2
// affine over pixel coordinates:
//
//   - the vertical shear aligns the transformed bounding-box centres of the
//     segments onto a horizontal line (iterated linear regression);
//   - the horizontal shear maximises the horizontal spacing between
//     consecutive transformed bounding boxes, straightening italic slant.
//
// A chain whose fit does not converge is dropped from the pool; the pool
// itself is still built. The Pool holds a counted reference to the
// segmentation it was built from and releases it on Destroy.
package chain
