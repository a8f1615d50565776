// Package decomp splits simple polygons into convex pieces that a rigid body
// simulator can use as collision shapes.
//
// The simulator only accepts convex polygons with at most MaxVertices
// vertices. Decompose implements a greedy, recursive split along the shortest
// diagonal starting at a reflex vertex. DecomposeOptimal tries every possible
// diagonal and keeps the split producing the fewest pieces. It is exponential
// in the number of reflex vertices and meant for offline preprocessing only.
//
// All functions are pure, the input polygon is never modified.
package decomp
