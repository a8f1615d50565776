// Package gm (stands for geometry math) provides the geometry primitives
// shared by the physics world and the polygon decomposition.
//
// It includes a simple 2d vector type called Vec, an axis aligned Rect and
// a type named Rad to represent angle values in radian.
//
// All values are in pixel space unless a function says otherwise.
package gm
