package boxy

import (
	"github.com/oliverbestmann/boxy/gm"
)

// Object is a node of an external scene graph that can carry a body.
type Object interface {
	// PhysicsBody returns the body bound to this object, or nil.
	PhysicsBody() *Body
	SetPhysicsBody(body *Body)

	// Bounds returns the bounding box of the object in world space.
	Bounds() gm.Rect

	// SetTransform receives the center and rotation of the body after every step.
	SetTransform(position gm.Vec, rotation gm.Rad)
}

// Parent is implemented by objects with children. Enable recurses into them.
type Parent interface {
	Children() []Object
}

// BodyRef references a body, either directly or through the scene object carrying it.
// It is implemented by *Body and ObjectRef.
type BodyRef interface {
	resolveBody() *Body
}

func (b *Body) resolveBody() *Body {
	return b
}

// ObjectRef references the body carried by a scene object.
type ObjectRef struct {
	Object Object
}

// RefOf returns a reference to the body of the given object.
func RefOf(object Object) ObjectRef {
	return ObjectRef{Object: object}
}

func (r ObjectRef) resolveBody() *Body {
	if r.Object == nil {
		return nil
	}

	return r.Object.PhysicsBody()
}

// Enable creates a dynamic body for every object that does not yet carry one.
// The body gets a rectangle fixture matching the object's bounds and is centered
// on the bounds. Children of objects implementing Parent are enabled too.
func (w *World) Enable(objects ...Object) {
	for _, object := range objects {
		if object == nil {
			continue
		}

		if object.PhysicsBody() == nil {
			w.enableObject(object)
		}

		if parent, ok := object.(Parent); ok {
			w.Enable(parent.Children()...)
		}
	}
}

func (w *World) enableObject(object Object) {
	bounds := object.Bounds()

	body := w.CreateBody(bounds.Center(), Dynamic)
	body.AddRectangle(bounds.Width(), bounds.Height(), gm.Vec{}, 0)

	body.object = object
	object.SetPhysicsBody(body)
}
