// Package resize implements the drag-to-resize affordance for images and
// tables.
//
// A Manager keeps at most one Wrapper in the document: an element wrapped
// in a container carrying eight compass handles. A Controller watches
// pointer events, wraps elements as they are clicked, and while a handle is
// dragged turns the pointer offset into a new size for the wrapped element.
//
// Drawing the wrapper, hit testing and applying sizes are the host's job;
// the package reaches the host through the Decorator, HitTester and
// Geometry interfaces.
package resize
