package game

import (
	"image/color"

	"github.com/korallis/Gideon-sub018/internal/holo"
)

// Shape selects how a Node is rasterized.
type Shape int

const (
	ShapeRect Shape = iota
	ShapeCircle
	ShapeOverlay
	ShapeParticle
)

// Node is the ebiten-backed implementation of both holo.Element and
// holo.Container: a retained-mode rectangle/circle with opacity, a 2D
// transform, an optional z-index, an effect slot and children. Positions are
// surface-absolute; a node's transform translation offsets it relative to
// its parent (the particle stream drives particles that way).
type Node struct {
	X, Y, W, H float64
	Fill       color.RGBA
	Shape      Shape

	opacity   float64
	effect    holo.Effect
	transform holo.Transform
	z         int
	hasZ      bool
	parent    *Node
	children  []*Node
	seq       int // insertion order; tie-break for z sorting

	overlay  holo.OverlaySpec
	particle holo.ParticleSpec
}

// NewNode returns a rectangular node at x,y with the given size and fill.
func NewNode(x, y, w, h float64, fill color.RGBA) *Node {
	return &Node{
		X: x, Y: y, W: w, H: h,
		Fill:      fill,
		Shape:     ShapeRect,
		opacity:   1,
		transform: holo.Identity(),
	}
}

func (n *Node) Opacity() float64 { return n.opacity }

func (n *Node) SetOpacity(v float64) { n.opacity = v }

func (n *Node) ActiveEffect() holo.Effect { return n.effect }

func (n *Node) SetActiveEffect(e holo.Effect) { n.effect = e }

func (n *Node) Transform() holo.Transform { return n.transform }

func (n *Node) SetTransform(t holo.Transform) { n.transform = t }

func (n *Node) ZIndex() (int, bool) { return n.z, n.hasZ }

func (n *Node) SetZIndex(z int) { n.z, n.hasZ = z, true }

func (n *Node) ClearZIndex() { n.z, n.hasZ = 0, false }

// Parent returns the owning container. The nil check matters: returning a
// nil *Node inside the interface would not compare equal to nil.
func (n *Node) Parent() holo.Container {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) AddChild(el holo.Element) {
	child, ok := el.(*Node)
	if !ok || child == nil {
		return
	}
	child.parent = n
	child.seq = n.nextSeq()
	n.children = append(n.children, child)
}

func (n *Node) RemoveChild(el holo.Element) {
	child, ok := el.(*Node)
	if !ok {
		return
	}
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) Size() (w, h float64) { return n.W, n.H }

// ChildCount reports the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

func (n *Node) nextSeq() int {
	seq := 0
	for _, c := range n.children {
		if c.seq >= seq {
			seq = c.seq + 1
		}
	}
	return seq
}

// absolute returns the node's drawing origin after parent offset and its own
// transform translation.
func (n *Node) absolute() (x, y float64) {
	x, y = n.X+n.transform.TranslateX, n.Y+n.transform.TranslateY
	if n.parent != nil {
		x += n.parent.X
		y += n.parent.Y
	}
	return x, y
}

// NodeFactory materializes the engine's auxiliary nodes (scanline overlays,
// stream particles) as plain Nodes carrying their render spec.
type NodeFactory struct{}

func (NodeFactory) NewOverlay(spec holo.OverlaySpec) holo.Element {
	n := NewNode(0, 0, spec.Width, spec.Height, color.RGBA{A: 0})
	n.Shape = ShapeOverlay
	n.overlay = spec
	return n
}

func (NodeFactory) NewParticle(spec holo.ParticleSpec) holo.Element {
	n := NewNode(0, 0, spec.Size, spec.Size, toRGBA(spec.Color))
	n.Shape = ShapeParticle
	n.particle = spec
	return n
}

func toRGBA(c color.Color) color.RGBA {
	if c == nil {
		return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	}
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
