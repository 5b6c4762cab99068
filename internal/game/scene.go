package game

import (
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/korallis/Gideon-sub018/internal/holo"
)

// Scene owns the node tree for one composited surface and draws it in
// z order every frame. The holo engine mutates node state (opacity, effects,
// transforms, z); the scene only rasterizes whatever that state says.
type Scene struct {
	Root *Node
}

// NewScene returns a scene whose root container spans the given size.
func NewScene(width, height float64) *Scene {
	return &Scene{Root: NewNode(0, 0, width, height, color.RGBA{R: 0x05, G: 0x08, B: 0x10, A: 0xFF})}
}

// Draw rasterizes the whole tree onto screen, back to front. Nodes without
// an explicit z-index paint at their layer-free default of 0, tie-broken by
// insertion order so siblings keep a stable relative order.
func (s *Scene) Draw(screen *ebiten.Image) {
	nodes := make([]*Node, 0, len(s.Root.children)+1)
	nodes = append(nodes, s.Root)
	collect(s.Root, &nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		zi, _ := nodes[i].ZIndex()
		zj, _ := nodes[j].ZIndex()
		if zi != zj {
			return zi < zj
		}
		return nodes[i].seq < nodes[j].seq
	})
	for _, n := range nodes {
		drawNode(screen, n)
	}
}

func collect(n *Node, out *[]*Node) {
	for _, c := range n.children {
		*out = append(*out, c)
		collect(c, out)
	}
}

func drawNode(screen *ebiten.Image, n *Node) {
	alpha := clamp01(n.opacity)
	if alpha <= 0 {
		return
	}
	x, y := n.absolute()
	w := n.W * n.transform.ScaleX
	h := n.H * n.transform.ScaleY
	// Uniform scale is about the node's center.
	x -= (w - n.W) / 2
	y -= (h - n.H) / 2

	switch n.Shape {
	case ShapeOverlay:
		drawScanlines(screen, n, x, y, alpha)
		return
	case ShapeParticle:
		drawParticle(screen, n, x, y, alpha)
		return
	case ShapeCircle:
		fill := scaleAlpha(n.Fill, alpha)
		vector.DrawFilledCircle(screen, float32(x+w/2), float32(y+h/2), float32(w/2), fill, true)
	default:
		fill := scaleAlpha(n.Fill, alpha)
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), fill, false)
	}
	drawEffect(screen, n, x, y, w, h, alpha)
}

// drawEffect renders a cheap visual stand-in for the node's effect handle.
// The handle's uniforms are the single source of truth: the engine updates
// them, the scene reads them.
func drawEffect(screen *ebiten.Image, n *Node, x, y, w, h, alpha float64) {
	switch e := n.effect.(type) {
	case *holo.GlowEffect:
		intensity, _ := e.Uniform(holo.UniformIntensity)
		radius, _ := e.Uniform(holo.UniformRadius)
		freq, _ := e.Uniform(holo.UniformPulseFrequency)
		t, _ := e.Uniform(holo.UniformTime)
		shimmer := 1.0
		if freq > 0 {
			shimmer = 0.75 + 0.25*math.Sin(2*math.Pi*freq*t)
		}
		glow := scaleAlpha(toRGBA(e.Color), alpha*clamp01(intensity)*shimmer*0.5)
		for i := 1; i <= 3; i++ {
			inset := float32(radius * float64(i) / 3)
			vector.StrokeRect(screen, float32(x)-inset, float32(y)-inset,
				float32(w)+2*inset, float32(h)+2*inset, 1.5, glow, true)
		}
	case *holo.GlassmorphismEffect:
		opacity, _ := e.Uniform(holo.UniformOpacity)
		thickness, _ := e.Uniform(holo.UniformBorderThickness)
		pane := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: uint8(255 * clamp01(opacity) * alpha)}
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), pane, false)
		border := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: uint8(90 * alpha)}
		vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), float32(math.Max(1, thickness)), border, true)
	case *holo.BlurEffect:
		radius, _ := e.Uniform(holo.UniformRadius)
		// Box-blur approximation: faint offset copies around the node.
		ghost := scaleAlpha(n.Fill, alpha*0.12)
		r := float32(radius / 2)
		for _, off := range [][2]float32{{-r, 0}, {r, 0}, {0, -r}, {0, r}} {
			vector.DrawFilledRect(screen, float32(x)+off[0], float32(y)+off[1], float32(w), float32(h), ghost, false)
		}
	case *holo.ShaderEffect:
		t, _ := e.Uniform(holo.UniformTime)
		hue := math.Mod(t*20, 360)
		cr, cg, cb := hsvToRgb(hue, 0.6, 1)
		tint := color.RGBA{R: cr, G: cg, B: cb, A: uint8(40 * alpha)}
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), tint, false)
	}
}

func drawScanlines(screen *ebiten.Image, n *Node, x, y float64, alpha float64) {
	spec := n.overlay
	stripe := scaleAlpha(toRGBA(spec.Color), alpha*spec.Opacity)
	for sy := 0.0; sy < spec.Height; sy += spec.StripeSpacing {
		vector.DrawFilledRect(screen, float32(x), float32(y+sy),
			float32(spec.Width), float32(spec.StripeThickness), stripe, false)
	}
}

func drawParticle(screen *ebiten.Image, n *Node, x, y float64, alpha float64) {
	r := n.W / 2
	fill := scaleAlpha(n.Fill, alpha)
	vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r), fill, true)
	if n.particle.Glow {
		halo := scaleAlpha(n.Fill, alpha*0.3)
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r*2.2), halo, true)
	}
}

func scaleAlpha(c color.RGBA, alpha float64) color.RGBA {
	a := clamp01(alpha)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}
