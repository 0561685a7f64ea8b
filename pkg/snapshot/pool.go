package snapshot

// Kind names one owning pool of a Design.
type Kind int

const (
	KindLayer Kind = iota
	KindInstance
	KindPin
	KindNet
	KindEdge
	KindVia
	KindGeometry
	KindRect
	KindSite
	KindRow
	KindGrid
	KindPoint
	numKinds
)

var kindNames = [numKinds]string{
	"layer", "instance", "pin", "net", "edge", "via",
	"geometry", "rect", "site", "row", "grid", "point",
}

func (k Kind) String() string {
	if k >= 0 && k < numKinds {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds lists every pool kind.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Counts holds one count per pool kind.
type Counts [numKinds]int

// Total returns the sum over all kinds.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// arena owns every entity allocated during a build. Each entity lives in
// exactly one pool no matter how many other entities link to it, so
// teardown walks the pools and never follows links.
type arena struct {
	layers     []*Layer
	instances  []*Instance
	pins       []*Pin
	nets       []*Net
	edges      []*Edge
	vias       []*Via
	geometries []*Geometry
	rects      []*Rect
	sites      []*Site
	rows       []*Row
	grids      []*Grid
	points     []*Point

	allocated Counts
}

func alloc[T any](a *arena, pool *[]*T, k Kind) *T {
	v := new(T)
	*pool = append(*pool, v)
	a.allocated[k]++
	return v
}

func (a *arena) newLayer() *Layer       { return alloc(a, &a.layers, KindLayer) }
func (a *arena) newInstance() *Instance { return alloc(a, &a.instances, KindInstance) }
func (a *arena) newPin() *Pin           { return alloc(a, &a.pins, KindPin) }
func (a *arena) newNet() *Net           { return alloc(a, &a.nets, KindNet) }
func (a *arena) newEdge() *Edge         { return alloc(a, &a.edges, KindEdge) }
func (a *arena) newVia() *Via           { return alloc(a, &a.vias, KindVia) }
func (a *arena) newGeometry() *Geometry { return alloc(a, &a.geometries, KindGeometry) }
func (a *arena) newRect() *Rect         { return alloc(a, &a.rects, KindRect) }
func (a *arena) newSite() *Site         { return alloc(a, &a.sites, KindSite) }
func (a *arena) newRow() *Row           { return alloc(a, &a.rows, KindRow) }
func (a *arena) newGrid() *Grid         { return alloc(a, &a.grids, KindGrid) }

func (a *arena) newPoint(x, y int) *Point {
	p := alloc(a, &a.points, KindPoint)
	p.X, p.Y = x, y
	return p
}

// release zeroes every pooled entity, which drops all of its links, and
// empties the pools. It returns how many entities of each kind it freed.
func (a *arena) release() Counts {
	var freed Counts
	freed[KindLayer] = clearPool(&a.layers)
	freed[KindInstance] = clearPool(&a.instances)
	freed[KindPin] = clearPool(&a.pins)
	freed[KindNet] = clearPool(&a.nets)
	freed[KindEdge] = clearPool(&a.edges)
	freed[KindVia] = clearPool(&a.vias)
	freed[KindGeometry] = clearPool(&a.geometries)
	freed[KindRect] = clearPool(&a.rects)
	freed[KindSite] = clearPool(&a.sites)
	freed[KindRow] = clearPool(&a.rows)
	freed[KindGrid] = clearPool(&a.grids)
	freed[KindPoint] = clearPool(&a.points)
	a.allocated = Counts{}
	return freed
}

func clearPool[T any](pool *[]*T) int {
	n := 0
	for _, v := range *pool {
		var zero T
		*v = zero
		n++
	}
	*pool = nil
	return n
}
