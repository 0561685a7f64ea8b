package snapshot

import "github.com/matzehuels/layoutview/pkg/odb"

// link resolves the cross-references between materialized entities. It
// runs after every entity exists, so lookups only ever fail for references
// that leave the snapshot.
func (f *flattener) link() {
	d := f.design

	for _, inst := range d.Instances {
		iterms := inst.native.ITerms()
		inst.Pins = make([]*Pin, 0, len(iterms))
		for _, it := range iterms {
			if p := f.instancePin(it, "instance", inst.Name); p != nil {
				inst.Pins = append(inst.Pins, p)
			}
		}
	}

	for _, p := range d.InstancePins {
		if in := p.iterm.Inst(); in != nil {
			if inst, ok := f.instances[in.ID()]; ok {
				p.Instance = inst
			} else {
				f.miss("unresolved instance", "instance", in.Name(), "id", in.ID(), "pin", p.ID)
			}
		}
		p.Net = f.netOf(p.iterm.Net())
	}
	for _, p := range d.BlockPins {
		p.Net = f.netOf(p.bterm.Net())
	}

	for _, net := range d.Nets {
		iterms, bterms := net.native.ITerms(), net.native.BTerms()
		net.Pins = make([]*Pin, 0, len(iterms)+len(bterms))
		for _, it := range iterms {
			if p := f.instancePin(it, "net", net.Name); p != nil {
				net.Pins = append(net.Pins, p)
			}
		}
		for _, bt := range bterms {
			if p, ok := f.blockPins[bt.ID()]; ok {
				net.Pins = append(net.Pins, p)
			} else {
				f.miss("unresolved block pin", "pin", bt.Name(), "id", bt.ID(), "net", net.Name)
			}
		}
	}

	for _, l := range d.Layers {
		l.UpperLayer = f.layerRef(l.native.Upper(), "layer", l.Name)
		l.LowerLayer = f.layerRef(l.native.Lower(), "layer", l.Name)
	}
}

func (f *flattener) instancePin(it odb.ITerm, keyvals ...any) *Pin {
	if p, ok := f.instPins[it.ID()]; ok {
		return p
	}
	f.miss("unresolved instance pin", append([]any{"id", it.ID()}, keyvals...)...)
	return nil
}

// netOf resolves a pin's net. An unconnected pin is normal and a net
// outside the block is ignored.
func (f *flattener) netOf(n odb.Net) *Net {
	if n == nil {
		return nil
	}
	return f.nets[n.ID()]
}

// linkRects resolves the layer and via of every rect cast from a native
// box, in rect id order. A box's block via takes precedence over its
// technology via here. Special-wire shapes keep the via resolved when they
// were materialized.
func (f *flattener) linkRects() {
	for _, r := range f.arena.rects {
		if r.native == nil {
			continue
		}
		r.Layer = f.layerRef(r.native.TechLayer(), "rect", r.ID)
		if r.ShapeType != ShapeTypeUnset {
			continue
		}
		if bv := r.native.BlockVia(); bv != nil {
			r.Via = f.viaRef(bv, "rect", r.ID)
		} else if tv := r.native.TechVia(); tv != nil {
			r.Via = f.viaRef(tv, "rect", r.ID)
		}
	}
}
