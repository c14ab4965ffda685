package item

import (
	"github.com/dyuri/tsmap/internal/binary"
	"github.com/dyuri/tsmap/internal/model"
)

const (
	vegetationSphereSize = 0x14
	stampSize            = 0x18
)

func decodeRoad(buf *binary.Buffer, offset int, ctx *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	r := &model.Road{}
	r.Look = model.Token(c.Uint64())
	r.StartNode = c.Uint32()
	r.EndNode = c.Uint32()
	r.Length = c.Float32()
	r.Vegetation = c.SkipArray(vegetationSphereSize)
	r.Stamps = c.SkipArray(stampSize)

	valid := !head.Hidden() && r.StartNode != 0 && r.EndNode != 0 && ctx.Catalog.HasRoadLook(r.Look)
	if err := finish(&r.ItemBase, c, offset, head, valid); err != nil {
		return nil, err
	}
	return r, nil
}

func decodePrefab(buf *binary.Buffer, offset int, ctx *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	p := &model.Prefab{}
	p.Model = model.Token(c.Uint64())
	p.Variant = model.Token(c.Uint64())
	p.Origin = c.Uint16()
	c.Skip(2)
	p.Nodes = c.Uint32Array()
	p.Slaves = c.Uint64Array()

	valid := !head.Hidden() &&
		ctx.Catalog.HasPrefabModel(p.Model) &&
		len(p.Nodes) > 0 &&
		int(p.Origin) < len(p.Nodes)
	if err := finish(&p.ItemBase, c, offset, head, valid); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeCity(buf *binary.Buffer, offset int, ctx *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	city := &model.City{}
	city.Name = model.Token(c.Uint64())
	city.Width = c.Float32()
	city.Height = c.Float32()
	city.Node = c.Uint32()

	valid := !head.Hidden() && ctx.Catalog.HasCity(city.Name)
	if err := finish(&city.ItemBase, c, offset, head, valid); err != nil {
		return nil, err
	}
	return city, nil
}

func decodeMapOverlay(buf *binary.Buffer, offset int, ctx *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	o := &model.MapOverlay{}
	o.Overlay = model.Token(c.Uint64())
	o.Node = c.Uint32()

	valid := !head.Hidden() && ctx.Catalog.HasOverlay(o.Overlay)
	if err := finish(&o.ItemBase, c, offset, head, valid); err != nil {
		return nil, err
	}
	return o, nil
}

func decodeFerry(buf *binary.Buffer, offset int, ctx *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	f := &model.Ferry{}
	f.Port = model.Token(c.Uint64())
	f.Node = c.Uint32()
	f.LandX = c.Float32()
	f.LandZ = c.Float32()

	valid := !head.Hidden() && ctx.Catalog.HasFerryPort(f.Port)
	if err := finish(&f.ItemBase, c, offset, head, valid); err != nil {
		return nil, err
	}
	return f, nil
}
