package item

import (
	"github.com/dyuri/tsmap/internal/binary"
	"github.com/dyuri/tsmap/internal/model"
)

// Items below are never kept by the map. Their decoders still read the
// whole record so the walker gets an exact block size.

const (
	companySpotLists    = 5
	triggerActionSize   = 0x10
	trajectoryCheckSize = 0x10
)

func decodeCompany(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	co := &model.Company{}
	co.Name = model.Token(c.Uint64())
	co.City = model.Token(c.Uint64())
	co.PrefabUid = c.Uint64()
	co.Node = c.Uint32()
	for i := 0; i < companySpotLists; i++ {
		co.Spots[i] = c.Uint32Array()
	}

	if err := finish(&co.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return co, nil
}

func decodeService(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	s := &model.Service{}
	s.Node = c.Uint32()
	s.PrefabUid = c.Uint64()

	if err := finish(&s.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeCutPlane(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	cp := &model.CutPlane{}
	cp.Nodes = c.Uint32Array()

	if err := finish(&cp.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return cp, nil
}

func decodeGarage(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	g := &model.Garage{}
	g.City = model.Token(c.Uint64())
	g.Building = c.Uint32()
	g.Node = c.Uint32()
	g.Spots = c.Uint32Array()

	if err := finish(&g.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeTrigger(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	tr := &model.Trigger{}
	tr.Nodes = c.Uint32Array()
	n := c.Count(triggerActionSize)
	if n > 0 {
		tr.Actions = make([]model.TriggerAction, n)
		for i := range tr.Actions {
			tr.Actions[i].Action = model.Token(c.Uint64())
			tr.Actions[i].Value = c.Float32()
			c.Skip(4)
		}
	}
	tr.Range = c.Float32()
	tr.ResetDelay = c.Float32()

	if err := finish(&tr.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return tr, nil
}

func decodeFuelPump(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	fp := &model.FuelPump{}
	fp.Node = c.Uint32()
	fp.PrefabUid = c.Uint64()

	if err := finish(&fp.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return fp, nil
}

func decodeRoadSideItem(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	rs := &model.RoadSideItem{}
	rs.Model = model.Token(c.Uint64())
	rs.Node = c.Uint32()
	rs.RoadUid = c.Uint64()

	if err := finish(&rs.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return rs, nil
}

func decodeBusStop(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	bs := &model.BusStop{}
	bs.City = model.Token(c.Uint64())
	bs.PrefabUid = c.Uint64()
	bs.Node = c.Uint32()

	if err := finish(&bs.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return bs, nil
}

func decodeTrafficRule(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	tr := &model.TrafficRule{}
	tr.Rule = model.Token(c.Uint64())
	tr.Nodes = c.Uint32Array()
	tr.Range = c.Float32()

	if err := finish(&tr.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return tr, nil
}

func decodeTrajectoryItem(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	ti := &model.TrajectoryItem{}
	ti.Nodes = c.Uint32Array()
	// Rules are variable length: token then a counted float list.
	// Minimum rule size is 12 bytes (token + empty param count).
	n := c.Count(12)
	if n > 0 {
		ti.Rules = make([]model.TrajectoryRule, n)
		for i := range ti.Rules {
			ti.Rules[i].Rule = model.Token(c.Uint64())
			pn := c.Count(4)
			if pn > 0 {
				params := make([]float32, pn)
				for j := range params {
					params[j] = c.Float32()
				}
				ti.Rules[i].Params = params
			}
		}
	}
	ti.Checkpoints = c.SkipArray(trajectoryCheckSize)

	if err := finish(&ti.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return ti, nil
}

func decodeMapArea(buf *binary.Buffer, offset int, _ *Context) (model.Item, error) {
	c := buf.CursorAt(offset)
	head := readHeader(c)

	ma := &model.MapArea{}
	ma.Nodes = c.Uint32Array()
	ma.Color = c.Uint32()

	if err := finish(&ma.ItemBase, c, offset, head, true); err != nil {
		return nil, err
	}
	return ma, nil
}
