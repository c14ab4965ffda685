package binary

// Cursor reads sequential fields from a Buffer. The first failed read is
// kept and every later read becomes a no-op returning zero, so a decoder can
// read a whole record and check Err once.
type Cursor struct {
	buf *Buffer
	pos int
	err error
}

// CursorAt returns a cursor positioned at offset
func (b *Buffer) CursorAt(offset int) *Cursor {
	return &Cursor{buf: b, pos: offset}
}

// Offset returns the current position
func (c *Cursor) Offset() int {
	return c.pos
}

// Err returns the first read error, if any
func (c *Cursor) Err() error {
	return c.err
}

// Skip advances the cursor by n bytes, failing if that passes the end
func (c *Cursor) Skip(n int) {
	if c.err != nil {
		return
	}
	if err := c.buf.Check(c.pos, n); err != nil {
		c.err = err
		return
	}
	c.pos += n
}

func (c *Cursor) Uint8() uint8 {
	if c.err != nil {
		return 0
	}
	v, err := c.buf.Uint8(c.pos)
	if err != nil {
		c.err = err
		return 0
	}
	c.pos++
	return v
}

func (c *Cursor) Uint16() uint16 {
	if c.err != nil {
		return 0
	}
	v, err := c.buf.Uint16(c.pos)
	if err != nil {
		c.err = err
		return 0
	}
	c.pos += 2
	return v
}

func (c *Cursor) Uint32() uint32 {
	if c.err != nil {
		return 0
	}
	v, err := c.buf.Uint32(c.pos)
	if err != nil {
		c.err = err
		return 0
	}
	c.pos += 4
	return v
}

func (c *Cursor) Int32() int32 {
	return int32(c.Uint32())
}

func (c *Cursor) Uint64() uint64 {
	if c.err != nil {
		return 0
	}
	v, err := c.buf.Uint64(c.pos)
	if err != nil {
		c.err = err
		return 0
	}
	c.pos += 8
	return v
}

func (c *Cursor) Float32() float32 {
	if c.err != nil {
		return 0
	}
	v, err := c.buf.Float32(c.pos)
	if err != nil {
		c.err = err
		return 0
	}
	c.pos += 4
	return v
}

// Count reads a uint32 element count and checks that count elements of
// stride bytes follow it. The cursor is left just after the count field.
func (c *Cursor) Count(stride int) int {
	if c.err != nil {
		return 0
	}
	n, err := c.buf.Count(c.pos, stride)
	if err != nil {
		c.err = err
		return 0
	}
	c.pos += 4
	return n
}

// SkipArray reads a count and skips count elements of stride bytes
func (c *Cursor) SkipArray(stride int) int {
	n := c.Count(stride)
	c.Skip(n * stride)
	return n
}

// Uint32Array reads a count followed by that many uint32 values
func (c *Cursor) Uint32Array() []uint32 {
	n := c.Count(4)
	if c.err != nil || n == 0 {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = c.Uint32()
	}
	return out
}

// Uint64Array reads a count followed by that many uint64 values
func (c *Cursor) Uint64Array() []uint64 {
	n := c.Count(8)
	if c.err != nil || n == 0 {
		return nil
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = c.Uint64()
	}
	return out
}
