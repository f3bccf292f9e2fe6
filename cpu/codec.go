package cpu

// FieldValue is a value to be packed into a field of the given width.
type FieldValue struct {
	Value uint32
	Width uint
}

// Encode packs the selector and the field values MSB first, and pads the
// result with zero bits to a whole number of bytes.
//
// Values wider than their field are silently truncated to the field width.
func Encode(sel Selector, fields ...FieldValue) (data []byte) {
	acc := uint64(sel) & SELECTOR_MASK
	width := uint(SELECTOR_WIDTH)

	for _, fld := range fields {
		mask := (uint64(1) << fld.Width) - 1
		acc = (acc << fld.Width) | (uint64(fld.Value) & mask)
		width += fld.Width
	}

	size := int(width+7) / 8
	acc <<= uint(size*8) - width

	data = make([]byte, size)
	for n := range size {
		data[n] = byte(acc >> (uint(size-1-n) * 8))
	}

	return
}

// Decode unpacks the selector and the field values of shape from data.
//
// Fails with ErrTruncated if data is shorter than the shape.
func Decode(data []byte, shape *Shape) (sel Selector, values []uint32, err error) {
	if len(data) < shape.Bytes {
		err = ErrTruncated
		return
	}

	var acc uint64
	for _, b := range data[:shape.Bytes] {
		acc = (acc << 8) | uint64(b)
	}

	pos := uint(shape.Bytes * 8)

	pos -= SELECTOR_WIDTH
	sel = Selector((acc >> pos) & SELECTOR_MASK)

	values = make([]uint32, len(shape.Fields))
	for n, fld := range shape.Fields {
		pos -= fld.Width
		values[n] = uint32(acc>>pos) & fld.Mask()
	}

	return
}

// EncodeShape packs values into the layout of shape.
func EncodeShape(shape *Shape, values ...uint32) (data []byte) {
	fields := make([]FieldValue, len(shape.Fields))
	for n, fld := range shape.Fields {
		fields[n].Width = fld.Width
		if n < len(values) {
			fields[n].Value = values[n]
		}
	}

	return Encode(shape.Selector, fields...)
}
