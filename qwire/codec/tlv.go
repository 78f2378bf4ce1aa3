package codec

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// TLVTerminator is the reserved tag that ends a TLV sequence. No length or
// value follows it.
const TLVTerminator uint16 = 255

var (
	ErrTagWidth    = errors.New("codec: unsupported TLV tag width")
	ErrTagReserved = errors.New("codec: TLV tag is reserved")
	ErrTagOverflow = errors.New("codec: TLV tag does not fit its width")
)

// TagWidth is the number of raw bytes used for a TLV tag on the wire.
type TagWidth int

const (
	TagWidth1 TagWidth = 1
	TagWidth2 TagWidth = 2
	TagWidth4 TagWidth = 4
)

func (tw TagWidth) valid() bool {
	return tw == TagWidth1 || tw == TagWidth2 || tw == TagWidth4
}

// TLVMap maps a tag to its value. Parsing keeps the last value of a
// repeated tag.
type TLVMap map[uint16][]byte

// Tags returns the map's tags in ascending order.
func (m TLVMap) Tags() []uint16 {
	tags := make([]uint16, 0, len(m))
	for t := range m {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

// ReadTLVMap parses tag/length/value records until the input runs out or the
// terminator tag is read. Records cut short at the end of the input end the
// parse without an error, and the records read so far are returned.
func (r *Reader) ReadTLVMap(width TagWidth) (TLVMap, error) {
	if !width.valid() {
		return nil, fmt.Errorf("%w: %d", ErrTagWidth, width)
	}
	m := TLVMap{}
	for r.Len() >= int(width) {
		tag, err := r.readTag(width)
		if err != nil {
			return m, err
		}
		if tag == TLVTerminator {
			break
		}
		value, err := r.ReadShortBytes()
		if err != nil {
			if errors.Is(err, ErrUnderflow) {
				break
			}
			return m, err
		}
		m[tag] = value
	}
	return m, nil
}

func (r *Reader) readTag(width TagWidth) (uint16, error) {
	switch width {
	case TagWidth1:
		v, err := r.ReadUint8()
		return uint16(v), err
	case TagWidth2:
		return r.ReadUint16()
	default:
		v, err := r.ReadUint32()
		return uint16(v), err
	}
}

func (w *Writer) writeTag(width TagWidth, tag uint16) {
	switch width {
	case TagWidth1:
		w.WriteUint8(uint8(tag))
	case TagWidth2:
		w.WriteUint16(tag)
	default:
		w.WriteUint32(uint32(tag))
	}
}

// WriteTLV appends a single record.
func (w *Writer) WriteTLV(width TagWidth, tag uint16, value []byte) {
	switch {
	case !width.valid():
		w.fail(fmt.Errorf("%w: %d", ErrTagWidth, width))
		return
	case tag == TLVTerminator:
		w.fail(fmt.Errorf("%w: %d", ErrTagReserved, tag))
		return
	case width == TagWidth1 && tag > math.MaxUint8:
		w.fail(fmt.Errorf("%w: %d in 1 byte", ErrTagOverflow, tag))
		return
	}
	w.writeTag(width, tag)
	w.WriteShortBytes(value)
}

// WriteTLVMap appends every record of m in ascending tag order.
func (w *Writer) WriteTLVMap(width TagWidth, m TLVMap) {
	for _, tag := range m.Tags() {
		w.WriteTLV(width, tag, m[tag])
	}
}

// WriteTLVTerminator appends the terminator tag.
func (w *Writer) WriteTLVTerminator(width TagWidth) {
	if !width.valid() {
		w.fail(fmt.Errorf("%w: %d", ErrTagWidth, width))
		return
	}
	w.writeTag(width, TLVTerminator)
}
