package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// maxIFDs bounds the directories visited in one EXIF block.
const maxIFDs = 32

var exifHeader = []byte("Exif\x00\x00")

// tiffTypeSize maps TIFF field types to the byte size of one value.
var tiffTypeSize = map[uint16]uint64{
	1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 6: 1,
	7: 1, 8: 2, 9: 4, 10: 8, 11: 4, 12: 8,
}

// Exif, GPS and Interoperability sub-directory pointers.
var subIFDTags = map[uint16]bool{0x8769: true, 0x8825: true, 0xa005: true}

// exifPayload returns the TIFF-structured EXIF block embedded in an image of
// the given format.
func exifPayload(data []byte, format string) ([]byte, bool) {
	switch format {
	case "jpeg":
		return jpegExif(data)
	case "tiff":
		return data, true
	default:
		return nil, false
	}
}

// jpegExif walks the marker segments up to the start of scan and returns the
// first APP1 segment carrying an Exif header.
func jpegExif(data []byte) ([]byte, bool) {
	if len(data) < 4 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, false
	}

	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xff {
			return nil, false
		}
		marker := data[i+1]
		switch {
		case marker == 0xff:
			i++
			continue
		case marker == 0x01 || marker == 0xd8 || (marker >= 0xd0 && marker <= 0xd7):
			i += 2
			continue
		case marker == 0xda || marker == 0xd9:
			return nil, false
		}

		n := int(binary.BigEndian.Uint16(data[i+2:]))
		if n < 2 || i+2+n > len(data) {
			return nil, false
		}
		seg := data[i+4 : i+2+n]
		if marker == 0xe1 && bytes.HasPrefix(seg, exifHeader) {
			return seg[len(exifHeader):], true
		}
		i += 2 + n
	}
	return nil, false
}

// checkTIFF verifies that every directory and tag value reachable by the EXIF
// decoder lies inside b. A tag whose declared size overflows or runs past the
// end rejects the whole block.
func checkTIFF(b []byte) error {
	if len(b) < 8 {
		return errors.New("tiff header truncated")
	}

	var order binary.ByteOrder
	switch string(b[:4]) {
	case "II*\x00":
		order = binary.LittleEndian
	case "MM\x00*":
		order = binary.BigEndian
	default:
		return errors.New("invalid tiff header")
	}

	first := uint64(order.Uint32(b[4:]))
	if first == 0 {
		return errors.New("no directories")
	}
	w := &ifdWalker{b: b, order: order, seen: make(map[uint64]bool)}
	return w.chain(first)
}

type ifdWalker struct {
	b     []byte
	order binary.ByteOrder
	seen  map[uint64]bool
}

func (w *ifdWalker) chain(off uint64) error {
	for off != 0 {
		next, err := w.dir(off)
		if err != nil {
			return err
		}
		off = next
	}
	return nil
}

// dir checks the directory at off and any sub-directories it points to, and
// returns the offset of the next directory in the chain.
func (w *ifdWalker) dir(off uint64) (uint64, error) {
	if w.seen[off] {
		return 0, fmt.Errorf("directory at %d referenced twice", off)
	}
	if len(w.seen) >= maxIFDs {
		return 0, errors.New("too many directories")
	}
	w.seen[off] = true

	size := uint64(len(w.b))
	if off+2 > size {
		return 0, fmt.Errorf("directory offset %d out of range", off)
	}
	n := uint64(w.order.Uint16(w.b[off:]))
	end := off + 2 + n*12
	if end+4 > size {
		return 0, fmt.Errorf("directory at %d truncated", off)
	}

	for i := uint64(0); i < n; i++ {
		e := w.b[off+2+i*12 : off+14+i*12]
		tag := w.order.Uint16(e)
		typ := w.order.Uint16(e[2:])
		count := uint64(w.order.Uint32(e[4:]))

		unit, ok := tiffTypeSize[typ]
		if !ok {
			return 0, fmt.Errorf("tag %#x has unknown type %d", tag, typ)
		}
		length := unit * count
		if length == 0 || length > math.MaxUint32 || length > size {
			return 0, fmt.Errorf("tag %#x declares %d values of type %d", tag, count, typ)
		}

		value := e[8:12]
		if length > 4 {
			valOff := uint64(w.order.Uint32(e[8:]))
			if valOff+length > size {
				return 0, fmt.Errorf("tag %#x value runs past end", tag)
			}
			value = w.b[valOff : valOff+length]
		}

		if !subIFDTags[tag] {
			continue
		}
		sub, ok := w.firstInt(typ, value)
		if !ok {
			continue
		}
		if sub < 0 {
			return 0, fmt.Errorf("tag %#x points to negative offset", tag)
		}
		// sub-directories are read without following their next pointer
		if _, err := w.dir(uint64(sub)); err != nil {
			return 0, err
		}
	}

	return uint64(w.order.Uint32(w.b[end:])), nil
}

// firstInt decodes the first value of an integer-typed tag. Other types are
// ignored by the decoder when resolving sub-directory pointers.
func (w *ifdWalker) firstInt(typ uint16, value []byte) (int64, bool) {
	switch typ {
	case 1:
		return int64(value[0]), true
	case 3:
		return int64(w.order.Uint16(value)), true
	case 4:
		return int64(w.order.Uint32(value)), true
	case 6:
		return int64(int8(value[0])), true
	case 8:
		return int64(int16(w.order.Uint16(value))), true
	case 9:
		return int64(int32(w.order.Uint32(value))), true
	default:
		return 0, false
	}
}
