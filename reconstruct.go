package png

import "pngdecode/internal/errs"

// reconstructImage runs the filter reconstructor and pixel converter
// over the decompressed filtered payload, producing the final RGBA
// buffer.
func reconstructImage(filtered, palette []byte, h header) ([]byte, error) {
	width, height := int(h.width), int(h.height)
	bitDepth := int(h.bitDepth)
	colourType := int(h.colourType)

	channels := channelsForColourType(colourType)
	if channels == 0 {
		return nil, errs.Validation("invalid colour type %d", colourType)
	}
	lineLen := byteLineLength(width, channels, bitDepth)
	bpp := bytesPerPixel(channels, bitDepth)

	rowStride := 1 + lineLen
	if len(filtered) < rowStride*height {
		return nil, errs.Structural("not enough pixel data")
	}

	prev := make([]byte, lineLen)
	cur := make([]byte, lineLen)
	out := make([]byte, height*width*4)

	for y := 0; y < height; y++ {
		rowStart := y * rowStride
		filterType := filtered[rowStart]
		copy(cur, filtered[rowStart+1:rowStart+1+lineLen])

		if err := reconstructRow(filterType, cur, prev, bpp); err != nil {
			return nil, err
		}
		if err := pixelRowToRGBA(out[y*width*4:(y+1)*width*4], cur, palette, width, bitDepth, colourType); err != nil {
			return nil, err
		}

		prev, cur = cur, prev
	}
	return out, nil
}
