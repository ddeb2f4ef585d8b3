package png

import (
	"pngdecode/internal/errs"
	"pngdecode/internal/sample"
)

// channelsForColourType returns the sample count per pixel for a
// colour type.
func channelsForColourType(colourType int) int {
	switch colourType {
	case colourGreyscale, colourIndexed:
		return 1
	case colourGreyscaleAlpha:
		return 2
	case colourTruecolour:
		return 3
	case colourTruecolourAlpha:
		return 4
	default:
		return 0
	}
}

// pixelRowToRGBA drives a sample bit reader over one reconstructed
// byte line and appends width RGBA tuples to dest. Scaling is enabled
// for every colour type except indexed.
func pixelRowToRGBA(dest []byte, byteLine []byte, palette []byte, width, bitDepth, colourType int) error {
	scale := colourType != colourIndexed
	samples := sample.NewReader(byteLine, uint(bitDepth), scale)

	for i := 0; i < width; i++ {
		var r, g, b, a byte
		switch colourType {
		case colourTruecolour:
			var err error
			if r, err = samples.Get(); err != nil {
				return err
			}
			if g, err = samples.Get(); err != nil {
				return err
			}
			if b, err = samples.Get(); err != nil {
				return err
			}
			a = 255
		case colourTruecolourAlpha:
			var err error
			if r, err = samples.Get(); err != nil {
				return err
			}
			if g, err = samples.Get(); err != nil {
				return err
			}
			if b, err = samples.Get(); err != nil {
				return err
			}
			if a, err = samples.Get(); err != nil {
				return err
			}
		case colourGreyscale:
			s, err := samples.Get()
			if err != nil {
				return err
			}
			r, g, b, a = s, s, s, 255
		case colourGreyscaleAlpha:
			s, err := samples.Get()
			if err != nil {
				return err
			}
			av, err := samples.Get()
			if err != nil {
				return err
			}
			r, g, b, a = s, s, s, av
		case colourIndexed:
			idx, err := samples.Get()
			if err != nil {
				return err
			}
			if int(idx)*3+2 >= len(palette) {
				return errs.Validation("palette index %d out of range", idx)
			}
			r = palette[int(idx)*3]
			g = palette[int(idx)*3+1]
			b = palette[int(idx)*3+2]
			a = 255
		default:
			return errs.Validation("invalid colour type %d", colourType)
		}
		dest[i*4+0] = r
		dest[i*4+1] = g
		dest[i*4+2] = b
		dest[i*4+3] = a
	}
	return nil
}
