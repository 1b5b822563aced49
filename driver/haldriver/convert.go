// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package haldriver

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/x448/float16"

	"github.com/gogpu/ggctx/driver"
)

// encodeRows converts h rows of RGBA8 pixels (stride bytes apart) to
// tightly packed rows in format.
func encodeRows(format gputypes.TextureFormat, src []byte, stride, w, h int) []byte {
	bpp := driver.BytesPerPixel(format)
	out := make([]byte, w*h*bpp)
	for y := 0; y < h; y++ {
		row := src[y*stride : y*stride+w*4]
		dst := out[y*w*bpp : (y+1)*w*bpp]
		switch format {
		case gputypes.TextureFormatBGRA8Unorm:
			for x := 0; x < w; x++ {
				i := x * 4
				dst[i], dst[i+1], dst[i+2], dst[i+3] = row[i+2], row[i+1], row[i], row[i+3]
			}
		case gputypes.TextureFormatRGBA16Float:
			for i, c := range row {
				binary.LittleEndian.PutUint16(dst[i*2:], float16.Fromfloat32(float32(c)/255).Bits())
			}
		default:
			copy(dst, row)
		}
	}
	return out
}

// decodeRows converts h rows of format pixels (srcStride bytes apart) to
// RGBA8 rows dstStride bytes apart.
func decodeRows(format gputypes.TextureFormat, src []byte, srcStride int, dst []byte, dstStride, w, h int) {
	for y := 0; y < h; y++ {
		row := src[y*srcStride:]
		out := dst[y*dstStride : y*dstStride+w*4]
		switch format {
		case gputypes.TextureFormatBGRA8Unorm:
			for x := 0; x < w; x++ {
				i := x * 4
				out[i], out[i+1], out[i+2], out[i+3] = row[i+2], row[i+1], row[i], row[i+3]
			}
		case gputypes.TextureFormatRGBA16Float:
			for i := range out {
				v := float16.Frombits(binary.LittleEndian.Uint16(row[i*2:])).Float32()
				out[i] = unorm8(v)
			}
		default:
			copy(out, row[:w*4])
		}
	}
}

func unorm8(v float32) uint8 {
	switch {
	case v <= 0 || math.IsNaN(float64(v)):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
