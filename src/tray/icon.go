package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const iconSize = 16

var (
	iconOnce sync.Once
	iconData []byte
)

// Icon returns the tray icon as an ICO container holding a single PNG
// frame. Built on first use so the binary ships no asset files.
func Icon() []byte {
	iconOnce.Do(func() { iconData = buildIcon() })
	return iconData
}

func buildIcon() []byte {
	var frame bytes.Buffer
	if err := png.Encode(&frame, drawGlyph()); err != nil {
		return nil
	}

	// ICONDIR, one ICONDIRENTRY, then the frame. PNG frames inside ICO
	// are understood by Windows Vista and later.
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(&out, binary.LittleEndian, uint16(1)) // resource type: icon
	binary.Write(&out, binary.LittleEndian, uint16(1)) // image count
	out.WriteByte(iconSize)
	out.WriteByte(iconSize)
	out.WriteByte(0) // no palette
	out.WriteByte(0) // reserved
	binary.Write(&out, binary.LittleEndian, uint16(1))  // color planes
	binary.Write(&out, binary.LittleEndian, uint16(32)) // bits per pixel
	binary.Write(&out, binary.LittleEndian, uint32(frame.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(6+16)) // frame offset
	out.Write(frame.Bytes())
	return out.Bytes()
}

// drawGlyph paints the dashed selection rectangle used as the app mark.
func drawGlyph() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	border := color.RGBA{R: 0x00, G: 0x78, B: 0xD4, A: 0xFF}
	accent := color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}

	for i := 2; i <= 13; i += 2 {
		img.SetRGBA(i, 2, border)
		img.SetRGBA(i, 13, border)
		img.SetRGBA(2, i, border)
		img.SetRGBA(13, i, border)
	}
	for y := 9; y <= 11; y++ {
		for x := 9; x <= 11; x++ {
			img.SetRGBA(x, y, accent)
		}
	}
	return img
}
