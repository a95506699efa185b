// Package images prepares avatar uploads for storage.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"sync"

	"golang.org/x/image/draw"
)

// AvatarSize is the edge length avatars are normalized to.
const AvatarSize = 150

// ResizeAvatar decodes an uploaded image and rescales it to
// AvatarSize x AvatarSize, re-encoded as PNG.
func ResizeAvatar(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	defaultOnce   sync.Once
	defaultAvatar []byte
)

// DefaultAvatar returns the placeholder PNG served for users without an
// uploaded avatar. Generated once per process.
func DefaultAvatar() []byte {
	defaultOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
		bg := color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
		fg := color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}

		// Flat background with a centered disc, the usual anonymous-head
		// stand-in without shipping a binary asset.
		center := AvatarSize / 2
		radius := AvatarSize / 3
		for y := 0; y < AvatarSize; y++ {
			for x := 0; x < AvatarSize; x++ {
				dx, dy := x-center, y-center
				if dx*dx+dy*dy <= radius*radius {
					img.Set(x, y, fg)
				} else {
					img.Set(x, y, bg)
				}
			}
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			// Cannot fail for a valid in-memory RGBA; keep nil and let the
			// handler 500 if it somehow does.
			return
		}
		defaultAvatar = buf.Bytes()
	})
	return defaultAvatar
}
