package services

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// MaxImageSide bounds both dimensions of a processed item photo.
const MaxImageSide = 1024

type ImageOptions struct {
	LowerThreshold         uint8
	UpperThreshold         uint8
	CentralProtectionRatio float64
}

var DefaultImageOptions = ImageOptions{
	LowerThreshold:         200,
	UpperThreshold:         240,
	CentralProtectionRatio: 0.5,
}

// ProcessItemImage orients, downsizes and whitens the background of an item photo.
// The result is always PNG.
func ProcessItemImage(imageBytes []byte, opts ImageOptions) ([]byte, error) {
	if opts.LowerThreshold >= opts.UpperThreshold {
		return nil, fmt.Errorf("lowerThreshold must be less than upperThreshold")
	}
	if opts.CentralProtectionRatio < 0.0 || opts.CentralProtectionRatio > 1.0 {
		return nil, fmt.Errorf("centralProtectionRatio must be between 0.0 and 1.0")
	}

	img, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() > MaxImageSide || b.Dy() > MaxImageSide {
		img = imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.Lanczos)
	}

	out := whitenBackground(imaging.Clone(img), opts)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image to png: %w", err)
	}
	return buf.Bytes(), nil
}

// whitenBackground blends bright pixels outside the protected center towards white.
func whitenBackground(img *image.NRGBA, opts ImageOptions) *image.NRGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	protectedWidth := int(float64(width) * opts.CentralProtectionRatio)
	protectedHeight := int(float64(height) * opts.CentralProtectionRatio)
	x0 := (width - protectedWidth) / 2
	y0 := (height - protectedHeight) / 2
	x1 := x0 + protectedWidth
	y1 := y0 + protectedHeight

	lower := float64(opts.LowerThreshold)
	upper := float64(opts.UpperThreshold)
	transition := upper - lower

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= x0 && x < x1 && y >= y0 && y < y1 {
				continue
			}
			i := y*img.Stride + x*4
			px := img.Pix[i : i+3 : i+3]
			luminance := 0.299*float64(px[0]) + 0.587*float64(px[1]) + 0.114*float64(px[2])
			switch {
			case luminance <= lower:
			case luminance >= upper:
				px[0], px[1], px[2] = 255, 255, 255
			default:
				f := (luminance - lower) / transition
				for c := range px {
					px[c] = uint8(math.Round(float64(px[c])*(1-f) + 255*f))
				}
			}
		}
	}
	return img
}
