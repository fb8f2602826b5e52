// Package images provides prompt image validation, compression, and
// placeholder generation.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	apperrors "github.com/promptvault/promptvault-server/internal/errors"
	"github.com/promptvault/promptvault-server/internal/util"
)

const (
	// MaxDimension is the longest side an uploaded image is scaled down to.
	MaxDimension = 512
	// Quality is the JPEG quality images are re-encoded at (0..1 scale).
	Quality = 0.6
	// MaxUploadBytes caps the raw upload size before decoding.
	MaxUploadBytes = 8 << 20
)

// AllowedMIMETypes lists the content types accepted for upload.
var AllowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Encoded is the result of compressing an upload.
type Encoded struct {
	Data   []byte
	Width  int
	Height int
}

// Validate rejects uploads before any decoding work happens.
func Validate(mimeType string, size int64) error {
	if !AllowedMIMETypes[mimeType] {
		return apperrors.UnsupportedType(fmt.Sprintf("unsupported image type %q", mimeType))
	}
	if size > MaxUploadBytes {
		return apperrors.TooLarge(fmt.Sprintf("image exceeds %d byte limit", MaxUploadBytes))
	}
	return nil
}

// Compress decodes an uploaded image, scales it so its longer side is at
// most maxDimension (never upscaling), and re-encodes it as JPEG.
func Compress(r io.Reader, maxDimension int, quality float64) (*Encoded, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, apperrors.UnsupportedType("could not decode image").WithCause(err)
	}

	img := scaleDown(src, maxDimension)
	bounds := img.Bounds()

	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: int(quality * 100)}
	if err := jpeg.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &Encoded{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// scaleDown resizes an image so its longer side is at most maxDimension,
// preserving aspect ratio. Images already within bounds pass through.
func scaleDown(src image.Image, maxDimension int) image.Image {
	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= maxDimension && srcHeight <= maxDimension {
		return src
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = maxDimension
		dstHeight = (srcHeight * maxDimension) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = maxDimension
		dstWidth = (srcWidth * maxDimension) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

// ObjectKey builds the storage key for an uploaded image:
// {ownerID}/{unixMillis}-{sanitizedName}.jpg. The millisecond timestamp
// keeps repeated uploads of the same file from colliding.
func ObjectKey(ownerID, fileName string, now time.Time) string {
	name := util.SanitizeImageName(fileName)
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("%s/%d-%s.jpg", ownerID, now.UnixMilli(), name)
}
