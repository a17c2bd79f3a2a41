package imaging

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// 16MB upload ceiling, enforced by the body-limit middleware and
// re-checked before any model call.
const MaxUploadBytes = 16 << 20

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// DecodeError carries the decoder's own message for the error body.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string { return e.Cause.Error() }

// AllowedFile reports whether the claimed filename has an extension
// from the allowed set. Content is not sniffed, same contract as the
// extension check on the upload form.
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")

	if i < 0 {
		return false
	}

	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

// PrepareJPEG decodes an upload and re-encodes it as an opaque RGB JPEG
// for the model call.
func PrepareJPEG(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))

	if err != nil {
		return nil, &DecodeError{Cause: err}
	}

	var buf bytes.Buffer

	if err := jpeg.Encode(&buf, toOpaque(src), &jpeg.Options{Quality: 90}); err != nil {
		return nil, &DecodeError{Cause: err}
	}

	return buf.Bytes(), nil
}

// jpeg decodes to YCbCr which is already three channel. Everything else
// gets re-rendered onto an opaque white canvas so alpha never reaches
// the encoder.
func toOpaque(src image.Image) image.Image {
	if _, ok := src.(*image.YCbCr); ok {
		return src
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)

	return dst
}
