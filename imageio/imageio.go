// Package imageio converts between image files and helix grayscale grids.
//
// Decoding accepts PNG, JPEG, GIF and BMP. Colour images are reduced to 8-bit luminance;
// grayscale sources (including gray-palette BMPs) are copied exactly so ciphertext images
// survive a file round trip unchanged.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/utils"
)

// Format is an output file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// MaxPixels bounds the declared canvas of any decoded image (8192x8192).
const MaxPixels = 1 << 26

var (
	// ErrUnsupportedFormat is returned for output formats other than PNG and BMP.
	ErrUnsupportedFormat = errors.New("imageio: unsupported output format")
	// ErrImageTooLarge is returned when an image header declares more pixels than allowed.
	ErrImageTooLarge = errors.New("imageio: image too large")
)

// Decode reads an image and returns its luminance grid and the source format name.
// When maxDim > 0, images larger than maxDim on either side are downscaled to fit,
// keeping the aspect ratio.
func Decode(r io.Reader, maxDim int) (*helix.Grid, string, error) {
	img, format, err := decodeBounded(r, 0)
	if err != nil {
		return nil, "", err
	}
	g, err := ToGrid(img, maxDim)
	if err != nil {
		return nil, "", err
	}
	return g, format, nil
}

// DecodeExact reads an image without resampling. When maxDim > 0, images larger than
// maxDim on either side are rejected with ErrImageTooLarge before any pixel is decoded.
func DecodeExact(r io.Reader, maxDim int) (*helix.Grid, string, error) {
	img, format, err := decodeBounded(r, maxDim)
	if err != nil {
		return nil, "", err
	}
	g, err := ToGrid(img, 0)
	if err != nil {
		return nil, "", err
	}
	return g, format, nil
}

// decodeBounded checks the header dimensions against MaxPixels and maxSide, then
// decodes the full image.
func decodeBounded(r io.Reader, maxSide int) (image.Image, string, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", fmt.Errorf("imageio: decode: %w", err)
	}
	if err := checkBounds(cfg.Width, cfg.Height, maxSide); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, "", fmt.Errorf("imageio: decode: %w", err)
	}
	return img, format, nil
}

func checkBounds(w, h, maxSide int) error {
	n, err := utils.SafeMultiply(w, h)
	if err != nil || n > MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, w, h, MaxPixels)
	}
	if maxSide > 0 && (w > maxSide || h > maxSide) {
		return fmt.Errorf("%w: %dx%d exceeds %d per side", ErrImageTooLarge, w, h, maxSide)
	}
	return nil
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(data []byte, maxDim int) (*helix.Grid, string, error) {
	return Decode(bytes.NewReader(data), maxDim)
}

// ToGrid converts img to a grayscale grid, downscaling first when maxDim > 0.
func ToGrid(img image.Image, maxDim int) (*helix.Grid, error) {
	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Bilinear)
		b = img.Bounds()
	}

	w, h := b.Dx(), b.Dy()
	n, err := utils.SafeMultiply(w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d: %v", helix.ErrShapeMismatch, w, h, err)
	}
	pix, err := utils.SafeMakeByteSlice(n, utils.MaxPayloadLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d: %v", helix.ErrShapeMismatch, w, h, err)
	}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pix[y*w:(y+1)*w], src.Pix[off:off+w])
		}
	case *image.Paletted:
		lut, ok := grayPalette(src.Palette)
		if !ok {
			luminance(pix, img)
			break
		}
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x, idx := range src.Pix[off : off+w] {
				pix[y*w+x] = lut[idx]
			}
		}
	default:
		luminance(pix, img)
	}
	return helix.NewGrid(w, h, pix)
}

// luminance fills pix with the grayscale rendering of img.
func luminance(pix []byte, img image.Image) {
	f := gift.New(gift.Grayscale())
	dst := image.NewGray(f.Bounds(img.Bounds()))
	f.Draw(dst, img)
	copy(pix, dst.Pix)
}

// grayPalette returns palette index -> gray level when every entry is neutral gray.
func grayPalette(p color.Palette) ([256]byte, bool) {
	var lut [256]byte
	if len(p) > len(lut) {
		return lut, false
	}
	for i, c := range p {
		r, g, b, _ := c.RGBA()
		if r != g || g != b {
			return lut, false
		}
		lut[i] = byte(r >> 8)
	}
	return lut, true
}

// ToImage returns g as an *image.Gray sharing no memory with g.
func ToImage(g *helix.Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Pix)
	return img
}

// Encode writes g in the given format.
func Encode(w io.Writer, g *helix.Grid, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, ToImage(g))
	case FormatBMP:
		return bmp.Encode(w, ToImage(g))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// EncodePNG writes g as an 8-bit grayscale PNG.
func EncodePNG(w io.Writer, g *helix.Grid) error {
	return Encode(w, g, FormatPNG)
}

// FormatFromPath picks the output format from a file extension. Anything but .bmp is PNG.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".bmp") {
		return FormatBMP
	}
	return FormatPNG
}

// ReadFile decodes the image at path.
func ReadFile(path string, maxDim int) (*helix.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, _, err := Decode(f, maxDim)
	return g, err
}

// WriteFile encodes g to path in the format implied by its extension.
func WriteFile(path string, g *helix.Grid) error {
	var buf bytes.Buffer
	if err := Encode(&buf, g, FormatFromPath(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
