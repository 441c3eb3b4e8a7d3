package attachments

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// MaxPixels caps the decoded size of an uploaded image.
const MaxPixels = 50_000_000

var acceptedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ParseDataURL splits a base64 data URL into its bytes and declared MIME type.
func ParseDataURL(value string) ([]byte, string, error) {
	raw := strings.TrimSpace(value)
	if !strings.HasPrefix(raw, "data:") {
		return nil, "", fmt.Errorf("%w: missing data url prefix", ErrInvalidImagePayload)
	}
	comma := strings.Index(raw, ",")
	if comma < 0 {
		return nil, "", fmt.Errorf("%w: missing data url payload", ErrInvalidImagePayload)
	}

	meta := raw[len("data:"):comma]
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, "", fmt.Errorf("%w: data url must be base64", ErrInvalidImagePayload)
	}
	mime := strings.TrimSpace(meta[:len(meta)-len(";base64")])

	data, err := base64.StdEncoding.DecodeString(raw[comma+1:])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidImagePayload, err)
	}
	return data, mime, nil
}

// normalize decodes raw, fits it inside maxWidth×maxHeight on a white
// background and re-encodes it as JPEG.
func normalize(raw []byte, mimeHint string, maxWidth, maxHeight, quality int) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImagePayload)
	}
	if mimeHint != "" && !strings.HasPrefix(strings.ToLower(mimeHint), "image/") {
		return nil, fmt.Errorf("%w: declared type %s", ErrInvalidImagePayload, mimeHint)
	}

	detected := http.DetectContentType(raw)
	if !accepted(detected) {
		return nil, fmt.Errorf("%w: detected type %s", ErrInvalidImagePayload, detected)
	}

	if err := checkDimensions(raw); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, webpErr := webp.Decode(bytes.NewReader(raw))
		if webpErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidImagePayload, err)
		}
		img = decoded
	}

	src := img.Bounds()
	if src.Dx() <= 0 || src.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image bounds", ErrInvalidImagePayload)
	}

	width, height := fit(src.Dx(), src.Dy(), maxWidth, maxHeight)
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	stddraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, stddraw.Src)
	xdraw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), img, src, stddraw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

// checkDimensions reads only the image header and rejects images whose
// pixel count exceeds MaxPixels.
func checkDimensions(raw []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		webpCfg, webpErr := webp.DecodeConfig(bytes.NewReader(raw))
		if webpErr != nil {
			return fmt.Errorf("%w: %w", ErrInvalidImagePayload, err)
		}
		cfg = webpCfg
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image bounds", ErrInvalidImagePayload)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImagePayload, cfg.Width, cfg.Height, MaxPixels)
	}
	return nil
}

// fit scales width×height down to fit the bounds, keeping the aspect ratio.
// Images already inside the bounds keep their size.
func fit(width, height, maxWidth, maxHeight int) (int, int) {
	if maxWidth <= 0 || maxHeight <= 0 || (width <= maxWidth && height <= maxHeight) {
		return width, height
	}

	scale := min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := max(1, int(math.Round(float64(width)*scale)))
	h := max(1, int(math.Round(float64(height)*scale)))
	return w, h
}

func accepted(mime string) bool {
	for _, t := range acceptedTypes {
		if t == mime {
			return true
		}
	}
	return false
}
