package enrichment

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"
)

// downscale fits the image within maxDimension on its longest side.
// Images already within bounds, formats the encoder cannot write, and bytes
// that fail to decode are returned unchanged; the vision service reports on
// those itself.
func downscale(data []byte, ext string, maxDimension int, logger *slog.Logger) ([]byte, error) {
	if maxDimension <= 0 {
		return data, nil
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		logger.Debug("skipping preflight for unsupported format", "ext", ext)
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		logger.Warn("preflight decode failed, sending original bytes", "error", err)
		return data, nil
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return data, nil
	}

	resized := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	logger.Debug("downscaled image",
		"from_width", bounds.Dx(), "from_height", bounds.Dy(),
		"to_width", resized.Bounds().Dx(), "to_height", resized.Bounds().Dy())
	return buf.Bytes(), nil
}
