package editor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	stdhtml "html"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nfnt/resize"

	"github.com/iw2rmb/plume/remote"
)

// MetadataFetcher looks up a link preview.
type MetadataFetcher interface {
	FetchMeta(ctx context.Context, target string) (remote.Meta, error)
}

// ImageUploader stores an encoded image and returns a reference to it.
type ImageUploader interface {
	UploadImage(ctx context.Context, encoding string) (string, error)
}

// MetaCard is a link preview shown beside the content.
type MetaCard struct {
	ID          uuid.UUID
	URL         string
	ImageURL    string
	Title       string
	Description string
}

var stripPolicy = bluemonday.StrictPolicy()

// ScrubHTML reduces markup to its text content.
func ScrubHTML(markup string) string {
	return stdhtml.UnescapeString(stripPolicy.Sanitize(markup))
}

// encodeImage returns data as a data URL and the encoded bytes. A positive
// maxWidth downscales wider PNG and JPEG images; anything that does not
// decode is kept as it is.
func encodeImage(data []byte, mimeType string, maxWidth int) (string, []byte, error) {
	if len(data) == 0 {
		return "", nil, ErrNotImage
	}
	if mimeType == "" {
		_, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrNotImage, err)
		}
		mimeType = "image/" + format
	}
	if maxWidth > 0 {
		if scaled, scaledType, ok := downscale(data, maxWidth); ok {
			data, mimeType = scaled, scaledType
		}
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), data, nil
}

// downscale shrinks a decodable PNG or JPEG wider than maxWidth.
func downscale(data []byte, maxWidth int) ([]byte, string, bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= maxWidth || (format != "png" && format != "jpeg") {
		return nil, "", false
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", false
	}
	small := resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	buf := new(bytes.Buffer)
	if format == "jpeg" {
		if err := jpeg.Encode(buf, small, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", false
		}
		return buf.Bytes(), "image/jpeg", true
	}
	if err := png.Encode(buf, small); err != nil {
		return nil, "", false
	}
	return buf.Bytes(), "image/png", true
}

// pastedImageName names a pasted image after its MIME type.
func pastedImageName(mimeType string) string {
	_, sub, _ := strings.Cut(mimeType, "/")
	sub, _, _ = strings.Cut(sub, "+")
	switch sub {
	case "":
		sub = "png"
	case "jpeg":
		sub = "jpg"
	}
	return "pastedimage." + sub
}
