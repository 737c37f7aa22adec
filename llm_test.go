package scenic_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
)

func TestNewImage(t *testing.T) {
	png := testPNG(t)

	t.Run("detect png", func(t *testing.T) {
		img, err := scenic.NewImage(png.Data())
		gt.NoError(t, err)
		gt.Equal(t, img.MimeType(), string(scenic.ImageMimeTypePNG))
	})

	t.Run("detect jpeg", func(t *testing.T) {
		data := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 16)...)
		img, err := scenic.NewImage(data)
		gt.NoError(t, err)
		gt.Equal(t, img.MimeType(), string(scenic.ImageMimeTypeJPEG))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := scenic.NewImage([]byte("definitely not an image"))
		gt.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := scenic.NewImage([]byte{0x89})
		gt.Error(t, err)
	})

	t.Run("explicit mime type", func(t *testing.T) {
		img, err := scenic.NewImage([]byte("raw"), scenic.WithMimeType(scenic.ImageMimeTypeWebP))
		gt.NoError(t, err)
		gt.Equal(t, img.MimeType(), string(scenic.ImageMimeTypeWebP))

		_, err = scenic.NewImage(png.Data(), scenic.WithMimeType("image/bmp"))
		gt.Error(t, err)
	})

	t.Run("base64 round trip", func(t *testing.T) {
		img, err := scenic.NewImageFromBase64(base64.StdEncoding.EncodeToString(png.Data()))
		gt.NoError(t, err)
		gt.Equal(t, img.Base64(), png.Base64())

		_, err = scenic.NewImageFromBase64("!!!")
		gt.Error(t, err)
	})

	t.Run("reader", func(t *testing.T) {
		img, err := scenic.NewImageFromReader(bytes.NewReader(png.Data()))
		gt.NoError(t, err)
		gt.Equal(t, img.String(), png.String())
	})
}

func TestSessionConfig(t *testing.T) {
	cfg := scenic.NewSessionConfig()
	gt.Equal(t, cfg.ContentType(), scenic.ContentTypeText)
	gt.Equal(t, cfg.SystemPrompt(), "")

	cfg = scenic.NewSessionConfig(
		scenic.WithSessionSystemPrompt("be brief"),
		scenic.WithSessionContentType(scenic.ContentTypeJSON),
	)
	gt.Equal(t, cfg.ContentType(), scenic.ContentTypeJSON)
	gt.Equal(t, cfg.SystemPrompt(), "be brief")
}
