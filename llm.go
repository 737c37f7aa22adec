package scenic

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
)

// LLMClient is a client for each LLM service. Reasoner and Vision open a fresh
// session per call, so an LLMClient must be safe for concurrent use.
type LLMClient interface {
	NewSession(ctx context.Context, options ...SessionOption) (Session, error)
}

// Session is a single request/response exchange with an LLM.
type Session interface {
	GenerateContent(ctx context.Context, input ...Input) (*Response, error)
}

type FunctionCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Response is a general response type for each LLM provider.
type Response struct {
	Texts         []string
	FunctionCalls []*FunctionCall
	InputToken    int
	OutputToken   int
}

func (r *Response) HasData() bool {
	return len(r.Texts) > 0 || len(r.FunctionCalls) > 0
}

// ContentType is the expected format of the generated content.
type ContentType string

const (
	ContentTypeText ContentType = "text"
	ContentTypeJSON ContentType = "json"
)

// SessionConfig is the resolved configuration of a session. Provider packages read it
// through the accessor methods.
type SessionConfig struct {
	systemPrompt string
	contentType  ContentType
}

func (c SessionConfig) SystemPrompt() string     { return c.systemPrompt }
func (c SessionConfig) ContentType() ContentType { return c.contentType }

type SessionOption func(*SessionConfig)

// NewSessionConfig applies options over the defaults (text output, no system prompt).
func NewSessionConfig(options ...SessionOption) SessionConfig {
	cfg := SessionConfig{contentType: ContentTypeText}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

func WithSessionSystemPrompt(prompt string) SessionOption {
	return func(c *SessionConfig) {
		c.systemPrompt = prompt
	}
}

// WithSessionContentType requests structured output. Providers that support a JSON
// response mode enable it; the others receive the instruction in the prompt only.
func WithSessionContentType(contentType ContentType) SessionOption {
	return func(c *SessionConfig) {
		c.contentType = contentType
	}
}

type Input interface {
	isInput() restrictedValue
	LogValue() slog.Value
	String() string
}

type restrictedValue struct{}

// Text is a text input as prompt.
type Text string

func (t Text) isInput() restrictedValue {
	return restrictedValue{}
}

func (t Text) LogValue() slog.Value {
	return slog.StringValue(string(t))
}

func (t Text) String() string {
	return string(t)
}

// ImageMimeType represents supported MIME types for images
type ImageMimeType string

const (
	ImageMimeTypeJPEG ImageMimeType = "image/jpeg"
	ImageMimeTypePNG  ImageMimeType = "image/png"
	ImageMimeTypeGIF  ImageMimeType = "image/gif"
	ImageMimeTypeWebP ImageMimeType = "image/webp"
)

// Image is an image input for LLM. Scene snapshots and goal attachments are both carried as Image.
type Image struct {
	data     []byte
	mimeType ImageMimeType
}

func (i Image) isInput() restrictedValue {
	return restrictedValue{}
}

func (i Image) LogValue() slog.Value {
	return slog.StringValue(i.String())
}

func (i Image) String() string {
	return fmt.Sprintf("image (%d bytes, %s)", len(i.data), i.mimeType)
}

// Data returns the image data as bytes
func (i Image) Data() []byte {
	return i.data
}

// MimeType returns the MIME type of the image
func (i Image) MimeType() string {
	return string(i.mimeType)
}

// Base64 returns the base64 encoded string of the image data
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.data)
}

func detectImageMimeType(data []byte) (ImageMimeType, error) {
	if len(data) < 12 {
		return "", goerr.New("data too short to detect format")
	}

	switch {
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return ImageMimeTypeJPEG, nil
	case bytes.Equal(data[:8], []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return ImageMimeTypePNG, nil
	case bytes.Equal(data[:6], []byte("GIF87a")), bytes.Equal(data[:6], []byte("GIF89a")):
		return ImageMimeTypeGIF, nil
	case bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return ImageMimeTypeWebP, nil
	}

	return "", goerr.New("unsupported image format")
}

// IsValidImageMimeType checks if the MIME type is supported
func IsValidImageMimeType(mimeType ImageMimeType) bool {
	switch mimeType {
	case ImageMimeTypeJPEG, ImageMimeTypePNG, ImageMimeTypeGIF, ImageMimeTypeWebP:
		return true
	default:
		return false
	}
}

const maxImageSize = 20 * 1024 * 1024 // 20MB

type ImageOption func(*imageConfig) error

type imageConfig struct {
	mimeType ImageMimeType
}

// WithMimeType explicitly sets the MIME type
func WithMimeType(mimeType ImageMimeType) ImageOption {
	return func(cfg *imageConfig) error {
		if !IsValidImageMimeType(mimeType) {
			return goerr.New("unsupported image format", goerr.V("mime_type", string(mimeType)))
		}
		cfg.mimeType = mimeType
		return nil
	}
}

// NewImage creates a new Image with automatic MIME type detection by default
func NewImage(data []byte, opts ...ImageOption) (Image, error) {
	cfg := &imageConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Image{}, err
		}
	}

	if cfg.mimeType == "" {
		detected, err := detectImageMimeType(data)
		if err != nil {
			return Image{}, err
		}
		cfg.mimeType = detected
	}

	if len(data) > maxImageSize {
		return Image{}, goerr.New("image size exceeds maximum limit", goerr.V("size", len(data)), goerr.V("max_size", maxImageSize))
	}

	return Image{
		data:     data,
		mimeType: cfg.mimeType,
	}, nil
}

// NewImageFromReader creates a new Image from io.Reader
func NewImageFromReader(r io.Reader, opts ...ImageOption) (Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Image{}, goerr.Wrap(err, "failed to read image data")
	}
	return NewImage(data, opts...)
}

// NewImageFromBase64 decodes inline image data as sent by tool servers and API clients.
func NewImageFromBase64(encoded string, opts ...ImageOption) (Image, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Image{}, goerr.Wrap(err, "failed to decode base64 image")
	}
	return NewImage(data, opts...)
}
