package scenic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultRenderTool is the reserved tool name used to capture the scene.
const DefaultRenderTool = "render_scene"

const (
	SnapshotOriginal = "original"
	SnapshotModified = "modified"
)

// Snapshot is a captured image of the scene. A snapshot without an image is degraded:
// the render did not produce a readable artifact and Failure says why.
type Snapshot struct {
	Label   string
	Image   *Image
	Path    string
	Failure string
}

// Available reports whether the snapshot carries an image.
func (s *Snapshot) Available() bool {
	return s != nil && s.Image != nil
}

// Attachment is a reference image supplied together with the goal.
type Attachment struct {
	Image       Image
	Description string
}

// PlaceholderDescription is used in place of a vision description when no image could be captured.
func PlaceholderDescription(reason string) string {
	return "[scene unavailable: " + reason + "]"
}

// camera captures snapshots through the render tool of one run's tool channel.
type camera struct {
	channel ToolChannel
	tool    string
	args    map[string]any
	timeout time.Duration
	offered bool
}

func newCamera(ch ToolChannel, tool string, args map[string]any, timeout time.Duration) *camera {
	_, offered := findCapability(ch.Capabilities(), tool)
	return &camera{
		channel: ch,
		tool:    tool,
		args:    args,
		timeout: timeout,
		offered: offered,
	}
}

// Capture returns a degraded snapshot for render problems: a timeout, a failure reported by
// the tool, or an artifact that cannot be read. The error is set only when the tool channel
// itself is lost (ErrTransport); the run cannot continue without it.
func (c *camera) Capture(ctx context.Context, label string) (*Snapshot, error) {
	logger := LoggerFromContext(ctx)
	snap := &Snapshot{Label: label}

	if !c.offered {
		snap.Failure = fmt.Sprintf("render tool %q is not offered by the environment", c.tool)
		return snap, nil
	}

	callCtx, cancel := withOptionalTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.channel.Invoke(callCtx, &ToolInvocation{ToolName: c.tool, Arguments: cloneMap(c.args)})
	if err != nil {
		if errors.Is(err, ErrTransport) {
			return nil, err
		}
		logger.Warn("render request failed", "label", label, "error", err)
		snap.Failure = err.Error()
		return snap, nil
	}
	if result == nil {
		return nil, goerr.Wrap(ErrTransport, "tool channel returned no result", goerr.V("tool", c.tool))
	}
	if !result.Success {
		snap.Failure = fmt.Sprintf("render tool reported failure: %v", result.Payload)
		return snap, nil
	}

	if result.Image != nil {
		snap.Image = result.Image
		return snap, nil
	}

	path := artifactPath(result.Payload)
	if path == "" {
		snap.Failure = "render result carries no image"
		return snap, nil
	}
	snap.Path = path

	img, err := loadImageFile(path)
	if err != nil {
		logger.Warn("render artifact unreadable", "label", label, "path", path, "error", err)
		snap.Failure = err.Error()
		return snap, nil
	}
	snap.Image = &img
	return snap, nil
}

func artifactPath(payload any) string {
	switch p := payload.(type) {
	case string:
		return p
	case map[string]any:
		for _, key := range []string{"path", "image_path", "file", "result"} {
			if s, ok := p[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func loadImageFile(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, goerr.Wrap(ErrRenderFailed, "failed to read render artifact", goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	img, err := NewImage(data)
	if err != nil {
		return Image{}, goerr.Wrap(ErrRenderFailed, "render artifact is not an image", goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	return img, nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
