package simscene_test

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic/internal/simscene"
)

func TestSceneObjects(t *testing.T) {
	s := simscene.New()
	gt.A(t, s.List()).Length(2)

	cube, err := s.Create(simscene.Object{Name: "Cube", Shape: "cube", Color: "red"})
	gt.NoError(t, err).Required()
	gt.Equal(t, cube.Scale, 1.0)
	gt.Equal(t, cube.Components, []string{"Transform"})

	_, err = s.Create(simscene.Object{Name: "Cube"})
	gt.True(t, errors.Is(err, simscene.ErrObjectExists))

	_, err = s.Create(simscene.Object{})
	gt.Error(t, err)

	moved, err := s.Modify("Cube", func(o *simscene.Object) { o.Position.X = 2 })
	gt.NoError(t, err)
	gt.Equal(t, moved.Position.X, 2.0)

	// returned objects are copies
	moved.Position.X = 100
	found, err := s.Find("Cube")
	gt.NoError(t, err)
	gt.Equal(t, found.Position.X, 2.0)

	names := []string{}
	for _, o := range s.List() {
		names = append(names, o.Name)
	}
	gt.Equal(t, names, []string{"Cube", "Directional Light", "Main Camera"})

	gt.NoError(t, s.Delete("Cube"))
	gt.True(t, errors.Is(s.Delete("Cube"), simscene.ErrObjectNotFound))
	_, err = s.Find("Cube")
	gt.True(t, errors.Is(err, simscene.ErrObjectNotFound))
}

func TestSceneRender(t *testing.T) {
	t.Run("draws objects", func(t *testing.T) {
		s := simscene.New(simscene.WithResolution(100, 80))
		_, err := s.Create(simscene.Object{Name: "Cube", Color: "red"})
		gt.NoError(t, err)

		data, err := s.Render()
		gt.NoError(t, err).Required()

		img, err := png.Decode(bytes.NewReader(data))
		gt.NoError(t, err).Required()
		gt.Equal(t, img.Bounds().Dx(), 100)
		gt.Equal(t, img.Bounds().Dy(), 80)

		r, g, b, _ := img.At(50, 40).RGBA()
		gt.Equal(t, [3]uint32{r >> 8, g >> 8, b >> 8}, [3]uint32{220, 40, 40})
	})

	t.Run("changes with the scene", func(t *testing.T) {
		s := simscene.New()
		before, err := s.Render()
		gt.NoError(t, err)
		_, err = s.Create(simscene.Object{Name: "Sphere", Color: "#00ff00"})
		gt.NoError(t, err)
		after, err := s.Render()
		gt.NoError(t, err)
		gt.False(t, bytes.Equal(before, after))
	})

	t.Run("no camera", func(t *testing.T) {
		s := simscene.New(simscene.WithEmptyScene())
		_, err := s.Render()
		gt.True(t, errors.Is(err, simscene.ErrNoCamera))
	})

	t.Run("play mode required", func(t *testing.T) {
		s := simscene.New(simscene.WithRequirePlayMode())
		_, err := s.Render()
		gt.True(t, errors.Is(err, simscene.ErrNotPlaying))

		gt.True(t, s.TogglePlay())
		_, err = s.Render()
		gt.NoError(t, err)
		gt.False(t, s.TogglePlay())
	})
}
