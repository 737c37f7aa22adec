// Package simscene is a small in-memory 3D scene exposed as an MCP server. It offers the
// same tool surface as the Unity MCP bridge the agent was built against, so that the agent
// can be run and tested without a scene editor.
package simscene

import (
	"errors"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
	ErrNoCamera       = errors.New("no camera in scene")
	ErrNotPlaying     = errors.New("renderer is only active in play mode")
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Object struct {
	Name       string   `json:"name"`
	Shape      string   `json:"shape,omitempty"`
	Color      string   `json:"color,omitempty"`
	Position   Vec3     `json:"position"`
	Scale      float64  `json:"scale"`
	Components []string `json:"components,omitempty"`
}

func (x *Object) hasComponent(component string) bool {
	for _, c := range x.Components {
		if c == component {
			return true
		}
	}
	return false
}

func (x *Object) clone() *Object {
	o := *x
	o.Components = append([]string(nil), x.Components...)
	return &o
}

// Scene holds the objects and the play mode flag. It is safe for concurrent use.
type Scene struct {
	mu      sync.RWMutex
	objects map[string]*Object
	playing bool

	requirePlay bool
	width       int
	height      int
}

type Option func(*Scene)

// WithRequirePlayMode makes render_scene fail unless play mode is on, like the Unity renderer.
func WithRequirePlayMode() Option {
	return func(s *Scene) {
		s.requirePlay = true
	}
}

// WithResolution sets the size of rendered images. Default is 320x240.
func WithResolution(width, height int) Option {
	return func(s *Scene) {
		s.width = width
		s.height = height
	}
}

// WithEmptyScene starts without the default camera and light.
func WithEmptyScene() Option {
	return func(s *Scene) {
		s.objects = map[string]*Object{}
	}
}

// New creates a scene with a main camera and a directional light.
func New(options ...Option) *Scene {
	s := &Scene{
		objects: map[string]*Object{
			"Main Camera": {
				Name:       "Main Camera",
				Position:   Vec3{Y: 1, Z: -10},
				Scale:      1,
				Components: []string{"Transform", "Camera"},
			},
			"Directional Light": {
				Name:       "Directional Light",
				Position:   Vec3{Y: 3},
				Scale:      1,
				Components: []string{"Transform", "Light"},
			},
		},
		width:  320,
		height: 240,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Scene) Create(obj Object) (*Object, error) {
	if obj.Name == "" {
		return nil, goerr.New("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[obj.Name]; ok {
		return nil, goerr.Wrap(ErrObjectExists, "cannot create object", goerr.V("name", obj.Name))
	}
	if obj.Scale == 0 {
		obj.Scale = 1
	}
	if len(obj.Components) == 0 {
		obj.Components = []string{"Transform"}
	}
	o := obj.clone()
	s.objects[o.Name] = o
	return o.clone(), nil
}

func (s *Scene) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[name]; !ok {
		return goerr.Wrap(ErrObjectNotFound, "cannot delete object", goerr.V("name", name))
	}
	delete(s.objects, name)
	return nil
}

func (s *Scene) Find(name string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[name]
	if !ok {
		return nil, goerr.Wrap(ErrObjectNotFound, "cannot find object", goerr.V("name", name))
	}
	return o.clone(), nil
}

// Modify applies fn to the named object under the scene lock.
func (s *Scene) Modify(name string, fn func(o *Object)) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.objects[name]
	if !ok {
		return nil, goerr.Wrap(ErrObjectNotFound, "cannot modify object", goerr.V("name", name))
	}
	fn(o)
	return o.clone(), nil
}

// List returns all objects sorted by name.
func (s *Scene) List() []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Object, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, o.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TogglePlay switches play mode and returns the new state.
func (s *Scene) TogglePlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = !s.playing
	return s.playing
}

func (s *Scene) Playing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}
