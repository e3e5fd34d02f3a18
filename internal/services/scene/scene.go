// Package scene models the hero background scene as explicit state:
// one current object (Empty -> Primitive | Model), auto-rotation and a
// parallax-eased orbit target. Rendering stays with the page's 3D
// engine; this only owns the state it renders from.
package scene

import (
	"fmt"
	"math"
	"sync"
)

// Mode is the current-object state.
type Mode string

const (
	ModeEmpty     Mode = "empty"
	ModePrimitive Mode = "primitive"
	ModeModel     Mode = "model"
)

// Tuning constants carried over from the page scene.
const (
	defaultRotationSpeed = 0.01
	modelTargetSize      = 16.0
	cameraFOV            = 60.0
	fitDistanceFactor    = 0.95
	parallaxEase         = 0.05
	parallaxScaleX       = 0.5
	parallaxScaleY       = -0.3
)

var primitiveKinds = map[string]bool{
	"cube":       true,
	"sphere":     true,
	"torus":      true,
	"cylinder":   true,
	"octahedron": true,
}

// Vec3 is a plain 3-component vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Size returns the box extents.
func (b Box3) Size() Vec3 {
	return Vec3{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y, b.Max.Z - b.Min.Z}
}

// Center returns the box center.
func (b Box3) Center() Vec3 {
	return Vec3{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2, (b.Min.Z + b.Max.Z) / 2}
}

// MaxDimension returns the largest extent.
func (b Box3) MaxDimension() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Camera describes the framing the renderer should apply.
type Camera struct {
	Position Vec3    `json:"position"`
	Target   Vec3    `json:"target"`
	FOV      float64 `json:"fov"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
}

// State is a snapshot of the whole scene.
type State struct {
	Mode          Mode    `json:"mode"`
	Primitive     string  `json:"primitive,omitempty"`
	Model         string  `json:"model,omitempty"`
	Rotation      Vec3    `json:"rotation"`
	Position      Vec3    `json:"position"`
	Scale         float64 `json:"scale"`
	RotationSpeed float64 `json:"rotation_speed"`
	AutoRotating  bool    `json:"auto_rotating"`
	OrbitTarget   Vec3    `json:"orbit_target"`
	Camera        Camera  `json:"camera"`
}

// Controller owns the scene state. All transitions go through it; there
// are no ambient globals.
type Controller struct {
	mu           sync.Mutex
	state        State
	targetOrbitX float64
	targetOrbitY float64
}

// NewController starts with an empty scene and the default camera.
func NewController() *Controller {
	return &Controller{
		state: State{
			Mode:          ModeEmpty,
			Scale:         1,
			RotationSpeed: defaultRotationSpeed,
			AutoRotating:  true,
			Camera: Camera{
				Position: Vec3{5, 5, 5},
				FOV:      75,
				Near:     0.1,
				Far:      1000,
			},
		},
	}
}

// SetPrimitive swaps the current object for a primitive shape. Any loaded
// model is dropped as part of the transition.
func (c *Controller) SetPrimitive(kind string) error {
	if !primitiveKinds[kind] {
		return fmt.Errorf("unknown primitive shape: %q", kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Mode = ModePrimitive
	c.state.Primitive = kind
	c.state.Model = ""
	c.state.Rotation = Vec3{}
	c.state.Position = Vec3{}
	c.state.Scale = 1
	return nil
}

// LoadModel swaps in a model, recentering it at the origin and scaling it
// uniformly so its largest dimension matches the target size, then frames
// the camera on it.
func (c *Controller) LoadModel(name string, bounds Box3) error {
	maxDim := bounds.MaxDimension()
	if maxDim <= 0 {
		return fmt.Errorf("model %q has a degenerate bounding box", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	scale := modelTargetSize / maxDim
	center := bounds.Center()

	c.state.Mode = ModeModel
	c.state.Model = name
	c.state.Primitive = ""
	c.state.Rotation = Vec3{}
	c.state.Position = Vec3{-center.X, -center.Y, -center.Z}
	c.state.Scale = scale

	// After scaling the largest dimension equals the target size.
	fitDist := modelTargetSize * fitDistanceFactor
	dir := 1 / math.Sqrt(3)
	c.state.Camera = Camera{
		Position: Vec3{dir * fitDist, dir * fitDist, dir * fitDist},
		Target:   Vec3{},
		FOV:      cameraFOV,
		Near:     fitDist / 100,
		Far:      fitDist * 100,
	}
	return nil
}

// Clear returns the scene to the empty state.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Mode = ModeEmpty
	c.state.Primitive = ""
	c.state.Model = ""
	c.state.Rotation = Vec3{}
	c.state.Position = Vec3{}
	c.state.Scale = 1
}

// SetRotationSpeed adjusts the auto-rotation. Zero or negative stops it.
func (c *Controller) SetRotationSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.RotationSpeed = speed
	c.state.AutoRotating = speed > 0
}

// SetParallaxTarget feeds the normalized mouse position (-1..1 on both
// axes); the orbit target eases toward the scaled offset on each Tick.
func (c *Controller) SetParallaxTarget(nx, ny float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targetOrbitX = nx * parallaxScaleX
	c.targetOrbitY = ny * parallaxScaleY
}

// Tick advances one frame: rotation for the current object and eased
// parallax toward the orbit target.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.AutoRotating {
		switch c.state.Mode {
		case ModePrimitive:
			c.state.Rotation.X += c.state.RotationSpeed
			c.state.Rotation.Y += c.state.RotationSpeed * 1.5
		case ModeModel:
			c.state.Rotation.Y += c.state.RotationSpeed
		}
	}

	c.state.OrbitTarget.X += (c.targetOrbitX - c.state.OrbitTarget.X) * parallaxEase
	c.state.OrbitTarget.Y += (c.targetOrbitY - c.state.OrbitTarget.Y) * parallaxEase
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
