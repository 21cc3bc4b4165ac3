//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/trail"
	"github.com/gogpu/wgpu/hal"
)

// Scene is a trail.Scene backed by a Renderer. Meshes are drawn in the
// order they were added.
type Scene struct {
	renderer *Renderer

	mu      sync.Mutex
	entries map[*trail.Mesh]*MeshResources
	order   []*trail.Mesh
}

var _ trail.Scene = (*Scene)(nil)

// NewScene creates an empty scene drawing with r.
func NewScene(r *Renderer) *Scene {
	return &Scene{
		renderer: r,
		entries:  make(map[*trail.Mesh]*MeshResources),
	}
}

// Add creates GPU resources for m. Adding a mesh twice is a no-op.
func (s *Scene) Add(m *trail.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[m]; ok {
		return nil
	}
	mr, err := s.renderer.NewMeshResources(m)
	if err != nil {
		return fmt.Errorf("gpu: add mesh: %w", err)
	}
	s.entries[m] = mr
	s.order = append(s.order, m)
	return nil
}

// Remove releases the resources of m. Unknown meshes are ignored.
func (s *Scene) Remove(m *trail.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mr, ok := s.entries[m]
	if !ok {
		return
	}
	mr.Destroy()
	delete(s.entries, m)
	for i, o := range s.order {
		if o == m {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of meshes in the scene.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Resources returns the GPU resources of m.
func (s *Scene) Resources(m *trail.Mesh) (*MeshResources, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mr, ok := s.entries[m]
	return mr, ok
}

// Prepare uploads every mesh with the given camera. Call it once per frame
// after the trails have advanced and before the render pass is recorded.
func (s *Scene) Prepare(view, projection mgl32.Mat4) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.order {
		if err := s.entries[m].Upload(m.Uniforms(view, projection)); err != nil {
			return err
		}
	}
	return nil
}

// Record records every visible mesh into rp.
func (s *Scene) Record(rp hal.RenderPassEncoder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.order {
		if err := s.entries[m].RecordDraw(rp); err != nil {
			return err
		}
	}
	return nil
}

// Draw is Prepare followed by Record.
func (s *Scene) Draw(rp hal.RenderPassEncoder, view, projection mgl32.Mat4) error {
	if err := s.Prepare(view, projection); err != nil {
		return err
	}
	return s.Record(rp)
}

// Destroy releases every mesh's resources and empties the scene.
func (s *Scene) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.order {
		s.entries[m].Destroy()
	}
	s.entries = make(map[*trail.Mesh]*MeshResources)
	s.order = nil
}
