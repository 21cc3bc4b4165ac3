//go:build !nogpu

// Package gpu draws trails through the gogpu/wgpu HAL.
//
// A Renderer owns the shader modules and render pipelines; pipelines are
// keyed by the material's shader, blending and depth state, so trails that
// share a material share a pipeline. Each mesh gets a MeshResources holding
// its vertex, index and uniform buffers, its texture and its bind group.
//
// # Upload
//
// Vertex and index buffers are allocated once at the mesh's full capacity.
// Upload writes only the vertex and quad ranges the trail marked dirty
// since the previous upload, then clears them. Inactive quads are uploaded
// as degenerate triangles, so DrawIndexed always covers the whole buffer.
//
// # Scene
//
// Scene implements trail.Scene: it creates resources when a mesh is added,
// releases them when the mesh is removed, and records every visible mesh
// into a render pass.
//
// Usage:
//
//	r, err := gpu.NewRendererFromProvider(provider, gpu.Options{})
//	scene := gpu.NewScene(r)
//	tr := trail.New(trail.Config{Length: 64, Scene: scene})
//	tr.Initialize()
//	_ = tr.Attach()
//
//	// draw phase
//	err = scene.Draw(pass, view, projection)
package gpu
