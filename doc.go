// Package trail builds a fading ribbon that follows a moving target.
//
// # Overview
//
// A Trail keeps a fixed-capacity history of the target's recent positions
// and turns it into a triangle strip: two vertices per sample, two
// triangles joining each sample to the next. Every vertex carries a
// monotonically increasing age id. The shader uses that id to blend color
// from the head toward the tail and to pull the ribbon's edges together, so
// the trail narrows and fades as it ages.
//
// # Quick Start
//
//	import "github.com/gogpu/trail"
//
//	tr := trail.New(trail.Config{
//		Length:    32,
//		HeadWidth: 0.25,
//		Target:    trail.TargetFunc(ship.Position),
//		Scene:     scene,
//	})
//	tr.Initialize()
//	if err := tr.Attach(); err != nil {
//		return err
//	}
//
//	// once per frame, update phase
//	tr.Update()
//
// # Architecture
//
// The package is organized into:
//   - History: ring buffer of samples with age ids
//   - Topology: per-slot quads kept consistent with the ring
//   - Geometry: vertex attributes (position, edgePosition, uv, nodeID)
//   - Material and Uniforms: the fade shader contract
//   - Trail and Mesh: lifecycle and the renderable handed to a Scene
//
// Backends live in sub-packages: gpu draws the mesh through wgpu, and
// preview rasterizes it on the CPU with gg.
//
// # Cost
//
// Advance is O(1): it rewrites one slot, two vertices and two quads,
// regardless of the trail length. Storage is allocated once in Initialize
// and never reallocated.
//
// # Concurrency
//
// A Trail is driven from a single goroutine. Advance must complete before
// the backend reads the mesh in the same frame.
package trail

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
