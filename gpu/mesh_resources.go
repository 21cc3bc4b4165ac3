//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trail"
	"github.com/gogpu/wgpu/hal"
)

// ErrNotUploaded is returned by RecordDraw before the first Upload.
var ErrNotUploaded = errors.New("gpu: mesh resources not uploaded")

// MeshResources holds the GPU objects for one trail mesh: vertex, index and
// uniform buffers, the texture and the bind group. Buffers are sized for
// the mesh's full capacity and never reallocated.
type MeshResources struct {
	renderer *Renderer
	mesh     *trail.Mesh

	pipeline   hal.RenderPipeline
	vertBuf    hal.Buffer
	indexBuf   hal.Buffer
	uniformBuf hal.Buffer
	texture    *trailTexture
	bindGroup  hal.BindGroup

	indexCount uint32
	uploaded   bool
	bytesSent  uint64

	vertStaging    []byte
	indexStaging   []byte
	uniformStaging []byte
	indices        []uint32
}

// NewMeshResources creates the GPU objects for m. Nothing is uploaded
// until Upload.
func (r *Renderer) NewMeshResources(m *trail.Mesh) (*MeshResources, error) {
	if m == nil || m.Geometry == nil || m.Topology == nil || m.Material == nil {
		return nil, fmt.Errorf("gpu: incomplete mesh")
	}

	pipeline, err := r.pipelineFor(m.Material)
	if err != nil {
		return nil, err
	}
	layout, sampler, err := r.bindLayout()
	if err != nil {
		return nil, err
	}

	mr := &MeshResources{
		renderer:   r,
		mesh:       m,
		pipeline:   pipeline,
		indexCount: uint32(m.Topology.IndexCount()), //nolint:gosec // bounded by capacity
	}

	if err := mr.createBuffers(); err != nil {
		mr.Destroy()
		return nil, err
	}

	tex, err := uploadTexture(r.device, r.queue, trail.MaterialTexture(m.Material), "trail_texture")
	if err != nil {
		mr.Destroy()
		return nil, err
	}
	mr.texture = tex

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "trail_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: mr.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: tex.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
		},
	})
	if err != nil {
		mr.Destroy()
		return nil, fmt.Errorf("create trail bind group: %w", err)
	}
	mr.bindGroup = bindGroup

	slogger().Debug("gpu: mesh resources created",
		"vertices", m.Geometry.VertexCount(),
		"indices", mr.indexCount)
	return mr, nil
}

func (mr *MeshResources) createBuffers() error {
	device := mr.renderer.device

	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_uniform",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create trail_uniform: %w", err)
	}
	mr.uniformBuf = uniformBuf

	// Zero-capacity trails draw nothing and need no geometry buffers.
	if mr.indexCount == 0 {
		return nil
	}

	vertBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_verts",
		Size:  uint64(mr.mesh.Geometry.VertexCount() * vertexStride), //nolint:gosec // bounded by capacity
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create trail_verts: %w", err)
	}
	mr.vertBuf = vertBuf

	indexBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_indices",
		Size:  uint64(mr.indexCount) * indexStride,
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create trail_indices: %w", err)
	}
	mr.indexBuf = indexBuf
	return nil
}

// Mesh returns the mesh these resources draw.
func (mr *MeshResources) Mesh() *trail.Mesh { return mr.mesh }

// BytesUploaded returns the total number of bytes written to the GPU.
func (mr *MeshResources) BytesUploaded() uint64 { return mr.bytesSent }

// Upload writes the mesh to the GPU and clears its dirty state. The first
// call uploads everything; later calls upload only the vertex and quad
// ranges changed since. Uniforms are written on every call.
func (mr *MeshResources) Upload(u trail.Uniforms) error {
	g, t := mr.mesh.Geometry, mr.mesh.Topology

	if mr.indexCount > 0 {
		switch {
		case !mr.uploaded:
			if err := mr.writeVertices(0, g.VertexCount()); err != nil {
				return err
			}
			if err := mr.writeQuads(0, t.Cap()); err != nil {
				return err
			}
		case mr.mesh.Dirty():
			if first, count, ok := g.DirtyRange(); ok {
				if err := mr.writeVertices(first, count); err != nil {
					return err
				}
			}
			if first, count, ok := t.DirtyQuadRange(); ok {
				if err := mr.writeQuads(first, count); err != nil {
					return err
				}
			}
		}
	}

	mr.uniformStaging = encodeUniforms(mr.uniformStaging, u)
	if err := mr.renderer.queue.WriteBuffer(mr.uniformBuf, 0, mr.uniformStaging); err != nil {
		return fmt.Errorf("write trail uniforms: %w", err)
	}
	mr.bytesSent += uniformSize

	mr.mesh.ClearDirty()
	mr.uploaded = true
	return nil
}

func (mr *MeshResources) writeVertices(first, count int) error {
	mr.vertStaging = encodeVertices(mr.vertStaging, mr.mesh.Geometry, first, count)
	offset := uint64(first * vertexStride) //nolint:gosec // bounded by capacity
	if err := mr.renderer.queue.WriteBuffer(mr.vertBuf, offset, mr.vertStaging); err != nil {
		return fmt.Errorf("write trail vertices: %w", err)
	}
	mr.bytesSent += uint64(len(mr.vertStaging))
	return nil
}

func (mr *MeshResources) writeQuads(first, count int) error {
	mr.indices = mr.mesh.Topology.IndexRange(mr.indices, first, count)
	mr.indexStaging = encodeIndices(mr.indexStaging, mr.indices)
	offset := uint64(first * indicesPerQuad * indexStride) //nolint:gosec // bounded by capacity
	if err := mr.renderer.queue.WriteBuffer(mr.indexBuf, offset, mr.indexStaging); err != nil {
		return fmt.Errorf("write trail indices: %w", err)
	}
	mr.bytesSent += uint64(len(mr.indexStaging))
	return nil
}

// RecordDraw records the mesh into rp. Hidden and zero-capacity meshes
// record nothing.
func (mr *MeshResources) RecordDraw(rp hal.RenderPassEncoder) error {
	if !mr.uploaded {
		return ErrNotUploaded
	}
	if mr.indexCount == 0 || !mr.mesh.Visible {
		return nil
	}
	rp.SetPipeline(mr.pipeline)
	rp.SetBindGroup(0, mr.bindGroup, nil)
	rp.SetVertexBuffer(0, mr.vertBuf, 0)
	rp.SetIndexBuffer(mr.indexBuf, gputypes.IndexFormatUint32, 0)
	rp.DrawIndexed(mr.indexCount, 1, 0, 0, 0)
	return nil
}

// Destroy releases the buffers, texture and bind group. The pipeline is
// owned by the Renderer. Safe to call multiple times.
func (mr *MeshResources) Destroy() {
	device := mr.renderer.device
	if mr.bindGroup != nil {
		device.DestroyBindGroup(mr.bindGroup)
		mr.bindGroup = nil
	}
	mr.texture.destroy(device)
	mr.texture = nil
	for _, buf := range []*hal.Buffer{&mr.uniformBuf, &mr.indexBuf, &mr.vertBuf} {
		if *buf != nil {
			device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
	mr.uploaded = false
}
