//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/trail"
)

// vertexStride is the byte stride per vertex in the trail pipeline.
// Layout per vertex:
//
//	position     (vec3<f32>) = 12 bytes (location 0)
//	edgePosition (vec3<f32>) = 12 bytes (location 1)
//	uv           (vec2<f32>) = 8 bytes  (location 2)
//	nodeID       (i32)       = 4 bytes  (location 3)
//
// Total = 36 bytes per vertex.
const vertexStride = 36

// indexStride is the byte size of one uint32 index.
const indexStride = 4

// indicesPerQuad is the number of indices emitted per quad.
const indicesPerQuad = 6

// uniformSize is the byte size of the Uniforms block in trail.wgsl:
// three mat4x4 (192), two vec4 (32), five scalars (20), padding to 256.
const uniformSize = 256

// vertexLayout returns the vertex buffer layout for the trail pipeline.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // edgePosition
				{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2}, // uv
				{Format: gputypes.VertexFormatSint32, Offset: 32, ShaderLocation: 3},    // nodeID
			},
		},
	}
}

// encodeVertices packs vertices [first, first+count) of g into buf,
// growing it as needed, and returns it.
func encodeVertices(buf []byte, g *trail.Geometry, first, count int) []byte {
	need := count * vertexStride
	if cap(buf) < need {
		buf = make([]byte, need)
	}
	buf = buf[:need]

	pos, edge, uvs, ids := g.Positions(), g.EdgePositions(), g.UVs(), g.NodeIDs()
	for i := 0; i < count; i++ {
		v := first + i
		out := buf[i*vertexStride : (i+1)*vertexStride]
		putVec3(out[0:12], pos[v])
		putVec3(out[12:24], edge[v])
		putFloat(out[24:28], uvs[v].X())
		putFloat(out[28:32], uvs[v].Y())
		binary.LittleEndian.PutUint32(out[32:36], uint32(ids[v])) //nolint:gosec // bit pattern of a signed id
	}
	return buf
}

// encodeIndices converts indices to little-endian bytes.
func encodeIndices(buf []byte, indices []uint32) []byte {
	need := len(indices) * indexStride
	if cap(buf) < need {
		buf = make([]byte, need)
	}
	buf = buf[:need]
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*indexStride:], idx)
	}
	return buf
}

// encodeUniforms packs u into the 256-byte uniform block.
// mgl32 matrices are column-major, matching WGSL mat4x4 layout.
func encodeUniforms(buf []byte, u trail.Uniforms) []byte {
	if cap(buf) < uniformSize {
		buf = make([]byte, uniformSize)
	}
	buf = buf[:uniformSize]
	clear(buf)

	putMat4(buf[0:64], u.Model)
	putMat4(buf[64:128], u.View)
	putMat4(buf[128:192], u.Projection)
	putVec4(buf[192:208], u.HeadColor)
	putVec4(buf[208:224], u.TailColor)
	putFloat(buf[224:228], u.TrailLength)
	binary.LittleEndian.PutUint32(buf[228:232], uint32(u.MinID)) //nolint:gosec // bit pattern of a signed id
	binary.LittleEndian.PutUint32(buf[232:236], uint32(u.MaxID)) //nolint:gosec // bit pattern of a signed id
	binary.LittleEndian.PutUint32(buf[236:240], uint32(u.FadeMode))
	putFloat(buf[240:244], u.AlphaCutoff)
	return buf
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func putVec3(b []byte, v mgl32.Vec3) {
	putFloat(b[0:4], v[0])
	putFloat(b[4:8], v[1])
	putFloat(b[8:12], v[2])
}

func putVec4(b []byte, v mgl32.Vec4) {
	for i := 0; i < 4; i++ {
		putFloat(b[i*4:], v[i])
	}
}

func putMat4(b []byte, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		putFloat(b[i*4:], m[i])
	}
}
