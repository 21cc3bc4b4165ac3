//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/trail"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoDevice is returned when a renderer is created without a device.
var ErrNoDevice = errors.New("gpu: no device")

// Options configures the render targets a Renderer draws into.
type Options struct {
	// ColorFormat is the color attachment format.
	// Default: gputypes.TextureFormatBGRA8Unorm.
	ColorFormat gputypes.TextureFormat

	// DepthFormat is the depth attachment format. Ignored by materials
	// with DepthTest disabled. Default: gputypes.TextureFormatDepth24Plus.
	DepthFormat gputypes.TextureFormat

	// SampleCount is the MSAA sample count. Default: 1.
	SampleCount uint32

	// ShaderFormat selects the source handed to the backend.
	ShaderFormat ShaderFormat
}

func (o Options) withDefaults() Options {
	if o.ColorFormat == gputypes.TextureFormatUndefined {
		o.ColorFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if o.DepthFormat == gputypes.TextureFormatUndefined {
		o.DepthFormat = gputypes.TextureFormatDepth24Plus
	}
	if o.SampleCount == 0 {
		o.SampleCount = 1
	}
	return o
}

// pipelineKey identifies a render pipeline variant.
type pipelineKey struct {
	shader     string
	blending   trail.Blending
	depthTest  bool
	depthWrite bool
}

func keyFor(m *trail.Material) pipelineKey {
	return pipelineKey{
		shader:     m.Shader,
		blending:   m.Blending,
		depthTest:  m.DepthTest,
		depthWrite: m.DepthWrite,
	}
}

// Renderer owns the trail shader modules, bind group layout, sampler and
// pipelines for one device. It is safe for concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	opts   Options

	mu            sync.Mutex
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	sampler       hal.Sampler
	shaders       map[string]hal.ShaderModule
	pipelines     map[pipelineKey]hal.RenderPipeline
}

// NewRenderer creates a renderer on device and queue. Shared objects are
// created lazily on first use.
func NewRenderer(device hal.Device, queue hal.Queue, opts Options) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	return &Renderer{
		device:    device,
		queue:     queue,
		opts:      opts.withDefaults(),
		shaders:   make(map[string]hal.ShaderModule),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}, nil
}

// NewRendererFromProvider creates a renderer on a device shared by an
// external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
// When it also implements gpucontext.DeviceProvider and opts.ColorFormat is
// unset, the provider's surface format is used.
func NewRendererFromProvider(provider any, opts Options) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	if dp, ok := provider.(gpucontext.DeviceProvider); ok && opts.ColorFormat == gputypes.TextureFormatUndefined {
		opts.ColorFormat = dp.SurfaceFormat()
		slogger().Debug("gpu: using provider surface format", "format", opts.ColorFormat)
	}
	return NewRenderer(device, queue, opts)
}

// Device returns the renderer's device.
func (r *Renderer) Device() hal.Device { return r.device }

// Queue returns the renderer's queue.
func (r *Renderer) Queue() hal.Queue { return r.queue }

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// PipelineCount returns the number of pipeline variants created so far.
func (r *Renderer) PipelineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pipelines)
}

// Destroy releases all GPU objects owned by the renderer. Mesh resources
// created from it must be destroyed first. Safe to call multiple times.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, p := range r.pipelines {
		r.device.DestroyRenderPipeline(p)
		delete(r.pipelines, k)
	}
	for k, s := range r.shaders {
		r.device.DestroyShaderModule(s)
		delete(r.shaders, k)
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.uniformLayout != nil {
		r.device.DestroyBindGroupLayout(r.uniformLayout)
		r.uniformLayout = nil
	}
}

// pipelineFor returns the pipeline for m, creating it on first use.
func (r *Renderer) pipelineFor(m *trail.Material) (hal.RenderPipeline, error) {
	if m.Shader == "" {
		return nil, ErrShaderEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyFor(m)
	if p, ok := r.pipelines[key]; ok {
		return p, nil
	}
	if err := r.ensureLayouts(); err != nil {
		return nil, err
	}
	shader, err := r.shaderFor(m.Shader)
	if err != nil {
		return nil, err
	}
	p, err := r.createPipeline(shader, key)
	if err != nil {
		return nil, err
	}
	r.pipelines[key] = p
	slogger().Debug("gpu: trail pipeline created",
		"blending", key.blending,
		"depthTest", key.depthTest,
		"depthWrite", key.depthWrite)
	return p, nil
}

// bindLayout returns the shared bind group layout and sampler.
func (r *Renderer) bindLayout() (hal.BindGroupLayout, hal.Sampler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLayouts(); err != nil {
		return nil, nil, err
	}
	return r.uniformLayout, r.sampler, nil
}

// ensureLayouts creates the bind group layout, pipeline layout and sampler.
// Caller holds r.mu.
func (r *Renderer) ensureLayouts() error {
	if r.pipeLayout != nil {
		return nil
	}

	// Bind group layout:
	//   Binding 0: Uniforms (uniform buffer, vertex+fragment)
	//   Binding 1: trail texture (texture_2d, fragment)
	//   Binding 2: Sampler (fragment)
	uniformLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "trail_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create trail uniform layout: %w", err)
	}

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "trail_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{uniformLayout},
	})
	if err != nil {
		r.device.DestroyBindGroupLayout(uniformLayout)
		return fmt.Errorf("create trail pipeline layout: %w", err)
	}

	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "trail_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		r.device.DestroyPipelineLayout(pipeLayout)
		r.device.DestroyBindGroupLayout(uniformLayout)
		return fmt.Errorf("create trail sampler: %w", err)
	}

	r.uniformLayout = uniformLayout
	r.pipeLayout = pipeLayout
	r.sampler = sampler
	return nil
}

// shaderFor returns the module for wgsl, compiling it on first use.
// Caller holds r.mu.
func (r *Renderer) shaderFor(wgsl string) (hal.ShaderModule, error) {
	if s, ok := r.shaders[wgsl]; ok {
		return s, nil
	}
	src, err := shaderSource(wgsl, r.opts.ShaderFormat)
	if err != nil {
		return nil, err
	}
	shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "trail_shader",
		Source: src,
	})
	if err != nil {
		return nil, fmt.Errorf("create trail shader module: %w", err)
	}
	r.shaders[wgsl] = shader
	return shader, nil
}

// createPipeline builds one pipeline variant. Both faces are drawn: the
// ribbon is seen from either side. Caller holds r.mu.
func (r *Renderer) createPipeline(shader hal.ShaderModule, key pipelineKey) (hal.RenderPipeline, error) {
	blend := blendState(key.blending)

	var depth *hal.DepthStencilState
	if key.depthTest || key.depthWrite {
		compare := gputypes.CompareFunctionAlways
		if key.depthTest {
			compare = gputypes.CompareFunctionLess
		}
		depth = &hal.DepthStencilState{
			Format:            r.opts.DepthFormat,
			DepthWriteEnabled: key.depthWrite,
			DepthCompare:      compare,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
		}
	}

	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "trail_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.opts.ColorFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: depth,
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: r.opts.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create trail pipeline: %w", err)
	}
	return pipeline, nil
}

// blendState maps a material blending mode to straight-alpha blend factors.
func blendState(b trail.Blending) gputypes.BlendState {
	if b == trail.BlendAdditive {
		return gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	}
	return gputypes.BlendStateAlpha()
}
