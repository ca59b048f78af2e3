package renderer

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/bind_group_provider"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/pipeline"
	"github.com/gamazama/GMT-fractals-sub005/engine/window"
)

const (
	// BindingUniforms is the bind group slot for the packed uniform buffer.
	BindingUniforms = 0

	// BindingGradient is the bind group slot for the gradient lookup texture.
	BindingGradient = 1

	// BindingSampler is the bind group slot for the gradient sampler.
	BindingSampler = 2
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// provider carries the single shared bind group: uniforms, gradient LUT,
	// sampler. Every fullscreen pass binds it at group 0.
	provider   bind_group_provider.BindGroupProvider
	layoutDesc wgpu.BindGroupLayoutDescriptor

	width, height int

	// Persistent distance-probe target. RGBA32Float so the red-channel
	// distance survives readback unquantized.
	probeTexture *wgpu.Texture
	probeView    *wgpu.TextureView
	probeWidth   int
	probeHeight  int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed for fullscreen raymarch rendering: every
// pass draws one fullscreen triangle with a composed fragment shader against a
// single shared bind group. The Renderer manages a cache of compiled pipelines
// keyed by variant, the shared uniform/gradient resources, the persistent
// distance-probe target, and offscreen tile rendering for export. It also
// implements a backend which allows for multiple backend API implementations
// to exist.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipeline compiles a pipeline's WGSL and installs it in the cache,
	// replacing any pipeline previously cached under the same key. On failure
	// the cache entry is left untouched, so the previously working pipeline
	// keeps rendering.
	//
	// Parameters:
	//   - p: the Pipeline to compile and cache
	//
	// Returns:
	//   - error: an error if shader compilation or pipeline creation fails
	RegisterPipeline(p pipeline.Pipeline) error

	// InitResources creates the shared GPU resources: the uniform buffer, the
	// gradient lookup texture, the sampler, and the bind group tying them
	// together. Must be called once before any pipeline is registered.
	//
	// Parameters:
	//   - uniformSize: the packed uniform block size in bytes
	//   - gradient: the initial gradient lookup texture data
	//
	// Returns:
	//   - error: an error if resource creation fails
	InitResources(uniformSize uint64, gradient common.TextureStagingData) error

	// WriteUniforms uploads the packed uniform bytes to the GPU.
	//
	// Parameters:
	//   - data: the full uniform block in layout order
	WriteUniforms(data []byte)

	// SetGradient replaces the gradient lookup texture and rebuilds the shared
	// bind group around the new view.
	//
	// Parameters:
	//   - gradient: the new gradient texture data
	//
	// Returns:
	//   - error: an error if texture or bind group creation fails
	SetGradient(gradient common.TextureStagingData) error

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Size returns the current surface dimensions.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)

	// RenderFrame draws one fullscreen pass to the surface with the cached
	// pipeline. Present must be called afterwards.
	//
	// Parameters:
	//   - pipelineKey: the cached pipeline to draw with
	//   - accumulate: true blends over the previous frame instead of clearing
	//
	// Returns:
	//   - error: an error if the pipeline is missing or the surface unavailable
	RenderFrame(pipelineKey string, accumulate bool) error

	// Present presents the surface to the display and releases the swapchain
	// texture. Must be called once per frame after RenderFrame.
	Present()

	// RenderProbe draws the distance-probe pass into the persistent offscreen
	// probe target.
	//
	// Parameters:
	//   - pipelineKey: the cached probe pipeline to draw with
	//
	// Returns:
	//   - error: an error if the pipeline is missing
	RenderProbe(pipelineKey string) error

	// ProbePixel reads back one texel of the probe target at normalized device
	// coordinates. The red channel carries the marched distance.
	//
	// Parameters:
	//   - ndcX, ndcY: coordinates in [-1, 1], y up
	//
	// Returns:
	//   - [4]float32: the RGBA texel
	//   - error: an error if the readback fails
	ProbePixel(ndcX, ndcY float64) ([4]float32, error)

	// ProbeSize returns the probe target dimensions.
	//
	// Returns:
	//   - int: the probe width in texels
	//   - int: the probe height in texels
	ProbeSize() (int, int)

	// RenderTile draws one fullscreen pass into a transient offscreen RGBA8
	// target of the given size and reads the pixels back. Used by bucketed
	// high-resolution export, where each tile re-renders with its own uniform
	// window before this call.
	//
	// Parameters:
	//   - pipelineKey: the cached pipeline to draw with
	//   - width, height: the tile dimensions in pixels
	//
	// Returns:
	//   - []byte: width*height*4 RGBA bytes in row-major order
	//   - error: an error if rendering or readback fails
	RenderTile(pipelineKey string, width, height int) ([]byte, error)

	// SetPresentMode sets the surface present mode which controls how frames
	// are delivered to the display. A call to Resize is required after changing
	// this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Release frees all GPU resources at teardown.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type
// and window. The window supplies the platform-specific surface descriptor.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window providing the surface and initial dimensions
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		probeWidth:    256,
		probeHeight:   144,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.width, r.height = win.Width(), win.Height()
	r.backend.ConfigureSurface(r.width, r.height)
	return r
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipeline(p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.provider == nil {
		return fmt.Errorf("renderer resources not initialized")
	}
	if err := r.backend.RegisterRenderPipeline(p, r.provider.BindGroupLayout()); err != nil {
		return err
	}
	r.pipelineCache[p.PipelineKey()] = p
	return nil
}

func (r *renderer) InitResources(uniformSize uint64, gradient common.TextureStagingData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	provider := bind_group_provider.NewBindGroupProvider("Fractal Pass")
	if err := r.backend.CreateUniformBuffer(provider, BindingUniforms, uniformSize); err != nil {
		return err
	}
	if err := r.backend.InitGradientTexture(provider, BindingGradient, gradient); err != nil {
		return err
	}
	if err := r.backend.InitSampler(provider, BindingSampler, common.SamplerStagingData{}); err != nil {
		return err
	}

	r.layoutDesc = wgpu.BindGroupLayoutDescriptor{
		Label: "Fractal Pass Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    BindingUniforms,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uniformSize,
				},
			},
			{
				Binding:    BindingGradient,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    BindingSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
	if err := r.backend.InitBindGroup(provider, r.layoutDesc); err != nil {
		return err
	}
	r.provider = provider

	return r.recreateProbeTargetLocked()
}

func (r *renderer) WriteUniforms(data []byte) {
	r.mu.Lock()
	provider := r.provider
	r.mu.Unlock()
	if provider == nil {
		return
	}
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: BindingUniforms, Offset: 0, Data: data},
	})
}

func (r *renderer) SetGradient(gradient common.TextureStagingData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.provider == nil {
		return fmt.Errorf("renderer resources not initialized")
	}
	if err := r.backend.InitGradientTexture(r.provider, BindingGradient, gradient); err != nil {
		return err
	}
	// The bind group references the old view, rebuild it around the new one.
	return r.backend.InitBindGroup(r.provider, r.layoutDesc)
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) RenderFrame(pipelineKey string, accumulate bool) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	provider := r.provider
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	return r.backend.RenderToSurface(p, provider, accumulate)
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) RenderProbe(pipelineKey string) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	provider := r.provider
	view := r.probeView
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("probe pipeline %q not found in cache", pipelineKey)
	}
	if view == nil {
		return fmt.Errorf("probe target not initialized")
	}
	return r.backend.RenderToTexture(p, provider, view)
}

func (r *renderer) ProbePixel(ndcX, ndcY float64) ([4]float32, error) {
	r.mu.Lock()
	tex := r.probeTexture
	w, h := r.probeWidth, r.probeHeight
	r.mu.Unlock()

	if tex == nil {
		return [4]float32{}, fmt.Errorf("probe target not initialized")
	}

	data, err := r.backend.ReadTexture(tex, w, h, 16)
	if err != nil {
		return [4]float32{}, err
	}

	x := int((ndcX*0.5 + 0.5) * float64(w))
	y := int((1 - (ndcY*0.5 + 0.5)) * float64(h))
	x = common.Clamp(x, 0, w-1)
	y = common.Clamp(y, 0, h-1)

	offset := (y*w + x) * 16
	var texel [4]float32
	for i := 0; i < 4; i++ {
		bits := binary.LittleEndian.Uint32(data[offset+i*4 : offset+i*4+4])
		texel[i] = math.Float32frombits(bits)
	}
	return texel, nil
}

func (r *renderer) ProbeSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.probeWidth, r.probeHeight
}

func (r *renderer) RenderTile(pipelineKey string, width, height int) ([]byte, error) {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	provider := r.provider
	r.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("tile pipeline %q not found in cache", pipelineKey)
	}

	tex, view, err := r.backend.CreateRenderTarget(width, height, wgpu.TextureFormatRGBA8Unorm)
	if err != nil {
		return nil, err
	}
	defer tex.Release()
	defer view.Release()

	if err := r.backend.RenderToTexture(p, provider, view); err != nil {
		return nil, err
	}
	return r.backend.ReadTexture(tex, width, height, 4)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseProbeTargetLocked()
	if r.provider != nil {
		r.provider.Release()
		r.provider = nil
	}
	r.backend.Release()
}

// recreateProbeTargetLocked builds the persistent probe render target.
// Callers hold the mutex.
func (r *renderer) recreateProbeTargetLocked() error {
	r.releaseProbeTargetLocked()
	tex, view, err := r.backend.CreateRenderTarget(r.probeWidth, r.probeHeight, wgpu.TextureFormatRGBA32Float)
	if err != nil {
		return err
	}
	r.probeTexture = tex
	r.probeView = view
	return nil
}

func (r *renderer) releaseProbeTargetLocked() {
	if r.probeView != nil {
		r.probeView.Release()
		r.probeView = nil
	}
	if r.probeTexture != nil {
		r.probeTexture.Release()
		r.probeTexture = nil
	}
}
