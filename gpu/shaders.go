//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// ErrShaderEmpty is returned when a material carries no shader source.
var ErrShaderEmpty = errors.New("gpu: shader source is empty")

// ShaderFormat selects the source handed to the HAL when a shader module
// is created.
type ShaderFormat int

const (
	// ShaderWGSL passes WGSL through to the backend. The source is still
	// validated with naga first.
	ShaderWGSL ShaderFormat = iota

	// ShaderSPIRV compiles WGSL to SPIR-V with naga and passes the words.
	ShaderSPIRV
)

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	if wgsl == "" {
		return nil, ErrShaderEmpty
	}
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile trail shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// ValidateShader reports whether wgsl compiles.
func ValidateShader(wgsl string) error {
	_, err := CompileSPIRV(wgsl)
	return err
}

// shaderSource builds the HAL source for wgsl in the given format.
func shaderSource(wgsl string, format ShaderFormat) (hal.ShaderSource, error) {
	words, err := CompileSPIRV(wgsl)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	if format == ShaderSPIRV {
		return hal.ShaderSource{SPIRV: words}, nil
	}
	return hal.ShaderSource{WGSL: wgsl}, nil
}
