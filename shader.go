package clouds

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// ShaderSource is the WGSL source of the pass.
//
//go:embed shaders/clouds.wgsl
var ShaderSource string

// Entry points and bindings declared by ShaderSource.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"

	ViewGroup    = 0
	MeshGroup    = 1
	PositionSlot = 0
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// CompileSPIRV compiles ShaderSource to SPIR-V words.
func CompileSPIRV() ([]uint32, error) {
	return compileSPIRV(ShaderSource)
}

func compileSPIRV(source string) ([]uint32, error) {
	if source == "" {
		return nil, ErrEmptyShader
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile clouds shader: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile clouds shader: malformed SPIR-V (%d bytes)", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("compile clouds shader: bad SPIR-V magic %#x", words[0])
	}

	Logger().Debug("clouds shader compiled", "words", len(words))
	return words, nil
}
