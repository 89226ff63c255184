//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	shaderSourceDir = "shaders"
	shaderOutputDir = "assets/shaders"
)

type Build mg.Namespace

// Compiles shaders/<template>.{vert,frag} into assets/shaders/<template>_{vert,frag}.spv with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the testbed binary into bin/prism.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/prism", "."), withStream())
	return err
}

func buildShaders() error {
	if err := os.MkdirAll(shaderOutputDir, 0o755); err != nil {
		return err
	}
	for _, tmpl := range metadata.ShaderTemplates {
		for _, stage := range []string{"vert", "frag"} {
			src := filepath.Join(shaderSourceDir, fmt.Sprintf("%s.%s", tmpl.Name(), stage))
			dst := filepath.Join(shaderOutputDir, fmt.Sprintf("%s_%s.spv", tmpl.Name(), stage))
			if _, err := executeCmd("glslc", withArgs(src, "-o", dst), withStream()); err != nil {
				return err
			}
		}
	}
	return nil
}
