package renderer

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// vertexInput derives bindings and attributes from a layout: one binding
// for interleaved data, otherwise one binding per attribute.
func vertexInput(layout metadata.AttributeLayout) ([]gpu.VertexBinding, []gpu.VertexAttribute) {
	attribs := layout.Attributes.Attributes()
	if layout.Interleaved {
		bindings := []gpu.VertexBinding{{Binding: 0, Stride: layout.Stride()}}
		attributes := make([]gpu.VertexAttribute, 0, len(attribs))
		for _, a := range attribs {
			attributes = append(attributes, gpu.VertexAttribute{
				Location: a.Location(),
				Binding:  0,
				Format:   vertexFormat(a),
				Offset:   layout.Offset(a),
			})
		}
		return bindings, attributes
	}

	bindings := make([]gpu.VertexBinding, 0, len(attribs))
	attributes := make([]gpu.VertexAttribute, 0, len(attribs))
	for i, a := range attribs {
		bindings = append(bindings, gpu.VertexBinding{Binding: uint32(i), Stride: a.Size()})
		attributes = append(attributes, gpu.VertexAttribute{
			Location: a.Location(),
			Binding:  uint32(i),
			Format:   vertexFormat(a),
		})
	}
	return bindings, attributes
}

func (e *Engine) createPipeline(gd *geometryData, dc *drawCommand, app *appearance) (gpu.Pipeline, error) {
	shaders := e.shaders[app.info.Template]
	desc := &gpu.PipelineDesc{
		VertexShader:   shaders.vert,
		FragmentShader: shaders.frag,
		Topology:       topology(dc.topology),
		PolygonMode:    gpu.PolygonModeFill,
		LineWidth:      dc.state.LineWidth,
		PointSize:      dc.state.PointSize,
		DepthTest:      true,
		DepthWrite:     true,
		DepthCompare:   compareOp(dc.state.DepthCompare),
		SetLayouts:     []gpu.DescriptorSetLayout{e.viewLayout},
		RenderPass:     e.renderPass,
	}
	if dc.state.Wireframe && dc.topology.IsTriangle() {
		desc.PolygonMode = gpu.PolygonModeLine
	}
	desc.Bindings, desc.Attributes = vertexInput(gd.layout)
	if app.layout != nil {
		desc.SetLayouts = append(desc.SetLayouts, app.layout)
	}
	if dc.pushSpatial {
		desc.PushConstantSize = metadata.SpatialPushConstantSize
	}

	p, err := e.backend.CreateGraphicsPipeline(desc)
	if err != nil {
		return nil, fatal(fmt.Sprintf("create %s pipeline", app.info.Template), err)
	}
	return p, nil
}
