package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const captureVertexShader = `
#version 410 core

layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aUV;

uniform mat4 uMVP;
uniform mat4 uView;

out vec3 vViewNormal;
out vec2 vUV;

void main() {
    gl_Position = uMVP * vec4(aPosition, 1.0);
    vViewNormal = mat3(uView) * aNormal;
    vUV = aUV;
}
`

const albedoFragmentShader = `
#version 410 core

in vec3 vViewNormal;
in vec2 vUV;

uniform sampler2D uAlbedo;
uniform int uHasAlbedo;

out vec4 fragColor;

void main() {
    vec4 color = vec4(1.0);
    if (uHasAlbedo == 1) {
        color = texture(uAlbedo, vUV);
    }
    if (color.a < 0.004) {
        discard;
    }
    fragColor = color;
}
`

const normalFragmentShader = `
#version 410 core

in vec3 vViewNormal;
in vec2 vUV;

uniform sampler2D uAlbedo;
uniform int uHasAlbedo;

out vec4 fragColor;

void main() {
    if (uHasAlbedo == 1 && texture(uAlbedo, vUV).a < 0.004) {
        discard;
    }
    vec3 n = normalize(vViewNormal) * 0.5 + 0.5;
    fragColor = vec4(n, 1.0);
}
`

// compileProgram compiles and links a vertex/fragment shader pair.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertex, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertex)

	fragment, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragment)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("linking shader program: %s", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compiling %s shader: %s", name, log)
	}
	return shader, nil
}
