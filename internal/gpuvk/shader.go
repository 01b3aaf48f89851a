// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gpuvk

import _ "embed"

// Shader is the embedded compute shader dispatched by DeviceContext.
// Equivalent GLSL:
//
//	#version 450
//	layout(local_size_x = 1) in;
//	layout(set = 0, binding = 0) readonly buffer Input { uint8_t qs[]; };
//	layout(set = 0, binding = 1) writeonly buffer Output { float ys[]; };
//	void main() {
//	    uint blockIdx = gl_WorkGroupID.x;
//	    // reads bytes [blockIdx*72, blockIdx*72+72), writes floats
//	    // [blockIdx*256, blockIdx*256+256), per the block-format dequantization
//	    // equation.
//	}
//
// quantx_vulkan.spv must be supplied at build time (it is not checked into
// this repository); a zero-length blob lets NewDeviceContext fail cleanly
// with ErrDeviceInit rather than crash the loader.
//
//go:embed quantx_vulkan.spv
var Shader []byte
