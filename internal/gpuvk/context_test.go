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

//go:build vulkan

package gpuvk

import "testing"

// These tests require a real Vulkan-capable host; they skip rather than fail
// when no usable device is present, since CI and developer machines vary.

func TestDeviceContextLifecycle(t *testing.T) {
	ctx, err := NewDeviceContext(Shader, DeviceConfig{PreferredDeviceIndex: -1})
	if err != nil {
		t.Skipf("no usable Vulkan device: %v", err)
	}
	defer ctx.Close()

	if err := ctx.Prepare(256); err != nil {
		t.Fatalf("Prepare(256): %v", err)
	}
	// prepare(k) is idempotent for fixed k.
	if err := ctx.Prepare(256); err != nil {
		t.Fatalf("Prepare(256) second call: %v", err)
	}
	if err := ctx.Prepare(128); err != nil {
		t.Fatalf("Prepare(128) (non-growing): %v", err)
	}
}

func TestDequantizeRequiresNonEmptyBuffers(t *testing.T) {
	ctx, err := NewDeviceContext(Shader, DeviceConfig{PreferredDeviceIndex: -1})
	if err != nil {
		t.Skipf("no usable Vulkan device: %v", err)
	}
	defer ctx.Close()

	if err := ctx.Dequantize(nil, nil, 0); err == nil {
		t.Fatal("expected error for empty buffers")
	}
}
