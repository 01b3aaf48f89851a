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

//go:build !vulkan

// Package gpuvk, built without the vulkan tag, exposes the same surface as
// the real implementation but never succeeds: hosts without a linked Vulkan
// loader should fall back to a CPU kernel, per the missing-device-capability
// error taxonomy.
package gpuvk

import "errors"

// ErrDeviceInit is returned by NewDeviceContext: this build has no Vulkan
// loader linked in.
var ErrDeviceInit = errors.New("gpuvk: built without vulkan support")

// DeviceContext is an unusable placeholder in builds without the vulkan tag.
type DeviceContext struct{}

// NewDeviceContext always fails in builds without the vulkan tag.
func NewDeviceContext(shader []byte, cfg DeviceConfig) (*DeviceContext, error) {
	return nil, ErrDeviceInit
}

func (d *DeviceContext) Prepare(maxK int) error { return ErrDeviceInit }

func (d *DeviceContext) Dequantize(src []byte, dst []float32, k int) error { return ErrDeviceInit }

func (d *DeviceContext) Close() error { return nil }
