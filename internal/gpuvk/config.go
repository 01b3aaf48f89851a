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

// DeviceConfig controls which physical device NewDeviceContext selects.
type DeviceConfig struct {
	// PreferredDeviceIndex selects a specific physical device by its index in
	// vkEnumeratePhysicalDevices order. Negative means no preference: prefer
	// a discrete GPU, falling back to the first enumerated device.
	PreferredDeviceIndex int

	// RequireDiscrete fails device initialization rather than falling back
	// to an integrated or otherwise non-discrete GPU when the selected
	// device (PreferredDeviceIndex, or the preference search when negative)
	// is not of type DISCRETE_GPU.
	RequireDiscrete bool
}
