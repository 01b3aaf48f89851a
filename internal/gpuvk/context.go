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

// Package gpuvk implements the Q2_K-to-F32 GPU device context: a long-lived
// Vulkan compute-only session with a persistent input/output buffer pair
// that grows on demand.
//
// Build Requirements: a Vulkan loader and headers must be available. Set
// CGO_CFLAGS/CGO_LDFLAGS to point at a Vulkan SDK if it is not on the
// default search path, and build with -tags vulkan.
package gpuvk

/*
#cgo linux LDFLAGS: -lvulkan
#cgo darwin LDFLAGS: -lvulkan
#cgo windows LDFLAGS: -lvulkan-1

#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
    VkInstance instance;
    VkPhysicalDevice physicalDevice;
    VkDevice device;
    VkQueue computeQueue;
    uint32_t computeQueueFamilyIndex;

    VkDescriptorSetLayout descriptorSetLayout;
    VkShaderModule shaderModule;
    VkPipelineLayout pipelineLayout;
    VkPipeline pipeline;
    VkDescriptorPool descriptorSetPool;
    VkDescriptorSet descriptorSet;
    VkCommandPool commandPool;

    VkBuffer inputBuffer;
    VkDeviceMemory inputBufferMemory;
    VkBuffer outputBuffer;
    VkDeviceMemory outputBufferMemory;

    int current_max_k;
} quantx_vk_context;

static char quantx_vk_last_error[256] = {0};

static void qvk_set_error(const char* msg) {
    strncpy(quantx_vk_last_error, msg, sizeof(quantx_vk_last_error) - 1);
}

const char* quantx_vk_last_error_string() {
    return quantx_vk_last_error;
}

static uint32_t qvk_find_memory_type(quantx_vk_context* ctx, uint32_t typeFilter, VkMemoryPropertyFlags props) {
    VkPhysicalDeviceMemoryProperties mp;
    vkGetPhysicalDeviceMemoryProperties(ctx->physicalDevice, &mp);
    for (uint32_t i = 0; i < mp.memoryTypeCount; i++) {
        if ((typeFilter & (1u << i)) && (mp.memoryTypes[i].propertyFlags & props) == props) return i;
    }
    return UINT32_MAX;
}

static void qvk_destroy_buffers(quantx_vk_context* ctx) {
    if (ctx->device == VK_NULL_HANDLE) return;
    if (ctx->inputBuffer != VK_NULL_HANDLE) {
        vkDestroyBuffer(ctx->device, ctx->inputBuffer, NULL);
        vkFreeMemory(ctx->device, ctx->inputBufferMemory, NULL);
        ctx->inputBuffer = VK_NULL_HANDLE;
    }
    if (ctx->outputBuffer != VK_NULL_HANDLE) {
        vkDestroyBuffer(ctx->device, ctx->outputBuffer, NULL);
        vkFreeMemory(ctx->device, ctx->outputBufferMemory, NULL);
        ctx->outputBuffer = VK_NULL_HANDLE;
    }
}

// quantx_vk_init creates the instance, picks a physical device, creates a
// logical device with one compute queue, and builds the dequantization
// pipeline (two storage-buffer bindings: 0 = Q2_K input, 1 = float output).
// shader/shaderLen is the embedded SPIR-V blob. preferredIndex selects a
// specific enumerated device (negative means no preference: prefer a
// discrete GPU, falling back to the first device). requireDiscrete fails
// initialization instead of accepting a non-discrete device.
quantx_vk_context* quantx_vk_init(const uint32_t* shader, size_t shaderLen, int preferredIndex, int requireDiscrete) {
    quantx_vk_context* ctx = calloc(1, sizeof(quantx_vk_context));
    if (!ctx) return NULL;

    VkApplicationInfo appInfo = {VK_STRUCTURE_TYPE_APPLICATION_INFO, NULL, "QuantX", 1, "Vextra", 1, VK_API_VERSION_1_2};
    VkInstanceCreateInfo ci = {VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO, NULL, 0, &appInfo, 0, NULL, 0, NULL};
    if (vkCreateInstance(&ci, NULL, &ctx->instance) != VK_SUCCESS) {
        qvk_set_error("vkCreateInstance failed");
        free(ctx);
        return NULL;
    }

    uint32_t count = 0;
    vkEnumeratePhysicalDevices(ctx->instance, &count, NULL);
    if (count == 0) {
        qvk_set_error("no Vulkan physical devices");
        vkDestroyInstance(ctx->instance, NULL);
        free(ctx);
        return NULL;
    }
    VkPhysicalDevice* devices = malloc(count * sizeof(VkPhysicalDevice));
    vkEnumeratePhysicalDevices(ctx->instance, &count, devices);
    ctx->physicalDevice = devices[0];
    if (preferredIndex >= 0 && (uint32_t)preferredIndex < count) {
        ctx->physicalDevice = devices[preferredIndex];
    } else {
        for (uint32_t i = 0; i < count; i++) {
            VkPhysicalDeviceProperties p;
            vkGetPhysicalDeviceProperties(devices[i], &p);
            if (p.deviceType == VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU) {
                ctx->physicalDevice = devices[i];
                break;
            }
        }
    }
    if (requireDiscrete) {
        VkPhysicalDeviceProperties p;
        vkGetPhysicalDeviceProperties(ctx->physicalDevice, &p);
        if (p.deviceType != VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU) {
            qvk_set_error("no discrete GPU available and requireDiscrete was set");
            free(devices);
            vkDestroyInstance(ctx->instance, NULL);
            free(ctx);
            return NULL;
        }
    }
    free(devices);

    uint32_t qcount = 0;
    vkGetPhysicalDeviceQueueFamilyProperties(ctx->physicalDevice, &qcount, NULL);
    VkQueueFamilyProperties* families = malloc(qcount * sizeof(VkQueueFamilyProperties));
    vkGetPhysicalDeviceQueueFamilyProperties(ctx->physicalDevice, &qcount, families);
    int found = 0;
    for (uint32_t i = 0; i < qcount; i++) {
        if (families[i].queueFlags & VK_QUEUE_COMPUTE_BIT) {
            ctx->computeQueueFamilyIndex = i;
            found = 1;
            break;
        }
    }
    free(families);
    if (!found) {
        qvk_set_error("no compute-capable queue family");
        vkDestroyInstance(ctx->instance, NULL);
        free(ctx);
        return NULL;
    }

    float qp = 1.0f;
    VkDeviceQueueCreateInfo qi = {VK_STRUCTURE_TYPE_DEVICE_QUEUE_CREATE_INFO, NULL, 0, ctx->computeQueueFamilyIndex, 1, &qp};
    VkDeviceCreateInfo di = {VK_STRUCTURE_TYPE_DEVICE_CREATE_INFO, NULL, 0, 1, &qi, 0, NULL, 0, NULL, NULL};
    if (vkCreateDevice(ctx->physicalDevice, &di, NULL, &ctx->device) != VK_SUCCESS) {
        qvk_set_error("vkCreateDevice failed");
        vkDestroyInstance(ctx->instance, NULL);
        free(ctx);
        return NULL;
    }

    VkDescriptorSetLayoutBinding binds[2] = {
        {0, VK_DESCRIPTOR_TYPE_STORAGE_BUFFER, 1, VK_SHADER_STAGE_COMPUTE_BIT, NULL},
        {1, VK_DESCRIPTOR_TYPE_STORAGE_BUFFER, 1, VK_SHADER_STAGE_COMPUTE_BIT, NULL},
    };
    VkDescriptorSetLayoutCreateInfo lci = {VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO, NULL, 0, 2, binds};
    vkCreateDescriptorSetLayout(ctx->device, &lci, NULL, &ctx->descriptorSetLayout);

    VkShaderModuleCreateInfo sci = {VK_STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO, NULL, 0, shaderLen, shader};
    if (vkCreateShaderModule(ctx->device, &sci, NULL, &ctx->shaderModule) != VK_SUCCESS) {
        qvk_set_error("vkCreateShaderModule failed");
        vkDestroyDescriptorSetLayout(ctx->device, ctx->descriptorSetLayout, NULL);
        vkDestroyDevice(ctx->device, NULL);
        vkDestroyInstance(ctx->instance, NULL);
        free(ctx);
        return NULL;
    }

    VkPipelineLayoutCreateInfo plci = {VK_STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO, NULL, 0, 1, &ctx->descriptorSetLayout, 0, NULL};
    vkCreatePipelineLayout(ctx->device, &plci, NULL, &ctx->pipelineLayout);

    VkPipelineShaderStageCreateInfo stage = {VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO, NULL, 0, VK_SHADER_STAGE_COMPUTE_BIT, ctx->shaderModule, "main", NULL};
    VkComputePipelineCreateInfo pci = {VK_STRUCTURE_TYPE_COMPUTE_PIPELINE_CREATE_INFO, NULL, 0, stage, ctx->pipelineLayout, VK_NULL_HANDLE, 0};
    vkCreateComputePipelines(ctx->device, VK_NULL_HANDLE, 1, &pci, NULL, &ctx->pipeline);

    VkDescriptorPoolSize poolSize = {VK_DESCRIPTOR_TYPE_STORAGE_BUFFER, 2};
    VkDescriptorPoolCreateInfo dpci = {VK_STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO, NULL, 0, 1, 1, &poolSize};
    vkCreateDescriptorPool(ctx->device, &dpci, NULL, &ctx->descriptorSetPool);

    VkDescriptorSetAllocateInfo dsai = {VK_STRUCTURE_TYPE_DESCRIPTOR_SET_ALLOCATE_INFO, NULL, ctx->descriptorSetPool, 1, &ctx->descriptorSetLayout};
    vkAllocateDescriptorSets(ctx->device, &dsai, &ctx->descriptorSet);

    VkCommandPoolCreateInfo cpci = {VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO, NULL, VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT, ctx->computeQueueFamilyIndex};
    vkCreateCommandPool(ctx->device, &cpci, NULL, &ctx->commandPool);

    vkGetDeviceQueue(ctx->device, ctx->computeQueueFamilyIndex, 0, &ctx->computeQueue);
    return ctx;
}

static int qvk_alloc_buffer(quantx_vk_context* ctx, size_t size, VkBufferUsageFlags usage, VkMemoryPropertyFlags props, VkBuffer* buf, VkDeviceMemory* mem) {
    VkBufferCreateInfo bi = {VK_STRUCTURE_TYPE_BUFFER_CREATE_INFO, NULL, 0, size, usage, VK_SHARING_MODE_EXCLUSIVE, 0, NULL};
    if (vkCreateBuffer(ctx->device, &bi, NULL, buf) != VK_SUCCESS) return 0;
    VkMemoryRequirements mr;
    vkGetBufferMemoryRequirements(ctx->device, *buf, &mr);
    uint32_t typeIdx = qvk_find_memory_type(ctx, mr.memoryTypeBits, props);
    if (typeIdx == UINT32_MAX) return 0;
    VkMemoryAllocateInfo ai = {VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO, NULL, mr.size, typeIdx};
    if (vkAllocateMemory(ctx->device, &ai, NULL, mem) != VK_SUCCESS) return 0;
    vkBindBufferMemory(ctx->device, *buf, *mem, 0);
    return 1;
}

// quantx_vk_prepare is idempotent for max_k <= current_max_k. Otherwise it
// destroys the existing I/O buffers and reallocates device-local storage
// sized for max_k elements, rebinding the descriptor set.
int quantx_vk_prepare(quantx_vk_context* ctx, int max_k) {
    if (max_k <= ctx->current_max_k) return 1;
    qvk_destroy_buffers(ctx);

    size_t inSize = (size_t)(max_k / 256) * 72;
    size_t outSize = (size_t)max_k * 4;
    VkBufferUsageFlags usage = VK_BUFFER_USAGE_STORAGE_BUFFER_BIT | VK_BUFFER_USAGE_TRANSFER_DST_BIT | VK_BUFFER_USAGE_TRANSFER_SRC_BIT;

    if (!qvk_alloc_buffer(ctx, inSize, usage, VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT, &ctx->inputBuffer, &ctx->inputBufferMemory)) {
        qvk_set_error("failed to allocate device input buffer");
        return 0;
    }
    if (!qvk_alloc_buffer(ctx, outSize, usage, VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT, &ctx->outputBuffer, &ctx->outputBufferMemory)) {
        qvk_set_error("failed to allocate device output buffer");
        return 0;
    }

    VkDescriptorBufferInfo dbi[2] = {
        {ctx->inputBuffer, 0, inSize},
        {ctx->outputBuffer, 0, outSize},
    };
    VkWriteDescriptorSet writes[2] = {
        {VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET, NULL, ctx->descriptorSet, 0, 0, 1, VK_DESCRIPTOR_TYPE_STORAGE_BUFFER, NULL, &dbi[0], NULL},
        {VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET, NULL, ctx->descriptorSet, 1, 0, 1, VK_DESCRIPTOR_TYPE_STORAGE_BUFFER, NULL, &dbi[1], NULL},
    };
    vkUpdateDescriptorSets(ctx->device, 2, writes, 0, NULL);
    ctx->current_max_k = max_k;
    return 1;
}

// quantx_vk_dequantize copies vx into the device input buffer, dispatches
// one workgroup per 256-element block, and copies the device output buffer
// into vy, via host-visible staging buffers on both sides.
int quantx_vk_dequantize(quantx_vk_context* ctx, const void* vx, float* vy, int k) {
    if (k > ctx->current_max_k && !quantx_vk_prepare(ctx, k)) return 0;

    size_t inSize = (size_t)(k / 256) * 72;
    size_t outSize = (size_t)k * 4;

    VkBuffer stagingIn = VK_NULL_HANDLE, stagingOut = VK_NULL_HANDLE;
    VkDeviceMemory stagingInMem = VK_NULL_HANDLE, stagingOutMem = VK_NULL_HANDLE;
    VkMemoryPropertyFlags hostProps = VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT | VK_MEMORY_PROPERTY_HOST_COHERENT_BIT;

    if (!qvk_alloc_buffer(ctx, inSize, VK_BUFFER_USAGE_TRANSFER_SRC_BIT, hostProps, &stagingIn, &stagingInMem)) {
        qvk_set_error("failed to allocate staging-in buffer");
        return 0;
    }
    void* mapped;
    vkMapMemory(ctx->device, stagingInMem, 0, inSize, 0, &mapped);
    memcpy(mapped, vx, inSize);
    vkUnmapMemory(ctx->device, stagingInMem);

    if (!qvk_alloc_buffer(ctx, outSize, VK_BUFFER_USAGE_TRANSFER_DST_BIT, hostProps, &stagingOut, &stagingOutMem)) {
        qvk_set_error("failed to allocate staging-out buffer");
        vkDestroyBuffer(ctx->device, stagingIn, NULL);
        vkFreeMemory(ctx->device, stagingInMem, NULL);
        return 0;
    }

    VkCommandBufferAllocateInfo cbai = {VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO, NULL, ctx->commandPool, VK_COMMAND_BUFFER_LEVEL_PRIMARY, 1};
    VkCommandBuffer cb;
    vkAllocateCommandBuffers(ctx->device, &cbai, &cb);
    VkCommandBufferBeginInfo cbbi = {VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO, NULL, VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT, NULL};
    vkBeginCommandBuffer(cb, &cbbi);

    VkBufferCopy copyIn = {0, 0, inSize};
    vkCmdCopyBuffer(cb, stagingIn, ctx->inputBuffer, 1, &copyIn);
    vkCmdBindPipeline(cb, VK_PIPELINE_BIND_POINT_COMPUTE, ctx->pipeline);
    vkCmdBindDescriptorSets(cb, VK_PIPELINE_BIND_POINT_COMPUTE, ctx->pipelineLayout, 0, 1, &ctx->descriptorSet, 0, NULL);
    vkCmdDispatch(cb, k / 256, 1, 1);
    VkBufferCopy copyOut = {0, 0, outSize};
    vkCmdCopyBuffer(cb, ctx->outputBuffer, stagingOut, 1, &copyOut);
    vkEndCommandBuffer(cb);

    VkSubmitInfo si = {VK_STRUCTURE_TYPE_SUBMIT_INFO, NULL, 0, NULL, NULL, 1, &cb, 0, NULL};
    vkQueueSubmit(ctx->computeQueue, 1, &si, VK_NULL_HANDLE);
    vkQueueWaitIdle(ctx->computeQueue);

    vkMapMemory(ctx->device, stagingOutMem, 0, outSize, 0, &mapped);
    memcpy(vy, mapped, outSize);
    vkUnmapMemory(ctx->device, stagingOutMem);

    vkFreeCommandBuffers(ctx->device, ctx->commandPool, 1, &cb);
    vkDestroyBuffer(ctx->device, stagingIn, NULL);
    vkFreeMemory(ctx->device, stagingInMem, NULL);
    vkDestroyBuffer(ctx->device, stagingOut, NULL);
    vkFreeMemory(ctx->device, stagingOutMem, NULL);
    return 1;
}

// quantx_vk_free tears down everything created by quantx_vk_init, in
// reverse order, and is safe to call with buffers absent.
void quantx_vk_free(quantx_vk_context* ctx) {
    if (!ctx) return;
    qvk_destroy_buffers(ctx);
    if (ctx->device != VK_NULL_HANDLE) {
        if (ctx->commandPool != VK_NULL_HANDLE) vkDestroyCommandPool(ctx->device, ctx->commandPool, NULL);
        vkDestroyPipeline(ctx->device, ctx->pipeline, NULL);
        vkDestroyPipelineLayout(ctx->device, ctx->pipelineLayout, NULL);
        vkDestroyDescriptorPool(ctx->device, ctx->descriptorSetPool, NULL);
        vkDestroyDescriptorSetLayout(ctx->device, ctx->descriptorSetLayout, NULL);
        vkDestroyShaderModule(ctx->device, ctx->shaderModule, NULL);
        vkDestroyDevice(ctx->device, NULL);
    }
    if (ctx->instance != VK_NULL_HANDLE) {
        vkDestroyInstance(ctx->instance, NULL);
    }
    free(ctx);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

var (
	// ErrDeviceInit is returned when no usable Vulkan device could be created.
	ErrDeviceInit = errors.New("gpuvk: device initialization failed")
	// ErrPrepare is returned when growing the device buffer pair fails.
	ErrPrepare = errors.New("gpuvk: buffer preparation failed")
	// ErrDequantize is returned when a dequantize dispatch fails.
	ErrDequantize = errors.New("gpuvk: dequantize dispatch failed")
)

// DeviceContext is a long-lived Vulkan compute-only device session, with a
// persistent input/output buffer pair that grows (never shrinks) to fit the
// largest element count seen so far. All methods require exclusive access;
// callers needing concurrent use must serialize externally.
type DeviceContext struct {
	mu     sync.Mutex
	ptr    *C.quantx_vk_context
	closed bool
}

// NewDeviceContext creates the Vulkan instance/device/pipeline and returns a
// ready-to-use DeviceContext, or ErrDeviceInit if no suitable device or
// compute queue exists. shader is the compiled SPIR-V blob for the
// dequantization compute shader (binding 0 = input, binding 1 = output,
// entry point "main"). cfg selects which physical device to use.
func NewDeviceContext(shader []byte, cfg DeviceConfig) (*DeviceContext, error) {
	if len(shader)%4 != 0 {
		return nil, fmt.Errorf("%w: shader length %d is not a multiple of 4", ErrDeviceInit, len(shader))
	}
	var shaderPtr *C.uint32_t
	if len(shader) > 0 {
		shaderPtr = (*C.uint32_t)(unsafe.Pointer(&shader[0]))
	}
	preferredIndex := C.int(-1)
	if cfg.PreferredDeviceIndex >= 0 {
		preferredIndex = C.int(cfg.PreferredDeviceIndex)
	}
	requireDiscrete := C.int(0)
	if cfg.RequireDiscrete {
		requireDiscrete = C.int(1)
	}
	ptr := C.quantx_vk_init(shaderPtr, C.size_t(len(shader)), preferredIndex, requireDiscrete)
	if ptr == nil {
		return nil, fmt.Errorf("%w: %s", ErrDeviceInit, C.GoString(C.quantx_vk_last_error_string()))
	}
	return &DeviceContext{ptr: ptr}, nil
}

// Prepare grows the device's input/output buffers to hold at least maxK
// elements. It is idempotent for any maxK not exceeding the current
// capacity; current_max_k is monotonically non-decreasing.
func (d *DeviceContext) Prepare(maxK int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("%w: context closed", ErrPrepare)
	}
	if C.quantx_vk_prepare(d.ptr, C.int(maxK)) == 0 {
		return fmt.Errorf("%w: %s", ErrPrepare, C.GoString(C.quantx_vk_last_error_string()))
	}
	return nil
}

// Dequantize expands k Q2_K-packed elements from src into dst, growing the
// device buffers first if k exceeds the current capacity.
func (d *DeviceContext) Dequantize(src []byte, dst []float32, k int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("%w: context closed", ErrDequantize)
	}
	if len(src) == 0 || len(dst) == 0 {
		return fmt.Errorf("%w: empty buffer", ErrDequantize)
	}
	ok := C.quantx_vk_dequantize(
		d.ptr,
		unsafe.Pointer(&src[0]),
		(*C.float)(unsafe.Pointer(&dst[0])),
		C.int(k),
	)
	if ok == 0 {
		return fmt.Errorf("%w: %s", ErrDequantize, C.GoString(C.quantx_vk_last_error_string()))
	}
	return nil
}

// Close destroys the device, pipeline, and any allocated buffers, in
// reverse order of creation. Safe to call multiple times.
func (d *DeviceContext) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	C.quantx_vk_free(d.ptr)
	d.ptr = nil
	d.closed = true
	return nil
}
