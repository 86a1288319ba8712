// Copyright ©2019 The Gonum Authors. All rights reserved.
// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package guda provides a HIP/CUDA-compatible execution model on the CPU.
//
// The runtime offers:
//   - Kernel launches over a grid of blocks, with blocks scheduled across
//     CPU cores and threads grouped into 64-lane waves
//   - A device memory pool with typed views (Slice, CopyToDevice)
//   - Structured errors (GUDAError) for invalid configurations and kernel faults
//   - 16-bit element types (BFloat16, HFloat16) for matrix fragments
//
// The wmma subpackage builds wave-level matrix fragment load, store and
// fill on top of this runtime.
package guda
