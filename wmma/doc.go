// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wmma implements wave-level matrix fragment load, store and fill
// for the GUDA CPU device.
//
// A fragment is a BlockM×BlockK (matrix A), BlockK×BlockN (matrix B) or
// BlockM×BlockN (accumulator) tile held cooperatively by the 64 lanes of a
// wave. Each lane owns UnpackedSize = rows*cols/64 elements and moves them
// with IOCount vector transactions of VectorWidth contiguous elements.
//
// Three pieces agree on the element order:
//
//   - IOTraits derives IOCount and UnpackedSize from the block geometry.
//   - MatrixLayout gives each lane its base coordinate and the coordinate
//     increment between transactions.
//   - DataLayout (RowMajor or ColMajor) turns a coordinate and a leading
//     dimension into a linear element offset.
//
// Kernels create a Fragment per thread and use FillFragment, LoadMatrixSync
// and StoreMatrixSync with the thread's lane:
//
//	ft := wmma.MustFragmentType[float32](wmma.Accumulator, 16, 16, 16, wmma.LayoutNone)
//	kernel := func(tid guda.ThreadID, args ...interface{}) {
//		frag := ft.New()
//		wmma.FillFragment(frag, 0)
//		_ = wmma.StoreMatrixSyncLayout(tid.Lane(), out, frag, 16, wmma.MemRowMajor)
//	}
//
// None of the operations synchronize: every lane touches a disjoint set of
// coordinates, and ordering between waves is the caller's responsibility.
package wmma
