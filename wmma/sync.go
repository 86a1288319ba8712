package wmma

import (
	guda "github.com/LynnColeArt/guda-wmma"
)

// FillFragment sets every element of the lane's storage to value. Memory is
// not touched; store the fragment to materialize the value.
func FillFragment[T Element](f *Fragment[T], value T) {
	data := f.storage.Data()
	for i := range data {
		data[i] = value
	}
}

// LoadMatrixSync loads the lane's share of the tile starting at data, using
// the fragment type's storage layout and leading dimension ldm.
func LoadMatrixSync[T Element](lane uint32, f *Fragment[T], data []T, ldm uint32) error {
	if f.typ.layout == LayoutNone {
		return guda.NewInvalidArgErrorf("LoadMatrixSync", "%s has no storage layout, use LoadMatrixSyncLayout", f.typ)
	}
	return loadLayout(lane, f, data, ldm, f.typ.layout)
}

// LoadMatrixSyncLayout loads with an explicit storage layout. It is the
// accumulator form; for fragments with a fixed layout, layout must match it.
func LoadMatrixSyncLayout[T Element](lane uint32, f *Fragment[T], data []T, ldm uint32, layout Layout) error {
	if err := checkLayout("LoadMatrixSyncLayout", f.typ, layout); err != nil {
		return err
	}
	return loadLayout(lane, f, data, ldm, layout)
}

// StoreMatrixSync stores the lane's share of the tile to data, using the
// fragment type's storage layout and leading dimension ldm.
func StoreMatrixSync[T Element](lane uint32, data []T, f *Fragment[T], ldm uint32) error {
	if f.typ.layout == LayoutNone {
		return guda.NewInvalidArgErrorf("StoreMatrixSync", "%s has no storage layout, use StoreMatrixSyncLayout", f.typ)
	}
	return storeLayout(lane, data, f, ldm, f.typ.layout)
}

// StoreMatrixSyncLayout stores with an explicit storage layout.
func StoreMatrixSyncLayout[T Element](lane uint32, data []T, f *Fragment[T], ldm uint32, layout Layout) error {
	if err := checkLayout("StoreMatrixSyncLayout", f.typ, layout); err != nil {
		return err
	}
	return storeLayout(lane, data, f, ldm, layout)
}

func checkLayout[T Element](op string, ft *FragmentType[T], layout Layout) error {
	if layout != MemRowMajor && layout != MemColMajor {
		return guda.NewInvalidArgErrorf(op, "layout must be row_major or col_major, got %s", layout)
	}
	if ft.layout != LayoutNone && ft.layout != layout {
		return guda.NewInvalidArgErrorf(op, "%s cannot be used with %s memory", ft, layout)
	}
	return nil
}

func checkLane(op string, lane uint32) error {
	if lane >= WaveSize {
		return guda.NewInvalidArgErrorf(op, "lane %d outside a %d-lane wave", lane, WaveSize)
	}
	return nil
}

// loadLayout dispatches to the engine instantiated for the storage layout.
func loadLayout[T Element](lane uint32, f *Fragment[T], data []T, ldm uint32, layout Layout) error {
	if err := checkLane("LoadMatrixSync", lane); err != nil {
		return err
	}
	if layout == MemColMajor {
		f.typ.col.load.Exec(lane, data, &f.storage, ldm)
	} else {
		f.typ.row.load.Exec(lane, data, &f.storage, ldm)
	}
	return nil
}

func storeLayout[T Element](lane uint32, data []T, f *Fragment[T], ldm uint32, layout Layout) error {
	if err := checkLane("StoreMatrixSync", lane); err != nil {
		return err
	}
	if layout == MemColMajor {
		f.typ.col.store.Exec(lane, data, &f.storage, ldm)
	} else {
		f.typ.row.store.Exec(lane, data, &f.storage, ldm)
	}
	return nil
}
