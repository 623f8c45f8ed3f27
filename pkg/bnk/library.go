package bnk

import "strconv"

// Asset is one embedded media payload.
type Asset struct {
	ID   uint32
	Data []byte
	// Modified is set when Data differs from what was last loaded or saved.
	Modified bool
	// Name is the display name assigned from a sidecar index, if any.
	Name string
	// Format tags the encoding of the payload source, e.g. "wem".
	Format string
}

// Size returns the unpadded payload length.
func (a *Asset) Size() int {
	return len(a.Data)
}

// Key returns the asset id as the decimal string used by sidecar indexes.
func (a *Asset) Key() string {
	return strconv.FormatUint(uint64(a.ID), 10)
}

// DisplayName returns the assigned name or the decimal id.
func (a *Asset) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Key()
}

// AssetLibrary is the ordered catalog of embedded assets. Its order is the
// media index order and is the order assets are written back in.
type AssetLibrary struct {
	assets []*Asset
	byID   map[uint32]*Asset
}

// NewAssetLibrary builds a library over assets. Asset ids must be unique.
func NewAssetLibrary(assets []*Asset) *AssetLibrary {
	lib := &AssetLibrary{
		assets: assets,
		byID:   make(map[uint32]*Asset, len(assets)),
	}
	for _, a := range assets {
		lib.byID[a.ID] = a
	}
	return lib
}

// Len returns the number of assets.
func (l *AssetLibrary) Len() int {
	return len(l.assets)
}

// Assets returns the assets in library order. The pointers are shared with
// the library.
func (l *AssetLibrary) Assets() []*Asset {
	return l.assets
}

// At returns the asset at position i.
func (l *AssetLibrary) At(i int) *Asset {
	return l.assets[i]
}

// Get looks an asset up by id.
func (l *AssetLibrary) Get(id uint32) (*Asset, bool) {
	a, ok := l.byID[id]
	return a, ok
}

// ModifiedCount returns how many assets carry the modified flag.
func (l *AssetLibrary) ModifiedCount() int {
	n := 0
	for _, a := range l.assets {
		if a.Modified {
			n++
		}
	}
	return n
}

// NamedCount returns how many assets have a display name.
func (l *AssetLibrary) NamedCount() int {
	n := 0
	for _, a := range l.assets {
		if a.Name != "" {
			n++
		}
	}
	return n
}

// TotalSize returns the sum of all unpadded payload lengths.
func (l *AssetLibrary) TotalSize() int {
	total := 0
	for _, a := range l.assets {
		total += len(a.Data)
	}
	return total
}

// ClearNames resets every display name.
func (l *AssetLibrary) ClearNames() {
	clearNames(l.assets)
}

// snapshot returns a library over copies of the assets. Payload slices are
// shared; they are replaced on edit, never written into.
func (l *AssetLibrary) snapshot() *AssetLibrary {
	assets := make([]*Asset, len(l.assets))
	for i, a := range l.assets {
		cp := *a
		assets[i] = &cp
	}
	return NewAssetLibrary(assets)
}

func (l *AssetLibrary) markSaved() {
	for _, a := range l.assets {
		a.Modified = false
	}
}

func clearNames(assets []*Asset) {
	for _, a := range assets {
		a.Name = ""
	}
}
