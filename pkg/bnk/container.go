package bnk

import (
	"context"
	"io"
	"os"
)

// Container is an open bank: its chunks in source order and the asset
// library built from the media chunks.
type Container struct {
	// Sections in the order they appeared in the source.
	Sections []Section
	Header   *HeaderSection
	Library  *AssetLibrary
	// Trailing holds bytes after the last chunk too short to form a header.
	Trailing []byte
}

// Load inspects and parses r. Cancellation is checked between the two
// phases; no partial container is ever returned.
func Load(ctx context.Context, r io.ReadSeeker) (*Container, error) {
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	descs, trailing, err := Inspect(r)
	if err != nil {
		return nil, err
	}
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	c, err := Parse(r, descs)
	if err != nil {
		return nil, err
	}
	c.Trailing = trailing
	return c, nil
}

// OpenFile loads the bank stored at path. The file is read sequentially and
// closed before OpenFile returns; the container keeps no handle on it.
func OpenFile(ctx context.Context, path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErr("failed to open bank", err)
	}
	defer f.Close()
	return Load(ctx, f)
}

// Order returns the chunk kinds in source order.
func (c *Container) Order() []ChunkKind {
	order := make([]ChunkKind, len(c.Sections))
	for i, s := range c.Sections {
		order[i] = s.Kind()
	}
	return order
}

// Section returns the section of the given kind, if present.
func (c *Container) Section(kind ChunkKind) (Section, bool) {
	for _, s := range c.Sections {
		if s.Kind() == kind {
			return s, true
		}
	}
	return nil, false
}

// HasMedia reports whether the bank carries embedded assets.
func (c *Container) HasMedia() bool {
	_, ok := c.Section(KindAssetIndex)
	return ok
}

// Close disposes of the model. The container must not be used afterwards.
func (c *Container) Close() error {
	c.Sections = nil
	c.Header = nil
	c.Library = NewAssetLibrary(nil)
	c.Trailing = nil
	return nil
}

func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CancellationError{Err: err}
	}
	return nil
}
