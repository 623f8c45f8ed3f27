package bnk

import (
	"io"

	"github.com/hansbonini/bnktools/pkg/common"
	"gopkg.in/yaml.v3"
)

// Manifest describes the layout a bank would be written with.
type Manifest struct {
	Version   uint32            `yaml:"version"`
	BankID    uint32            `yaml:"bank_id"`
	Size      int               `yaml:"size"`
	Sections  []ManifestSection `yaml:"sections"`
	Assets    []ManifestAsset   `yaml:"assets,omitempty"`
	Modified  int               `yaml:"modified"`
	Trailing  int               `yaml:"trailing_bytes,omitempty"`
	MediaSize int               `yaml:"media_size"`
}

// ManifestSection is one chunk of the rebuilt layout.
type ManifestSection struct {
	Tag    string `yaml:"tag"`
	Kind   string `yaml:"kind"`
	Offset int    `yaml:"offset"`
	Size   int    `yaml:"size"`
}

// ManifestAsset is one embedded asset of the rebuilt layout. Offset is
// relative to the media data payload.
type ManifestAsset struct {
	ID       uint32 `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Offset   int    `yaml:"offset"`
	Size     int    `yaml:"size"`
	Padded   int    `yaml:"padded"`
	Format   string `yaml:"format,omitempty"`
	Modified bool   `yaml:"modified,omitempty"`
}

// BuildManifest computes the manifest of c from its current state, without
// serializing it.
func BuildManifest(c *Container) *Manifest {
	assets := c.Library.Assets()
	m := &Manifest{
		Modified:  c.Library.ModifiedCount(),
		Trailing:  len(c.Trailing),
		MediaSize: c.Library.TotalSize(),
	}
	if c.Header != nil {
		m.Version = c.Header.Version
		m.BankID = c.Header.BankID
	}

	sizes := make([]int, len(assets))
	for i, a := range assets {
		sizes[i] = len(a.Data)
	}

	offset := 0
	for _, s := range c.Sections {
		var size int
		switch sec := s.(type) {
		case *HeaderSection:
			size = HeaderFixedSize + len(sec.Tail)
		case *AssetIndexSection:
			size = len(assets) * IndexRecordSize
		case *AssetDataSection:
			size = PaddedLength(sizes)
		case *OpaqueSection:
			size = len(sec.Payload)
		}
		m.Sections = append(m.Sections, ManifestSection{
			Tag:    common.PrintableTag(s.Kind().Tag()),
			Kind:   s.Kind().String(),
			Offset: offset,
			Size:   size,
		})
		offset += ChunkHeaderSize + size
	}
	m.Size = offset + len(c.Trailing)

	rel := 0
	for i, a := range assets {
		padded := Pad16(len(a.Data))
		if i == len(assets)-1 {
			padded = len(a.Data)
		}
		m.Assets = append(m.Assets, ManifestAsset{
			ID:       a.ID,
			Name:     a.Name,
			Offset:   rel,
			Size:     len(a.Data),
			Padded:   padded,
			Format:   a.Format,
			Modified: a.Modified,
		})
		rel += padded
	}
	return m
}

// WriteManifest encodes m as YAML.
func WriteManifest(w io.Writer, m *Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return ioErr(common.ErrFailedToWriteManifest, err)
	}
	if err := enc.Close(); err != nil {
		return ioErr(common.ErrFailedToWriteManifest, err)
	}
	return nil
}
