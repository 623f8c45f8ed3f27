package bnk

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hansbonini/bnktools/pkg/common"
)

// BatchOptions configures the per-asset batch operations.
type BatchOptions struct {
	// Format is the audio format handed to the codec.
	Format string
	// Workers bounds concurrent conversions. Values below 1 mean 1.
	Workers int
	// UseNames names extracted files after assigned display names.
	UseNames bool
	Progress ProgressFunc
}

// Replacement is a converted payload ready to be swapped into an asset.
type Replacement struct {
	AssetID uint32
	Data    []byte
	Format  string
	// Source is the file the payload was read from, if any.
	Source string
}

// ExtractAll converts every asset through codec and writes one file per
// asset into dir. Nothing is written unless every conversion succeeds; if a
// write fails the files already written by this call are removed. The
// written paths are returned in asset order.
func ExtractAll(ctx context.Context, assets []*Asset, dir string, codec AudioCodec, opts BatchOptions) ([]string, error) {
	progress := newProgressReporter(len(assets), opts.Progress)
	defer progress.Close()

	outputs := make([][]byte, len(assets))
	err := runPool(ctx, len(assets), opts.Workers, progress, func(ctx context.Context, i int) error {
		out, err := decodeAsset(ctx, codec, assets[i], opts.Format)
		if err != nil {
			return err
		}
		outputs[i] = out
		return nil
	})
	if err != nil {
		progress.Complete()
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, ioErr(common.ErrFailedToCreateOutputDir, err)
	}

	ext := codec.Extension(opts.Format)
	used := make(map[string]bool, len(assets))
	paths := make([]string, 0, len(assets))
	for i, a := range assets {
		if err := checkCanceled(ctx); err != nil {
			removeAll(paths)
			return nil, err
		}
		name := extractFileName(a, ext, opts.UseNames, used)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, outputs[i], 0644); err != nil {
			removeAll(paths)
			return nil, ioErr("failed to write "+name, err)
		}
		common.LogDebug(common.DebugAssetExtracted, a.ID, path)
		paths = append(paths, path)
	}
	return paths, nil
}

// LoadReplacements scans dir for files named after asset ids (or assigned
// display names) and encodes them through codec. The file extension is the
// source format. No asset is modified; apply the result with
// Editor.ReplaceAll. The replacements are returned in library order.
func LoadReplacements(ctx context.Context, lib *AssetLibrary, dir string, codec AudioCodec, opts BatchOptions) ([]Replacement, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioErr("failed to list "+dir, err)
	}

	// Names that sanitize to the same file name match no asset.
	byName := make(map[string]*Asset)
	ambiguous := make(map[string]bool)
	for _, a := range lib.Assets() {
		if a.Name == "" {
			continue
		}
		key := sanitizeFileName(a.Name)
		if ambiguous[key] {
			continue
		}
		if prev, dup := byName[key]; dup {
			common.LogWarn(common.WarnAmbiguousName, key, prev.ID, a.ID)
			delete(byName, key)
			ambiguous[key] = true
			continue
		}
		byName[key] = a
	}

	type candidate struct {
		asset  *Asset
		path   string
		format string
	}
	var candidates []candidate
	claimed := make(map[uint32]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)

		asset, ok := lookupReplacementTarget(lib, byName, base)
		if !ok {
			common.LogWarn(common.WarnSkippingFile, name, "no matching asset")
			continue
		}
		if prev, dup := claimed[asset.ID]; dup {
			common.LogWarn(common.WarnSkippingFile, name, "asset already claimed by "+prev)
			continue
		}
		claimed[asset.ID] = name
		candidates = append(candidates, candidate{
			asset:  asset,
			path:   filepath.Join(dir, name),
			format: strings.TrimPrefix(strings.ToLower(ext), "."),
		})
	}

	position := make(map[uint32]int, lib.Len())
	for i, a := range lib.Assets() {
		position[a.ID] = i
	}
	sort.Slice(candidates, func(i, j int) bool {
		return position[candidates[i].asset.ID] < position[candidates[j].asset.ID]
	})

	progress := newProgressReporter(len(candidates), opts.Progress)
	defer progress.Close()

	results := make([]Replacement, len(candidates))
	err = runPool(ctx, len(candidates), opts.Workers, progress, func(ctx context.Context, i int) error {
		c := candidates[i]
		raw, err := os.ReadFile(c.path)
		if err != nil {
			return ioErr(common.ErrFailedToReadPayload, err)
		}
		data, err := encodeAsset(ctx, codec, c.asset.ID, raw, c.format)
		if err != nil {
			return err
		}
		results[i] = Replacement{AssetID: c.asset.ID, Data: data, Format: DefaultAssetFormat, Source: c.path}
		return nil
	})
	if err != nil {
		progress.Complete()
		return nil, err
	}
	return results, nil
}

func lookupReplacementTarget(lib *AssetLibrary, byName map[string]*Asset, base string) (*Asset, bool) {
	if id, err := strconv.ParseUint(base, 10, 32); err == nil {
		if a, ok := lib.Get(uint32(id)); ok {
			return a, true
		}
	}
	a, ok := byName[base]
	return a, ok
}

func extractFileName(a *Asset, ext string, useNames bool, used map[string]bool) string {
	base := a.Key()
	if useNames && a.Name != "" {
		base = sanitizeFileName(a.Name)
	}
	name := base + "." + ext
	if used[name] {
		name = base + "_" + a.Key() + "." + ext
	}
	used[name] = true
	return name
}

// sanitizeFileName makes a display name safe to use as a file name.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20, strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), " .")
	if out == "" {
		return "_"
	}
	return out
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
