package bnk

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/hansbonini/bnktools/pkg/common"
	"golang.org/x/text/encoding/charmap"
)

// AudioSectionMarker opens the embedded media section of a bank's text
// index.
const AudioSectionMarker = "In Memory Audio"

const maxIndexLine = 1 << 20

// AssignNames clears every asset name, then sets names from the
// tab-delimited text index at path. It returns the number of assets that
// received a name. One progress unit is reported per asset, including on
// failure.
func AssignNames(ctx context.Context, assets []*Asset, path string, progress ProgressFunc) (int, error) {
	clearNames(assets)

	f, err := os.Open(path)
	if err != nil {
		completeProgress(len(assets), progress)
		return 0, ioErr("failed to open name index", err)
	}
	defer f.Close()

	return assignNames(ctx, assets, f, progress)
}

// AssignNamesFrom is AssignNames over an already open index.
func AssignNamesFrom(ctx context.Context, assets []*Asset, r io.Reader, progress ProgressFunc) (int, error) {
	clearNames(assets)
	return assignNames(ctx, assets, r, progress)
}

func assignNames(ctx context.Context, assets []*Asset, r io.Reader, fn ProgressFunc) (int, error) {
	progress := newProgressReporter(len(assets), fn)
	defer progress.Close()

	fail := func(err error) (int, error) {
		progress.Complete()
		return 0, err
	}

	if err := checkCanceled(ctx); err != nil {
		return fail(err)
	}

	names, err := readNameIndex(r)
	if err != nil {
		return fail(err)
	}

	if err := checkCanceled(ctx); err != nil {
		return fail(err)
	}

	assigned := 0
	for i, a := range assets {
		if err := checkCanceled(ctx); err != nil {
			// Names set so far are dropped so a canceled run leaves no
			// partial assignment behind.
			clearNames(assets[:i])
			return fail(err)
		}
		if name, ok := names[a.Key()]; ok {
			a.Name = name
			assigned++
		}
		progress.Step()
	}
	return assigned, nil
}

// readNameIndex collects the id to name mapping of the media section.
func readNameIndex(r io.Reader) (map[string]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxIndexLine)

	inSection := false
	names := make(map[string]string)
	for scanner.Scan() {
		fields := strings.Split(decodeIndexLine(scanner.Bytes()), "\t")
		if !inSection {
			if strings.Contains(fields[0], AudioSectionMarker) {
				inSection = true
			}
			continue
		}
		if len(fields) < 3 {
			break
		}
		id := strings.TrimSpace(fields[1])
		name := strings.TrimSpace(fields[2])
		names[id] = name
		common.LogDebug(common.DebugNameMapping, id, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, ioErr("failed to read name index", err)
	}

	if !inSection {
		return nil, &FormatError{Reason: "no audio section found"}
	}
	if len(names) == 0 {
		return nil, &FormatError{Reason: "no event names found"}
	}
	common.LogDebug(common.DebugNameIndexBuilt, len(names))
	return names, nil
}

// decodeIndexLine returns line as text. Index files written by older
// authoring tools use the Windows ANSI code page rather than UTF-8.
func decodeIndexLine(line []byte) string {
	line = bytes.TrimRight(line, "\r")
	if utf8.Valid(line) {
		return string(line)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(line)
	if err != nil {
		return string(line)
	}
	return string(decoded)
}

func completeProgress(total int, fn ProgressFunc) {
	p := newProgressReporter(total, fn)
	p.Complete()
	p.Close()
}
