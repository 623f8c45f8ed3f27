// Package pkg provides the high level sound bank operations behind the
// command line tools.
// This file wires the container engine to files on disk.
package pkg

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/hansbonini/bnktools/pkg/bnk"
	"github.com/hansbonini/bnktools/pkg/common"
)

// BNKProcessor runs whole-file operations on sound banks
type BNKProcessor struct {
	config *common.Config
	codec  bnk.AudioCodec
}

// NewBNKProcessor creates a new processor using cfg. A nil cfg selects the
// defaults.
func NewBNKProcessor(cfg *common.Config) *BNKProcessor {
	if cfg == nil {
		cfg = common.DefaultConfig()
	}
	return &BNKProcessor{config: cfg, codec: bnk.PassthroughCodec{}}
}

// SetCodec replaces the audio codec used for extraction and import
func (p *BNKProcessor) SetCodec(codec bnk.AudioCodec) {
	p.codec = codec
}

func (p *BNKProcessor) editorOptions() bnk.EditorOptions {
	return bnk.EditorOptions{
		HistoryLimit: p.config.HistoryLimit,
		Backup:       p.config.Backup,
		Workers:      p.config.Workers,
		Codec:        p.codec,
	}
}

func (p *BNKProcessor) batchOptions() bnk.BatchOptions {
	return bnk.BatchOptions{
		Format:   p.config.ExtractFormat,
		Workers:  p.config.Workers,
		Progress: logProgress,
	}
}

func logProgress(pr bnk.Progress) {
	common.LogDebug(common.DebugProgress, pr.Done, pr.Total)
}

// open loads a bank into an editing session and logs its summary
func (p *BNKProcessor) open(ctx context.Context, path string) (*bnk.Editor, error) {
	ed, err := bnk.Open(ctx, path, p.editorOptions())
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenBank, err)
	}
	c := ed.Container()
	common.LogInfo(common.InfoBankOpened, path, c.Header.Version, c.Header.BankID, c.Library.Len())
	return ed, nil
}

// save writes the session to outputFile, or back to its source when
// outputFile is empty
func (p *BNKProcessor) save(ctx context.Context, ed *bnk.Editor, outputFile string) error {
	var err error
	if outputFile == "" {
		err = ed.Save(ctx)
	} else {
		err = ed.SaveAs(ctx, outputFile)
	}
	if err != nil {
		return common.FormatError(common.ErrFailedToSaveBank, err)
	}
	return nil
}

// Info loads a bank and returns its manifest
func (p *BNKProcessor) Info(ctx context.Context, inputFile string) (*bnk.Manifest, error) {
	ed, err := p.open(ctx, inputFile)
	if err != nil {
		return nil, err
	}
	defer ed.Close()

	return bnk.BuildManifest(ed.Container()), nil
}

// WriteManifest writes the YAML manifest of a bank to w. When namesFile is
// set, display names are assigned from it first.
func (p *BNKProcessor) WriteManifest(ctx context.Context, inputFile, namesFile string, w io.Writer) error {
	ed, err := p.open(ctx, inputFile)
	if err != nil {
		return err
	}
	defer ed.Close()

	if namesFile != "" {
		if _, err := ed.AssignNames(ctx, namesFile, logProgress); err != nil {
			return common.FormatError(common.ErrFailedToAssignNames, err)
		}
	}
	if err := bnk.WriteManifest(w, bnk.BuildManifest(ed.Container())); err != nil {
		return common.FormatError(common.ErrFailedToWriteManifest, err)
	}
	return nil
}

// WriteManifestFile writes the manifest of a bank to outputFile
func (p *BNKProcessor) WriteManifestFile(ctx context.Context, inputFile, namesFile, outputFile string) error {
	f, err := os.Create(outputFile)
	if err != nil {
		return common.FormatError(common.ErrFailedToWriteManifest, err)
	}
	if err := p.WriteManifest(ctx, inputFile, namesFile, f); err != nil {
		f.Close()
		os.Remove(outputFile)
		return err
	}
	if err := f.Close(); err != nil {
		return common.FormatError(common.ErrFailedToWriteManifest, err)
	}
	common.LogInfo(common.InfoManifestWritten, outputFile)
	return nil
}

// Extract writes every embedded asset of a bank into outputDir. With a
// names file the extracted files are named after the assigned names.
func (p *BNKProcessor) Extract(ctx context.Context, inputFile, outputDir, namesFile string) ([]string, error) {
	ed, err := p.open(ctx, inputFile)
	if err != nil {
		return nil, err
	}
	defer ed.Close()

	opts := p.batchOptions()
	if namesFile != "" {
		if _, err := ed.AssignNames(ctx, namesFile, logProgress); err != nil {
			return nil, common.FormatError(common.ErrFailedToAssignNames, err)
		}
		opts.UseNames = true
	}

	paths, err := ed.ExtractAll(ctx, outputDir, opts)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToExtractAssets, err)
	}
	common.LogInfo(common.InfoAssetsExtracted, len(paths), outputDir)
	return paths, nil
}

// Replace swaps one embedded asset for the contents of payloadFile and
// saves the bank
func (p *BNKProcessor) Replace(ctx context.Context, inputFile, assetID, payloadFile, outputFile string) error {
	id, err := parseAssetID(assetID)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(payloadFile)
	if err != nil {
		return common.FormatError(common.ErrFailedToReadPayload, err)
	}

	ed, err := p.open(ctx, inputFile)
	if err != nil {
		return err
	}
	defer ed.Close()

	if err := ed.Replace(id, data, bnk.DefaultAssetFormat); err != nil {
		return common.FormatError(common.ErrFailedToReplaceAsset, err)
	}
	return p.save(ctx, ed, outputFile)
}

// Import replaces every asset that has a matching file in inputDir and
// saves the bank. It returns the number of replaced assets.
func (p *BNKProcessor) Import(ctx context.Context, inputFile, inputDir, namesFile, outputFile string) (int, error) {
	ed, err := p.open(ctx, inputFile)
	if err != nil {
		return 0, err
	}
	defer ed.Close()

	if namesFile != "" {
		if _, err := ed.AssignNames(ctx, namesFile, logProgress); err != nil {
			return 0, common.FormatError(common.ErrFailedToAssignNames, err)
		}
	}

	n, err := ed.Import(ctx, inputDir, p.batchOptions())
	if err != nil {
		return 0, common.FormatError(common.ErrFailedToImportAssets, err)
	}
	common.LogInfo(common.InfoAssetsImported, n, inputDir)
	if n == 0 {
		return 0, nil
	}
	if err := p.save(ctx, ed, outputFile); err != nil {
		return 0, err
	}
	return n, nil
}

// AssignNames matches the assets of a bank against a text index and
// returns the asset id to name mapping that resulted
func (p *BNKProcessor) AssignNames(ctx context.Context, inputFile, namesFile string) (map[uint32]string, error) {
	ed, err := p.open(ctx, inputFile)
	if err != nil {
		return nil, err
	}
	defer ed.Close()

	if _, err := ed.AssignNames(ctx, namesFile, logProgress); err != nil {
		return nil, common.FormatError(common.ErrFailedToAssignNames, err)
	}

	names := make(map[uint32]string)
	for _, a := range ed.Library().Assets() {
		if a.Name != "" {
			names[a.ID] = a.Name
		}
	}
	return names, nil
}

// Verify checks that a bank rebuilds byte for byte
func (p *BNKProcessor) Verify(ctx context.Context, inputFile string) (*bnk.VerifyReport, error) {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenBank, err)
	}
	report, err := bnk.Verify(ctx, data)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToParseBank, err)
	}
	if report.Identical {
		common.LogInfo(common.InfoRoundTripOK, report.RebuiltSize)
	}
	return report, nil
}

// Restore puts back the bank saved before the last overwrite
func (p *BNKProcessor) Restore(inputFile string) error {
	if _, err := os.Stat(bnk.BackupPath(inputFile)); err != nil {
		common.LogWarn(common.WarnNoBackupFound, inputFile)
		return common.FormatError(common.ErrFailedToRestoreBackup, err)
	}
	if err := bnk.RestoreBackup(inputFile); err != nil {
		return common.FormatError(common.ErrFailedToRestoreBackup, err)
	}
	return nil
}

func parseAssetID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, common.FormatErrorString(common.ErrInvalidAssetID, "%q", s)
	}
	return uint32(id), nil
}
