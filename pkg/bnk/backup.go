package bnk

import (
	"errors"
	"os"

	"github.com/hansbonini/bnktools/pkg/common"
	"github.com/klauspost/compress/zstd"
)

// BackupSuffix is appended to a bank path to name its backup.
const BackupSuffix = ".bak.zst"

// BackupPath returns where the backup of the bank at path is stored.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// WriteBackup stores the current contents of path, zstd compressed, at
// BackupPath(path). A missing path is not an error; there is nothing to back
// up and ok is false.
func WriteBackup(path string) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, ioErr(common.ErrFailedToCreateBackup, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return false, ioErr(common.ErrFailedToCreateBackup, err)
	}
	compressed := enc.EncodeAll(data, make([]byte, 0, len(data)/2))
	enc.Close()

	if err := writeFileAtomic(BackupPath(path), compressed, 0644); err != nil {
		return false, err
	}
	common.LogInfo(common.InfoBackupCreated, BackupPath(path))
	return true, nil
}

// ReadBackup returns the decompressed backup of the bank at path.
func ReadBackup(path string) ([]byte, error) {
	compressed, err := os.ReadFile(BackupPath(path))
	if err != nil {
		return nil, ioErr(common.ErrFailedToRestoreBackup, err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, ioErr(common.ErrFailedToRestoreBackup, err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, &FormatError{Reason: "corrupt backup: " + err.Error()}
	}
	return data, nil
}

// RestoreBackup replaces the bank at path with its backup. The backup is
// kept.
func RestoreBackup(path string) error {
	data, err := ReadBackup(path)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return err
	}
	common.LogInfo(common.InfoBackupRestored, BackupPath(path))
	return nil
}
