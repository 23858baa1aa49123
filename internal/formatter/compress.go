package formatter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedExtension is appended to paths written by [WriteCompressedFile].
const CompressedExtension = ".zst"

// WriteCompressedFile renders the export in format and writes it zstd
// compressed to path, adding [CompressedExtension] when path lacks it.
func WriteCompressedFile(format Format, export *Export, path string) (string, error) {
	if path == "" {
		path = "catalog." + Extension(format)
	}
	if !strings.HasSuffix(path, CompressedExtension) {
		path += CompressedExtension
	}

	data, err := Render(format, export)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", fmt.Errorf("failed to start compression: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return "", fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to finish compression: %w", err)
	}
	return path, nil
}

// ReadCompressedFile returns the decompressed contents of a file written by [WriteCompressedFile].
func ReadCompressedFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to start decompression: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return data, nil
}
