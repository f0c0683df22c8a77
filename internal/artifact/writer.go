package artifact

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
)

// Write atomically stores p at path. It writes to a .tmp file first and
// renames on success, so readers never observe a partial artifact.
func Write(path string, p *index.Payload) (Header, error) {
	if err := p.Validate(); err != nil {
		return Header{}, fmt.Errorf("refusing to write invalid payload: %w", err)
	}
	body, err := encodeBody(p)
	if err != nil {
		return Header{}, err
	}
	header := Header{
		Magic:        MagicBytes,
		Version:      FormatVersion,
		Flags:        FlagZstd,
		BodyLen:      uint64(len(body)),
		Checksum:     crc32.ChecksumIEEE(body),
		ExampleCount: uint32(len(p.Examples)),
		CreatedAt:    time.Now().Unix(),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Header{}, fmt.Errorf("creating artifact directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := writeFile(tmpPath, header.encode(), body); err != nil {
		os.Remove(tmpPath)
		return Header{}, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return Header{}, fmt.Errorf("renaming artifact file: %w", err)
	}
	return header, nil
}

// writeFile creates path and writes the chunks to it, synced to disk.
func writeFile(path string, chunks ...[]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating temp artifact file: %w", err)
	}
	for _, chunk := range chunks {
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			return fmt.Errorf("writing artifact: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing artifact file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing artifact file: %w", err)
	}
	return nil
}
