package artifact

import (
	"errors"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

// Read loads and validates the artifact at path. A missing file yields
// ErrArtifactNotFound; anything unreadable yields ErrCorruptArtifact.
func Read(path string) (*index.Payload, Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Header{}, apperrors.Newf(apperrors.ErrArtifactNotFound, "%s", path)
		}
		return nil, Header{}, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	header, err := decodeHeader(data)
	if err != nil {
		return nil, Header{}, apperrors.Newf(apperrors.ErrCorruptArtifact, "%s: %v", path, err)
	}
	body := data[HeaderSize:]
	if uint64(len(body)) != header.BodyLen {
		return nil, Header{}, apperrors.Newf(apperrors.ErrCorruptArtifact,
			"%s: body is %d bytes, header says %d", path, len(body), header.BodyLen)
	}
	if sum := crc32.ChecksumIEEE(body); sum != header.Checksum {
		return nil, Header{}, apperrors.Newf(apperrors.ErrCorruptArtifact,
			"%s: checksum mismatch %08x != %08x", path, sum, header.Checksum)
	}
	p, err := decodeBody(body)
	if err != nil {
		return nil, Header{}, apperrors.Newf(apperrors.ErrCorruptArtifact, "%s: %v", path, err)
	}
	if uint32(len(p.Examples)) != header.ExampleCount {
		return nil, Header{}, apperrors.Newf(apperrors.ErrCorruptArtifact,
			"%s: %d examples, header says %d", path, len(p.Examples), header.ExampleCount)
	}
	return p, header, nil
}
