package corpus

import (
	"bytes"
	"encoding/binary"
	"fmt"

	farmhash "github.com/leemcloughlin/gofarmhash"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

// Artifact layout, little-endian:
//
//	magic "NGCP" | format version | fingerprint (8) | n-gram size | flags | docs size (8)
//	documents JSON | index segment
//
// The fingerprint is farmhash64 of everything after it.
const (
	MagicBytes    uint32 = 0x4E474350
	FormatVersion uint32 = 1
	headerSize           = 32
	payloadStart         = 16

	flagFinalWindow uint32 = 1
)

// Encode serialises the corpus. Equal corpora encode to identical bytes.
func (c *Corpus) Encode() ([]byte, error) {
	payload, err := c.payload()
	if err != nil {
		return nil, err
	}
	out := make([]byte, payloadStart, payloadStart+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(out[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(out[8:16], fingerprint(payload))
	return append(out, payload...), nil
}

func (c *Corpus) payload() ([]byte, error) {
	var docs bytes.Buffer
	if err := document.WriteJSON(&docs, c.Documents.Documents()); err != nil {
		return nil, err
	}
	seg, err := segment.Encode(c.Index)
	if err != nil {
		return nil, fmt.Errorf("encoding index: %w", err)
	}

	var flags uint32
	if c.Tokenizer.IncludeFinalWindow {
		flags |= flagFinalWindow
	}
	payload := make([]byte, headerSize-payloadStart, headerSize-payloadStart+docs.Len()+len(seg))
	binary.LittleEndian.PutUint32(payload[0:4], uint32(c.Tokenizer.Size))
	binary.LittleEndian.PutUint32(payload[4:8], flags)
	binary.LittleEndian.PutUint64(payload[8:16], uint64(docs.Len()))
	payload = append(payload, docs.Bytes()...)
	return append(payload, seg...), nil
}

// Decode parses and verifies a corpus artifact. A fingerprint mismatch or
// malformed section yields ErrCorruptArtifact; an index that references
// unknown documents yields ErrIntegrity.
func Decode(data []byte) (*Corpus, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: corpus artifact is %d bytes", apperrors.ErrCorruptArtifact, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != MagicBytes {
		return nil, fmt.Errorf("%w: bad magic bytes %x", apperrors.ErrCorruptArtifact, magic)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported corpus version %d", apperrors.ErrCorruptArtifact, v)
	}
	payload := data[payloadStart:]
	want := binary.LittleEndian.Uint64(data[8:16])
	if got := fingerprint(payload); got != want {
		return nil, fmt.Errorf("%w: fingerprint %016x != %016x", apperrors.ErrCorruptArtifact, got, want)
	}

	size := binary.LittleEndian.Uint32(payload[0:4])
	flags := binary.LittleEndian.Uint32(payload[4:8])
	docsSize := binary.LittleEndian.Uint64(payload[8:16])
	sections := payload[headerSize-payloadStart:]
	if docsSize > uint64(len(sections)) {
		return nil, fmt.Errorf("%w: documents section exceeds artifact", apperrors.ErrCorruptArtifact)
	}

	tok, err := tokenizer.New(int(size), flags&flagFinalWindow != 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCorruptArtifact, err)
	}
	docs, err := document.ReadJSON(bytes.NewReader(sections[:docsSize]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCorruptArtifact, err)
	}
	coll, err := document.NewCollection(docs)
	if err != nil {
		return nil, err
	}
	snap, err := segment.Decode(sections[docsSize:])
	if err != nil {
		return nil, err
	}

	c := &Corpus{
		Version:   versionOf(want),
		Tokenizer: tok,
		Documents: coll,
		Index:     snap,
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

func fingerprint(payload []byte) uint64 {
	return farmhash.Hash64(payload)
}

func versionOf(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
