package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

// reader holds a verified segment ahead of decoding its postings.
type reader struct {
	header   Header
	dict     []DictEntry
	postings []byte
}

// openReader verifies and parses a segment.
func openReader(data []byte) (*reader, error) {
	if len(data) < HeaderSize+FooterSize {
		return nil, fmt.Errorf("%w: segment is %d bytes", apperrors.ErrCorruptArtifact, len(data))
	}
	body, footer := data[:len(data)-FooterSize], data[len(data)-FooterSize:]
	if binary.LittleEndian.Uint32(footer[4:8]) != MagicBytes {
		return nil, fmt.Errorf("%w: bad footer magic", apperrors.ErrCorruptArtifact)
	}
	if got, want := crc32.ChecksumIEEE(body), binary.LittleEndian.Uint32(footer[0:4]); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch %08x != %08x", apperrors.ErrCorruptArtifact, got, want)
	}

	header := Header{
		Magic:      binary.LittleEndian.Uint32(body[0:4]),
		Version:    binary.LittleEndian.Uint32(body[4:8]),
		TermCount:  binary.LittleEndian.Uint32(body[8:12]),
		DocCount:   binary.LittleEndian.Uint32(body[12:16]),
		PostOffset: binary.LittleEndian.Uint64(body[16:24]),
		PostSize:   binary.LittleEndian.Uint64(body[24:32]),
		DictOffset: binary.LittleEndian.Uint64(body[32:40]),
		DictSize:   binary.LittleEndian.Uint64(body[40:48]),
	}
	if header.Magic != MagicBytes {
		return nil, fmt.Errorf("%w: bad magic bytes %x", apperrors.ErrCorruptArtifact, header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported segment version %d", apperrors.ErrCorruptArtifact, header.Version)
	}
	size := uint64(len(body))
	if header.PostOffset+header.PostSize > size || header.DictOffset+header.DictSize > size {
		return nil, fmt.Errorf("%w: section bounds exceed segment size", apperrors.ErrCorruptArtifact)
	}

	postings, err := snappy.Decode(nil, body[header.PostOffset:header.PostOffset+header.PostSize])
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing postings: %v", apperrors.ErrCorruptArtifact, err)
	}
	var dict []DictEntry
	if err := json.Unmarshal(body[header.DictOffset:header.DictOffset+header.DictSize], &dict); err != nil {
		return nil, fmt.Errorf("%w: parsing dictionary: %v", apperrors.ErrCorruptArtifact, err)
	}
	if len(dict) != int(header.TermCount) {
		return nil, fmt.Errorf("%w: dictionary has %d terms, header says %d",
			apperrors.ErrCorruptArtifact, len(dict), header.TermCount)
	}
	return &reader{header: header, dict: dict, postings: postings}, nil
}

func (r *reader) decode(entry DictEntry) (index.PostingList, error) {
	start, end := entry.PostOffset, entry.PostOffset+int64(entry.PostLen)
	if start < 0 || end > int64(len(r.postings)) || start > end {
		return nil, fmt.Errorf("%w: postings for %q out of bounds", apperrors.ErrCorruptArtifact, entry.Term)
	}
	buf := r.postings[start:end]
	count, n := binary.Uvarint(buf)
	if n <= 0 || int(count) != entry.DocFreq {
		return nil, fmt.Errorf("%w: bad posting count for %q", apperrors.ErrCorruptArtifact, entry.Term)
	}
	buf = buf[n:]
	list := make(index.PostingList, 0, count)
	var prev uint64
	for i := uint64(0); i < count; i++ {
		delta, n := binary.Uvarint(buf)
		if n <= 0 {
			return nil, fmt.Errorf("%w: truncated postings for %q", apperrors.ErrCorruptArtifact, entry.Term)
		}
		buf = buf[n:]
		prev += delta
		if prev > document.MaxID {
			return nil, fmt.Errorf("%w: id %d in %q", apperrors.ErrIDOutOfRange, prev, entry.Term)
		}
		list = append(list, document.ID(prev))
	}
	return list, nil
}

// Decode parses a segment into an index snapshot.
func Decode(data []byte) (*index.Snapshot, error) {
	r, err := openReader(data)
	if err != nil {
		return nil, err
	}
	return r.snapshot()
}

func (r *reader) snapshot() (*index.Snapshot, error) {
	entries := make([]index.TermEntry, 0, len(r.dict))
	for _, entry := range r.dict {
		list, err := r.decode(entry)
		if err != nil {
			return nil, err
		}
		entries = append(entries, index.TermEntry{Term: entry.Term, Postings: list})
	}
	snap, err := index.NewSnapshot(entries)
	if err != nil {
		return nil, err
	}
	if snap.DocCount() != int(r.header.DocCount) {
		return nil, fmt.Errorf("%w: %d documents decoded, header says %d",
			apperrors.ErrCorruptArtifact, snap.DocCount(), r.header.DocCount)
	}
	return snap, nil
}
