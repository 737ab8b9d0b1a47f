// Package segment serialises index snapshots. A segment is a self-contained
// byte blob: a fixed header, a snappy-compressed postings block of
// delta-encoded ids, a JSON term dictionary, and a crc32 footer. Encoding is
// deterministic, so equal snapshots produce identical bytes.
package segment

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/index"
)

// MagicBytes identifies a segment ("NGIX").
const (
	MagicBytes    uint32 = 0x4E474958
	FormatVersion uint32 = 1
	HeaderSize    int    = 48
	FooterSize    int    = 8
)

// Header is the fixed-size prefix of every segment.
type Header struct {
	Magic      uint32
	Version    uint32
	TermCount  uint32
	DocCount   uint32
	PostOffset uint64
	PostSize   uint64
	DictOffset uint64
	DictSize   uint64
}

// DictEntry maps a term to its postings within the uncompressed postings
// block.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

// Encode serialises snap into a new byte slice.
func Encode(snap *index.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Write(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serialises snap to w and returns the number of bytes written.
func Write(w io.Writer, snap *index.Snapshot) (int64, error) {
	if snap == nil {
		return 0, fmt.Errorf("cannot write nil snapshot")
	}

	var postings bytes.Buffer
	dict := make([]DictEntry, 0, snap.TermCount())
	varint := make([]byte, binary.MaxVarintLen64)
	snap.Each(func(term string, list index.PostingList) bool {
		offset := postings.Len()
		n := binary.PutUvarint(varint, uint64(len(list)))
		postings.Write(varint[:n])
		var prev uint64
		for _, id := range list {
			n = binary.PutUvarint(varint, uint64(id)-prev)
			postings.Write(varint[:n])
			prev = uint64(id)
		}
		dict = append(dict, DictEntry{
			Term:       term,
			PostOffset: int64(offset),
			PostLen:    postings.Len() - offset,
			DocFreq:    len(list),
		})
		return true
	})

	compressed := snappy.Encode(nil, postings.Bytes())
	dictData, err := json.Marshal(dict)
	if err != nil {
		return 0, fmt.Errorf("marshaling dictionary: %w", err)
	}

	header := Header{
		Magic:      MagicBytes,
		Version:    FormatVersion,
		TermCount:  uint32(snap.TermCount()),
		DocCount:   uint32(snap.DocCount()),
		PostOffset: uint64(HeaderSize),
		PostSize:   uint64(len(compressed)),
		DictOffset: uint64(HeaderSize + len(compressed)),
		DictSize:   uint64(len(dictData)),
	}
	headerBytes := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(headerBytes[0:4], header.Magic)
	binary.LittleEndian.PutUint32(headerBytes[4:8], header.Version)
	binary.LittleEndian.PutUint32(headerBytes[8:12], header.TermCount)
	binary.LittleEndian.PutUint32(headerBytes[12:16], header.DocCount)
	binary.LittleEndian.PutUint64(headerBytes[16:24], header.PostOffset)
	binary.LittleEndian.PutUint64(headerBytes[24:32], header.PostSize)
	binary.LittleEndian.PutUint64(headerBytes[32:40], header.DictOffset)
	binary.LittleEndian.PutUint64(headerBytes[40:48], header.DictSize)

	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)
	var written int64
	for _, part := range [][]byte{headerBytes, compressed, dictData} {
		n, err := mw.Write(part)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("writing segment: %w", err)
		}
	}
	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc.Sum32())
	binary.LittleEndian.PutUint32(footer[4:8], MagicBytes)
	n, err := w.Write(footer)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("writing footer: %w", err)
	}
	return written, nil
}
