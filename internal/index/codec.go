package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	nsierrors "github.com/standardbeagle/nsi/internal/errors"
)

// Binary index file layout: 4-byte magic, 8-byte big-endian xxhash64 of the
// payload, msgpack payload of the store with delta-encoded position lists.
// The codec is strict: any mismatch fails the whole file.
const fileMagic = "NSI1"

// WriteText writes the canonical human-inspectable dump: terms in byte-lex
// order, docIDs numeric ascending, positions in natural order. The meta
// block is not part of this form.
func WriteText(w io.Writer, s *Store) error {
	bw := bufio.NewWriter(w)
	for _, term := range s.Terms() {
		docs := s.Index[term]
		if _, err := fmt.Fprintf(bw, "%s %d\n", term, len(docs)); err != nil {
			return err
		}
		for _, docID := range s.DocsFor(term) {
			positions := docs[docID]
			strs := make([]string, len(positions))
			for i, p := range positions {
				strs[i] = strconv.Itoa(p)
			}
			if _, err := fmt.Fprintf(bw, "\t%s: %s\n", docID, strings.Join(strs, ",")); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// encoded returns a delta-encoded copy of the store. The input store is
// frozen at this point and never mutated.
func encoded(s *Store) *Store {
	out := &Store{
		Meta:  s.Meta,
		Index: make(map[string]map[string][]int, len(s.Index)),
	}
	for term, docs := range s.Index {
		enc := make(map[string][]int, len(docs))
		for docID, positions := range docs {
			enc[docID] = EncodeDelta(positions)
		}
		out.Index[term] = enc
	}
	return out
}

// decoded reverses encoded in place on a freshly deserialized store.
func decoded(s *Store) {
	for term, docs := range s.Index {
		for docID, deltas := range docs {
			s.Index[term][docID] = DecodeDelta(deltas)
		}
	}
}

// Encode serializes the store to the compact binary form.
func Encode(s *Store) ([]byte, error) {
	payload, err := msgpack.Marshal(encoded(s))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index payload: %w", err)
	}

	buf := make([]byte, 0, len(fileMagic)+8+len(payload))
	buf = append(buf, fileMagic...)
	buf = binary.BigEndian.AppendUint64(buf, xxhash.Sum64(payload))
	buf = append(buf, payload...)
	return buf, nil
}

// Decode deserializes the compact binary form. Wrong magic, checksum
// mismatch and payload errors are all fatal for the file.
func Decode(data []byte) (*Store, error) {
	if len(data) < len(fileMagic)+8 {
		return nil, nsierrors.NewInputError("decode index", "", fmt.Errorf("file too short: %d bytes", len(data)))
	}
	if !bytes.Equal(data[:len(fileMagic)], []byte(fileMagic)) {
		return nil, nsierrors.NewInputError("decode index", "", fmt.Errorf("bad magic %q", data[:len(fileMagic)]))
	}
	sum := binary.BigEndian.Uint64(data[len(fileMagic) : len(fileMagic)+8])
	payload := data[len(fileMagic)+8:]
	if got := xxhash.Sum64(payload); got != sum {
		return nil, nsierrors.NewInputError("decode index", "", fmt.Errorf("checksum mismatch: header %016x, payload %016x", sum, got))
	}

	s := NewStore()
	if err := msgpack.Unmarshal(payload, s); err != nil {
		return nil, nsierrors.NewInputError("decode index", "", err)
	}
	if s.Index == nil {
		s.Index = make(map[string]map[string][]int)
	}
	decoded(s)
	return s, nil
}

// WriteFile writes the store as a binary index file.
func WriteFile(path string, s *Store) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nsierrors.NewFileError("write index", path, err)
	}
	return nil
}

// ReadFile loads a binary index file.
func ReadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nsierrors.NewFileError("read index", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		if ie, ok := err.(*nsierrors.InputError); ok {
			ie.Input = path
		}
		return nil, err
	}
	return s, nil
}
