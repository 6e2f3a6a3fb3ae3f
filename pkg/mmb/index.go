package mmb

import (
	"bytes"

	"github.com/pkg/errors"
)

// NameIndex is the optional debugging index at the end of an .mmb file:
// one u64 name pointer per sort, term, and assertion, in table order, each
// pointing at a NUL-terminated string. Files without an index still verify
// but report declarations by number only.
type NameIndex struct {
	SortNames []string
	TermNames []string
	ThmNames  []string
}

func parseName(f *File, ptr uint64) (string, error) {
	if ptr >= uint64(len(f.buf)) {
		return "", errors.Errorf("mmb: name pointer %d out of bounds", ptr)
	}
	end := bytes.IndexByte(f.buf[ptr:], 0)
	if end < 0 {
		return "", errors.New("mmb: unterminated name in index")
	}
	return string(f.buf[ptr : int(ptr)+end]), nil
}

func parseNameIndex(f *File) (*NameIndex, error) {
	h := f.Header
	n := int(h.NumSorts) + int(h.NumTerms) + int(h.NumThms)
	buf, err := f.slice(uint32(h.IndexStart), n*8)
	if err != nil {
		return nil, err
	}
	index := &NameIndex{}
	for i := 0; i < n; i++ {
		ptr, _, err := parseU64(buf[i*8:])
		if err != nil {
			return nil, err
		}
		name, err := parseName(f, ptr)
		if err != nil {
			return nil, err
		}
		switch {
		case i < int(h.NumSorts):
			index.SortNames = append(index.SortNames, name)
		case i < int(h.NumSorts)+int(h.NumTerms):
			index.TermNames = append(index.TermNames, name)
		default:
			index.ThmNames = append(index.ThmNames, name)
		}
	}
	return index, nil
}

func (ix *NameIndex) SortName(id SortID) (string, error) {
	if int(id) >= len(ix.SortNames) {
		return "", errors.Errorf("mmb: no indexed name for sort %d", id)
	}
	return ix.SortNames[id], nil
}

func (ix *NameIndex) TermName(id TermID) (string, error) {
	if int(id) >= len(ix.TermNames) {
		return "", errors.Errorf("mmb: no indexed name for term %d", id)
	}
	return ix.TermNames[id], nil
}

func (ix *NameIndex) ThmName(id ThmID) (string, error) {
	if int(id) >= len(ix.ThmNames) {
		return "", errors.Errorf("mmb: no indexed name for assertion %d", id)
	}
	return ix.ThmNames[id], nil
}
