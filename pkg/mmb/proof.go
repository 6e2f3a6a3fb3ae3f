package mmb

import "github.com/pkg/errors"

// Proof stream opcodes.
const (
	proofTerm     uint8 = 0x10
	proofTermSave uint8 = 0x11
	proofRef      uint8 = 0x12
	proofDummy    uint8 = 0x13
	proofThm      uint8 = 0x14
	proofThmSave  uint8 = 0x15
	proofHyp      uint8 = 0x16
	proofConv     uint8 = 0x17
	proofRefl     uint8 = 0x18
	proofSymm     uint8 = 0x19
	proofCong     uint8 = 0x1A
	proofUnfold   uint8 = 0x1B
	proofConvCut  uint8 = 0x1C
	proofConvRef  uint8 = 0x1D
	proofConvSave uint8 = 0x1E
	proofSave     uint8 = 0x1F
	proofSorry    uint8 = 0x20
)

// ProofCmd is one decoded proof stream command.
type ProofCmd struct {
	Op   uint8
	Data uint32
}

// ProofIter walks one statement's proof stream.
type ProofIter struct {
	buf []byte
	pos int
}

// IsNull reports whether the stream has no commands at all. Sorts and
// non-definition terms must have null proofs.
func (it *ProofIter) IsNull() bool {
	return len(it.buf) == 0 || (len(it.buf) == 1 && it.buf[0] == cmdEnd)
}

// Next decodes the next command, or ok=false at the end marker.
func (it *ProofIter) Next() (ProofCmd, bool, error) {
	if it.pos >= len(it.buf) {
		return ProofCmd{}, false, nil
	}
	op, data, rest, err := readCmd(it.buf[it.pos:])
	if err != nil {
		return ProofCmd{}, false, errors.Wrap(err, "proof stream")
	}
	it.pos = len(it.buf) - len(rest)
	if op == cmdEnd {
		return ProofCmd{}, false, nil
	}
	return ProofCmd{Op: op, Data: data}, true, nil
}
