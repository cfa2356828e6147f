package vm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Wire format: canonical CBOR
// ---------------------------------------------------------------------------

// cborEncMode encodes canonically so equal programs always produce equal
// bytes, which lets the hash and store layers key on the encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalProgram serializes a Program to CBOR bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("vm: marshal program: nil program")
	}
	data, err := cborEncMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("vm: marshal program: %w", err)
	}
	return data, nil
}

// UnmarshalProgram deserializes a Program from CBOR bytes, rejecting any
// instruction whose opcode is not part of the instruction set.
func UnmarshalProgram(data []byte) (*Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("vm: unmarshal program: %w", err)
	}
	for i, in := range p.Instructions {
		if !in.Op.Valid() {
			return nil, fmt.Errorf("vm: unmarshal program: instruction %d: %w: 0x%02X",
				i, ErrUnknownOpcode, byte(in.Op))
		}
	}
	return &p, nil
}
