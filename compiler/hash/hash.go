package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/chazu/capscript/compiler"
	"github.com/chazu/capscript/vm"
)

// Key is a SHA-256 content hash.
type Key [32]byte

// Hex returns the lowercase hex form of k.
func (k Key) Hex() string {
	return hex.EncodeToString(k[:])
}

func (k Key) String() string {
	return k.Hex()[:12]
}

// ParseKey decodes the Hex form of a key.
func ParseKey(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, err
	}
	if len(b) != len(k) {
		return k, fmt.Errorf("hash: key length %d, want %d", len(b), len(k))
	}
	copy(k[:], b)
	return k, nil
}

// SourceKey hashes the exact source text. Any byte difference, whitespace
// included, yields a different key.
func SourceKey(source string) Key {
	return sha256.Sum256([]byte(source))
}

// HashStatements computes the structural hash of parsed statements: the
// SHA-256 of their deterministic serialization. Sources that differ only in
// layout share a structural hash but not a SourceKey.
func HashStatements(stmts []compiler.Stmt) (Key, error) {
	data, err := Serialize(stmts)
	if err != nil {
		return Key{}, err
	}
	return sha256.Sum256(data), nil
}

// HashSource parses source and returns its structural hash.
func HashSource(source string) (Key, error) {
	stmts, err := compiler.Parse(source)
	if err != nil {
		return Key{}, err
	}
	return HashStatements(stmts)
}

// ProgramHash hashes the canonical CBOR encoding of a compiled program.
// Equal instruction sequences always hash equally.
func ProgramHash(p *vm.Program) (Key, error) {
	data, err := vm.MarshalProgram(p)
	if err != nil {
		return Key{}, err
	}
	return sha256.Sum256(data), nil
}
