package hash

import (
	"encoding/binary"
	"fmt"

	"github.com/chazu/capscript/compiler"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of the capscript AST.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Integers: big-endian fixed-width (int32=4B, uint32 lengths=4B)
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Operators and flags: single byte
//   - Child nodes: serialized inline (flat)
//   - Source positions are not serialized
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of a statement
// list. Programs that differ only in whitespace, optional terminators or
// redundant parentheses serialize identically.
func Serialize(stmts []compiler.Stmt) ([]byte, error) {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.writeUint32(uint32(len(stmts)))
	for _, stmt := range stmts {
		if err := s.serializeStmt(stmt); err != nil {
			return nil, err
		}
	}
	return s.buf, nil
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeInt32(v int32) {
	s.writeUint32(uint32(v))
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeBool(v bool) {
	if v {
		s.writeByte(1)
	} else {
		s.writeByte(0)
	}
}

func (s *serializer) serializeStmt(stmt compiler.Stmt) error {
	switch n := stmt.(type) {
	case *compiler.Print:
		s.writeByte(TagPrint)
		return s.serializeExpr(n.Arg)

	case *compiler.ExprStmt:
		s.writeByte(TagExprStmt)
		return s.serializeExpr(n.Expr)

	case *compiler.Block:
		s.writeByte(TagBlock)
		s.writeUint32(uint32(len(n.Statements)))
		for _, inner := range n.Statements {
			if err := s.serializeStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *compiler.If:
		s.writeByte(TagIf)
		if err := s.serializeExpr(n.Cond); err != nil {
			return err
		}
		if err := s.serializeStmt(n.Then); err != nil {
			return err
		}
		return s.optionalStmt(n.Else)

	case *compiler.While:
		s.writeByte(TagWhile)
		if err := s.serializeExpr(n.Cond); err != nil {
			return err
		}
		return s.serializeStmt(n.Body)

	case *compiler.For:
		s.writeByte(TagFor)
		if err := s.optionalStmt(n.Init); err != nil {
			return err
		}
		if err := s.optionalExpr(n.Cond); err != nil {
			return err
		}
		if err := s.optionalExpr(n.Incr); err != nil {
			return err
		}
		return s.serializeStmt(n.Body)
	}
	return fmt.Errorf("hash: cannot serialize statement %T", stmt)
}

func (s *serializer) serializeExpr(expr compiler.Expr) error {
	switch n := expr.(type) {
	case *compiler.NumberLiteral:
		s.writeByte(TagNumberLiteral)
		s.writeInt32(n.Value)
		return nil

	case *compiler.StringLiteral:
		s.writeByte(TagStringLiteral)
		s.writeString(n.Value)
		return nil

	case *compiler.Identifier:
		s.writeByte(TagIdentifier)
		s.writeString(n.Name)
		return nil

	case *compiler.MemberAccess:
		s.writeByte(TagMemberAccess)
		s.writeString(n.Member)
		return s.serializeExpr(n.Target)

	case *compiler.Invocation:
		s.writeByte(TagInvocation)
		s.writeUint32(uint32(len(n.Args)))
		if err := s.serializeExpr(n.Callee); err != nil {
			return err
		}
		for _, arg := range n.Args {
			if err := s.serializeExpr(arg); err != nil {
				return err
			}
		}
		return nil

	case *compiler.Assignment:
		if n.Target == nil {
			break
		}
		s.writeByte(TagAssignment)
		if err := s.serializeExpr(n.Target); err != nil {
			return err
		}
		return s.serializeExpr(n.Value)

	case *compiler.IncDec:
		if n.Target == nil {
			break
		}
		s.writeByte(TagIncDec)
		s.writeByte(byte(n.Op))
		s.writeBool(n.Prefix)
		return s.serializeExpr(n.Target)

	case *compiler.Binary:
		s.writeByte(TagBinary)
		s.writeByte(byte(n.Op))
		if err := s.serializeExpr(n.Left); err != nil {
			return err
		}
		return s.serializeExpr(n.Right)
	}
	return fmt.Errorf("hash: cannot serialize expression %T", expr)
}

func (s *serializer) optionalStmt(stmt compiler.Stmt) error {
	if stmt == nil {
		s.writeByte(TagAbsent)
		return nil
	}
	return s.serializeStmt(stmt)
}

func (s *serializer) optionalExpr(expr compiler.Expr) error {
	if expr == nil {
		s.writeByte(TagAbsent)
		return nil
	}
	return s.serializeExpr(expr)
}
