package vm

import (
	"bytes"
	"errors"
	"testing"
)

func TestProgramCBORRoundTrip(t *testing.T) {
	p := countdown()
	p.Append(PushString("done"), PushInt(0), PushInt(-5), CallMethod("Add", 2))

	data, err := MarshalProgram(p)
	if err != nil {
		t.Fatalf("MarshalProgram: %v", err)
	}
	got, err := UnmarshalProgram(data)
	if err != nil {
		t.Fatalf("UnmarshalProgram: %v", err)
	}
	if !got.Equal(p) {
		t.Errorf("round trip mismatch:\n%s\nwant:\n%s", got.Disassemble(), p.Disassemble())
	}
}

func TestProgramCBORDeterministic(t *testing.T) {
	a, err := MarshalProgram(countdown())
	if err != nil {
		t.Fatalf("MarshalProgram: %v", err)
	}
	b, err := MarshalProgram(countdown())
	if err != nil {
		t.Fatalf("MarshalProgram: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("equal programs encoded differently")
	}
}

func TestUnmarshalProgramRejectsUnknownOpcode(t *testing.T) {
	data, err := MarshalProgram(NewProgram(PushInt(1), Simple(Opcode(0xEE))))
	if err != nil {
		t.Fatalf("MarshalProgram: %v", err)
	}
	if _, err := UnmarshalProgram(data); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("err = %v, want ErrUnknownOpcode", err)
	}
}

func TestUnmarshalProgramGarbage(t *testing.T) {
	if _, err := UnmarshalProgram([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for malformed input")
	}
	if _, err := MarshalProgram(nil); err == nil {
		t.Error("expected error for nil program")
	}
}
