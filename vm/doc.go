// Package vm implements the capscript virtual machine.
//
// This package contains:
//   - Stack bytecode: opcodes, instructions and programs
//   - Runtime values (int, string, host object, null)
//   - The label-linked interpreter loop
//   - Host capability tables gating script access to Go objects
//   - A canonical CBOR wire format for compiled programs
package vm
