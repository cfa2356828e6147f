package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the hashing AST serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed content hashes.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const HashVersion byte = 1

// AST node type tags. Each tag uniquely identifies a node kind in the
// serialized byte stream.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Literal values
	TagNumberLiteral byte = 0x01
	TagStringLiteral byte = 0x02

	// Host references
	TagIdentifier   byte = 0x08
	TagMemberAccess byte = 0x09

	// Expressions
	TagInvocation byte = 0x10
	TagAssignment byte = 0x11
	TagIncDec     byte = 0x12
	TagBinary     byte = 0x13

	// Statements
	TagPrint    byte = 0x20
	TagExprStmt byte = 0x21
	TagBlock    byte = 0x22
	TagIf       byte = 0x23
	TagWhile    byte = 0x24
	TagFor      byte = 0x25

	// Absent optional child (else branch, for clauses)
	TagAbsent byte = 0x30

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagNumberLiteral, TagStringLiteral,
	TagIdentifier, TagMemberAccess,
	TagInvocation, TagAssignment, TagIncDec, TagBinary,
	TagPrint, TagExprStmt, TagBlock, TagIf, TagWhile, TagFor,
	TagAbsent,
}
