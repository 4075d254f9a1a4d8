// Package wasmtest assembles tiny engine add-on binaries for tests.
//
// The generated modules follow the add-on ABI (memory, alloc, free, parse,
// complete) without a compiler toolchain: alloc always returns the same
// scratch buffer, free does nothing, and parse/complete either echo their
// input, return a fixed response from a data segment, or trap.
package wasmtest

const (
	scratchOffset  = 16384
	parseOffset    = 1024
	completeOffset = 8192
)

// Value types and opcodes used below.
const (
	i32 = 0x7f
	i64 = 0x7e

	opUnreachable = 0x00
	opEnd         = 0x0b
	opLocalGet    = 0x20
	opI32Const    = 0x41
	opI64Const    = 0x42
	opI64Or       = 0x84
	opI64Shl      = 0x86
	opI64ExtendU  = 0xad
)

// Guest describes a fake engine add-on.
type Guest struct {
	// ParseResponse is returned verbatim by parse. Empty echoes the request.
	ParseResponse string

	// CompleteResponse is returned verbatim by complete. Empty echoes the request.
	CompleteResponse string

	// Trap makes parse and complete execute unreachable.
	Trap bool

	// OmitComplete leaves complete out of the exports.
	OmitComplete bool
}

// Bytes returns the encoded module.
func (g Guest) Bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// Types: 0 (i32)->i32, 1 (i32,i32)->(), 2 (i32,i32)->i64
	out = append(out, section(1, vec(
		[]byte{0x60, 1, i32, 1, i32},
		[]byte{0x60, 2, i32, i32, 0},
		[]byte{0x60, 2, i32, i32, 1, i64},
	))...)

	// Functions: alloc, free, parse, complete
	out = append(out, section(3, vec([]byte{0}, []byte{1}, []byte{2}, []byte{2}))...)

	// One page of memory.
	out = append(out, section(5, vec([]byte{0x00, 0x01}))...)

	exports := [][]byte{
		export("memory", 0x02, 0),
		export("alloc", 0x00, 0),
		export("free", 0x00, 1),
		export("parse", 0x00, 2),
	}
	if !g.OmitComplete {
		exports = append(exports, export("complete", 0x00, 3))
	}
	out = append(out, section(7, vec(exports...))...)

	alloc := append(append([]byte{0x00, opI32Const}, sleb(scratchOffset)...), opEnd)
	free := []byte{0x00, opEnd}
	out = append(out, section(10, vec(
		body(alloc),
		body(free),
		body(g.responder(g.ParseResponse, parseOffset)),
		body(g.responder(g.CompleteResponse, completeOffset)),
	))...)

	var segments [][]byte
	if g.ParseResponse != "" {
		segments = append(segments, dataSegment(parseOffset, g.ParseResponse))
	}
	if g.CompleteResponse != "" {
		segments = append(segments, dataSegment(completeOffset, g.CompleteResponse))
	}
	if len(segments) > 0 {
		out = append(out, section(11, vec(segments...))...)
	}

	return out
}

// responder builds a (ptr, len) -> packed buffer function body.
func (g Guest) responder(response string, offset int64) []byte {
	code := []byte{0x00} // no locals
	switch {
	case g.Trap:
		code = append(code, opUnreachable)
	case response == "":
		code = append(code,
			opLocalGet, 0, opI64ExtendU,
			opI64Const, 32, opI64Shl,
			opLocalGet, 1, opI64ExtendU,
			opI64Or,
		)
	default:
		code = append(code, opI64Const)
		code = append(code, sleb(offset)...)
		code = append(code, opI64Const, 32, opI64Shl, opI64Const)
		code = append(code, sleb(int64(len(response)))...)
		code = append(code, opI64Or)
	}
	return append(code, opEnd)
}

func section(id byte, content []byte) []byte {
	out := append([]byte{id}, uleb(uint64(len(content)))...)
	return append(out, content...)
}

func vec(items ...[]byte) []byte {
	out := uleb(uint64(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func body(code []byte) []byte {
	return append(uleb(uint64(len(code))), code...)
}

func export(name string, kind byte, index uint64) []byte {
	out := append(uleb(uint64(len(name))), name...)
	out = append(out, kind)
	return append(out, uleb(index)...)
}

func dataSegment(offset int64, data string) []byte {
	out := []byte{0x00, opI32Const}
	out = append(out, sleb(offset)...)
	out = append(out, opEnd)
	out = append(out, uleb(uint64(len(data)))...)
	return append(out, data...)
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
