// Package wasmtest assembles small WASI preview1 command modules for tests.
package wasmtest

// Value types and opcodes used by the hand-assembled test modules.
const (
	i32 = 0x7f
	i64 = 0x7e

	opCall     = 0x10
	opEnd      = 0x0b
	opIf       = 0x04
	opLocalGet = 0x20
	opLocalTee = 0x22
	opI32Load  = 0x28
	opI32Const = 0x41
	opI64Const = 0x42
)

// WASI preview1 errno values.
const (
	ErrnoBadf  = 8
	ErrnoExist = 20
)

func uleb(v uint32) []byte {
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

func vec(items ...[]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func section(id byte, payload []byte) []byte {
	out := append([]byte{id}, uleb(uint32(len(payload)))...)
	return append(out, payload...)
}

func funcType(params, results []byte) []byte {
	out := append([]byte{0x60}, uleb(uint32(len(params)))...)
	out = append(out, params...)
	out = append(out, uleb(uint32(len(results)))...)
	return append(out, results...)
}

// Import is a wasi_snapshot_preview1 function import.
type Import struct {
	name    string
	params  []byte
	results []byte
}

// Segment is an active data segment at a one-byte offset.
type Segment struct {
	offset byte
	data   string
}

// BuildStartModule assembles a module whose _start imports the given WASI
// functions (indices 0..n-1), declares locals and runs body.
func BuildStartModule(imports []Import, locals []byte, body []byte, data []Segment) []byte {
	var types, imps [][]byte
	for i, imp := range imports {
		types = append(types, funcType(imp.params, imp.results))
		entry := append(name("wasi_snapshot_preview1"), name(imp.name)...)
		entry = append(entry, 0x00)
		entry = append(entry, uleb(uint32(i))...)
		imps = append(imps, entry)
	}
	startType := uint32(len(types))
	startFunc := uint32(len(imports))
	types = append(types, funcType(nil, nil))

	var localDecls [][]byte
	for _, l := range locals {
		localDecls = append(localDecls, []byte{0x01, l})
	}
	code := append(vec(localDecls...), body...)
	code = append(code, opEnd)

	var segs [][]byte
	for _, d := range data {
		seg := []byte{0x00, opI32Const, d.offset, opEnd}
		segs = append(segs, append(seg, name(d.data)...))
	}

	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, section(1, vec(types...))...)
	if len(imps) > 0 {
		mod = append(mod, section(2, vec(imps...))...)
	}
	mod = append(mod, section(3, vec(uleb(startType)))...)
	mod = append(mod, section(5, []byte{0x01, 0x00, 0x01})...)
	mod = append(mod, section(7, vec(
		append(name("memory"), 0x02, 0x00),
		append(append(name("_start"), 0x00), uleb(startFunc)...),
	))...)
	mod = append(mod, section(10, vec(append(uleb(uint32(len(code))), code...)))...)
	if len(segs) > 0 {
		mod = append(mod, section(11, vec(segs...))...)
	}
	return mod
}

var (
	importProcExit = Import{name: "proc_exit", params: []byte{i32}}
	importMkdir    = Import{
		name:    "path_create_directory",
		params:  []byte{i32, i32, i32},
		results: []byte{i32},
	}
	importPathOpen = Import{
		name:    "path_open",
		params:  []byte{i32, i32, i32, i32, i32, i64, i64, i32, i32},
		results: []byte{i32},
	}
	importFdWrite = Import{
		name:    "fd_write",
		params:  []byte{i32, i32, i32, i32},
		results: []byte{i32},
	}
)

// MkdirModule creates "made" in the first preopen and exits with the errno.
func MkdirModule() []byte {
	body := []byte{
		opI32Const, 3,
		opI32Const, 0,
		opI32Const, 4,
		opCall, 0,
		opCall, 1,
	}
	return BuildStartModule(
		[]Import{importMkdir, importProcExit},
		nil, body,
		[]Segment{{offset: 0, data: "made"}},
	)
}

// WriteModule creates "out.txt" in the first preopen, writes "hello" to it
// and exits with the errno of the first failing call.
func WriteModule() []byte {
	body := []byte{
		opI32Const, 3, // dirfd
		opI32Const, 0, // lookupflags
		opI32Const, 0, // path
		opI32Const, 7, // path len
		opI32Const, 1, // O_CREAT
		opI64Const, 0x7f, // all rights
		opI64Const, 0x7f,
		opI32Const, 0, // fdflags
		opI32Const, 24, // result fd
		opCall, 0,
		opLocalTee, 0,
		opIf, 0x40,
		opLocalGet, 0,
		opCall, 2,
		opEnd,
		opI32Const, 24,
		opI32Load, 0x02, 0x00,
		opI32Const, 16, // iovec
		opI32Const, 1,
		opI32Const, 28, // nwritten
		opCall, 1,
		opCall, 2,
	}
	return BuildStartModule(
		[]Import{importPathOpen, importFdWrite, importProcExit},
		[]byte{i32}, body,
		[]Segment{
			{offset: 0, data: "out.txt"},
			{offset: 8, data: "hello"},
			{offset: 16, data: "\x08\x00\x00\x00\x05\x00\x00\x00"},
		},
	)
}

// StdoutModule writes "hello" to fd 1 and exits with the errno.
func StdoutModule() []byte {
	body := []byte{
		opI32Const, 1,
		opI32Const, 16, // iovec
		opI32Const, 1,
		opI32Const, 28, // nwritten
		opCall, 0,
		opCall, 1,
	}
	return BuildStartModule(
		[]Import{importFdWrite, importProcExit},
		nil, body,
		[]Segment{
			{offset: 8, data: "hello"},
			{offset: 16, data: "\x08\x00\x00\x00\x05\x00\x00\x00"},
		},
	)
}
