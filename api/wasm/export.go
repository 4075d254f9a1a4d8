//go:build wasm

package wasm

// This file documents the exports a stylesheet engine add-on must provide.
// Add-ons implement them with //go:wasmexport (or the equivalent in their
// toolchain).
//
// Pointers and lengths are uint32 because Wasm linear memory is 32-bit.
// Functions returning a buffer pack it as ptr<<32 | len in a uint64; the host
// releases returned buffers with free.
//
// //go:wasmexport alloc
// func alloc(size uint32) uint32
//
// //go:wasmexport free
// func free(ptr, size uint32)
//
// // parse reads a JSON ParseRequest and returns a JSON ParseResponse.
// //go:wasmexport parse
// func parse(ptr, length uint32) uint64
//
// // complete reads a JSON CompleteRequest and returns a JSON CompleteResponse.
// // The handle from parse is released once complete returns.
// //go:wasmexport complete
// func complete(ptr, length uint32) uint64
//
// Add-ons may import host.log_message(level, ptr, length uint32) to write
// into the server log (0 = debug, 1 = info, 2 = warn, 3 = error).
