// Package ocall implements the OCALL Gateway: the per-operation
// marshaling layer that turns a trusted-side call into a request an
// untrusted host can service, either through the Exitless RPC Queue
// (package erq, synchronized via package xbl) or, when that queue is
// absent or full, through a direct enclave-exit call.
//
// Every exported Gateway method follows the same seven-step shape: open
// an untrusted-stack scope, build the operation's argument struct on it
// (or in a host-heap mmap_untrusted buffer for large transfers), copy
// enclave inputs out onto the untrusted stack (or through a
// boundary.Checker into the mmap_untrusted buffer), dispatch, copy
// buffer outputs back in through the Checker, and release the stack scope on every
// exit path including error paths.
package ocall
