// Package boundary implements the Boundary Memory Checker (BMC): the
// predicates and copy primitives that classify a byte range as entirely
// inside the enclave, entirely inside the host, or straddling the two, and
// the only functions permitted to move bytes or pointers across that line.
//
// Only the host region is a fixed, explicitly carved-out range that every
// check validates strictly against; any address that doesn't overlap it
// counts as enclave memory, the same way Gramine treats its one
// designated untrusted range as the boundary and trusts the rest of the
// enclave's reserved address space by elimination. This lets ordinary
// Go-allocated buffers inside enclave code (read destinations, attestation
// blob targets, and so on) pass enclave-side checks without being carved
// out of one specific backing array up front.
//
// A tagged HostPtr/EnclavePtr pair (per the design note in SPEC_FULL.md)
// stands in for the untyped pointer arithmetic of the original C OCALL
// layer: an EnclavePtr can never be passed where a HostPtr is expected, and
// neither can be dereferenced directly. Checker.CopyToEnclave,
// Checker.CopyToHost and CopyPtrToEnclave are the only supported
// ways to move data between the two.
package boundary
