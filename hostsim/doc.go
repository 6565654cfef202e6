// Package hostsim is a minimal, in-process stand-in for the untrusted host
// process an enclave's OCALL Gateway talks to. It implements
// ocall.HostDispatcher by proxying most operations onto the real host
// kernel (a sandboxed temp directory for the filesystem OCALLs, real Unix
// domain sockets for the networking ones, a real futex word and eventfd
// where the OCALL is itself a futex/eventfd primitive), and fabricates
// fixed, clearly-synthetic data for the handful of operations this module
// has no business implementing for real (cpuid register values, thread
// scheduling, attestation blobs).
//
// hostsim exists for tests. It is not a reference host-side OCALL dispatcher: real dispatcher
// semantics, manifest/policy enforcement, and enclave-thread scheduling
// are out of scope for this module (see SPEC_FULL.md's Non-goals).
package hostsim
