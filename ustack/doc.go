// Package ustack implements the Untrusted-Stack Allocator (USA): a bump
// allocator rooted in host memory, reset per OCALL.
//
// A Stack is single-threaded: exactly one goroutine may hold it between a
// Mark and the matching Guard.Release, matching spec.md's "all allocations
// within a single OCALL live on one thread's US" (I1) and "the USA is
// single-threaded per enclave thread; no cross-thread sharing of US
// allocations" invariant. Per the design note in SPEC_FULL.md (OQ-1), the
// ocall package hands out Stacks from a sync.Pool, one per call, rather
// than pinning them to OS threads, since Go has no stable thread handle.
package ustack
