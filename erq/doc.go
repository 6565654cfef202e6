// Package erq implements the Exitless RPC Queue: a bounded multi-producer
// multi-consumer ring of Request Descriptors living in host memory.
// Producers are enclave-side goroutines issuing OCALLs; consumers are
// untrusted RPC worker goroutines (see package hostsim for a reference
// worker pool).
//
// Enqueue never blocks: a full queue returns false immediately so the
// caller can fall back to a direct enclave-exit call (spec.md §4.4's
// backpressure rule). The ring itself carries no ordering guarantee
// between requests from different producers; a single producer's request
// is made linearizable by blocking on the Request Descriptor's lock after
// a successful enqueue, not by the queue.
package erq
