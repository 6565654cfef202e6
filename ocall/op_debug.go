package ocall

import (
	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
)

// LoadDebug implements the load_debug OCALL: a single NUL-terminated
// command string crossing to the host, no return payload beyond the
// result code.
func (g *Gateway) LoadDebug(command string) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	cmdPtr, ok := copyStringIn(stack, command)
	if !ok {
		return 0, ocallerr.New("load_debug", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[LoadDebugArgs](stack)
	if err != nil {
		return 0, err
	}
	args.Command = cmdPtr

	return g.exitlessOCALL(CodeLoadDebug, argsPtr)
}

// Attestation holds the four enclave-owned copies produced by
// GetAttestation, each freshly allocated Go memory independent of the
// host buffers the dispatcher returned them in.
type Attestation struct {
	Quote     []byte
	IASReport []byte
	Signature []byte
	CertChain []byte
}

// GetAttestation implements the get_attestation OCALL (spec.md §8, P8):
// the host hands back four separate host-memory blobs (quote, IAS report,
// signature, certificate chain); each is copied into freshly allocated
// enclave memory. All four host regions are deferred for unmapping as
// soon as the dispatcher call succeeds, before any copy is attempted, so
// a failure partway through the sequence still unmaps the blobs that
// hadn't been copied yet rather than leaking them. If any single copy
// fails, every enclave buffer already produced by this call is discarded
// (left for the garbage collector; there is no enclave-side "free"
// primitive to call).
func (g *Gateway) GetAttestation(userReportData []byte) (*Attestation, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	reportPtr, ok := stack.CopyIn(userReportData)
	if !ok {
		return nil, ocallerr.New("get_attestation", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[GetAttestationArgs](stack)
	if err != nil {
		return nil, err
	}
	args.UserReportData = reportPtr

	res, err := g.exitlessOCALL(CodeGetAttestation, argsPtr)
	if err != nil {
		return nil, err
	}
	if res < 0 {
		return nil, ocallerr.New("get_attestation", ocallerr.EPERM)
	}

	defer g.unmapAttestationBlob(args.Quote)
	defer g.unmapAttestationBlob(args.IASReport)
	defer g.unmapAttestationBlob(args.Signature)
	defer g.unmapAttestationBlob(args.CertChain)

	quote, err := copyAttestationBlob(g.checker, args.Quote, int(args.QuoteLen))
	if err != nil {
		return nil, err
	}
	iasReport, err := copyAttestationBlob(g.checker, args.IASReport, int(args.IASLen))
	if err != nil {
		return nil, err
	}
	signature, err := copyAttestationBlob(g.checker, args.Signature, int(args.SigLen))
	if err != nil {
		return nil, err
	}
	certChain, err := copyAttestationBlob(g.checker, args.CertChain, int(args.CertLen))
	if err != nil {
		return nil, err
	}

	return &Attestation{
		Quote:     quote,
		IASReport: iasReport,
		Signature: signature,
		CertChain: certChain,
	}, nil
}

// unmapAttestationBlob releases the host region behind one attestation
// blob pointer, if any was returned at all.
func (g *Gateway) unmapAttestationBlob(p boundary.HostPtr[byte]) {
	if p.IsNil() {
		return
	}
	_ = g.dispatcher.MunmapUntrusted(p)
}

// copyAttestationBlob copies one of the four attestation blobs into a
// fresh enclave buffer. Unmapping the host region that held it is the
// caller's responsibility (see GetAttestation's deferred unmaps).
func copyAttestationBlob(c *boundary.Checker, p boundary.HostPtr[byte], n int) ([]byte, error) {
	if n <= 0 || p.IsNil() {
		return nil, nil
	}
	dst := make([]byte, n)
	if _, err := c.CopyToEnclave(boundary.EnclavePtrFromBytes(dst), n, p, n); err != nil {
		return nil, ocallerr.Wrap("get_attestation", ocallerr.EPERM, err)
	}
	return dst, nil
}
