package hostsim

// attestationBlobs fabricates four clearly-synthetic byte blobs for the
// get_attestation OCALL. Real quote generation, IAS verification, and
// certificate chains are out of scope (see Non-goals); these exist only
// to exercise the Gateway's four-blob copy-in-or-free-all path end to end.
func attestationBlobs(userReportData []byte) (quote, iasReport, signature, certChain []byte) {
	quote = append([]byte("SIMULATED-QUOTE:"), userReportData...)
	iasReport = []byte("SIMULATED-IAS-REPORT")
	signature = []byte("SIMULATED-SIGNATURE")
	certChain = []byte("SIMULATED-CERT-CHAIN")
	return
}
