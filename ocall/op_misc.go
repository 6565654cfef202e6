package ocall

// Eventfd implements the eventfd OCALL: a thin pass-through yielding a
// host file descriptor the enclave can later poll.
func (g *Gateway) Eventfd(initVal uint32, flags int32) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[EventfdArgs](stack)
	if err != nil {
		return 0, err
	}
	args.InitVal = initVal
	args.Flags = flags

	if _, err := g.exitlessOCALL(CodeEventfd, argsPtr); err != nil {
		return 0, err
	}
	return args.FD, nil
}
