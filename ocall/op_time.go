package ocall

import "github.com/joeycumines/go-ocall-gateway/ocallerr"

// Gettime implements the gettime OCALL. A host clock read is not
// interruptible by a legitimate signal in the same sense as a blocking
// call, but spec.md §4.5 step 7 still calls for internal EINTR retry
// rather than surfacing it to the enclave caller, since gettime has no
// meaningful partial-progress result to report.
func (g *Gateway) Gettime() (seconds, nanoseconds int64, err error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)

	for {
		guard := stack.Mark()
		args, argsPtr, aerr := allocArgs[GettimeArgs](stack)
		if aerr != nil {
			guard.Release()
			return 0, 0, aerr
		}
		res, cerr := g.exitlessOCALL(CodeGettime, argsPtr)
		if cerr == nil && res >= 0 {
			seconds, nanoseconds = args.Seconds, args.Nanoseconds
		}
		guard.Release()

		if cerr != nil {
			if ocallerr.CodeOf(cerr) == ocallerr.EINTR {
				continue
			}
			return 0, 0, cerr
		}
		// A host signals failure through the negative result code as often
		// as through a Go error; either can carry EINTR, and both must be
		// checked for the retry to ever fire.
		if res < 0 {
			if ocallerr.Code(res) == ocallerr.EINTR {
				continue
			}
			return 0, 0, ocallerr.New("gettime", ocallerr.Code(res))
		}
		return seconds, nanoseconds, nil
	}
}

// Sleep implements the sleep OCALL's fixed rule (spec.md §4.5 step 7):
// sleep always direct-exits, since routing a sleep through the exitless
// queue would tie up a worker for the sleep's whole duration. On EINTR the
// remaining microseconds are handed back to the caller instead of being
// retried internally, mirroring a host nanosleep's usual contract.
func (g *Gateway) Sleep(requestedUs int64) (remainingUs int64, err error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[SleepArgs](stack)
	if err != nil {
		return 0, err
	}
	args.RequestedUs = requestedUs

	res, err := g.directExit(CodeSleep, argsPtr)
	if err != nil {
		if ocallerr.CodeOf(err) == ocallerr.EINTR {
			return args.RemainingUs, nil
		}
		return 0, err
	}
	if res < 0 {
		if ocallerr.Code(res) == ocallerr.EINTR {
			return args.RemainingUs, nil
		}
		return 0, ocallerr.New("sleep", ocallerr.Code(res))
	}
	return 0, nil
}
