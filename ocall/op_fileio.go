package ocall

import (
	"github.com/joeycumines/go-ocall-gateway/boundary"
	"github.com/joeycumines/go-ocall-gateway/ocallerr"
)

// Open implements the open OCALL: the path crosses as a NUL-terminated
// string copied onto the untrusted stack.
func (g *Gateway) Open(path string, flags int32, mode uint32) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	pathPtr, ok := copyStringIn(stack, path)
	if !ok {
		return 0, ocallerr.New("open", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[OpenArgs](stack)
	if err != nil {
		return 0, err
	}
	args.Path = pathPtr
	args.Flags = flags
	args.Mode = mode

	res, err := g.exitlessOCALL(CodeOpen, argsPtr)
	if err != nil {
		return 0, err
	}
	if res < 0 {
		return res, nil
	}
	return args.FD, nil
}

// Close implements the close OCALL.
func (g *Gateway) Close(fd int32) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[CloseArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd

	return g.exitlessOCALL(CodeClose, argsPtr)
}

// Read implements the read OCALL's fixed semantics (spec.md §4.5 step 7):
// large transfers route through mmap_untrusted instead of the USA, and on
// success the Gateway copies exactly min(reported, count) bytes back into
// the caller's enclave buffer.
func (g *Gateway) Read(fd int32, buf []byte) (int, error) {
	count := len(buf)
	if count == 0 {
		return 0, nil
	}

	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	hostBuf, freeBuf, err := g.acquireIOBuffer(stack, count)
	if err != nil {
		return 0, err
	}
	defer freeBuf()

	args, argsPtr, err := allocArgs[ReadArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Buf = hostBuf
	args.Count = int32(count)

	res, err := g.exitlessOCALL(CodeRead, argsPtr)
	if err != nil {
		return 0, err
	}
	if res < 0 {
		return 0, nil
	}

	n := int(args.NumRead)
	if n > count {
		n = count
	}
	if n < 0 {
		n = 0
	}
	if n == 0 {
		return 0, nil
	}
	copied, err := g.checker.CopyToEnclave(boundary.EnclavePtrFromBytes(buf), count, boundary.Cast[byte](hostBuf), n)
	if err != nil {
		return 0, err
	}
	return copied, nil
}

// Write implements the enclave-buffer half of the write/send
// classification rule of spec.md §4.5 step 7: a small buffer is
// USA-copied and a large one goes through mmap_untrusted+memcpy. Write
// always copies; the zero-copy pass-through of a host-resident buffer and
// the rejection of a straddling one are done by WriteHostBuf (see
// marshalOutboundBuffer).
func (g *Gateway) Write(fd int32, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	hostBuf, free, err := g.marshalOutboundBuffer(stack, buf)
	if err != nil {
		return 0, err
	}
	defer free()

	args, argsPtr, err := allocArgs[WriteArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Buf = hostBuf
	args.Count = int32(len(buf))

	res, err := g.exitlessOCALL(CodeWrite, argsPtr)
	if err != nil {
		return 0, err
	}
	if res < 0 {
		return 0, nil
	}
	n := int(args.NumWrote)
	if n > len(buf) {
		n = len(buf)
	}
	return n, nil
}

// Fstat implements the fstat OCALL, a fixed-size bit-copied struct (no
// variable-length content, so no large-buffer path applies).
func (g *Gateway) Fstat(fd int32) (size int64, mode uint32, mtime int64, err error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[FstatArgs](stack)
	if err != nil {
		return 0, 0, 0, err
	}
	args.FD = fd

	if _, err := g.exitlessOCALL(CodeFstat, argsPtr); err != nil {
		return 0, 0, 0, err
	}
	return args.Size, args.Mode, args.MTime, nil
}

// Lseek implements the lseek OCALL.
func (g *Gateway) Lseek(fd int32, offset int64, whence int32) (int64, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	args, argsPtr, err := allocArgs[LseekArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Offset = offset
	args.Whence = whence

	if _, err := g.exitlessOCALL(CodeLseek, argsPtr); err != nil {
		return 0, err
	}
	return args.NewOff, nil
}

// Mkdir implements the mkdir OCALL.
func (g *Gateway) Mkdir(path string, mode uint32) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	pathPtr, ok := copyStringIn(stack, path)
	if !ok {
		return 0, ocallerr.New("mkdir", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[MkdirArgs](stack)
	if err != nil {
		return 0, err
	}
	args.Path = pathPtr
	args.Mode = mode

	return g.exitlessOCALL(CodeMkdir, argsPtr)
}

// Getdents implements the getdents OCALL; buf receives raw host-format
// directory entries, clamped to len(buf).
func (g *Gateway) Getdents(fd int32, buf []byte) (int, error) {
	count := len(buf)
	if count == 0 {
		return 0, nil
	}

	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	hostBuf, freeBuf, err := g.acquireIOBuffer(stack, count)
	if err != nil {
		return 0, err
	}
	defer freeBuf()

	args, argsPtr, err := allocArgs[GetdentsArgs](stack)
	if err != nil {
		return 0, err
	}
	args.FD = fd
	args.Buf = hostBuf
	args.Count = int32(count)

	res, err := g.exitlessOCALL(CodeGetdents, argsPtr)
	if err != nil {
		return 0, err
	}
	if res < 0 {
		return 0, nil
	}
	n := int(args.NumRead)
	if n > count {
		n = count
	}
	if n <= 0 {
		return 0, nil
	}
	return g.checker.CopyToEnclave(boundary.EnclavePtrFromBytes(buf), count, boundary.Cast[byte](hostBuf), n)
}

// Rename implements the rename OCALL.
func (g *Gateway) Rename(oldPath, newPath string) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	oldPtr, ok := copyStringIn(stack, oldPath)
	if !ok {
		return 0, ocallerr.New("rename", ocallerr.EPERM)
	}
	newPtr, ok := copyStringIn(stack, newPath)
	if !ok {
		return 0, ocallerr.New("rename", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[RenameArgs](stack)
	if err != nil {
		return 0, err
	}
	args.OldPath = oldPtr
	args.NewPath = newPtr

	return g.exitlessOCALL(CodeRename, argsPtr)
}

// Delete implements the delete OCALL (unlink or rmdir, by isDir).
func (g *Gateway) Delete(path string, isDir bool) (int32, error) {
	stack := g.acquireStack()
	defer g.releaseStack(stack)
	guard := stack.Mark()
	defer guard.Release()

	pathPtr, ok := copyStringIn(stack, path)
	if !ok {
		return 0, ocallerr.New("delete", ocallerr.EPERM)
	}

	args, argsPtr, err := allocArgs[DeleteArgs](stack)
	if err != nil {
		return 0, err
	}
	args.Path = pathPtr
	args.IsDir = isDir

	return g.exitlessOCALL(CodeDelete, argsPtr)
}
