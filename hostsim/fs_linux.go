//go:build linux

package hostsim

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// resolvePath joins a guest-relative path onto the simulator's sandboxed
// root, refusing to escape it. Gramine's host dispatcher would resolve
// paths against the manifest's filesystem mounts; this module does not
// implement mount tables (see Non-goals), so every path lives under one
// temp directory instead.
func (s *Simulator) resolvePath(path string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimPrefix(path, "/"))
	full := filepath.Join(s.root, clean)
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", unix.EINVAL
	}
	return full, nil
}

func (s *Simulator) sysOpen(path string, flags int32, mode uint32) (int32, error) {
	full, err := s.resolvePath(path)
	if err != nil {
		return -1, err
	}
	fd, err := unix.Open(full, int(flags), mode)
	if err != nil {
		return -1, err
	}
	return int32(fd), nil
}

func (s *Simulator) sysClose(fd int32) error {
	return unix.Close(int(fd))
}

func (s *Simulator) sysRead(fd int32, buf []byte) (int, error) {
	return unix.Read(int(fd), buf)
}

func (s *Simulator) sysWrite(fd int32, buf []byte) (int, error) {
	return unix.Write(int(fd), buf)
}

func (s *Simulator) sysFstat(fd int32) (size int64, mode uint32, mtime int64, err error) {
	var st unix.Stat_t
	if err = unix.Fstat(int(fd), &st); err != nil {
		return 0, 0, 0, err
	}
	return st.Size, st.Mode, int64(st.Mtim.Sec), nil
}

func (s *Simulator) sysLseek(fd int32, offset int64, whence int32) (int64, error) {
	return unix.Seek(int(fd), offset, int(whence))
}

func (s *Simulator) sysMkdir(path string, mode uint32) error {
	full, err := s.resolvePath(path)
	if err != nil {
		return err
	}
	return unix.Mkdir(full, mode)
}

func (s *Simulator) sysGetdents(fd int32, buf []byte) (int, error) {
	return unix.Getdents(int(fd), buf)
}

func (s *Simulator) sysRename(oldPath, newPath string) error {
	oldFull, err := s.resolvePath(oldPath)
	if err != nil {
		return err
	}
	newFull, err := s.resolvePath(newPath)
	if err != nil {
		return err
	}
	return unix.Rename(oldFull, newFull)
}

func (s *Simulator) sysDelete(path string, isDir bool) error {
	full, err := s.resolvePath(path)
	if err != nil {
		return err
	}
	if isDir {
		return unix.Rmdir(full)
	}
	return unix.Unlink(full)
}

func newSandboxRoot() (string, func(), error) {
	dir, err := os.MkdirTemp("", "ocall-gateway-hostsim-*")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}
