//go:build linux

package hostsim

import (
	"bytes"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

func (s *Simulator) sysSocketpair(domain, typ, protocol int32) (fd0, fd1 int32, err error) {
	fds, err := unix.Socketpair(int(domain), int(typ), int(protocol))
	if err != nil {
		return -1, -1, err
	}
	return int32(fds[0]), int32(fds[1]), nil
}

// sockaddrPath extracts a NUL-terminated path from a raw sockaddr_un-shaped
// byte buffer the enclave built. Real sockaddr_un parsing skips the
// leading sun_family field (2 bytes on Linux); this simulator treats the
// whole remainder as the path, trimmed at the first NUL, which is close
// enough for a test/demo double talking to its own Listen/Connect pair.
func sockaddrPath(addr []byte) string {
	if len(addr) <= 2 {
		return ""
	}
	rest := addr[2:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		rest = rest[:i]
	}
	return string(rest)
}

func (s *Simulator) sysListen(fd int32, addr []byte, backlog int32) error {
	path := s.socketPath(sockaddrPath(addr))
	_ = os.Remove(path)

	lfd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return err
	}
	if err := unix.Bind(lfd, &unix.SockaddrUnix{Name: path}); err != nil {
		_ = unix.Close(lfd)
		return err
	}
	if err := unix.Listen(lfd, int(backlog)); err != nil {
		_ = unix.Close(lfd)
		return err
	}
	// fd is the handle the caller already owns from a prior socket()-style
	// OCALL in a real dispatcher; this simulator instead hands back a
	// fresh listening fd under its own table via the accept registry.
	s.registerListener(fd, lfd)
	return nil
}

func (s *Simulator) sysAccept(fd int32, addrCap int) (clientFD int32, addrLen int, err error) {
	lfd, ok := s.lookupListener(fd)
	if !ok {
		return -1, 0, unix.EBADF
	}
	cfd, _, err := unix.Accept4(lfd, 0)
	if err != nil {
		return -1, 0, err
	}
	return int32(cfd), 0, nil
}

func (s *Simulator) sysConnect(fd int32, addr []byte) error {
	path := s.socketPath(sockaddrPath(addr))
	return unix.Connect(int(fd), &unix.SockaddrUnix{Name: path})
}

func (s *Simulator) sysRecv(fd int32, buf []byte, control []byte, flags int32) (n int, controlLen int, err error) {
	if len(control) == 0 {
		n, err = unix.Read(int(fd), buf)
		return n, 0, err
	}
	n, oobn, _, _, err := unix.Recvmsg(int(fd), buf, control, int(flags))
	if err != nil {
		return 0, 0, err
	}
	return n, oobn, nil
}

func (s *Simulator) sysSend(fd int32, buf []byte, flags int32) (int, error) {
	return unix.Write(int(fd), buf)
}

func (s *Simulator) sysSetsockopt(fd, level, optname int32, optval []byte) error {
	return unix.SetsockoptString(int(fd), int(level), int(optname), string(optval))
}

func (s *Simulator) sysShutdown(fd, how int32) error {
	return unix.Shutdown(int(fd), int(how))
}

func (s *Simulator) socketPath(name string) string {
	if name == "" {
		name = "default"
	}
	return filepath.Join(s.root, "sock-"+name)
}
