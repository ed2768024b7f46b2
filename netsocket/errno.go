package netsocket

import (
	"errors"
	"net"
	"os"
	"syscall"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// mapDialError mirrors netsocket_client.cpp's errno switch (ECONNREFUSED
// -> ConnectionRefused, ENETUNREACH -> NetworkUnreachable, EHOSTUNREACH
// -> HostUnreachable, ETIMEDOUT -> TimeOut, else Failed), walking the
// wrapped net.OpError/os.SyscallError chain Go produces instead of a
// bare C errno.
func mapDialError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return kerr.New(kerr.TimeOut)
	}

	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.ECONNREFUSED:
			return kerr.New(kerr.ConnectionRefused)
		case syscall.ENETUNREACH:
			return kerr.New(kerr.NetworkUnreachable)
		case syscall.EHOSTUNREACH:
			return kerr.New(kerr.HostUnreachable)
		case syscall.ETIMEDOUT:
			return kerr.New(kerr.TimeOut)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return kerr.New(kerr.TimeOut)
	}

	return kerr.Wrap(kerr.Failed, err)
}
