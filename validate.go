package routeros

import "github.com/nimda/gorouteros/internal/rerr"

// ValidateHost checks that a host is non-empty.
func ValidateHost(host string) error {
	if host == "" {
		return rerr.New(rerr.KindProtocol, "host must not be empty")
	}
	return nil
}

// ValidatePort checks that a port number is in the valid TCP range.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return rerr.Newf(rerr.KindProtocol, "invalid port %d (must be 1-65535)", port)
	}
	return nil
}

// ValidatePoolSize checks that a pool target size is usable.
func ValidatePoolSize(size int) error {
	if size < 1 {
		return rerr.Newf(rerr.KindProtocol, "invalid pool size %d (must be >= 1)", size)
	}
	if size > 1000 {
		return rerr.Newf(rerr.KindProtocol, "pool size %d is too high (max 1000)", size)
	}
	return nil
}
