package routeros

import "github.com/nimda/gorouteros/internal/rerr"

// Kind classifies an Error by where in the protocol it occurred.
type Kind = rerr.Kind

const (
	KindConnectionFailed = rerr.KindConnectionFailed
	KindAuthFailed       = rerr.KindAuthFailed
	KindTrap             = rerr.KindTrap
	KindFatal            = rerr.KindFatal
	KindTimeout          = rerr.KindTimeout
	KindClosed           = rerr.KindClosed
	KindProtocol         = rerr.KindProtocol
)

// Error is the single error type returned by every exported operation.
// Use errors.As to recover one from a wrapped error, or the IsKind helper.
type Error = rerr.Error

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return rerr.Is(err, kind)
}
