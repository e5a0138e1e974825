package auth

import (
	"crypto/md5" //nolint:gosec // required by the RouterOS pre-6.43 challenge/response scheme, not a security choice of ours
	"encoding/hex"

	"github.com/nimda/gorouteros/internal/rerr"
)

// hashChallenge computes the RouterOS MD5 challenge response: the
// lowercase hex digest of 0x00 || password || salt. hexSalt is the
// lowercase hex string RouterOS sends as the =ret= attribute.
func hashChallenge(password, hexSalt string) (string, error) {
	salt, err := hex.DecodeString(hexSalt)
	if err != nil {
		return "", rerr.Wrap(rerr.KindProtocol, "malformed salt", err)
	}

	h := md5.New() //nolint:gosec
	h.Write([]byte{0x00})
	h.Write([]byte(password))
	h.Write(salt)
	return hex.EncodeToString(h.Sum(nil)), nil
}
