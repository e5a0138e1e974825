// Package auth implements the RouterOS login state machine: a plain-text
// attempt (RouterOS >= 6.43) with automatic fallback to the MD5
// challenge/response scheme of pre-6.43 releases. The two methods are
// kept as separate functions rather than entwined into one, so each has
// a clear set of send/read steps and success/failure predicates.
package auth

import (
	"io"
	"strings"

	"github.com/nimda/gorouteros/internal/reply"
	"github.com/nimda/gorouteros/internal/rerr"
	"github.com/nimda/gorouteros/internal/wire"
	zlog "github.com/rs/zerolog/log"
)

// Login authenticates over rw, trying plain-text login first and falling
// back to MD5 challenge/response if the server traps it.
func Login(rw io.ReadWriter, username, password string) error {
	zlog.Debug().Str("username", username).Msg("trying plain-text login")

	block, err := sendCommand(rw, wire.Sentence{
		[]byte("/login"),
		[]byte("=name=" + username),
		[]byte("=password=" + password),
	})
	if err != nil {
		return err
	}

	switch block.TerminalStatus() {
	case wire.StatusDone:
		zlog.Debug().Msg("plain-text login succeeded")
		return nil
	case wire.StatusFatal:
		return rerr.New(rerr.KindConnectionFailed, reply.FirstMessage(block))
	case wire.StatusTrap:
		zlog.Debug().Msg("plain-text login trapped, falling back to MD5 challenge")
		return loginMD5(rw, username, password)
	default:
		return rerr.New(rerr.KindProtocol, "unexpected login response")
	}
}

// loginMD5 runs the pre-6.43 challenge/response fallback: request a
// challenge, hash it against the password, and respond.
func loginMD5(rw io.ReadWriter, username, password string) error {
	block, err := sendCommand(rw, wire.Sentence{[]byte("/login")})
	if err != nil {
		return err
	}
	if block.TerminalStatus() != wire.StatusDone {
		return rerr.New(rerr.KindProtocol, "no_done_response")
	}

	salt, err := extractSalt(block)
	if err != nil {
		return err
	}
	if salt == "" {
		// Empty (or absent) =ret= means the session is already authenticated.
		zlog.Debug().Msg("empty login salt, treating as already authenticated")
		return nil
	}

	hash, err := hashChallenge(password, salt)
	if err != nil {
		return err
	}

	block, err = sendCommand(rw, wire.Sentence{
		[]byte("/login"),
		[]byte("=name=" + username),
		[]byte("=response=00" + hash),
	})
	if err != nil {
		return err
	}

	switch block.TerminalStatus() {
	case wire.StatusDone:
		zlog.Debug().Msg("MD5 challenge login succeeded")
		return nil
	case wire.StatusTrap:
		return rerr.New(rerr.KindAuthFailed, reply.FirstMessage(block))
	case wire.StatusFatal:
		return rerr.New(rerr.KindConnectionFailed, reply.FirstMessage(block))
	default:
		return rerr.New(rerr.KindProtocol, "unexpected login response")
	}
}

// extractSalt scans the block for the sentence carrying !done and returns
// the suffix of its first =ret= word.
func extractSalt(block wire.Block) (string, error) {
	for _, sentence := range block {
		if !sentence.HasWord(wire.StatusDone) {
			continue
		}
		for _, w := range sentence {
			word := string(w)
			if strings.HasPrefix(word, "=ret=") {
				return strings.TrimPrefix(word, "=ret="), nil
			}
		}
		return "", nil
	}
	return "", rerr.New(rerr.KindProtocol, "no_done_response")
}

func sendCommand(rw io.ReadWriter, sentence wire.Sentence) (wire.Block, error) {
	if err := wire.WriteSentence(rw, sentence); err != nil {
		return nil, err
	}
	return wire.ReadBlock(rw)
}
