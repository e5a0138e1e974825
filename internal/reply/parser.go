package reply

import (
	"github.com/nimda/gorouteros/internal/rerr"
	"github.com/nimda/gorouteros/internal/wire"
)

// Parse interprets a complete wire.Block into attribute maps, or an error
// tagged rerr.KindTrap / rerr.KindFatal.
func Parse(block wire.Block) ([]Attributes, error) {
	if len(block) == 0 {
		return nil, rerr.New(rerr.KindProtocol, "empty block")
	}

	switch block.TerminalStatus() {
	case wire.StatusDone:
		var results []Attributes
		for _, sentence := range block {
			words := toStrings(sentence)
			attrs := attributesOf(words)
			if len(attrs) == 0 {
				continue
			}
			results = append(results, attrs)
		}
		return results, nil

	case wire.StatusTrap:
		return nil, rerr.New(rerr.KindTrap, FirstMessage(block))

	case wire.StatusFatal:
		return nil, rerr.New(rerr.KindFatal, FirstMessage(block))

	default:
		return nil, rerr.New(rerr.KindProtocol, "block has no recognized terminal status")
	}
}

// FirstMessage scans the whole block for the first =message= attribute,
// defaulting to "Unknown error".
func FirstMessage(block wire.Block) string {
	for _, sentence := range block {
		for _, w := range sentence {
			word := string(w)
			if key, value, ok := ParseAttribute(word); ok && key == "message" {
				return value
			}
		}
	}
	return "Unknown error"
}

func toStrings(s wire.Sentence) []string {
	out := make([]string, len(s))
	for i, w := range s {
		out[i] = string(w)
	}
	return out
}
