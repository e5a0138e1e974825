package wire

import "io"

// Status words that can appear as the first word of a reply sentence.
const (
	StatusReply = "!re"
	StatusDone  = "!done"
	StatusTrap  = "!trap"
	StatusFatal = "!fatal"
)

// Block is an ordered list of sentences, the last of which carries a
// terminal status (!done, !trap, or !fatal).
type Block []Sentence

// isTerminal reports whether a sentence carries a terminal status word.
// Per spec: a !done anywhere in the sentence ends the block even if a
// !re is also present (open question resolved in favor of !done).
func isTerminal(s Sentence) bool {
	return s.HasWord(StatusDone) || s.HasWord(StatusTrap) || s.HasWord(StatusFatal)
}

// ReadBlock reads sentences until one carries a terminal status word,
// inclusive of that sentence. !re sentences never terminate a block.
func ReadBlock(r io.Reader) (Block, error) {
	var block Block
	for {
		sentence, err := ReadSentence(r)
		if err != nil {
			return nil, err
		}
		block = append(block, sentence)
		if isTerminal(sentence) {
			return block, nil
		}
	}
}

// TerminalStatus returns the terminal status word of the block's last
// sentence: one of !done, !trap, !fatal. It panics if the block is empty
// or its last sentence isn't terminal — both are codec invariants that
// ReadBlock guarantees on any block it returns.
func (b Block) TerminalStatus() string {
	last := b[len(b)-1]
	for _, status := range []string{StatusDone, StatusTrap, StatusFatal} {
		if last.HasWord(status) {
			return status
		}
	}
	panic("wire: block has no terminal status")
}
