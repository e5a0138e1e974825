package wire

import "io"

// Sentence is an ordered list of words.
type Sentence [][]byte

// WriteSentence writes each word in order followed by the zero-length
// end-of-sentence sentinel.
func WriteSentence(w io.Writer, words Sentence) error {
	for _, word := range words {
		if err := WriteWord(w, word); err != nil {
			return err
		}
	}
	return WriteWord(w, nil)
}

// ReadSentence reads words until the end-of-sentence sentinel.
func ReadSentence(r io.Reader) (Sentence, error) {
	var words Sentence
	for {
		word, end, err := ReadWord(r)
		if err != nil {
			return nil, err
		}
		if end {
			return words, nil
		}
		words = append(words, word)
	}
}

// HasWord reports whether the sentence contains a word equal to s.
func (s Sentence) HasWord(w string) bool {
	for _, word := range s {
		if string(word) == w {
			return true
		}
	}
	return false
}
