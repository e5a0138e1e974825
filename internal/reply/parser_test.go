package reply

import (
	"testing"

	"github.com/nimda/gorouteros/internal/rerr"
	"github.com/nimda/gorouteros/internal/wire"
	"github.com/stretchr/testify/require"
)

func sentence(words ...string) wire.Sentence {
	s := make(wire.Sentence, len(words))
	for i, w := range words {
		s[i] = []byte(w)
	}
	return s
}

func TestParse_DoneOnly(t *testing.T) {
	// S2: [["!done"]] parses to ok([])
	block := wire.Block{sentence("!done")}
	results, err := Parse(block)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestParse_ReWithAttributes(t *testing.T) {
	// S3
	block := wire.Block{
		sentence("!re", "=.id=*1", "=name=ether1", "=running=true"),
		sentence("!done"),
	}
	results, err := Parse(block)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, Attributes{
		".id":     "*1",
		"name":    "ether1",
		"running": true,
	}, results[0])
}

func TestParse_Trap(t *testing.T) {
	// S4
	block := wire.Block{sentence("!trap", "=category=2", "=message=no such item")}
	_, err := Parse(block)
	require.Error(t, err)
	require.True(t, rerr.Is(err, rerr.KindTrap))
	require.Contains(t, err.Error(), "no such item")
}

func TestParse_TrapDefaultMessage(t *testing.T) {
	block := wire.Block{sentence("!trap")}
	_, err := Parse(block)
	require.True(t, rerr.Is(err, rerr.KindTrap))
	require.Contains(t, err.Error(), "Unknown error")
}

func TestParse_Fatal(t *testing.T) {
	block := wire.Block{sentence("!fatal", "=message=session terminated on request")}
	_, err := Parse(block)
	require.True(t, rerr.Is(err, rerr.KindFatal))
	require.Contains(t, err.Error(), "session terminated on request")
}

func TestParse_StatusOnlySentenceContributesNoElement(t *testing.T) {
	block := wire.Block{
		sentence("!re"), // no attributes at all
		sentence("!done"),
	}
	results, err := Parse(block)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestParse_MultipleReSentences(t *testing.T) {
	block := wire.Block{
		sentence("!re", "=name=ether1"),
		sentence("!re", "=name=ether2"),
		sentence("!done"),
	}
	results, err := Parse(block)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "ether1", results[0]["name"])
	require.Equal(t, "ether2", results[1]["name"])
}

func TestParseAttribute(t *testing.T) {
	k, v, ok := ParseAttribute("=k=v")
	require.True(t, ok)
	require.Equal(t, "k", k)
	require.Equal(t, "v", v)

	// value itself contains "="
	k, v, ok = ParseAttribute("=comment=a=b=c")
	require.True(t, ok)
	require.Equal(t, "comment", k)
	require.Equal(t, "a=b=c", v)

	// "=k=" -> ("k", "")
	k, v, ok = ParseAttribute("=k=")
	require.True(t, ok)
	require.Equal(t, "k", k)
	require.Equal(t, "", v)

	// not an attribute word at all
	_, _, ok = ParseAttribute("!done")
	require.False(t, ok)
}

func TestBooleanCoercion_Exhaustive(t *testing.T) {
	cases := map[string]Value{
		"true":      true,
		"yes":       true,
		"false":     false,
		"no":        false,
		"something": "something",
		"":          "",
		"TRUE":      "TRUE", // coercion is case-sensitive; only exact matches count
	}
	for in, want := range cases {
		require.Equal(t, want, coerceBool(in), "coerceBool(%q)", in)
	}
}
