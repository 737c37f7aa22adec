package scenic

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the size of prompt text in tokens.
type TokenCounter interface {
	CountTokens(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(text string) int

func (f TokenCounterFunc) CountTokens(text string) int { return f(text) }

// DefaultTokenEncoding is the tiktoken encoding used when none is configured.
const DefaultTokenEncoding = "cl100k_base"

type tiktokenCounter struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
}

// NewTiktokenCounter returns a counter backed by a tiktoken encoding such as "cl100k_base".
// If the encoding cannot be loaded, it falls back to a four-characters-per-token estimate.
func NewTiktokenCounter(encoding string) TokenCounter {
	return &tiktokenCounter{encoding: encoding}
}

func (c *tiktokenCounter) CountTokens(text string) int {
	c.once.Do(func() {
		if enc, err := tiktoken.GetEncoding(c.encoding); err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return approxTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func approxTokens(text string) int {
	return (len(text) + 3) / 4
}

// fitMemoryView drops the oldest history until render(view) fits budget tokens. At least the
// most recent step is always kept.
func fitMemoryView(view memoryView, budget int, counter TokenCounter, render func(memoryView) string) memoryView {
	if budget <= 0 || counter == nil {
		return view
	}

	for counter.CountTokens(render(view)) > budget {
		switch {
		case len(view.Compressed) > 0:
			view.Compressed = view.Compressed[1:]
		case len(view.Recent) > 1:
			view.Compressed = nil
			view.Recent = view.Recent[1:]
		default:
			return view
		}
	}
	return view
}
