package tokenizer

// Tokenizer counts model tokens in text. Used for prompt-size accounting;
// counts are advisory and need not match the upstream model exactly.
type Tokenizer interface {
	CountTokens(text string) int
}

// CountFunc adapts a plain function to the Tokenizer interface.
type CountFunc func(text string) int

// CountTokens calls f.
func (f CountFunc) CountTokens(text string) int {
	return f(text)
}
