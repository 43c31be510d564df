package similarity

import "github.com/tsawler/prose/v3"

// tokenizeText splits text into the token strings that get their own
// vector when the kernel is configured for a token-level similarity
// method.
func tokenizeText(text string) []string {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithTagging(false))
	if err != nil || text == "" {
		return nil
	}
	tokens := doc.Tokens()
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Text == "" {
			continue
		}
		out = append(out, tok.Text)
	}
	return out
}
