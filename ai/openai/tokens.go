package openai

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE scheme used to estimate token counts. It is only
// an estimate for non-OpenAI embedding models, but close enough to keep
// inputs under the context window of the local embedding service.
const encodingName = "cl100k_base"

var encoder *tiktoken.Tiktoken

func init() {
	var err error
	encoder, err = tiktoken.GetEncoding(encodingName)
	if err != nil {
		// The encoding is bundled with the library, so this only fires when
		// the name above is wrong.
		panic("openai: load token encoding: " + err.Error())
	}
}

// countTokens estimates the number of model tokens in text.
func countTokens(text string) int {
	return len(encoder.Encode(text, nil, nil))
}
