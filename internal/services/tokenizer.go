package services

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	// BPE ranks ship inside the binary so startup never reaches out to the network.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

const endOfText = "<|endoftext|>"

// Chat template markers that local models sometimes leak into their output.
var templateMarkers = []string{"<s>", "</s>", "<|im_start|>", "<|im_end|>", "<|eot_id|>", "<|end|>"}

// End-of-turn markers of the common local model families. A stop list sent with a raw
// request replaces the one from the model's Modelfile, so these go along with EOS.
var endOfTurnMarkers = []string{"</s>", "<|im_end|>", "<|eot_id|>", "<|end|>"}

type Tokenizer interface {
	CountTokens(text string) int
	StripSpecial(text string) string
	EOS() string
}

// TiktokenTokenizer wraps a BPE encoding. The encoding is read-only after load.
type TiktokenTokenizer struct {
	enc     *tiktoken.Tiktoken
	special map[int]struct{}
}

// LoadTokenizer loads the named encoding from the embedded BPE ranks.
func LoadTokenizer(encoding string) (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %q: %w", encoding, err)
	}

	special := make(map[int]struct{})
	for _, tok := range []string{endOfText, "<|fim_prefix|>", "<|fim_middle|>", "<|fim_suffix|>", "<|endofprompt|>"} {
		ids := enc.Encode(tok, []string{"all"}, nil)
		if len(ids) == 1 {
			special[ids[0]] = struct{}{}
		}
	}

	return &TiktokenTokenizer{enc: enc, special: special}, nil
}

func (t *TiktokenTokenizer) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// StripSpecial decodes text without its special tokens.
func (t *TiktokenTokenizer) StripSpecial(text string) string {
	ids := t.enc.Encode(text, []string{"all"}, nil)
	kept := ids[:0]
	for _, id := range ids {
		if _, ok := t.special[id]; !ok {
			kept = append(kept, id)
		}
	}
	return stripTemplateMarkers(t.enc.Decode(kept))
}

func (t *TiktokenTokenizer) EOS() string {
	return endOfText
}

// StopSequences returns the sequences a backend should stop generating at.
func StopSequences(tok Tokenizer) []string {
	stop := make([]string, 0, len(endOfTurnMarkers)+1)
	stop = append(stop, tok.EOS())
	return append(stop, endOfTurnMarkers...)
}

func stripTemplateMarkers(text string) string {
	for _, m := range templateMarkers {
		text = strings.ReplaceAll(text, m, "")
	}
	return text
}
