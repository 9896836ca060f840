// Package segment splits cleaned text into sentences with a trained Punkt
// model from github.com/neurosnap/sentences.
package segment

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// ErrModelLoad means the Punkt training data could not be read or decoded.
// It is fatal for whatever needed the segmenter.
var ErrModelLoad = errors.New("sentence model load failed")

// Segmenter wraps a Punkt tokenizer. It is safe for concurrent use.
type Segmenter struct {
	mu        sync.Mutex
	tokenizer *sentences.DefaultSentenceTokenizer
	model     string
}

// New loads the Punkt model at modelPath, a JSON training file as produced
// by the sentences trainer. An empty modelPath loads the bundled English
// model.
func New(modelPath string) (*Segmenter, error) {
	if modelPath == "" {
		tok, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: bundled english model: %w", ErrModelLoad, err)
		}
		return &Segmenter{tokenizer: tok, model: "english"}, nil
	}

	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	training, err := sentences.LoadTraining(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrModelLoad, modelPath, err)
	}
	return &Segmenter{
		tokenizer: sentences.NewSentenceTokenizer(training),
		model:     modelPath,
	}, nil
}

// Model names the loaded model ("english" or the training file path).
func (s *Segmenter) Model() string { return s.model }

// Segment returns the sentences of text in order. Empty or whitespace-only
// input yields an empty slice.
func (s *Segmenter) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	s.mu.Lock()
	tokens := s.tokenizer.Tokenize(text)
	s.mu.Unlock()

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if sent := strings.TrimSpace(tok.Text); sent != "" {
			out = append(out, sent)
		}
	}
	return out
}
