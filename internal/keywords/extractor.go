package keywords

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"broll/internal/transcript"
)

// Occurrence is a detected topic term anchored to a timestamp in the narration.
// Occurrences are read-only once produced by Extract.
type Occurrence struct {
	Term      string            `json:"term"`
	Timestamp float64           `json:"timestamp"`
	Weight    float64           `json:"weight"`
	Words     []transcript.Word `json:"words,omitempty"`
}

// Options tunes keyword extraction.
type Options struct {
	// PriorityTerms receive a scoring bonus. Matching is case-folded; no
	// stemming is performed, so configure inflected forms explicitly.
	PriorityTerms []string
	// ExtraStopwords are suppressed in addition to the built-in list.
	ExtraStopwords []string
	// MinWeight is the threshold below which a term emits no occurrence.
	MinWeight float64
	// MaxPhraseWords bounds the sliding n-gram length (1-5).
	MaxPhraseWords int
}

// Scoring constants. A priority hit alone clears the default threshold; a
// plain long word does too; short non-priority words need repetition.
const (
	priorityBonus   = 2.0
	phraseEdge      = 0.5
	longWordBonus   = 1.0
	longWordRunes   = 5
	frequencyStep   = 0.25
	frequencyCap    = 1.0
	defaultMaxGram  = 3
	defaultMinScore = 1.0
)

var fold = cases.Fold()

// Extract scans the transcript in word order and emits weighted keyword
// occurrences in timestamp order. It is a pure function over its inputs; an
// empty transcript yields an empty slice, not an error.
func Extract(t *transcript.Transcript, opts Options) []Occurrence {
	if t == nil {
		return nil
	}
	maxGram := opts.MaxPhraseWords
	if maxGram <= 0 {
		maxGram = defaultMaxGram
	}
	minWeight := opts.MinWeight
	if minWeight <= 0 {
		minWeight = defaultMinScore
	}

	priority := foldSet(opts.PriorityTerms)
	stopwords := foldSet(builtinStopwords)
	for term := range foldSet(opts.ExtraStopwords) {
		stopwords[term] = struct{}{}
	}

	tokens := tokenize(t.Words())
	if len(tokens) == 0 {
		return nil
	}

	frequency := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopwords[tok.normalized]; stop {
			continue
		}
		frequency[tok.normalized]++
	}

	occurrences := make([]Occurrence, 0, len(tokens)/4)
	for i := 0; i < len(tokens); {
		best, span := bestGramAt(tokens, i, maxGram, priority, stopwords, frequency)
		if span == 0 || best.Weight < minWeight {
			i++
			continue
		}
		occurrences = append(occurrences, best)
		i += span
	}

	// Tokens arrive in word order, so this is already nearly sorted; the sort
	// guarantees the contract when segment fallback words interleave.
	sort.SliceStable(occurrences, func(a, b int) bool {
		return occurrences[a].Timestamp < occurrences[b].Timestamp
	})
	return occurrences
}

type token struct {
	word       transcript.Word
	normalized string
}

func tokenize(words []transcript.Word) []token {
	tokens := make([]token, 0, len(words))
	for _, word := range words {
		for _, raw := range strings.Fields(word.Text) {
			cleaned := strings.TrimFunc(raw, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			if cleaned == "" {
				continue
			}
			tokens = append(tokens, token{
				word:       transcript.Word{Text: cleaned, Start: word.Start, End: word.End},
				normalized: fold.String(cleaned),
			})
		}
	}
	return tokens
}

// bestGramAt scores every n-gram starting at index i and returns the winner
// plus the number of tokens it spans. Longer grams win ties so a priority
// phrase beats its head word.
func bestGramAt(tokens []token, i, maxGram int, priority, stopwords map[string]struct{}, frequency map[string]int) (Occurrence, int) {
	var best Occurrence
	span := 0
	for n := 1; n <= maxGram && i+n <= len(tokens); n++ {
		gram := tokens[i : i+n]
		weight := scoreGram(gram, priority, stopwords, frequency)
		if weight <= 0 {
			continue
		}
		if span == 0 || weight >= best.Weight {
			words := make([]transcript.Word, 0, n)
			parts := make([]string, 0, n)
			for _, tok := range gram {
				words = append(words, tok.word)
				parts = append(parts, tok.normalized)
			}
			best = Occurrence{
				Term:      strings.Join(parts, " "),
				Timestamp: gram[0].word.Start,
				Weight:    weight,
				Words:     words,
			}
			span = n
		}
	}
	return best, span
}

func scoreGram(gram []token, priority, stopwords map[string]struct{}, frequency map[string]int) float64 {
	if len(gram) == 1 {
		tok := gram[0]
		if _, stop := stopwords[tok.normalized]; stop {
			return 0
		}
		weight := 0.0
		if _, hit := priority[tok.normalized]; hit {
			weight += priorityBonus
		}
		if len([]rune(tok.normalized)) > longWordRunes {
			weight += longWordBonus
		}
		if count := frequency[tok.normalized]; count > 1 {
			weight += min(frequencyStep*float64(count-1), frequencyCap)
		}
		return weight
	}

	// A multi-word gram only scores on a full-phrase priority match, so
	// configured phrases like "morning routine" beat their head word while
	// arbitrary word windows stay silent.
	phrase := make([]string, 0, len(gram))
	for _, tok := range gram {
		phrase = append(phrase, tok.normalized)
	}
	if _, ok := priority[strings.Join(phrase, " ")]; !ok {
		return 0
	}
	weight := priorityBonus + phraseEdge
	for _, tok := range gram {
		if count := frequency[tok.normalized]; count > 1 {
			weight += min(frequencyStep*float64(count-1), frequencyCap) / float64(len(gram))
		}
	}
	return weight
}

func foldSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" {
			continue
		}
		set[fold.String(trimmed)] = struct{}{}
	}
	return set
}

// Save writes the occurrence list as a standalone JSON artifact.
func Save(path string, occurrences []Occurrence) error {
	data, err := json.MarshalIndent(occurrences, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure keywords dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write keywords: %w", err)
	}
	return nil
}

// Load reads an occurrence artifact written by Save.
func Load(path string) ([]Occurrence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}
	var occurrences []Occurrence
	if err := json.Unmarshal(data, &occurrences); err != nil {
		return nil, fmt.Errorf("parse keywords: %w", err)
	}
	return occurrences, nil
}
