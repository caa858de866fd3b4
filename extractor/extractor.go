// Package extractor turns a free-text listing message into structured
// listing fields. An inference function (a language model) is tried first
// when one is available; the keyword Heuristic is the fallback.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"beaconmarket/models"
)

/**** MARK: Sources ****/
const (
	SourceInference = "inference"
	SourceHeuristic = "heuristic"
)

// InferFunc sends a prompt to a text-completion service and returns its raw answer.
type InferFunc func(ctx context.Context, prompt string) (string, error)

// Fields is the extraction result. Price is nil when no price was found.
type Fields struct {
	Category    models.Category  `json:"category"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       *float64         `json:"price"`
	PriceUnit   models.PriceUnit `json:"price_unit"`
	Source      string           `json:"-"`
}

// Acceptable reports whether the fields are good enough to create a listing.
func (f Fields) Acceptable() bool {
	return strings.TrimSpace(f.Title) != "" && f.Price != nil && *f.Price >= 0
}

// Pipeline chooses between inference and the heuristic.
type Pipeline struct {
	Infer InferFunc
}

func New(infer InferFunc) *Pipeline {
	return &Pipeline{Infer: infer}
}

// Extract returns fields for text. override, when non-nil, replaces the
// pipeline's own InferFunc for this call. Inference errors and
// unparseable answers are logged and the heuristic result is returned.
func (p *Pipeline) Extract(ctx context.Context, text string, override InferFunc) Fields {
	infer := override
	if infer == nil && p != nil {
		infer = p.Infer
	}

	if infer != nil {
		fields, err := p.infer(ctx, infer, text)
		if err == nil {
			return fields
		}
		log.Printf("extractor: inference failed, using heuristic: %v", err)
	}

	return Heuristic{}.Extract(text)
}

func (p *Pipeline) infer(ctx context.Context, infer InferFunc, text string) (Fields, error) {
	answer, err := infer(ctx, Prompt(text))
	if err != nil {
		return Fields{}, err
	}
	fields, err := DecodeInference(answer)
	if err != nil {
		return Fields{}, err
	}
	if strings.TrimSpace(fields.Description) == "" {
		fields.Description = text
	}
	return fields, nil
}

var ErrNoObject = errors.New("no JSON object in answer")

// inferredFields mirrors the JSON the model is asked for. price is kept raw
// because models answer with numbers, numeric strings or "10k".
type inferredFields struct {
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	PriceUnit   string          `json:"price_unit"`
}

// DecodeInference parses a model answer into Fields. Markdown code fences
// and text around the object are ignored. Unknown category or unit values
// make the answer unparseable.
func DecodeInference(answer string) (Fields, error) {
	raw := stripFences(answer)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Fields{}, ErrNoObject
	}

	var in inferredFields
	if err := json.Unmarshal([]byte(raw[start:end+1]), &in); err != nil {
		return Fields{}, fmt.Errorf("decode inference: %w", err)
	}

	category := models.Category(strings.ToLower(strings.TrimSpace(in.Category)))
	if !category.Valid() {
		return Fields{}, fmt.Errorf("decode inference: unknown category %q", in.Category)
	}
	unit := models.PriceUnit(strings.ToLower(strings.TrimSpace(in.PriceUnit)))
	if !unit.Valid() {
		return Fields{}, fmt.Errorf("decode inference: unknown price unit %q", in.PriceUnit)
	}

	price, err := decodePrice(in.Price)
	if err != nil {
		return Fields{}, err
	}

	return Fields{
		Category:    category,
		Title:       Truncate(strings.TrimSpace(in.Title), models.TITLE_MAX_LEN),
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		PriceUnit:   unit,
		Source:      SourceInference,
	}, nil
}

func decodePrice(raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode inference: price %s", raw)
	}
	v, err := ParsePriceString(s)
	if err != nil {
		return nil, fmt.Errorf("decode inference: %w", err)
	}
	return &v, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop an info string such as "json"
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
