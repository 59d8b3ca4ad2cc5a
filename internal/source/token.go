package source

import (
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/carousel/internal/slides"
)

// DefaultTokenSize is the edge of a QR slide in px at 72 dpi.
const DefaultTokenSize = 256

// TokenSource renders one QR code slide per token. It stands in for real
// slide content when a host only knows its slide IDs.
type TokenSource struct {
	tokens []string
	size   int
}

func NewTokenSource(tokens []string, size int) (*TokenSource, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("token source: no tokens")
	}
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			return nil, fmt.Errorf("token source: empty token")
		}
		if seen[tok] {
			return nil, fmt.Errorf("token source: duplicate token %q", tok)
		}
		seen[tok] = true
	}
	if size <= 0 {
		size = DefaultTokenSize
	}
	cp := make([]string, len(tokens))
	copy(cp, tokens)
	return &TokenSource{tokens: cp, size: size}, nil
}

func (s *TokenSource) PageCount() int {
	return len(s.tokens)
}

func (s *TokenSource) SlideID(index int) slides.ID {
	return slides.ID(s.tokens[index])
}

func (s *TokenSource) GetPageDimensions(index int) (float64, float64, error) {
	if index < 0 || index >= len(s.tokens) {
		return 0, 0, fmt.Errorf("token source: index %d out of range", index)
	}
	return float64(s.size), float64(s.size), nil
}

// RenderPage scales the code with dpi relative to 72.
func (s *TokenSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= len(s.tokens) {
		return nil, fmt.Errorf("token source: index %d out of range", index)
	}
	size := s.size
	if dpi > 0 {
		size = s.size * dpi / 72
	}
	code, err := qrcode.New(s.tokens[index], qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("token %q: %w", s.tokens[index], err)
	}
	return code.Image(size), nil
}

func (s *TokenSource) Close() error {
	return nil
}
