package room

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Card is one entry of the estimation deck.
type Card struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// ErrDeckEmpty indicates a deck without cards.
var ErrDeckEmpty = errors.New("card deck must contain at least one card")

// DefaultDeck returns the built-in estimation deck.
func DefaultDeck() []Card {
	return []Card{
		{Label: "0", Value: 0, Color: "#bdbfbf"},
		{Label: "1/2", Value: 0.5, Color: "#667a66"},
		{Label: "1", Value: 1, Color: "#839e7a"},
		{Label: "2", Value: 2, Color: "#8cb876"},
		{Label: "3", Value: 3, Color: "#96ba5b"},
		{Label: "5", Value: 5, Color: "#b6c72e"},
		{Label: "8", Value: 8, Color: "#c7b52e"},
		{Label: "13", Value: 13, Color: "#c7722e"},
		{Label: "21", Value: 21, Color: "#c7502e"},
		{Label: "34", Value: 34, Color: "#c72e46"},
		{Label: "55", Value: 55, Color: "#c22ec7"},
		{Label: "?", Value: -2, Color: "#bdbfbf"},
		{Label: "☕", Value: -1, Color: "#bdbfbf"},
	}
}

type deckFile struct {
	Cards []Card `yaml:"cards"`
}

// LoadDeck reads a YAML deck file. An empty path yields the default deck.
func LoadDeck(path string) ([]Card, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultDeck(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card deck: %w", err)
	}
	return ParseDeck(data)
}

// ParseDeck decodes and validates a YAML deck document.
func ParseDeck(data []byte) ([]Card, error) {
	var file deckFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse card deck: %w", err)
	}
	if err := ValidateDeck(file.Cards); err != nil {
		return nil, err
	}
	return file.Cards, nil
}

// ValidateDeck checks that a deck has labelled cards with unique values.
func ValidateDeck(cards []Card) error {
	if len(cards) == 0 {
		return ErrDeckEmpty
	}
	seen := make(map[float64]struct{}, len(cards))
	for i, card := range cards {
		if strings.TrimSpace(card.Label) == "" {
			return fmt.Errorf("card %d: label is required", i)
		}
		if _, dup := seen[card.Value]; dup {
			return fmt.Errorf("card %d: duplicate value %v", i, card.Value)
		}
		seen[card.Value] = struct{}{}
	}
	return nil
}

func deckHasValue(cards []Card, value float64) bool {
	for _, card := range cards {
		if card.Value == value {
			return true
		}
	}
	return false
}
