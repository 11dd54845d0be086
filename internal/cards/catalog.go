package cards

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/text/language"

	"bravepulse/internal/game"
)

//go:embed data/*.json
var embedded embed.FS

// Supported lists the card languages in preference order. The first entry is the fallback.
var Supported = []language.Tag{language.English, language.Persian}

var errDuplicateCard = errors.New("duplicate card id")

// Catalog serves situation cards per language. Decks are loaded once and kept in memory.
type Catalog struct {
	dir     string
	matcher language.Matcher

	mu    sync.RWMutex
	decks map[string][]game.SituationCard
}

// NewCatalog reads decks from dir when set, otherwise from the decks bundled with the binary.
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir:     dir,
		matcher: language.NewMatcher(Supported),
		decks:   make(map[string][]game.SituationCard),
	}
}

// Resolve maps any language tag to the closest supported deck language.
func (c *Catalog) Resolve(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = Supported[0]
	}
	matched, _, _ := c.matcher.Match(tag)
	base, _ := matched.Base()
	return base.String()
}

// Negotiate picks the deck language for an Accept-Language header, falling back to the
// first supported language when nothing matches.
func (c *Catalog) Negotiate(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{Supported[0]}
	}
	matched, _, _ := c.matcher.Match(tags...)
	base, _ := matched.Base()
	return base.String()
}

func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(Supported))
	for _, tag := range Supported {
		out = append(out, tag.String())
	}
	return out
}

func (c *Catalog) Cards(ctx context.Context, lang string) ([]game.SituationCard, error) {
	lang = c.Resolve(lang)

	c.mu.RLock()
	deck, ok := c.decks[lang]
	c.mu.RUnlock()
	if ok {
		return slices.Clone(deck), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deck, err := c.load(lang)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.decks[lang] = deck
	c.mu.Unlock()
	log.Printf("cards loaded language=%s count=%d", lang, len(deck))
	return slices.Clone(deck), nil
}

func (c *Catalog) Card(ctx context.Context, lang, id string) (game.SituationCard, error) {
	deck, err := c.Cards(ctx, lang)
	if err != nil {
		return game.SituationCard{}, err
	}
	for _, card := range deck {
		if card.ID == id {
			return card, nil
		}
	}
	return game.SituationCard{}, fmt.Errorf("%w: %s", game.ErrCardNotFound, id)
}

// Preload warms every supported deck.
func (c *Catalog) Preload(ctx context.Context) error {
	for _, lang := range c.Languages() {
		if _, err := c.Cards(ctx, lang); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) load(lang string) ([]game.SituationCard, error) {
	name := lang + ".json"
	var (
		data []byte
		err  error
	)
	if c.dir != "" {
		data, err = os.ReadFile(filepath.Join(c.dir, name))
	} else {
		data, err = fs.ReadFile(embedded, "data/"+name)
	}
	if err != nil {
		return nil, fmt.Errorf("read cards %s: %w", name, err)
	}
	return Parse(data)
}

// Parse decodes a deck and checks that card ids are present and unique.
func Parse(data []byte) ([]game.SituationCard, error) {
	var deck []game.SituationCard
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	seen := make(map[string]struct{}, len(deck))
	for i, card := range deck {
		if card.ID == "" {
			return nil, fmt.Errorf("card %d has no id", i)
		}
		if _, ok := seen[card.ID]; ok {
			return nil, fmt.Errorf("%w: %s", errDuplicateCard, card.ID)
		}
		seen[card.ID] = struct{}{}
	}
	return deck, nil
}
