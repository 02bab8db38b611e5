// Package words supplies the candidate words players vote on.
package words

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"doodle-judge/internal/db"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const libraryLimit = 500

var ErrEmpty = errors.New("word pool is empty")

var builtin = []string{
	"apple", "banana", "bicycle", "butterfly", "cactus", "camera", "castle",
	"cat", "cloud", "dinosaur", "dragon", "elephant", "giraffe", "guitar",
	"hamburger", "helicopter", "house", "ice cream", "island", "jellyfish",
	"kite", "lighthouse", "mermaid", "moon", "mountain", "octopus", "penguin",
	"pineapple", "pirate ship", "pizza", "rainbow", "robot", "rocket",
	"sandcastle", "snowman", "spider", "sun", "sunflower", "teapot", "tornado",
	"train", "tree", "turtle", "umbrella", "unicorn", "volcano", "waterfall",
	"whale", "windmill", "wizard",
}

// Builtin returns the word list used when no library is available.
func Builtin() []string {
	return append([]string(nil), builtin...)
}

// Pool hands out distinct random words from an in-memory list. It is safe
// for concurrent use and never blocks on I/O.
type Pool struct {
	mu    sync.RWMutex
	words []string
	perm  func(n int) []int
}

func NewPool(words []string) *Pool {
	p := &Pool{perm: rand.Perm}
	p.Replace(words)
	return p
}

// Replace swaps the pool contents. Blank and duplicate words are dropped.
func (p *Pool) Replace(words []string) {
	seen := make(map[string]bool, len(words))
	clean := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.Join(strings.Fields(word), " "))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		clean = append(clean, word)
	}
	p.mu.Lock()
	p.words = clean
	p.mu.Unlock()
}

func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.words)
}

// Words returns n distinct words, or every word when the pool is smaller.
func (p *Pool) Words(ctx context.Context, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.words) == 0 {
		return nil, ErrEmpty
	}
	if n > len(p.words) {
		n = len(p.words)
	}
	out := make([]string, 0, n)
	for _, i := range p.perm(len(p.words))[:n] {
		out = append(out, p.words[i])
	}
	return out, nil
}

// Load fills a pool from the word_library table, falling back to the
// built-in list when conn is nil, the query fails or the table is empty.
func Load(ctx context.Context, conn *gorm.DB) *Pool {
	if conn == nil {
		return NewPool(builtin)
	}
	library, err := db.RandomWords(ctx, conn, libraryLimit)
	if err != nil {
		log.Warn().Err(err).Msg("word library unavailable, using built-in words")
		return NewPool(builtin)
	}
	if len(library) == 0 {
		log.Warn().Msg("word library is empty, using built-in words")
		return NewPool(builtin)
	}
	log.Info().Int("words", len(library)).Msg("word library loaded")
	return NewPool(library)
}
