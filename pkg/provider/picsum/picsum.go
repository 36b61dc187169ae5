// Package picsum builds random decorative image URLs.
package picsum

import (
	"fmt"
	"math/rand/v2"
)

const maxSeed = 10000

// Generator returns a fresh picsum.photos URL on every call.
type Generator struct {
	intN func(n int) int
}

func New() *Generator {
	return &Generator{intN: rand.IntN}
}

// ImageURL returns a 600x400 image URL with a random cache-busting seed.
func (g *Generator) ImageURL() string {
	return fmt.Sprintf("https://picsum.photos/600/400?random=%d", g.intN(maxSeed))
}
