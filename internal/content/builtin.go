package content

import (
	_ "embed"
	"sync"

	"github.com/julianstephens/rizq/internal/models"
)

//go:embed builtin.yaml
var builtinYAML []byte

var builtin = sync.OnceValue(func() *Catalog {
	c, err := Parse(builtinYAML)
	if err != nil {
		panic("content: embedded catalog is invalid: " + err.Error())
	}
	return c
})

// Builtin returns the catalog shipped with the binary.
func Builtin() *Catalog {
	return builtin()
}

// FallbackHabits is the list shown when content cannot be resolved in time.
func FallbackHabits() []models.Habit {
	return Builtin().FeaturedHabits()
}
