package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain lowercase", "pizza", "pizza"},
		{"uppercase folded", "PizzaHouse", "pizzahouse"},
		{"spaces become hyphens", "my pizza house", "my-pizza-house"},
		{"punctuation collapses", "Joe's Café", "joe-s-caf"},
		{"consecutive junk is one hyphen", "a!!!b", "a-b"},
		{"leading junk trimmed", "--burgers", "burgers"},
		{"trailing junk trimmed", "burgers!!", "burgers"},
		{"digits kept", "24seven", "24seven"},
		{"hyphens kept", "al-baik", "al-baik"},
		{"all junk yields empty", "!!!", ""},
		{"arabic strips to empty", "مطعم", ""},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.raw))
		})
	}
}

func TestSlugifyIsIdempotent(t *testing.T) {
	for _, raw := range []string{"Joe's Café", "My Pizza House", "al-baik", "A  B  C"} {
		once := Slugify(raw)
		assert.Equal(t, once, Slugify(once), "slugifying %q twice changed the result", raw)
	}
}

func TestSubdomainFromHost(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		base     string
		expected string
	}{
		{"tenant under base domain", "pizza.menuvio.com", "menuvio.com", "pizza"},
		{"tenant with port", "pizza.menuvio.com:8080", "menuvio.com", "pizza"},
		{"case folded", "PIZZA.Menuvio.com", "MENUVIO.com", "pizza"},
		{"bare apex carries no tenant", "menuvio.com", "menuvio.com", ""},
		{"www under base is reserved", "www.menuvio.com", "menuvio.com", ""},
		{"deep prefix keeps leftmost label", "a.b.menuvio.com", "menuvio.com", "a"},
		{"outside base falls back to leftmost", "pizza.localhost", "menuvio.com", "pizza"},
		{"localhost base apex", "localhost:8080", "localhost", ""},
		{"tenant on localhost base", "pizza.localhost:3000", "localhost", "pizza"},
		{"single label without base", "localhost", "", ""},
		{"first label of two without base", "menuvio.com", "", "menuvio"},
		{"www fallback is reserved", "www.example.org", "", ""},
		{"ipv4 never a tenant", "127.0.0.1", "menuvio.com", ""},
		{"ipv4 with port", "127.0.0.1:8080", "menuvio.com", ""},
		{"ipv6 literal", "[::1]", "menuvio.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SubdomainFromHost(tt.host, tt.base))
		})
	}
}
