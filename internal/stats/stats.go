// Package stats keeps the display-only counters of the stats panel. Nothing here is read
// from or written to the chain.
package stats

import (
	"math/big"
	"math/rand"
	"strings"

	"github.com/kelsos/fundme/internal/units"
)

type Stats struct {
	donations  *big.Rat
	coffees    int
	supporters int
}

func New() *Stats {
	return &Stats{donations: new(big.Rat)}
}

// NewDemo seeds the panel with plausible looking numbers
func NewDemo(rng *rand.Rand) *Stats {
	donations := new(big.Rat).SetFloat64(24.5 + rng.Float64()*2)
	return &Stats{
		donations:  roundRat(donations, 1),
		coffees:    128 + rng.Intn(10),
		supporters: 89 + rng.Intn(5),
	}
}

func roundRat(r *big.Rat, digits int) *big.Rat {
	out, _ := new(big.Rat).SetString(r.FloatString(digits))
	return out
}

// RecordDonation adds a successful donation given in wei
func (s *Stats) RecordDonation(wei *big.Int) {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(units.EtherDecimals), nil)
	s.donations.Add(s.donations, new(big.Rat).SetFrac(wei, scale))
	s.coffees++
}

// Donations returns a copy of the donation total in ether
func (s *Stats) Donations() *big.Rat {
	return new(big.Rat).Set(s.donations)
}

func (s *Stats) Coffees() int {
	return s.coffees
}

func (s *Stats) Supporters() int {
	return s.supporters
}

// FormatDonations renders the total with at least one and at most six decimals
func (s *Stats) FormatDonations() string {
	out := strings.TrimRight(s.donations.FloatString(6), "0")
	if strings.HasSuffix(out, ".") {
		out += "0"
	}
	return out
}
