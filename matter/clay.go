// Package matter holds clay bodies and the shrinkage they undergo between the
// wet cast and the fired piece.
package matter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soypat/mould/profile"
)

var (
	// Porcelain shrinks the most of the common bodies. 13% from wet to cone 10.
	Porcelain = ClayBody{Name: "porcelain", shrink: 0.13}
	// Stoneware shrinks 12%.
	Stoneware = ClayBody{Name: "stoneware", shrink: 0.12}
	// Earthenware fires at low temperature and shrinks 8%.
	Earthenware = ClayBody{Name: "earthenware", shrink: 0.08}
)

var bodies = map[string]ClayBody{
	Porcelain.Name:   Porcelain,
	Stoneware.Name:   Stoneware,
	Earthenware.Name: Earthenware,
}

type ClayBody struct {
	Name string
	// shrink is the linear contraction from the cast state to the fired state.
	shrink float64
}

// Custom returns a clay body with the given linear shrinkage rate.
func Custom(name string, shrink float64) ClayBody {
	return ClayBody{Name: name, shrink: profile.ClampShrinkage(shrink)}
}

// Shrinkage returns the linear shrinkage rate of the body.
func (c ClayBody) Shrinkage() float64 { return c.shrink }

// Scale enlarges p so that after firing the piece measures p.
func (c ClayBody) Scale(p profile.Profile) profile.Profile {
	return profile.ScaleForShrinkage(p, c.shrink)
}

// WetDim returns the wet dimension needed for a fired dimension real.
func (c ClayBody) WetDim(real float64) float64 {
	return real * profile.ShrinkageFactor(c.shrink)
}

// Lookup finds a clay body by case-insensitive name.
func Lookup(name string) (ClayBody, error) {
	c, ok := bodies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ClayBody{}, fmt.Errorf("unknown clay body %q, known bodies: %s", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the names of the known clay bodies, sorted.
func Names() []string {
	names := make([]string, 0, len(bodies))
	for name := range bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
