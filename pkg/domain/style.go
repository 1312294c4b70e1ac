package domain

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

var palette = map[string]string{
	"bool":   "#e06c75",
	"int":    "#61afef",
	"float":  "#98c379",
	"string": "#e5c07b",
	"vector": "#c678dd",
	"size":   "#56b6c2",
}

// StyleClass returns a stable class name and colour for a value type name.
// Renderers use them to colour properties and wires; they carry no meaning
// for the engine.
func StyleClass(typeName string) (class, color string) {
	class = "type-" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, typeName)

	if c, ok := palette[typeName]; ok {
		return class, c
	}
	h := fnv.New32a()
	h.Write([]byte(typeName))
	return class, hslHex(float64(h.Sum32()%360), 0.55, 0.6)
}

// StyleClass is the class of the property's value type.
func (p *Property) StyleClass() (class, color string) {
	return StyleClass(p.typ.Name())
}

func hslHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", to(r), to(g), to(b))
}
