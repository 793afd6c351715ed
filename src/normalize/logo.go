package normalize

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
)

var palette = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A", "#98D8C8"}

// PlaceholderLogo draws a 100x100 abstract SVG for seed and returns it as a
// data URI. The same seed always yields the same image.
func PlaceholderLogo(seed string) string {
	sum := 0
	for _, r := range seed {
		sum += int(r)
	}

	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">`)
	fmt.Fprintf(&b, `<rect width="100" height="100" fill="%s"/>`, palette[sum%len(palette)])
	for i := 0; i < 5; i++ {
		x := math.Sin(float64(sum+i))*30 + 50
		y := math.Cos(float64(sum+i))*30 + 50
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="20" fill="%s"/>`, x, y, palette[(sum+i)%len(palette)])
	}
	b.WriteString(`</svg>`)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(b.String()))
}
