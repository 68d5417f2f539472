package file

import (
	"embed"
	"html/template"
	"math"
	"strconv"
	"time"
)

// landingCountdownSeconds is how long the landing page waits before starting the
// direct download on its own.
const landingCountdownSeconds = 5

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("Jan 2, 2006 15:04 UTC") },
}).ParseFS(templateFS, "templates/*.html"))

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders n in 1024-based units with at most two decimals, e.g. "1.5 KB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	value := float64(n)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}
