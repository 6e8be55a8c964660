package stroke

import (
	"bytes"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// The embedded face is parsed once; font.Font is read-only and safe for
// concurrent use, while font.Face and HarfbuzzShaper are not and are
// created per call / pooled.
var (
	embeddedFontOnce sync.Once
	embeddedFont     *font.Font

	shaperPool = sync.Pool{
		New: func() any { return &shaping.HarfbuzzShaper{} },
	}
)

func embedded() *font.Font {
	embeddedFontOnce.Do(func() {
		face, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
		if err != nil {
			// The embedded font is a build artifact; failing to parse
			// it is a programming error, not an input error.
			panic("ink: parsing embedded font: " + err.Error())
		}
		embeddedFont = face.Font
	})
	return embeddedFont
}

// MeasureText returns the natural width and height of a text block at the
// given font size, in document units. Lines are separated by '\n'. Shaping
// uses the embedded face via go-text/typesetting, so measurements include
// kerning and ligatures.
func MeasureText(text string, size float64) (w, h float64) {
	if text == "" || size <= 0 {
		return 0, 0
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	defer shaperPool.Put(hb)

	face := font.NewFace(embedded())

	var maxAdvance float64
	var lineHeight float64
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		runes := []rune(line)
		if len(runes) == 0 {
			continue
		}
		out := hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  0,
			RunEnd:    len(runes),
			Direction: di.DirectionLTR,
			Face:      face,
			Size:      floatToFixed(size),
			Script:    detectScript(runes),
			Language:  language.NewLanguage("en"),
		})
		if adv := fixedToFloat(out.Advance); adv > maxAdvance {
			maxAdvance = adv
		}
		if lh := fixedToFloat(out.LineBounds.Ascent - out.LineBounds.Descent + out.LineBounds.Gap); lh > lineHeight {
			lineHeight = lh
		}
	}
	if lineHeight == 0 {
		lineHeight = size * 1.2
	}
	return maxAdvance, lineHeight * float64(len(lines))
}

// LineHeight returns the natural line height of the embedded face at the
// given size.
func LineHeight(size float64) float64 {
	_, h := MeasureText("Ag", size)
	return h
}

// detectScript returns the script of the first non-space rune, defaulting
// to Latin. Mixed-script runs measure with the first script's rules.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a float64 size to 26.6 fixed point.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts a 26.6 fixed point value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
