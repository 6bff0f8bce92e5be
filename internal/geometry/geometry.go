// Package geometry extracts dimensional information from pay-item
// descriptions so the alternate-seek lookup can compare items by size.
//
// Recognized patterns:
//   - rectangles: "9' x 6'", "12 IN x 18 IN", "9 FT X 6 FT"
//   - circles:    "Ø 42 IN", "DIAMETER 36\"", "DIA 3 FT"
//   - minimum-area descriptors: "MIN AREA 8.5 SFT"
//
// All areas are reported in square feet.
package geometry

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Shape names reported in Info.
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
	ShapeMinArea   = "min_area"
)

var (
	rectPattern = regexp.MustCompile(`(?i)(?P<a>\d+(?:\.\d+)?)\s*(?P<aUnit>FT|FEET|FOOT|F|'|IN|INCH|INCHES|")?\s*[x\x{00D7}X]\s*(?P<b>\d+(?:\.\d+)?)\s*(?P<bUnit>FT|FEET|FOOT|F|'|IN|INCH|INCHES|")?`)

	circlePattern = regexp.MustCompile(`(?i)(?:\x{00D8}|DIAM(?:ETER)?|DIA)\s*(?P<diameter>\d+(?:\.\d+)?)\s*(?P<unit>FT|FEET|FOOT|F|'|IN|INCH|INCHES|")`)

	minAreaPattern = regexp.MustCompile(`(?i)MIN\s+AREA\s+(?P<area>\d+(?:\.\d+)?)\s*(?:SQ\s*FT|SFT|SF|FT\^?2|FT2)`)
)

// Info describes the geometry recovered from a description.
type Info struct {
	Shape      string
	AreaSqFt   float64
	SourceText string
	Dimensions string // human-readable, empty for min-area descriptors
}

// Parse extracts geometry from a pay-item description. Returns nil when no
// pattern matches; callers treat that as "no geometry available", not an
// error.
func Parse(description string) *Info {
	text := strings.TrimSpace(description)
	if text == "" {
		return nil
	}

	if m := rectPattern.FindStringSubmatch(text); m != nil {
		return parseRectangle(m, text)
	}
	if m := circlePattern.FindStringSubmatch(text); m != nil {
		return parseCircle(m, text)
	}
	if m := minAreaPattern.FindStringSubmatch(text); m != nil {
		area, _ := strconv.ParseFloat(m[1], 64)
		return &Info{Shape: ShapeMinArea, AreaSqFt: area, SourceText: text}
	}
	return nil
}

var inchUnits = map[string]bool{"IN": true, "INCH": true, "INCHES": true, `"`: true}

func lengthToFeet(value float64, unit string) float64 {
	if inchUnits[strings.ToUpper(strings.TrimSpace(unit))] {
		return value / 12
	}
	return value
}

func parseRectangle(m []string, text string) *Info {
	a, _ := strconv.ParseFloat(m[rectPattern.SubexpIndex("a")], 64)
	b, _ := strconv.ParseFloat(m[rectPattern.SubexpIndex("b")], 64)
	aFt := lengthToFeet(a, m[rectPattern.SubexpIndex("aUnit")])
	bFt := lengthToFeet(b, m[rectPattern.SubexpIndex("bUnit")])
	return &Info{
		Shape:      ShapeRectangle,
		AreaSqFt:   aFt * bFt,
		SourceText: text,
		Dimensions: fmt.Sprintf("%.4g ft x %.4g ft", aFt, bFt),
	}
}

func parseCircle(m []string, text string) *Info {
	d, _ := strconv.ParseFloat(m[circlePattern.SubexpIndex("diameter")], 64)
	dFt := lengthToFeet(d, m[circlePattern.SubexpIndex("unit")])
	r := dFt / 2
	return &Info{
		Shape:      ShapeCircle,
		AreaSqFt:   math.Pi * r * r,
		SourceText: text,
		Dimensions: fmt.Sprintf("diameter %.4g ft", dFt),
	}
}
