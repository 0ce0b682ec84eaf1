package slint

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const Version = "0.1.0"

func BaseFileName(path string) string {
	fname := FileName(path)
	n := strings.LastIndex(fname, ".")
	if n < 1 {
		return fname
	}
	return fname[:n]
}

func FileName(path string) string {
	return filepath.Base(path)
}

func FileDir(path string) string {
	return filepath.Dir(path)
}

func Pretty(obj interface{}) string {
	j, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		return fmt.Sprint(obj)
	}
	return string(j)
}

// SplitNumberLiteral splits a numeric literal token like "42px" or "1.5s"
// into its value and its unit. The unit is nil for a plain number; the
// lexer only produces known suffixes.
func SplitNumberLiteral(text string) (float64, *Unit) {
	i := len(text)
	for i > 0 {
		ch := text[i-1]
		if ch >= '0' && ch <= '9' || ch == '.' {
			break
		}
		i--
	}
	value, err := strconv.ParseFloat(text[:i], 64)
	if err != nil {
		return 0, nil
	}
	if i == len(text) {
		return value, nil
	}
	return value, LookupUnit(text[i:])
}

// ParseColorLiteral parses #rgb, #rrggbb and #rrggbbaa into 0xAARRGGBB.
func ParseColorLiteral(text string) (uint32, error) {
	hex := strings.TrimPrefix(text, "#")
	expand := func(s string) uint32 {
		v, _ := strconv.ParseUint(s, 16, 32)
		return uint32(v)
	}
	switch len(hex) {
	case 3:
		r := expand(hex[0:1])
		g := expand(hex[1:2])
		b := expand(hex[2:3])
		return 0xff000000 | r<<20 | r<<16 | g<<12 | g<<8 | b<<4 | b, nil
	case 6:
		return 0xff000000 | expand(hex), nil
	case 8:
		v := expand(hex)
		return v<<24 | v>>8, nil
	}
	return 0, fmt.Errorf("Invalid color literal: %q", text)
}
