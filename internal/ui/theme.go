package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"
)

// ThemeConfig is a theme as it sits in its YAML file.
type ThemeConfig struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Author      string            `yaml:"author"`
	Version     string            `yaml:"version"`
	Colors      map[string]string `yaml:"colors"`
}

// Theme is a loaded theme with resolved tcell colors.
type Theme struct {
	Name        string
	Description string
	Author      string
	Version     string
	colors      map[string]tcell.Color
}

// LoadTheme loads a theme from a YAML file.
func LoadTheme(themePath string) (*Theme, error) {
	data, err := os.ReadFile(themePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var config ThemeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse theme YAML: %w", err)
	}

	theme := &Theme{
		Name:        config.Name,
		Description: config.Description,
		Author:      config.Author,
		Version:     config.Version,
		colors:      make(map[string]tcell.Color),
	}
	for key, value := range config.Colors {
		color, err := parseColor(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse color %q: %w", key, err)
		}
		theme.colors[key] = color
	}
	return theme, nil
}

// LoadThemeFromDir looks for themeName.yaml in themesDir, then for any
// .yaml under ./themes, and falls back to the built-in theme. The widget
// always gets a usable theme out of this.
func LoadThemeFromDir(themesDir, themeName string) *Theme {
	if theme, err := LoadTheme(filepath.Join(themesDir, themeName+".yaml")); err == nil {
		return theme
	}
	if files, err := os.ReadDir("themes"); err == nil {
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".yaml") {
				continue
			}
			if theme, err := LoadTheme(filepath.Join("themes", file.Name())); err == nil {
				return theme
			}
		}
	}
	return BuiltinTheme()
}

// BuiltinTheme is the compiled-in fallback.
func BuiltinTheme() *Theme {
	return &Theme{
		Name: "builtin",
		colors: map[string]tcell.Color{
			"background":       tcell.NewRGBColor(0x1e, 0x1e, 0x2e),
			"background-light": tcell.NewRGBColor(0x31, 0x32, 0x44),
			"foreground":       tcell.NewRGBColor(0xcd, 0xd6, 0xf4),
			"foreground-dark":  tcell.NewRGBColor(0x6c, 0x70, 0x86),
			"primary":          tcell.NewRGBColor(0x89, 0xb4, 0xfa),
			"border":           tcell.NewRGBColor(0x45, 0x47, 0x5a),
			"input-field":      tcell.NewRGBColor(0x31, 0x32, 0x44),
			"button-active":    tcell.NewRGBColor(0x89, 0xb4, 0xfa),
			"button-text":      tcell.NewRGBColor(0x1e, 0x1e, 0x2e),
			"red":              tcell.NewRGBColor(0xf3, 0x8b, 0xa8),
		},
	}
}

// GetColor returns a color by name, white when the theme lacks it.
func (t *Theme) GetColor(name string) tcell.Color {
	if color, exists := t.colors[name]; exists {
		return color
	}
	return tcell.ColorWhite
}

func (t *Theme) FormColors() (bg, fieldBg, buttonBg, buttonText, fieldText tcell.Color) {
	return t.GetColor("background"),
		t.GetColor("input-field"),
		t.GetColor("button-active"),
		t.GetColor("button-text"),
		t.GetColor("foreground")
}

func parseColor(value string) (tcell.Color, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "#") {
		return parseHexColor(value)
	}
	if strings.HasPrefix(value, "rgb(") && strings.HasSuffix(value, ")") {
		return parseRGBFunction(value)
	}
	return parseNamedColor(value)
}

// parseHexColor handles #RGB and #RRGGBB.
func parseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return tcell.ColorWhite, fmt.Errorf("invalid hex color format: #%s", hex)
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return tcell.ColorWhite, err
	}
	return tcell.NewHexColor(int32(v)), nil
}

// parseRGBFunction handles rgb(255, 255, 255).
func parseRGBFunction(rgbStr string) (tcell.Color, error) {
	rgbStr = strings.TrimPrefix(rgbStr, "rgb(")
	rgbStr = strings.TrimSuffix(rgbStr, ")")

	parts := strings.Split(rgbStr, ",")
	if len(parts) != 3 {
		return tcell.ColorWhite, fmt.Errorf("invalid RGB format: %s", rgbStr)
	}
	var c [3]int32
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return tcell.ColorWhite, err
		}
		c[i] = int32(n)
	}
	return tcell.NewRGBColor(c[0], c[1], c[2]), nil
}

func parseNamedColor(name string) (tcell.Color, error) {
	namedColors := map[string]tcell.Color{
		"black":   tcell.ColorBlack,
		"red":     tcell.ColorRed,
		"green":   tcell.ColorGreen,
		"yellow":  tcell.ColorYellow,
		"blue":    tcell.ColorBlue,
		"magenta": tcell.ColorDarkMagenta,
		"cyan":    tcell.ColorLightCyan,
		"white":   tcell.ColorWhite,
		"gray":    tcell.ColorGray,
		"grey":    tcell.ColorGray,
	}
	if color, exists := namedColors[strings.ToLower(name)]; exists {
		return color, nil
	}
	return tcell.ColorWhite, fmt.Errorf("unknown color name: %s", name)
}
