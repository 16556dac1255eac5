package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/yllada/maestral-gtk/common"
)

// Symbol selects the glyph drawn on a tray icon.
type Symbol int

const (
	SymbolCheck Symbol = iota
	SymbolSync
	SymbolPause
	SymbolAlert
	SymbolOffline
)

// IconConfig defines the configuration for icon generation.
type IconConfig struct {
	Size        int
	FillColor   color.RGBA
	BorderColor color.RGBA
	SymbolColor color.RGBA
	Symbol      Symbol
}

var (
	white = color.RGBA{255, 255, 255, 255}
	blue  = color.RGBA{0, 97, 254, 255}
	gray  = color.RGBA{117, 117, 117, 255}
	amber = color.RGBA{229, 165, 10, 255}
	red   = color.RGBA{224, 27, 36, 255}
)

// IconConfigForState returns the tray icon configuration for a sync state.
func IconConfigForState(state common.SyncState) IconConfig {
	cfg := IconConfig{
		Size:        common.TrayIconSize,
		FillColor:   blue,
		BorderColor: color.RGBA{0, 72, 190, 255},
		SymbolColor: white,
	}
	switch state {
	case common.StateIdle:
		cfg.Symbol = SymbolCheck
	case common.StateSyncing:
		cfg.Symbol = SymbolSync
	case common.StatePaused:
		cfg.FillColor, cfg.BorderColor = amber, color.RGBA{190, 130, 0, 255}
		cfg.Symbol = SymbolPause
	case common.StateError:
		cfg.FillColor, cfg.BorderColor = red, color.RGBA{170, 20, 28, 255}
		cfg.Symbol = SymbolAlert
	default:
		cfg.FillColor, cfg.BorderColor = gray, color.RGBA{158, 158, 158, 255}
		cfg.Symbol = SymbolOffline
	}
	return cfg
}

// IconGenerator generates PNG icons for the system tray.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates a new icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() []byte {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawBadge(img)
	switch g.config.Symbol {
	case SymbolCheck:
		g.drawCheckmark(img)
	case SymbolSync:
		g.drawSync(img)
	case SymbolPause:
		g.drawPause(img)
	case SymbolAlert:
		g.drawAlert(img)
	default:
		g.drawDash(img)
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// drawBadge draws the round background.
func (g *IconGenerator) drawBadge(img *image.RGBA) {
	size := g.config.Size
	c := float64(size) / 2
	r := c - 1

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			switch {
			case d > r:
			case d > r-1.2:
				img.Set(x, y, g.config.BorderColor)
			default:
				img.Set(x, y, g.config.FillColor)
			}
		}
	}
}

// scale maps a coordinate on the 22px design grid to the icon size.
func (g *IconGenerator) scale(v int) int {
	return v * g.config.Size / 22
}

func (g *IconGenerator) plot(img *image.RGBA, x, y int) {
	x, y = g.scale(x), g.scale(y)
	if x >= 0 && x < g.config.Size && y >= 0 && y < g.config.Size {
		img.Set(x, y, g.config.SymbolColor)
	}
}

func (g *IconGenerator) drawCheckmark(img *image.RGBA) {
	points := []struct{ x, y int }{
		{6, 11}, {7, 11}, {7, 12}, {8, 12}, {8, 13}, {9, 13},
		{9, 12}, {10, 12}, {10, 11}, {11, 11}, {11, 10}, {12, 10},
		{12, 9}, {13, 9}, {13, 8}, {14, 8}, {14, 7}, {15, 7},
	}
	for _, p := range points {
		g.plot(img, p.x, p.y)
	}
}

// drawSync draws two opposing arrow arcs.
func (g *IconGenerator) drawSync(img *image.RGBA) {
	for a := 20.0; a <= 160; a += 6 {
		rad := a * math.Pi / 180
		g.plot(img, 11+int(math.Round(5*math.Cos(rad))), 11-int(math.Round(5*math.Sin(rad))))
		g.plot(img, 11-int(math.Round(5*math.Cos(rad))), 11+int(math.Round(5*math.Sin(rad))))
	}
	// arrow heads
	for _, p := range []struct{ x, y int }{{15, 8}, {16, 9}, {17, 8}, {7, 14}, {6, 13}, {5, 14}} {
		g.plot(img, p.x, p.y)
	}
}

func (g *IconGenerator) drawPause(img *image.RGBA) {
	for y := 7; y <= 15; y++ {
		for _, x := range []int{8, 9, 13, 14} {
			g.plot(img, x, y)
		}
	}
}

func (g *IconGenerator) drawAlert(img *image.RGBA) {
	for y := 6; y <= 12; y++ {
		g.plot(img, 10, y)
		g.plot(img, 11, y)
	}
	for _, p := range []struct{ x, y int }{{10, 14}, {11, 14}, {10, 15}, {11, 15}} {
		g.plot(img, p.x, p.y)
	}
}

func (g *IconGenerator) drawDash(img *image.RGBA) {
	for x := 7; x <= 14; x++ {
		g.plot(img, x, 10)
		g.plot(img, x, 11)
	}
}

var (
	iconCacheMu sync.Mutex
	iconCache   = make(map[common.SyncState][]byte)
)

// IconForState returns the PNG tray icon for state, generating it once.
func IconForState(state common.SyncState) []byte {
	iconCacheMu.Lock()
	defer iconCacheMu.Unlock()
	if icon, ok := iconCache[state]; ok {
		return icon
	}
	icon := NewIconGenerator(IconConfigForState(state)).Generate()
	iconCache[state] = icon
	return icon
}
