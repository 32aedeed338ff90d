package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/slipway-maps/slipway/engine"
	"github.com/slipway-maps/slipway/render"
	"github.com/slipway-maps/slipway/tiles"
)

// appConfig is read from SLIPWAY_* environment variables, optionally via a
// .env file.
type appConfig struct {
	Width      int      `default:"800"`
	Height     int      `default:"600"`
	Lat        float64  `default:"48.8566"`
	Lng        float64  `default:"2.3522"`
	Zoom       float64  `default:"4"`
	TileURL    string   `envconfig:"TILE_URL"`
	Subdomains []string `default:"a,b,c"`
	GeoJSON    string   `envconfig:"GEOJSON"`
	Shapefile  string   `envconfig:"SHAPEFILE"`
}

const keyboardPanStep = 8.0

// Slipway implements ebiten.Game around the map engine.
type Slipway struct {
	engine   *engine.Map
	renderer *render.EbitenRenderer

	debugMode    bool
	lastZoomTime float64

	// Touch state for multi-touch interactions
	lastTouchX map[ebiten.TouchID]float64
	lastTouchY map[ebiten.TouchID]float64
}

func (g *Slipway) Update() error {
	now := time.Now()

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debugMode = !g.debugMode
	}

	// Keyboard zooming
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) ||
		inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		g.engine.ZoomIn()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) ||
		inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		g.engine.ZoomOut()
	}

	// Mouse wheel zooming with time-based throttling
	currentTime := float64(now.UnixNano()) / 1e9
	_, wheelY := ebiten.Wheel()
	if wheelY != 0 && (currentTime-g.lastZoomTime) > 0.1 {
		x, y := ebiten.CursorPosition()
		g.engine.HandleWheel(float64(x), float64(y), -wheelY)
		g.lastZoomTime = currentTime
	}

	// Keyboard panning
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		g.engine.Pan(keyboardPanStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		g.engine.Pan(-keyboardPanStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		g.engine.Pan(0, keyboardPanStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		g.engine.Pan(0, -keyboardPanStep)
	}

	// Mouse buttons and movement go straight to the engine's state machine.
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.engine.HandleMouseDown(x, y, now)
	}
	g.engine.HandleMouseMove(x, y, now)
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.engine.HandleMouseUp(x, y, now)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.engine.HandleContextMenu(x, y)
	}

	g.handleTouchEvents()

	g.engine.Tick(now)
	return nil
}

func (g *Slipway) Draw(screen *ebiten.Image) {
	g.renderer.SetTarget(screen)
	g.engine.Render()

	if g.debugMode {
		lat, lng := g.engine.Center()
		b := g.engine.Bounds()
		debugText := fmt.Sprintf("Lat: %.4f\nLng: %.4f\nZoom: %.1f\nBounds: %.3f,%.3f - %.3f,%.3f",
			lat, lng, g.engine.Zoom(), b[0], b[1], b[2], b[3])
		ebitenutil.DebugPrint(screen, debugText)
	}
}

func (g *Slipway) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.engine.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func main() {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	var cfg appConfig
	if err := envconfig.Process("slipway", &cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	tileLayer := tiles.DefaultLayer()
	if cfg.TileURL != "" {
		tileLayer.URLTemplate = cfg.TileURL
		tileLayer.Subdomains = cfg.Subdomains
	}

	renderer := render.NewEbitenRenderer()
	m := engine.New(engine.Config{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Lat:       cfg.Lat,
		Lng:       cfg.Lng,
		Zoom:      cfg.Zoom,
		TileLayer: tileLayer,
		Renderer:  renderer,
	})

	if cfg.GeoJSON != "" {
		data, err := os.ReadFile(cfg.GeoJSON)
		if err != nil {
			log.Fatalf("reading %s: %v", cfg.GeoJSON, err)
		}
		handle, err := m.AddGeoJSON(data)
		if err != nil {
			log.Fatalf("loading %s: %v", cfg.GeoJSON, err)
		}
		count, _ := m.GeoJSONFeatureCount(handle)
		log.Printf("loaded %d features from %s", count, cfg.GeoJSON)
	}

	if cfg.Shapefile != "" {
		handles, err := m.LoadShapefile(cfg.Shapefile)
		if err != nil {
			log.Fatalf("loading %s: %v", cfg.Shapefile, err)
		}
		log.Printf("loaded %s (points=%d lines=%d polygons=%d)",
			cfg.Shapefile, handles.Points, handles.Lines, handles.Polygons)
	}

	m.On(engine.EventClick, func(ev engine.Event) {
		if ev.Hit != nil {
			log.Printf("clicked %s feature %d: %v", ev.Hit.Source, ev.Hit.Feature, ev.Hit.Meta)
		}
	})

	app := &Slipway{
		engine:       m,
		renderer:     renderer,
		lastZoomTime: float64(time.Now().UnixNano()) / 1e9,
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Slipway")
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
}
