package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	dpi      = 120.0
	fontSize = 12.0

	markerRadius = 4

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 40
	defaultBottomBorder = 90
	defaultRightBorder  = 40

	defaultTrackWidth  = 800
	defaultTrackHeight = 600

	defaultDatetimeFormat = time.DateTime
)

// BorderConfig defines the sizes of white space around the track
type BorderConfig struct {
	Top    int
	Left   int
	Bottom int // Space for the info block
	Right  int
}

// RenderConfig holds all configuration options for track visualization
type RenderConfig struct {
	// FontPath locates the TrueType font used for annotations
	FontPath string

	DatetimeFormat string         // Format string for date/time display
	Location       *time.Location // Timezone for time display

	FontSize   float64    // Font size in points
	ColorTheme ColorTheme // Gradient along the track

	// Track area size in pixels, excluding borders
	Width  int
	Height int

	Borders BorderConfig
}

// TrackRenderer draws a mission track with start/end markers and an
// annotated info block.
type TrackRenderer struct {
	gradient Gradient
	config   RenderConfig
}

// NewTrackRenderer creates a renderer with the given configuration.
func NewTrackRenderer(config RenderConfig) (*TrackRenderer, error) {
	if config.FontPath == "" {
		return nil, fmt.Errorf("font path is required")
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.Width == 0 {
		config.Width = defaultTrackWidth
	}
	if config.Height == 0 {
		config.Height = defaultTrackHeight
	}
	if config.Borders.Top == 0 {
		config.Borders.Top = defaultTopBorder
	}
	if config.Borders.Left == 0 {
		config.Borders.Left = defaultLeftBorder
	}
	if config.Borders.Bottom == 0 {
		config.Borders.Bottom = defaultBottomBorder
	}
	if config.Borders.Right == 0 {
		config.Borders.Right = defaultRightBorder
	}

	return &TrackRenderer{
		gradient: GetColorTheme(config.ColorTheme),
		config:   config,
	}, nil
}

// Render creates an image of the track with annotations
func (r *TrackRenderer) Render(track *TrackData) (*image.RGBA, error) {
	fullWidth := r.config.Width + r.config.Borders.Left + r.config.Borders.Right
	fullHeight := r.config.Height + r.config.Borders.Top + r.config.Borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	trackArea := image.Rect(
		r.config.Borders.Left,
		r.config.Borders.Top,
		r.config.Borders.Left+r.config.Width,
		r.config.Borders.Top+r.config.Height,
	)

	r.renderTrack(img, trackArea, track)

	ann, err := newAnnotator(annotatorConfig{
		FontPath:       r.config.FontPath,
		DatetimeFormat: r.config.DatetimeFormat,
		Location:       r.config.Location,
		FontSize:       r.config.FontSize,
		Borders:        r.config.Borders,
	})
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.annotate(img, track); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}

	return img, nil
}

// renderTrack draws the path segment by segment, colored by progress, with
// markers on the first and last points.
func (r *TrackRenderer) renderTrack(img *image.RGBA, area image.Rectangle, track *TrackData) {
	proj := newProjection(track, area)

	segments := len(track.Points) - 1
	prev := proj.point(track.Points[0].Latitude, track.Points[0].Longitude)
	for i := 1; i < len(track.Points); i++ {
		next := proj.point(track.Points[i].Latitude, track.Points[i].Longitude)
		drawLine(img, prev, next, r.gradient(float64(i)/float64(segments)))
		prev = next
	}

	start := proj.point(track.Points[0].Latitude, track.Points[0].Longitude)
	end := proj.point(track.Points[len(track.Points)-1].Latitude, track.Points[len(track.Points)-1].Longitude)
	drawMarker(img, start, markerRadius, startMarkerColor)
	drawMarker(img, end, markerRadius, endMarkerColor)
}

// drawLine draws a 1px segment between two points (Bresenham).
func drawLine(img *image.RGBA, a, b image.Point, c color.Color) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)

	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}

	err := dx + dy
	x, y := a.X, a.Y
	for {
		img.Set(x, y, c)
		if x == b.X && y == b.Y {
			return
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func drawMarker(img *image.RGBA, center image.Point, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(center.X+dx, center.Y+dy, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Internal annotator implementation
type annotatorConfig struct {
	FontPath       string
	DatetimeFormat string
	Location       *time.Location
	FontSize       float64
	Borders        BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	fontBytes, err := os.ReadFile(config.FontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, track *TrackData) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawTitle(img, track); err != nil {
		return fmt.Errorf("drawing title: %w", err)
	}
	if err := a.drawInfoBlock(img, track); err != nil {
		return fmt.Errorf("drawing info block: %w", err)
	}

	return nil
}

func (a *annotator) drawTitle(img *image.RGBA, track *TrackData) error {
	title := fmt.Sprintf("Session #%d: %s", track.Session.ID, track.Session.Vehicle)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	width := font.MeasureString(a.fontFace, title)
	x := (img.Bounds().Dx() - width.Round()) / 2
	textY := a.config.Borders.Top - fontHeight/2

	pt := freetype.Pt(x, textY)
	if _, err := a.context.DrawString(title, pt); err != nil {
		return fmt.Errorf("drawing title text: %w", err)
	}
	return nil
}

func (a *annotator) drawInfoBlock(img *image.RGBA, track *TrackData) error {
	distance, suffix := humanize.ComputeSI(track.DistanceMeters())

	lines := []string{
		fmt.Sprintf("Start: %s (%.6f, %.6f)",
			track.Start.In(a.config.Location).Format(a.config.DatetimeFormat),
			track.Points[0].Latitude, track.Points[0].Longitude),
		fmt.Sprintf("End:   %s (%.6f, %.6f)",
			track.End.In(a.config.Location).Format(a.config.DatetimeFormat),
			track.Points[len(track.Points)-1].Latitude,
			track.Points[len(track.Points)-1].Longitude),
		fmt.Sprintf("Targets: %s; Distance: %0.2f %sm; Duration: %s",
			humanize.Comma(int64(len(track.Points))), distance, suffix,
			track.End.Sub(track.Start).Round(time.Second)),
	}

	metrics := a.fontFace.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Round() + 4

	textY := img.Bounds().Max.Y - a.config.Borders.Bottom + lineHeight
	for _, line := range lines {
		pt := freetype.Pt(a.config.Borders.Left, textY)
		if _, err := a.context.DrawString(line, pt); err != nil {
			return fmt.Errorf("drawing info text: %w", err)
		}
		textY += lineHeight
	}

	return nil
}
