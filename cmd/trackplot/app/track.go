package app

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/roman-kulish/follow-mission/internal/flightlog"
)

const earthRadiusM = 6371000.0

// TrackData is a mission track prepared for rendering: the recorded points
// plus their geographic bounding box.
type TrackData struct {
	Session *flightlog.Session
	Points  []flightlog.TrackPoint

	MinLat, MaxLat float64
	MinLon, MaxLon float64

	Start, End time.Time
}

// NewTrackData computes bounds over the recorded points.
func NewTrackData(session *flightlog.Session, points []flightlog.TrackPoint) (*TrackData, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("session %d has no recorded track", session.ID)
	}

	t := TrackData{
		Session: session,
		Points:  points,
		MinLat:  points[0].Latitude,
		MaxLat:  points[0].Latitude,
		MinLon:  points[0].Longitude,
		MaxLon:  points[0].Longitude,
		Start:   points[0].Timestamp,
		End:     points[len(points)-1].Timestamp,
	}

	for _, p := range points {
		t.MinLat = math.Min(t.MinLat, p.Latitude)
		t.MaxLat = math.Max(t.MaxLat, p.Latitude)
		t.MinLon = math.Min(t.MinLon, p.Longitude)
		t.MaxLon = math.Max(t.MaxLon, p.Longitude)
	}

	return &t, nil
}

// DistanceMeters sums the straight segment lengths along the track using an
// equirectangular approximation, plenty for the short ranges a follow
// mission covers.
func (t *TrackData) DistanceMeters() float64 {
	var total float64
	for i := 1; i < len(t.Points); i++ {
		total += segmentMeters(t.Points[i-1], t.Points[i])
	}
	return total
}

func segmentMeters(a, b flightlog.TrackPoint) float64 {
	midLat := (a.Latitude + b.Latitude) / 2 * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180 * math.Cos(midLat)
	return earthRadiusM * math.Sqrt(dLat*dLat+dLon*dLon)
}

// projection maps track coordinates into an image rectangle, preserving
// aspect ratio and centering the track within the area.
type projection struct {
	area image.Rectangle

	minLat, maxLat float64
	minLon, maxLon float64

	latCos  float64
	scale   float64
	offsetX float64
	offsetY float64
}

func newProjection(t *TrackData, area image.Rectangle) projection {
	p := projection{
		area:   area,
		minLat: t.MinLat,
		maxLat: t.MaxLat,
		minLon: t.MinLon,
		maxLon: t.MaxLon,
		latCos: math.Cos((t.MinLat + t.MaxLat) / 2 * math.Pi / 180),
	}

	spanX := (t.MaxLon - t.MinLon) * p.latCos
	spanY := t.MaxLat - t.MinLat

	// A degenerate track (single point, or a target standing still) still
	// renders: the point lands in the middle of the area.
	if spanX <= 0 && spanY <= 0 {
		p.scale = 0
	} else {
		scaleX := math.Inf(1)
		if spanX > 0 {
			scaleX = float64(area.Dx()) / spanX
		}
		scaleY := math.Inf(1)
		if spanY > 0 {
			scaleY = float64(area.Dy()) / spanY
		}
		p.scale = math.Min(scaleX, scaleY)
	}

	p.offsetX = (float64(area.Dx()) - spanX*p.scale) / 2
	p.offsetY = (float64(area.Dy()) - spanY*p.scale) / 2
	return p
}

func (p projection) point(lat, lon float64) image.Point {
	x := (lon - p.minLon) * p.latCos * p.scale
	y := (p.maxLat - lat) * p.scale

	return image.Point{
		X: p.area.Min.X + int(math.Round(x+p.offsetX)),
		Y: p.area.Min.Y + int(math.Round(y+p.offsetY)),
	}
}
