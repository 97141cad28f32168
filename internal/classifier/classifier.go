// Package classifier buckets recognized text fragments into screen zones.
package classifier

import (
	"strings"

	"github.com/ivlev/gifocr/internal/models"
)

// Contains reports whether polygon lies inside zone. Only vertex 0 (taken as
// top-left) and vertex 1 (taken as bottom-right) are checked, and the zone
// edges are exclusive. Vertices 2 and 3 are ignored.
func Contains(zone models.Zone, polygon []models.Point) bool {
	if len(polygon) < 2 {
		return false
	}
	tl, br := polygon[0], polygon[1]
	return tl.X > zone.TopLeft.X && tl.Y > zone.TopLeft.Y &&
		br.X < zone.BottomRight.X && br.Y < zone.BottomRight.Y
}

// Classify builds the result for one frame. Subtitle fragments are joined in
// emission order; the player name is the last matching fragment. A fragment
// inside both zones counts as subtitle only.
func Classify(fragments []models.Fragment, subtitle, player models.Zone) models.FrameResult {
	var sb strings.Builder
	var res models.FrameResult

	for _, f := range fragments {
		if len(f.Polygon) != 4 {
			continue
		}
		switch {
		case Contains(subtitle, f.Polygon):
			sb.WriteString(f.Text)
		case Contains(player, f.Polygon):
			res.PlayerName = f.Text
		}
	}

	res.Subtitle = sb.String()
	return res
}

// ClassifyAll classifies every frame, preserving frame order.
func ClassifyAll(texts []models.FrameText, subtitle, player models.Zone) models.ResultSet {
	results := make(models.ResultSet, len(texts))
	for i, t := range texts {
		results[i] = Classify(t.Fragments, subtitle, player)
		results[i].FullText = t.FullText
	}
	return results
}
