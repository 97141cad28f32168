package models

import "image"

// Point is a pixel coordinate in the frame's coordinate space.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Zone is a named axis-aligned screen rectangle used to classify text by position.
type Zone struct {
	Name        string `yaml:"-" json:"-"`
	TopLeft     Point  `yaml:"topLeft" json:"topLeft"`
	BottomRight Point  `yaml:"bottomRight" json:"bottomRight"`
}

// Frame is one decoded still image in display order
type Frame struct {
	Index int
	Image image.Image
}

// Fragment is a single recognized text unit with its bounding polygon.
// Polygon vertices keep the order reported by the recognizer.
type Fragment struct {
	Text    string
	Polygon []Point
}

// FrameText is the recognizer output for one frame.
type FrameText struct {
	FullText  string
	Fragments []Fragment
}

// FrameResult holds the classified text of one frame.
type FrameResult struct {
	Subtitle   string `json:"subtitle" yaml:"subtitle"`
	PlayerName string `json:"playerName" yaml:"playerName"`
	FullText   string `json:"-" yaml:"-"`
}

// ResultSet is index-aligned with the source frame sequence.
type ResultSet []FrameResult
