package server

import (
	"github.com/matzehuels/reveal/pkg/view"
)

// viewModel is the static part of a view: everything the page needs to
// build its elements once. Positions arrive later in frames.
type viewModel struct {
	Title       string      `json:"title,omitempty"`
	ContainerID string      `json:"container"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Margin      view.Margin `json:"margin"`
	Transform   string      `json:"transform"`
	Links       []linkModel `json:"links"`
	Nodes       []nodeModel `json:"nodes"`
}

type linkModel struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Value       float64 `json:"value"`
	StrokeWidth float64 `json:"strokeWidth"`
	Stroke      string  `json:"stroke"`
}

type nodeModel struct {
	ID        string  `json:"id"`
	Group     int     `json:"group"`
	Radius    float64 `json:"r"`
	Fill      string  `json:"fill"`
	LabelDX   float64 `json:"dx"`
	LabelFill string  `json:"labelFill"`
}

func newViewModel(v *view.View, title string) viewModel {
	o := v.Options()
	m := viewModel{
		Title:       title,
		ContainerID: view.ContainerID,
		Width:       o.Width,
		Height:      o.Height,
		Margin:      o.Margin,
		Transform:   v.Transform(),
		Links:       make([]linkModel, len(v.Lines())),
		Nodes:       make([]nodeModel, len(v.Groups())),
	}
	for i, l := range v.Lines() {
		m.Links[i] = linkModel{
			Source:      l.Link.SourceID,
			Target:      l.Link.TargetID,
			Value:       l.Link.Value,
			StrokeWidth: l.StrokeWidth,
			Stroke:      l.Stroke,
		}
	}
	for i, g := range v.Groups() {
		m.Nodes[i] = nodeModel{
			ID:        g.Label,
			Group:     g.Node.Group,
			Radius:    g.Radius,
			Fill:      g.Fill,
			LabelDX:   g.LabelDX,
			LabelFill: g.LabelFill,
		}
	}
	return m
}
