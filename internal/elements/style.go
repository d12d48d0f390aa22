package elements

// StyleRule is one Cytoscape.js stylesheet entry.
type StyleRule struct {
	Selector string            `json:"selector"`
	Style    map[string]string `json:"style"`
}

// Layout is the Cytoscape.js layout configuration.
type Layout struct {
	Name    string `json:"name"`
	Padding int    `json:"padding"`
}

// Stylesheet draws nodes as filled circles with a centered label and edges
// as labelled arrows.
func Stylesheet() []StyleRule {
	return []StyleRule{
		{
			Selector: "node",
			Style: map[string]string{
				"label":            "data(label)",
				"background-color": "#0074D9",
				"color":            "#fff",
				"text-valign":      "center",
				"text-halign":      "center",
				"width":            "40px",
				"height":           "40px",
			},
		},
		{
			Selector: "edge",
			Style: map[string]string{
				"label":              "data(label)",
				"line-color":         "#ccc",
				"target-arrow-color": "#ccc",
				"target-arrow-shape": "triangle",
				"curve-style":        "bezier",
			},
		},
	}
}

// ForceLayout is the force-directed "cose" layout.
func ForceLayout() Layout {
	return Layout{Name: "cose", Padding: 10}
}
