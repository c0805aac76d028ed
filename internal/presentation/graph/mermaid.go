package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

// GraphOverlay contains journal data to visualize on the graph.
type GraphOverlay struct {
	// SeenTypes are action types that went through the pipeline.
	SeenTypes []string
	// Last is the most recent action type.
	Last string
}

// GenerateMermaid produces a Mermaid flowchart of every call the tables can route.
// Each verb and endpoint pair gets its lifecycle:
// - Entry: ((Circle))
// - Request: [/Parallelogram/] labelled with method and URL
// - Success: ([Stadium])
// - Failure: {{Hexagon}}
// It also applies overlay styles (Seen/Last) if provided.
func GenerateMermaid(endpoints domain.EndpointTable, verbs domain.VerbTable, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    dispatch((\"dispatch\"))\n")

	for _, endpoint := range endpoints.Keys() {
		url, ok := endpoints.URL(endpoint)
		if !ok {
			continue
		}
		for _, verb := range verbs.Keys() {
			method, ok := verbs.Method(verb)
			if !ok {
				continue
			}
			tok := domain.Token{Verb: verb, Endpoint: endpoint}

			request := sanitizeMermaidID(tok.WithStep(domain.StepRequest))
			success := sanitizeMermaidID(tok.WithStep(domain.StepSuccess))
			failure := sanitizeMermaidID(tok.WithStep(domain.StepFailure))

			sb.WriteString(fmt.Sprintf("    %s[/\"%s <br/> %s %s\"/]\n", request, tok.WithStep(domain.StepRequest), method, escapeLabel(url)))
			sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", success, tok.WithStep(domain.StepSuccess)))
			sb.WriteString(fmt.Sprintf("    %s{{\"%s\"}}\n", failure, tok.WithStep(domain.StepFailure)))
			sb.WriteString(fmt.Sprintf("    dispatch --> %s\n", request))
			sb.WriteString(fmt.Sprintf("    %s -- \"payload\" --> %s\n", request, success))
			sb.WriteString(fmt.Sprintf("    %s -. \"error\" .-> %s\n", request, failure))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef seen fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef last fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, typ := range overlay.SeenTypes {
			safeID := sanitizeMermaidID(typ)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s seen;\n", safeID))
			}
		}

		if overlay.Last != "" {
			sb.WriteString(fmt.Sprintf("    class %s last;\n", sanitizeMermaidID(overlay.Last)))
		}
	}

	return sb.String()
}

// OverlayFromActions builds an overlay from journal entries, oldest first.
func OverlayFromActions(actions []domain.Action) *GraphOverlay {
	overlay := &GraphOverlay{}
	for _, a := range actions {
		if typ, ok := a.Type(); ok {
			overlay.SeenTypes = append(overlay.SeenTypes, typ)
			overlay.Last = typ
		}
	}
	return overlay
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
