package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/asyncfetch/internal/presentation/graph"
	"github.com/aretw0/asyncfetch/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name      string
		endpoints domain.EndpointTable
		verbs     domain.VerbTable
		overlay   *graph.GraphOverlay
		contains  []string
		excludes  []string
	}{
		{
			name:      "Lifecycle Shapes",
			endpoints: domain.EndpointTable{"TODOS": "/todos"},
			verbs:     domain.VerbTable{"LOAD": "GET"},
			contains: []string{
				`dispatch(("dispatch"))`,
				`LOAD_TODOS_REQUEST[/"LOAD_TODOS_REQUEST <br/> GET /todos"/]`,
				`LOAD_TODOS_SUCCESS(["LOAD_TODOS_SUCCESS"])`,
				`LOAD_TODOS_FAILURE{{"LOAD_TODOS_FAILURE"}}`,
				`dispatch --> LOAD_TODOS_REQUEST`,
				`LOAD_TODOS_REQUEST -- "payload" --> LOAD_TODOS_SUCCESS`,
				`LOAD_TODOS_REQUEST -. "error" .-> LOAD_TODOS_FAILURE`,
			},
		},
		{
			name:      "Every Verb And Endpoint",
			endpoints: domain.EndpointTable{"TODOS": "/todos", "USERS": "/users"},
			verbs:     domain.DefaultVerbs(),
			contains: []string{
				`CREATE_USERS_REQUEST[/"CREATE_USERS_REQUEST <br/> POST /users"/]`,
				`MODIFY_TODOS_REQUEST[/"MODIFY_TODOS_REQUEST <br/> PUT /todos"/]`,
			},
		},
		{
			name:      "Unroutable Entries Skipped",
			endpoints: domain.EndpointTable{"TODOS": "/todos", "EMPTY": ""},
			verbs:     domain.VerbTable{"LOAD": "GET", "NOOP": ""},
			excludes:  []string{"EMPTY", "NOOP"},
		},
		{
			name:      "Label Escaping",
			endpoints: domain.EndpointTable{"Q": `/q?name="x"`},
			verbs:     domain.VerbTable{"LOAD": "GET"},
			contains:  []string{`GET /q?name='x'"/]`},
		},
		{
			name:      "Overlay",
			endpoints: domain.EndpointTable{"TODOS": "/todos"},
			verbs:     domain.VerbTable{"LOAD": "GET"},
			overlay: graph.OverlayFromActions([]domain.Action{
				{"type": "LOAD_TODOS_REQUEST"},
				{"type": "LOAD_TODOS_SUCCESS"},
				{"type": "LOAD_TODOS_REQUEST"},
				{"no": "type"},
			}),
			contains: []string{
				"class LOAD_TODOS_REQUEST seen;",
				"class LOAD_TODOS_SUCCESS seen;",
				"class LOAD_TODOS_REQUEST last;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.endpoints, tt.verbs, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class LOAD_TODOS_REQUEST seen;") != 1 {
				t.Errorf("GenerateMermaid() styled a seen node more than once:\n%v", got)
			}
		})
	}
}
