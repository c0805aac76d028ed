package pipeline_test

import (
	"context"
	"testing"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestStatusReducer(t *testing.T) {
	tests := []struct {
		name    string
		actions []domain.Action
		want    map[string]pipeline.CallStatus
	}{
		{
			name:    "request is pending",
			actions: []domain.Action{{"type": "LOAD_TODOS_REQUEST"}},
			want:    map[string]pipeline.CallStatus{"LOAD_TODOS": {Status: pipeline.StatusPending}},
		},
		{
			name: "success keeps payload",
			actions: []domain.Action{
				{"type": "LOAD_TODOS_REQUEST"},
				{"type": "LOAD_TODOS_SUCCESS", "payload": []any{"a"}},
			},
			want: map[string]pipeline.CallStatus{"LOAD_TODOS": {Status: pipeline.StatusSuccess, Payload: []any{"a"}}},
		},
		{
			name: "failure keeps error",
			actions: []domain.Action{
				{"type": "DELETE_TODOS_REQUEST"},
				{"type": "DELETE_TODOS_FAILURE", "error": "ko"},
			},
			want: map[string]pipeline.CallStatus{"DELETE_TODOS": {Status: pipeline.StatusFailure, Error: "ko"}},
		},
		{
			name: "pairs tracked separately",
			actions: []domain.Action{
				{"type": "LOAD_TODOS_REQUEST"},
				{"type": "CREATE_TODOS_REQUEST"},
				{"type": "LOAD_TODOS_FAILURE", "error": "ko"},
			},
			want: map[string]pipeline.CallStatus{
				"LOAD_TODOS":   {Status: pipeline.StatusFailure, Error: "ko"},
				"CREATE_TODOS": {Status: pipeline.StatusPending},
			},
		},
		{
			name: "other actions ignored",
			actions: []domain.Action{
				{"type": "RESET"},
				{"type": "LOAD_TODOS_DONE"},
				{"payload": 1},
			},
			want: map[string]pipeline.CallStatus{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := pipeline.NewStore(pipeline.StatusReducer, nil)
			for _, a := range tt.actions {
				store.Dispatch(context.Background(), a)
			}
			assert.Equal(t, tt.want, store.State())
		})
	}
}

func TestStatusReducer_DoesNotMutatePreviousState(t *testing.T) {
	first := pipeline.StatusReducer(nil, domain.Action{"type": "LOAD_TODOS_REQUEST"})
	second := pipeline.StatusReducer(first, domain.Action{"type": "LOAD_TODOS_SUCCESS", "payload": 1})

	assert.Equal(t, pipeline.StatusPending, first.(map[string]pipeline.CallStatus)["LOAD_TODOS"].Status)
	assert.Equal(t, pipeline.StatusSuccess, second.(map[string]pipeline.CallStatus)["LOAD_TODOS"].Status)
}
