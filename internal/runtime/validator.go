package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

// Validate checks an inner action against the configured tables.
// It returns the messages of the first failing check, or nil when the action is valid.
func Validate(action domain.Action, verbs domain.VerbTable, endpoints domain.EndpointTable) []string {
	raw, present := action[domain.KeyType]
	if !present || raw == nil {
		return []string{
			fmt.Sprintf("Action type is missing, expected format is { [%s]: { type: 'VERB_ENDPOINT_STEP' } }", domain.CallAPI),
		}
	}

	typ, _ := raw.(string)
	tok, err := domain.ParseToken(typ)
	if err != nil {
		return []string{"Action type invalid, it should match VERB_ENDPOINT_STEP (e.g. LOAD_ACTION_REQUEST)"}
	}

	if _, ok := verbs.Method(tok.Verb); !ok {
		return []string{
			fmt.Sprintf("Unsupported action verb %s, expected one of %s", tok.Verb, strings.Join(verbs.Keys(), ",")),
		}
	}

	if _, ok := endpoints.URL(tok.Endpoint); !ok {
		return []string{
			fmt.Sprintf("Unknown endpoint %s, expected one of %s", tok.Endpoint, strings.Join(endpoints.Keys(), ",")),
		}
	}

	if _, ok := domain.ParseStep(tok.Step); !ok {
		steps := make([]string, 0, 3)
		for _, s := range domain.Steps() {
			steps = append(steps, string(s))
		}
		return []string{
			fmt.Sprintf("Unknown step %s, expected one of %s", tok.Step, strings.Join(steps, ",")),
		}
	}

	return nil
}
