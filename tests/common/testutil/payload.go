//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Mutation edits a request body after it has been flattened to JSON keys.
type Mutation func(map[string]any)

// Payload turns a request DTO into its JSON object form and applies muts, so
// a test can send bodies the typed DTO cannot express.
func Payload(t *testing.T, v any, muts ...Mutation) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, mut := range muts {
		if mut != nil {
			mut(m)
		}
	}
	return m
}

func Set(key string, value any) Mutation {
	return func(m map[string]any) { m[key] = value }
}

func Drop(key string) Mutation {
	return func(m map[string]any) { delete(m, key) }
}
