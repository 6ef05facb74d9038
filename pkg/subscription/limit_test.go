package subscription_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stockroom/pkg/subscription"
)

func TestLimit_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    subscription.Limit
		wantErr bool
	}{
		{name: "integer", input: `100`, want: subscription.Finite(100)},
		{name: "zero", input: `0`, want: subscription.Finite(0)},
		{name: "integral float", input: `1e2`, want: subscription.Finite(100)},
		{name: "unlimited string", input: `"unlimited"`, want: subscription.Unlimited},
		{name: "infinity string", input: `"Infinity"`, want: subscription.Unlimited},
		{name: "inf string", input: `"inf"`, want: subscription.Unlimited},
		{name: "infinity symbol", input: `"∞"`, want: subscription.Unlimited},
		{name: "null from serialised infinity", input: `null`, want: subscription.Unlimited},
		{name: "numeric string", input: `"250"`, want: subscription.Finite(250)},
		{name: "negative", input: `-1`, wantErr: true},
		{name: "fractional", input: `2.5`, wantErr: true},
		{name: "garbage string", input: `"lots"`, wantErr: true},
		{name: "boolean", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got subscription.Limit
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimit_MarshalJSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(subscription.Package{Name: "Pro", Limit: subscription.Unlimited})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Pro","limit":"unlimited"}`, string(raw))

	raw, err = json.Marshal(subscription.DefaultPackage)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Free","limit":100}`, string(raw))
}

func TestLimit_Behaviour(t *testing.T) {
	t.Parallel()

	assert.Equal(t, subscription.Finite(0), subscription.Finite(-7))
	assert.Equal(t, subscription.Finite(0), subscription.Limit{})
	assert.True(t, subscription.Finite(3).Allows(2))
	assert.False(t, subscription.Finite(3).Allows(3))
	assert.True(t, subscription.Unlimited.Allows(1_000_000))
	assert.Equal(t, "unlimited", subscription.Unlimited.String())
	assert.Equal(t, "42", subscription.Finite(42).String())

	n, finite := subscription.Unlimited.Value()
	assert.False(t, finite)
	assert.Zero(t, n)
}

func TestPackage_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var pkg subscription.Package
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Sınırsız","limit":null}`), &pkg))
	assert.Equal(t, subscription.Package{Name: "Sınırsız", Limit: subscription.Unlimited}, pkg)

	assert.Error(t, json.Unmarshal([]byte(`{"name":"Free"}`), &pkg))
	assert.Error(t, json.Unmarshal([]byte(`{"name":"Free","limit":-100}`), &pkg))
}

func TestRemainingQuota(t *testing.T) {
	t.Parallel()

	free := subscription.Package{Name: "Free", Limit: subscription.Finite(100)}
	assert.Equal(t, subscription.Finite(60), subscription.RemainingQuota(free, subscription.Usage{Count: 40}))
	assert.Equal(t, subscription.Finite(0), subscription.RemainingQuota(free, subscription.Usage{Count: 140}))

	unl := subscription.Package{Name: "Unlimited", Limit: subscription.Unlimited}
	assert.Equal(t, subscription.Unlimited, subscription.RemainingQuota(unl, subscription.Usage{Count: 140}))
}
