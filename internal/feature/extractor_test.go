package feature

import (
	"context"
	"testing"
	"time"

	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/internal/vm"
	"github.com/stretchr/testify/require"
)

func fieldsOf(amount float64) map[string]value.Value {
	return map[string]value.Value{"amount": value.Number(amount)}
}

// S10 — five events amount in {10,20,30,40,50} within the last hour;
// CallFeature{Percentile{p=50}, ["amount"], none, Last1Hour} -> 30.
func TestExtractorPercentileS10(t *testing.T) {
	t.Parallel()

	store, err := NewEventHistoryStore("")
	require.NoError(t, err)

	now := time.Now()
	for _, amt := range []float64{10, 20, 30, 40, 50} {
		store.Append(defaultKey, now.Add(-10*time.Minute), fieldsOf(amt))
	}

	ext := NewExtractor(store)
	ext.Now = func() time.Time { return now }

	v, err := ext.Extract(context.Background(), vm.FeatureRequest{
		Type:       bytecode.FeaturePercentile,
		FieldPath:  []string{"amount"},
		Window:     bytecode.WindowLast1Hour,
		Percentile: 50,
	})
	require.NoError(t, err)
	require.Equal(t, value.Number(30), v)
}

func TestExtractorWindowExcludesOldRecords(t *testing.T) {
	t.Parallel()

	store, err := NewEventHistoryStore("")
	require.NoError(t, err)

	now := time.Now()
	store.Append(defaultKey, now.Add(-2*time.Hour), fieldsOf(999))
	store.Append(defaultKey, now.Add(-5*time.Minute), fieldsOf(10))

	ext := NewExtractor(store)
	ext.Now = func() time.Time { return now }

	v, err := ext.Extract(context.Background(), vm.FeatureRequest{
		Type:      bytecode.FeatureSum,
		FieldPath: []string{"amount"},
		Window:    bytecode.WindowLast1Hour,
	})
	require.NoError(t, err)
	require.Equal(t, value.Number(10), v)
}

func TestExtractorFilterExpression(t *testing.T) {
	t.Parallel()

	store, err := NewEventHistoryStore("")
	require.NoError(t, err)

	now := time.Now()
	store.Append(defaultKey, now, map[string]value.Value{"amount": value.Number(500), "type": value.String("refund")})
	store.Append(defaultKey, now, map[string]value.Value{"amount": value.Number(100), "type": value.String("purchase")})

	ext := NewExtractor(store)
	ext.Now = func() time.Time { return now }

	v, err := ext.Extract(context.Background(), vm.FeatureRequest{
		Type:       bytecode.FeatureCount,
		FieldPath:  []string{"amount"},
		FilterExpr: `type == "purchase"`,
		Window:     bytecode.WindowLast1Hour,
	})
	require.NoError(t, err)
	require.Equal(t, value.Number(1), v)
}

func TestExtractorWithoutStoreReturnsZero(t *testing.T) {
	t.Parallel()

	ext := &Extractor{}
	v, err := ext.Extract(context.Background(), vm.FeatureRequest{Type: bytecode.FeatureCount})
	require.NoError(t, err)
	require.Equal(t, value.Number(0), v)
}

func TestExtractorStrictWithoutStoreErrors(t *testing.T) {
	t.Parallel()

	ext := &Extractor{Strict: true}
	_, err := ext.Extract(context.Background(), vm.FeatureRequest{Type: bytecode.FeatureSum})
	require.Error(t, err)
}
