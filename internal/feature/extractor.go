package feature

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/exprvm"
	"github.com/corintai/corint/internal/parser"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/internal/vm"
	"github.com/corintai/corint/pkg/corinterr"
)

// defaultKey is the entity key Extractor queries when the caller hasn't
// scoped the store to a specific entity (spec's feature-extraction
// scenarios describe a single flat history, not a per-entity one).
const defaultKey = "__default__"

// Extractor implements vm.FeatureExtractor against an EventHistoryStore.
// Strict, when true, turns a missing-store or empty-history situation into
// a request-time-recoverable FeatureStoreUnavailable error instead of the
// default 0-value fallback (§7's documented "backward-compat vs strict"
// distinction).
type Extractor struct {
	Store  *EventHistoryStore
	Key    string
	Strict bool

	// Now is overridable for deterministic tests; defaults to time.Now.
	Now func() time.Time
}

// NewExtractor returns an Extractor scoped to the default entity key.
func NewExtractor(store *EventHistoryStore) *Extractor {
	return &Extractor{Store: store, Key: defaultKey, Now: time.Now}
}

var _ vm.FeatureExtractor = (*Extractor)(nil)

func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func windowCutoff(now time.Time, window bytecode.TimeWindow, windowSeconds int) time.Time {
	switch window {
	case bytecode.WindowLast1Hour:
		return now.Add(-1 * time.Hour)
	case bytecode.WindowLast24Hours:
		return now.Add(-24 * time.Hour)
	case bytecode.WindowLast7Days:
		return now.Add(-7 * 24 * time.Hour)
	case bytecode.WindowLast30Days:
		return now.Add(-30 * 24 * time.Hour)
	case bytecode.WindowCustom:
		return now.Add(-time.Duration(windowSeconds) * time.Second)
	default:
		return now.Add(-1 * time.Hour)
	}
}

// Extract folds req.Type over the store's records within the requested
// window, after applying req.FilterExpr (a free-form condition string,
// parsed and evaluated per-record the same way rule guards are).
func (e *Extractor) Extract(ctx context.Context, req vm.FeatureRequest) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Store == nil {
		if e.Strict {
			return nil, corinterr.NewFeatureStoreUnavailable(featureTypeName(req.Type))
		}
		return value.Number(0), nil
	}

	key := e.Key
	if key == "" {
		key = defaultKey
	}
	cutoff := windowCutoff(e.now(), req.Window, req.WindowSeconds)
	records := e.Store.Since(key, cutoff)

	var filter ast.Expression
	if req.FilterExpr != "" {
		expr, err := parser.ParseConditionString(req.FilterExpr)
		if err != nil {
			return nil, err
		}
		filter = expr
	}

	values := make([]value.Value, 0, len(records))
	for _, r := range records {
		if filter != nil {
			resolver := exprvm.MapResolver(r.Fields)
			v, err := exprvm.Eval(filter, resolver)
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				continue
			}
		}
		values = append(values, fieldValue(r.Fields, req.FieldPath))
	}

	if len(values) == 0 && e.Strict && req.Type != bytecode.FeatureCount && req.Type != bytecode.FeatureCountDistinct {
		return nil, corinterr.NewFeatureStoreUnavailable(featureTypeName(req.Type))
	}

	return fold(req.Type, values, req.Percentile)
}

func fieldValue(fields map[string]value.Value, path []string) value.Value {
	if len(path) == 0 {
		return value.Null{}
	}
	v, ok := fields[path[0]]
	if !ok {
		return value.Null{}
	}
	for _, seg := range path[1:] {
		obj, ok := v.(value.Object)
		if !ok {
			return value.Null{}
		}
		v, ok = obj[seg]
		if !ok {
			return value.Null{}
		}
	}
	return v
}

func fold(kind bytecode.FeatureType, values []value.Value, percentile float64) (value.Value, error) {
	switch kind {
	case bytecode.FeatureCount:
		return value.Number(float64(len(values))), nil
	case bytecode.FeatureCountDistinct:
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			seen[nativeKey(v)] = true
		}
		return value.Number(float64(len(seen))), nil
	}

	nums := numericValues(values)
	switch kind {
	case bytecode.FeatureSum:
		return value.Number(sum(nums)), nil
	case bytecode.FeatureAvg:
		if len(nums) == 0 {
			return value.Number(0), nil
		}
		return value.Number(sum(nums) / float64(len(nums))), nil
	case bytecode.FeatureMin:
		if len(nums) == 0 {
			return value.Number(0), nil
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n < m {
				m = n
			}
		}
		return value.Number(m), nil
	case bytecode.FeatureMax:
		if len(nums) == 0 {
			return value.Number(0), nil
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n > m {
				m = n
			}
		}
		return value.Number(m), nil
	case bytecode.FeaturePercentile:
		return percentileOf(nums, percentile)
	case bytecode.FeatureStdDev:
		return value.Number(math.Sqrt(variance(nums))), nil
	case bytecode.FeatureVariance:
		return value.Number(variance(nums)), nil
	default:
		return value.Number(0), nil
	}
}

// numericValues filters out non-numeric and NaN/Infinity values, per the
// documented Percentile precondition extended to every statistic so a
// malformed history record never poisons an aggregate.
func numericValues(values []value.Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		n, ok := v.(value.Number)
		if !ok {
			continue
		}
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func sum(nums []float64) float64 {
	var s float64
	for _, n := range nums {
		s += n
	}
	return s
}

func variance(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	mean := sum(nums) / float64(len(nums))
	var acc float64
	for _, n := range nums {
		d := n - mean
		acc += d * d
	}
	return acc / float64(len(nums))
}

// percentileOf implements nearest-rank percentile over a sorted copy of
// nums. p must be in [0, 100]; an out-of-range p is a caller (authoring)
// error surfaced rather than silently clamped.
func percentileOf(nums []float64, p float64) (value.Value, error) {
	if p < 0 || p > 100 {
		return nil, corinterr.NewInvalidValue("percentile must be within [0, 100]", map[string]interface{}{"percentile": p})
	}
	if len(nums) == 0 {
		return value.Number(0), nil
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return value.Number(sorted[idx]), nil
}

func nativeKey(v value.Value) string {
	switch t := v.(type) {
	case value.String:
		return "s:" + string(t)
	case value.Number:
		return "n:" + strconv.FormatFloat(float64(t), 'g', -1, 64)
	case value.Bool:
		if t {
			return "b:true"
		}
		return "b:false"
	default:
		return "null"
	}
}

func featureTypeName(t bytecode.FeatureType) string {
	switch t {
	case bytecode.FeatureCount:
		return "count"
	case bytecode.FeatureCountDistinct:
		return "count_distinct"
	case bytecode.FeatureSum:
		return "sum"
	case bytecode.FeatureAvg:
		return "avg"
	case bytecode.FeatureMin:
		return "min"
	case bytecode.FeatureMax:
		return "max"
	case bytecode.FeaturePercentile:
		return "percentile"
	case bytecode.FeatureStdDev:
		return "stddev"
	case bytecode.FeatureVariance:
		return "variance"
	default:
		return "unknown"
	}
}
