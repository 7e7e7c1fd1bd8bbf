package integration

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/rowz"
	rowztesting "github.com/zoobzio/rowz/testing"
	"github.com/zoobzio/rowz/value"
)

// priceConfig splits "<amount> <currency>" rows, drops a junk column,
// stamps the load time and moves the results to the front.
const priceConfig = `
version: "2024-03"
passes:
  - comment: split amount and currency
    transformers:
      - type: splitItem
        cfg:
          idx: 0
          spec: {name: separatorChar, char: " "}
          deleteAfterSplit: true
          targetLeft: {idx: 10, header: amount, targetType: Decimal}
          targetRight: {idx: 11, header: currency, targetType: String}
      - type: deleteItems
        cfg: [1]
    orderItems:
      - {from: 10, to: 0}
      - {from: 11, to: 1}
  - comment: provenance
    transformers:
      - type: addItem
        cfg:
          spec: {name: meta, key: source}
          target: {idx: 2, header: source, targetType: String}
      - type: addItem
        cfg:
          spec: {name: runtime, rtValue: CurrentDateTimeUTC}
          target: {idx: 3, header: loaded_at, targetType: DateTime}
`

func priceRow(amount string) *rowz.Row {
	var data *value.Value
	if amount != "" {
		data = value.FromString(amount).Ptr()
	}
	return rowz.NewRow(
		rowz.NewEntry(0, "amount+currency", value.Zero(value.String), data),
		rowz.NewEntry(1, "junk", value.Zero(value.Int32), nil),
	)
}

func buildPrices(t *testing.T, clock clockz.Clock) *rowz.Pipeline {
	t.Helper()
	cfg, err := rowz.ParseYAML([]byte(priceConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pipeline, err := rowz.Build(*cfg, rowz.WithBuildClock(clock), rowz.WithName("prices"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = pipeline.Close() })
	return pipeline
}

func TestPipelineFlows_Prices(t *testing.T) {
	clock := clockz.NewFakeClock()
	pipeline := buildPrices(t, clock)
	ctx := rowz.WithMeta(context.Background(), rowz.Meta{"source": "feed-a"})

	tests := []struct {
		name     string
		amount   string
		currency *value.Value
		price    *value.Value
	}{
		{
			name:     "amount_and_currency",
			amount:   "10.10 CHF",
			price:    value.FromDecimal(mustDecimal(t, "10.10")).Ptr(),
			currency: value.FromString("CHF").Ptr(),
		},
		{
			name:   "absent_source",
			amount: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := priceRow(tt.amount)
			if err := pipeline.Apply(ctx, row); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if row.Len() != 4 {
				t.Fatalf("expected 4 entries, got %v", row)
			}
			rowztesting.AssertEntry(t, row, 0, value.Decimal, tt.price)
			rowztesting.AssertEntry(t, row, 1, value.String, tt.currency)
			rowztesting.AssertEntry(t, row, 2, value.String, value.FromString("feed-a").Ptr())
			rowztesting.AssertEntry(t, row, 3, value.DateTime, value.FromDateTime(clock.Now().UTC()).Ptr())
			rowztesting.AssertNoEntry(t, row, 10)
		})
	}
}

func TestPipelineFlows_SnapshotRollback(t *testing.T) {
	pipeline := buildPrices(t, clockz.NewFakeClock())
	row := priceRow("10.10CHF")
	snap, err := row.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	err = pipeline.Apply(context.Background(), row)
	var rowErr *rowz.Error
	if !errors.As(err, &rowErr) || rowErr.Kind != rowz.KindSplit {
		t.Fatalf("expected split error, got %v", err)
	}

	restored, err := rowz.RestoreRow(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	rowztesting.AssertEntry(t, restored, 0, value.String, value.FromString("10.10CHF").Ptr())
	rowztesting.AssertEntry(t, restored, 1, value.Int32, nil)
}

func TestPipelineFlows_ConcurrentRows(t *testing.T) {
	pipeline := buildPrices(t, clockz.NewFakeClock())
	ctx := rowz.WithMeta(context.Background(), rowz.Meta{"source": "feed-b"})

	var failures int64
	rowztesting.ParallelTest(t, 32, func(id int) {
		amount := "1.5 EUR"
		if id%4 == 0 {
			amount = "bad"
		}
		if err := pipeline.Apply(ctx, priceRow(amount)); err != nil {
			atomic.AddInt64(&failures, 1)
		}
	})

	if failures != 8 {
		t.Errorf("expected 8 failures, got %d", failures)
	}
	if v := pipeline.Metrics().Counter(rowz.PipelineAppliedTotal).Value(); v != 32 {
		t.Errorf("expected 32 applications, got %f", v)
	}
}

func TestPipelineFlows_MissingMetadataStopsTheRow(t *testing.T) {
	pipeline := buildPrices(t, clockz.NewFakeClock())
	row := priceRow("3 USD")

	err := pipeline.Apply(context.Background(), row)
	var rowErr *rowz.Error
	if !errors.As(err, &rowErr) {
		t.Fatalf("expected rowz.Error, got %v", err)
	}
	want := []rowz.Name{"prices", "pass[1]", "append_item(2)"}
	if len(rowErr.Path) != len(want) {
		t.Fatalf("expected path %v, got %v", want, rowErr.Path)
	}
	for i := range want {
		if rowErr.Path[i] != want[i] {
			t.Errorf("expected path %v, got %v", want, rowErr.Path)
		}
	}
	// The first pass already ran.
	rowztesting.AssertEntry(t, row, 1, value.String, value.FromString("USD").Ptr())
}
