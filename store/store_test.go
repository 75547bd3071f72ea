package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/uyouii/eco-indicator/model"
)

var base = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "eco.sqlite"), true)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func slot(i int) time.Time {
	return base.Add(time.Duration(i) * model.SlotDuration)
}

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.sqlite"), false)
	if err == nil || !strings.Contains(err.Error(), "store command") {
		t.Fatalf("expected missing database error, got %v", err)
	}
}

func TestUpsertKeepsOtherColumns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	n, err := s.Upsert(ctx, []model.Rate{
		{ValidFrom: slot(0), Value: 20.5, Field: model.FieldPrice},
		{ValidFrom: slot(1), Value: 18.1, Field: model.FieldPrice},
	})
	if err != nil || n != 2 {
		t.Fatalf("Upsert() = %d, %v", n, err)
	}
	// replace one price and add gas to the same slot
	if _, err := s.Upsert(ctx, []model.Rate{
		{ValidFrom: slot(0), Value: 21.0, Field: model.FieldPrice},
		{ValidFrom: slot(0), Value: 6.2, Field: model.FieldGasPrice},
	}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	rows, err := s.AllDescending(ctx)
	if err != nil {
		t.Fatalf("AllDescending() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].ValidFrom.Equal(slot(1)) {
		t.Fatalf("rows not newest first: %v", rows[0].ValidFrom)
	}
	first := rows[1]
	if v, ok := first.Get(model.FieldPrice); !ok || v != 21.0 {
		t.Fatalf("price: got %v %v", v, ok)
	}
	if v, ok := first.Get(model.FieldGasPrice); !ok || v != 6.2 {
		t.Fatalf("gas price: got %v %v", v, ok)
	}
	if _, ok := first.Get(model.FieldCarbon); ok {
		t.Fatalf("carbon should be unset")
	}
}

func TestUpsertRejectsUnknownField(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Upsert(context.Background(), []model.Rate{{ValidFrom: base, Value: 1}}); err == nil {
		t.Fatalf("expected error for rate without a field")
	}
}

func TestUpcoming(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rates := []model.Rate{}
	for i := 5; i >= -3; i-- {
		rates = append(rates, model.Rate{ValidFrom: slot(i), Value: float64(i), Field: model.FieldPrice})
	}
	rates = append(rates, model.Rate{ValidFrom: slot(6), Value: 99, Field: model.FieldCarbon})
	if _, err := s.Upsert(ctx, rates); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	// 12:10 is inside the slot starting at 12:00
	rows, err := s.Upcoming(ctx, model.FieldPrice, base.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("Upcoming() failed: %v", err)
	}
	series := model.SeriesOf(rows, model.FieldPrice)
	if len(series) != 6 {
		t.Fatalf("expected 6 slots, got %d: %s", len(series), series.DebugString())
	}
	for i, o := range series {
		if !o.Time.Equal(slot(i)) || o.Value != float64(i) {
			t.Fatalf("slot %d: got %+v", i, o)
		}
	}

	carbon, err := s.Upcoming(ctx, model.FieldCarbon, base)
	if err != nil {
		t.Fatalf("Upcoming() failed: %v", err)
	}
	if len(carbon) != 1 {
		t.Fatalf("expected 1 carbon slot, got %d", len(carbon))
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.Upsert(ctx, []model.Rate{
		{ValidFrom: base.Add(-80 * time.Hour), Value: 1, Field: model.FieldCarbon},
		{ValidFrom: base.Add(-73 * time.Hour), Value: 2, Field: model.FieldCarbon},
		{ValidFrom: base.Add(-71 * time.Hour), Value: 3, Field: model.FieldCarbon},
	}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	n, err := s.Prune(ctx, base, DefaultRetention)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pruned rows, got %d", n)
	}
	n, _ = s.Prune(ctx, base, DefaultRetention)
	if n != 0 {
		t.Fatalf("second prune removed %d rows", n)
	}
}

func TestDump(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if _, err := s.Upsert(ctx, []model.Rate{{ValidFrom: base, Value: 123, Field: model.FieldCarbon}}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	dump, err := s.Dump()
	if err != nil {
		t.Fatalf("Dump() failed: %v", err)
	}
	if !strings.Contains(dump, "CREATE TABLE") || !strings.Contains(dump, "2024-03-10 12:00:00") {
		t.Fatalf("unexpected dump:\n%s", dump)
	}
}
