package model

import (
	"fmt"
	"time"
)

// SlotDuration is the fixed width of one tariff or forecast slot.
const SlotDuration = 30 * time.Minute

type Field string

const (
	FieldPrice     Field = "value_inc_vat"
	FieldCarbon    Field = "intensity"
	FieldGasPrice  Field = "gas_value_inc_vat"
	FieldUndefined Field = ""
)

// Observation is one slot of a series, Time is the slot start in UTC.
type Observation struct {
	Time  time.Time `json:"t"`
	Value float64   `json:"v"`
}

// Series is ordered by Time at fixed slot spacing. The order is guaranteed by
// whoever builds it, nothing here sorts or checks it.
type Series []Observation

func (s Series) Values() []float64 {
	res := make([]float64, len(s))
	for i, o := range s {
		res[i] = o.Value
	}
	return res
}

func (s Series) IsEmpty() bool {
	return len(s) == 0
}

func (s Series) DebugString() string {
	if len(s) == 0 {
		return "valueCount: 0"
	}
	return fmt.Sprintf("valueCount: %v, from: %v, to: %v",
		len(s), s[0].Time.Format(time.RFC3339), s[len(s)-1].Time.Format(time.RFC3339))
}

// WindowResult is the cheapest run of slots: its first index and mean value.
type WindowResult struct {
	StartIndex int     `json:"start_index"`
	Average    float64 `json:"average"`
}

// ScaleResult holds the graph's pixels per value unit.
type ScaleResult struct {
	GraphYUnit float64 `json:"graph_y_unit"`
}

// ExtremeSlot is the position and value of the lowest slot in a series.
type ExtremeSlot struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Rate is a single value as delivered by a remote tariff or forecast API,
// tagged with the store column it belongs to.
type Rate struct {
	ValidFrom time.Time
	Value     float64
	Field     Field
}

// Row mirrors one stored slot. Nil pointers are columns that were never set.
type Row struct {
	ValidFrom time.Time
	Price     *float64
	Carbon    *float64
	GasPrice  *float64
}

func (r *Row) Get(field Field) (float64, bool) {
	var v *float64
	switch field {
	case FieldPrice:
		v = r.Price
	case FieldCarbon:
		v = r.Carbon
	case FieldGasPrice:
		v = r.GasPrice
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// SeriesOf projects rows onto one field, skipping rows where it is unset.
func SeriesOf(rows []Row, field Field) Series {
	res := Series{}
	for i := range rows {
		v, ok := rows[i].Get(field)
		if !ok {
			continue
		}
		res = append(res, Observation{Time: rows[i].ValidFrom, Value: v})
	}
	return res
}
