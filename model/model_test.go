package model_test

import (
	"encoding/json"
	"testing"

	"github.com/awantoch/visitorcount/model"
)

func TestCounterRecord_EntityRoundTrip(t *testing.T) {
	e := model.CounterRecord{Count: 41}.Entity()
	if e.PartitionKey != "stats" || e.RowKey != "visitors" {
		t.Fatalf("unexpected key: %s", e.Key())
	}
	rec, err := model.CounterFromEntity(e)
	if err != nil {
		t.Fatalf("CounterFromEntity failed: %v", err)
	}
	if rec.Count != 41 {
		t.Errorf("expected count 41, got %d", rec.Count)
	}
}

func TestCounterFromEntity_MissingCountReadsZero(t *testing.T) {
	e := &model.Entity{PartitionKey: "stats", RowKey: "visitors"}
	rec, err := model.CounterFromEntity(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Count != 0 {
		t.Errorf("expected 0, got %d", rec.Count)
	}
}

func TestCounterFromEntity_NumericTypes(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
	}{
		{"int", 3, 3},
		{"int32", int32(4), 4},
		{"int64", int64(5), 5},
		{"uint64", uint64(6), 6},
		{"float64 from JSON", float64(7), 7},
		{"json.Number", json.Number("8"), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &model.Entity{Properties: map[string]any{"count": tt.value}}
			rec, err := model.CounterFromEntity(e)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Count != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Count)
			}
		})
	}
}

func TestCounterFromEntity_Malformed(t *testing.T) {
	bad := []any{-1, 2.5, "12", json.Number("1.5"), true}
	for _, v := range bad {
		e := &model.Entity{PartitionKey: "stats", RowKey: "visitors", Properties: map[string]any{"count": v}}
		if _, err := model.CounterFromEntity(e); err == nil {
			t.Errorf("expected error for count %#v", v)
		}
	}
	if _, err := model.CounterFromEntity(nil); err == nil {
		t.Error("expected error for nil entity")
	}
}

func TestEntity_CloneIsIndependent(t *testing.T) {
	orig := model.CounterRecord{Count: 1}.Entity()
	cp := orig.Clone()
	cp.Properties["count"] = int64(99)
	if orig.Properties["count"] != int64(1) {
		t.Errorf("clone mutated original: %v", orig.Properties["count"])
	}
	var nilEntity *model.Entity
	if nilEntity.Clone() != nil {
		t.Error("expected nil clone of nil entity")
	}
}
