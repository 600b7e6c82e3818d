package shinydb

import (
	"strings"
	"testing"

	"github.com/shinydb/shinydb-go/queryjson"
	"github.com/shinydb/shinydb-go/value"
)

func newTestQuery() *Query {
	return NewQuery(nil, nil).Space("adventureworks").Store("products")
}

func TestQuery_NamespaceRequiresSpace(t *testing.T) {
	q := NewQuery(nil, nil).Limit(5)
	if _, err := q.Run(); err == nil {
		t.Fatal("expected an error when space is unset")
	}
}

func TestQuery_AndFilterSerialization(t *testing.T) {
	q := newTestQuery().
		Where("MakeFlag", value.OpEq, value.Int(1)).
		And("ListPrice", value.OpGt, value.Int(100)).
		OrderBy("ListPrice", value.DirDesc).
		Limit(10)

	out := queryjson.Serialize(q.ir)
	if !strings.Contains(out, `"filter":{"MakeFlag":{"$eq":1},"ListPrice":{"$gt":100}}`) {
		t.Fatalf("unexpected filter shape: %s", out)
	}
	if !strings.Contains(out, `"orderBy":{"field":"ListPrice","direction":"desc"}`) {
		t.Fatalf("unexpected orderBy shape: %s", out)
	}
	if !strings.Contains(out, `"limit":10`) {
		t.Fatalf("unexpected limit shape: %s", out)
	}
}

func TestQuery_OrFilterSerialization(t *testing.T) {
	q := newTestQuery().
		Where("Territory", value.OpEq, value.String("Northeast")).
		Or("Territory", value.OpEq, value.String("Australia"))

	out := queryjson.Serialize(q.ir)
	want := `"filter":{"$or":[{"Territory":{"$eq":"Northeast"}},{"Territory":{"$eq":"Australia"}}]}`
	if !strings.Contains(out, want) {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

// TestQuery_OrOnEmptyFilterList_Deviation pins the deliberate deviation from
// the source: calling Or first (no preceding filter) no longer silently
// drops the connective. A marker filter carrying the `or` logic is inserted
// ahead of the real one instead.
func TestQuery_OrOnEmptyFilterList_Deviation(t *testing.T) {
	q := newTestQuery().Or("Territory", value.OpEq, value.String("Northeast"))

	if len(q.ir.Filters) != 2 {
		t.Fatalf("expected a marker filter plus the real one, got %d filters", len(q.ir.Filters))
	}
	if q.ir.Filters[0].Logic != value.LogicOr {
		t.Fatalf("expected the marker filter to carry LogicOr, got %v", q.ir.Filters[0].Logic)
	}

	out := queryjson.Serialize(q.ir)
	if !strings.Contains(out, `"$or":[`) {
		t.Fatalf("expected a compound $or shape to survive a leading Or() call, got %s", out)
	}
}

func TestQuery_EmptyFilterCase(t *testing.T) {
	q := NewQuery(nil, nil).Space("x").Store("y").Limit(5)
	out := queryjson.Serialize(q.ir)
	if !strings.Contains(out, `"filter":{}`) {
		t.Fatalf("expected empty filter object, got %s", out)
	}
	if !strings.Contains(out, `"limit":5`) {
		t.Fatalf("expected limit 5, got %s", out)
	}
}

func TestQuery_AggregationSerialization(t *testing.T) {
	q := newTestQuery().
		GroupBy("EmployeeID").
		Count("order_count").
		Sum("total_revenue", "TotalDue")

	out := queryjson.Serialize(q.ir)
	if !strings.Contains(out, `"group_by":["EmployeeID"]`) {
		t.Fatalf("unexpected group_by shape: %s", out)
	}
	if !strings.Contains(out, `"aggregate":{"order_count":{"$count":true},"total_revenue":{"$sum":"TotalDue"}}`) {
		t.Fatalf("unexpected aggregate shape: %s", out)
	}
}

func TestQuery_DeleteMutation(t *testing.T) {
	q := newTestQuery().
		Where("status", value.OpEq, value.String("cancelled")).
		Delete()

	if q.ir.Mutation == nil || q.ir.Mutation.Kind != value.MutationDelete {
		t.Fatal("expected a delete mutation")
	}
	out := queryjson.Serialize(q.ir)
	if !strings.Contains(out, `"mutation":{"type":"delete"}`) {
		t.Fatalf("unexpected mutation shape: %s", out)
	}
}

func TestQuery_UpdateWithoutReadByID_FailsFast(t *testing.T) {
	q := NewQuery(nil, stubEncoder{}).Space("adventureworks").Store("products").Update("doc")
	if _, err := q.Run(); err == nil {
		t.Fatal("expected an error for update without a preceding ReadByID")
	}
}

type stubEncoder struct{}

func (stubEncoder) Encode(doc any) ([]byte, error) { return []byte("{}"), nil }
