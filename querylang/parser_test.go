package querylang

import (
	"testing"

	"github.com/shinydb/shinydb-go/queryjson"
	"github.com/shinydb/shinydb-go/queryir"
	"github.com/shinydb/shinydb-go/value"
)

func TestParse_StoreOnly(t *testing.T) {
	ir, err := Parse(`orders.limit(10)`)
	if err != nil {
		t.Fatal(err)
	}
	if ir.Space != "" || ir.Store != "orders" {
		t.Fatalf("want space='' store=orders, got space=%q store=%q", ir.Space, ir.Store)
	}
	if ir.Limit == nil || *ir.Limit != 10 {
		t.Fatalf("expected limit=10, got %v", ir.Limit)
	}
}

func TestParse_SpaceAndStore(t *testing.T) {
	ir, err := Parse(`sales.orders.limit(10)`)
	if err != nil {
		t.Fatal(err)
	}
	if ir.Space != "sales" || ir.Store != "orders" {
		t.Fatalf("want space=sales store=orders, got space=%q store=%q", ir.Space, ir.Store)
	}
}

func TestParse_FilterAndLimitRoundTrip(t *testing.T) {
	ir, err := Parse(`orders.filter(status = "active").limit(10)`)
	if err != nil {
		t.Fatal(err)
	}
	if len(ir.Filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(ir.Filters))
	}
	f := ir.Filters[0]
	if f.Field != "status" || f.Op != value.OpEq || f.Value.Str != "active" || f.Logic != value.LogicNone {
		t.Fatalf("unexpected filter: %+v", f)
	}
	out := queryjson.Serialize(ir)
	if !contains(out, `"status":{"$eq":"active"}`) || !contains(out, `"limit":10`) {
		t.Fatalf("unexpected serialization: %s", out)
	}
}

func TestParse_DeleteMutation(t *testing.T) {
	ir, err := Parse(`orders.filter(status = "cancelled").delete()`)
	if err != nil {
		t.Fatal(err)
	}
	if len(ir.Filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(ir.Filters))
	}
	if ir.Mutation == nil || ir.Mutation.Kind != value.MutationDelete {
		t.Fatalf("expected delete mutation, got %+v", ir.Mutation)
	}
	out := queryjson.Serialize(ir)
	if !contains(out, `"mutation":{"type":"delete"}`) {
		t.Fatalf("unexpected serialization: %s", out)
	}
}

func TestParse_Get(t *testing.T) {
	ir, err := Parse(`orders.get("abc")`)
	if err != nil {
		t.Fatal(err)
	}
	if len(ir.Filters) != 1 || ir.Filters[0].Field != "_key" {
		t.Fatalf("expected _key filter, got %+v", ir.Filters)
	}
	if ir.Limit == nil || *ir.Limit != 1 {
		t.Fatalf("expected limit=1, got %v", ir.Limit)
	}
}

func TestParse_AggregateAndGroupBy(t *testing.T) {
	ir, err := Parse(`sales.groupBy(EmployeeID).aggregate(order_count: count, total_revenue: sum(TotalDue))`)
	if err != nil {
		t.Fatal(err)
	}
	if len(ir.GroupBy) != 1 || ir.GroupBy[0] != "EmployeeID" {
		t.Fatalf("unexpected groupBy: %v", ir.GroupBy)
	}
	if len(ir.Aggs) != 2 {
		t.Fatalf("expected 2 aggregations, got %d", len(ir.Aggs))
	}
}

func TestParse_InsertCapturesRawBody(t *testing.T) {
	ir, err := Parse(`orders.insert({"a": 1, "b": {"c": 2}})`)
	if err != nil {
		t.Fatal(err)
	}
	if ir.Mutation == nil || ir.Mutation.Kind != value.MutationInsert {
		t.Fatalf("expected insert mutation, got %+v", ir.Mutation)
	}
	want := `{"a": 1, "b": {"c": 2}}`
	if string(ir.Mutation.Payload) != want {
		t.Fatalf("expected raw payload %q, got %q", want, string(ir.Mutation.Payload))
	}
}

func TestParse_OrInFilter(t *testing.T) {
	ir, err := Parse(`t.filter(Territory = "Northeast" or Territory = "Australia")`)
	if err != nil {
		t.Fatal(err)
	}
	if len(ir.Filters) != 2 || ir.Filters[0].Logic != value.LogicOr {
		t.Fatalf("unexpected filters: %+v", ir.Filters)
	}
}

func TestParse_CountQueryType(t *testing.T) {
	ir, err := Parse(`orders.count()`)
	if err != nil {
		t.Fatal(err)
	}
	if ir.QueryType != queryir.QueryTypeCount {
		t.Fatalf("expected count query type, got %v", ir.QueryType)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
