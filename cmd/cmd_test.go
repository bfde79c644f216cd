package cmd

import (
	"reflect"
	"strings"
	"testing"

	"github.com/theirongolddev/orgburn/internal/model"
)

func TestParseKeyRef(t *testing.T) {
	ref, err := parseKeyRef("proj_1:key_abc")
	if err != nil {
		t.Fatalf("parseKeyRef: %v", err)
	}
	if ref.ProjectID != "proj_1" || ref.APIKeyID != "key_abc" {
		t.Fatalf("ref = %+v, want proj_1/key_abc", ref)
	}

	for _, bad := range []string{"", "proj_1", ":key", "proj_1:"} {
		if _, err := parseKeyRef(bad); err == nil {
			t.Errorf("parseKeyRef(%q) succeeded, want error", bad)
		}
	}
}

func TestSplitPaths(t *testing.T) {
	got := splitPaths(" exports/jan.json, ,exports/feb ")
	want := []string{"exports/jan.json", "exports/feb"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitPaths = %v, want %v", got, want)
	}
	if got := splitPaths(""); got != nil {
		t.Fatalf("splitPaths(\"\") = %v, want nil", got)
	}
}

func TestDaemonArgs(t *testing.T) {
	args := filterDetachArg([]string{"daemon", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"daemon", "--addr", ":9000"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("filterDetachArg = %v, want %v", args, want)
	}

	if !hasFlag([]string{"--log-file=/tmp/x.log"}, "--log-file") {
		t.Fatal("hasFlag missed --log-file=value")
	}
	if hasFlag([]string{"--log-files"}, "--log-file") {
		t.Fatal("hasFlag matched a longer flag name")
	}
}

func TestRenderUserTable_RanksAndLimits(t *testing.T) {
	totals := []model.UserTotal{
		{UserID: "a", Name: "Alice", TotalCost: 1, Requests: 1},
		{UserID: "b", Name: "Bob", TotalCost: 5, Requests: 2},
		{UserID: "c", Name: "Carol", TotalCost: 3, Requests: 3},
	}
	out := renderUserTable(totals, 2)

	bob := strings.Index(out, "Bob")
	carol := strings.Index(out, "Carol")
	if bob < 0 || carol < 0 || bob > carol {
		t.Fatalf("expected Bob before Carol:\n%s", out)
	}
	if strings.Contains(out, "Alice") {
		t.Fatalf("limit 2 should hide Alice:\n%s", out)
	}
	if !strings.Contains(out, "(1 more)") {
		t.Fatalf("missing hidden-row marker:\n%s", out)
	}
	if totals[0].Name != "Alice" {
		t.Fatal("renderUserTable reordered its input")
	}
}
