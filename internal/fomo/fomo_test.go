package fomo

import (
	"reflect"
	"testing"
)

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"0912345678", "091***5678"},
		{"no digits here", "no digits here"},
	}
	for _, tt := range tests {
		if got := MaskPhone(tt.in); got != tt.want {
			t.Errorf("MaskPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComposeBaseOnly(t *testing.T) {
	rows := Compose(0, State{})
	if len(rows) != MaxRows {
		t.Fatalf("rows = %d, want %d", len(rows), MaxRows)
	}
	if rows[0].Action != "đang thanh toán" {
		t.Errorf("first row = %+v", rows[0])
	}
}

func TestComposeRotates(t *testing.T) {
	first := Compose(0, State{})
	second := Compose(1, State{})
	if reflect.DeepEqual(first, second) {
		t.Fatal("rotation step produced identical windows")
	}
	if second[0] != first[1] {
		t.Errorf("step 1 should start at step 0's second row: %+v vs %+v", second[0], first[1])
	}
}

func TestComposeWrapsModuloLength(t *testing.T) {
	state := State{}
	full := Compose(0, state)
	wrapped := Compose(uint64(len(baseRows)), state)
	if !reflect.DeepEqual(full, wrapped) {
		t.Fatal("rotation did not wrap at row count")
	}
}

func TestComposeIncludesLiveVisitor(t *testing.T) {
	rows := Compose(uint64(len(baseRows)), State{Phone: "0912345678", Live: true})
	if rows[0].Phone != "091***5678" || rows[0].Action != "đang tranh slot" {
		t.Fatalf("visitor row = %+v", rows[0])
	}

	// Not live: the visitor row must not appear anywhere.
	for _, r := range Compose(0, State{Phone: "0912345678", Live: false}) {
		if r.Action == "đang tranh slot" {
			t.Fatal("visitor row shown while not live")
		}
	}
}

func TestComposeWinnerLeadsWhenSoldOut(t *testing.T) {
	rows := Compose(0, State{
		SoldOut: true,
		Winner:  &Row{Phone: "098***111"},
	})
	if rows[0].Phone != "098***111" || rows[0].Action != "đã chốt" || rows[0].Time != "—" {
		t.Fatalf("winner row = %+v", rows[0])
	}
	if len(rows) != MaxRows {
		t.Fatalf("rows = %d, want capped at %d", len(rows), MaxRows)
	}
}

func TestTickerAdvance(t *testing.T) {
	tick := New(State{})
	defer tick.Stop()

	before := tick.Rows()
	tick.Advance()
	after := tick.Rows()
	if reflect.DeepEqual(before, after) {
		t.Fatal("Advance did not rotate the window")
	}
}

func TestTickerSetState(t *testing.T) {
	tick := New(State{})
	defer tick.Stop()

	tick.SetState(State{Phone: "0912345678", Live: true})

	// The window caps at MaxRows, so any single step may rotate the
	// visitor row out of view; two consecutive windows cannot both miss it.
	var found bool
	for attempt := 0; attempt < 2 && !found; attempt++ {
		for _, row := range tick.Rows() {
			if row.Phone == "091***5678" {
				found = true
			}
		}
		tick.Advance()
	}
	if !found {
		t.Fatalf("visitor row missing after SetState: %+v", tick.Rows())
	}
}
