package domain

import "testing"

func TestAllowList(t *testing.T) {
	list := NewAllowList([]int64{42}, []int64{-100500})
	tests := []struct {
		name string
		user int64
		chat int64
		want bool
	}{
		{name: "allowed user in any chat", user: 42, chat: 7, want: true},
		{name: "allowed chat for any user", user: 1, chat: -100500, want: true},
		{name: "stranger", user: 1, chat: 7, want: false},
		{name: "zero ids never match", user: 0, chat: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := list.Allows(tt.user, tt.chat); got != tt.want {
				t.Fatalf("Allows(%d, %d) = %v, want %v", tt.user, tt.chat, got, tt.want)
			}
		})
	}
}

func TestAllowListEmpty(t *testing.T) {
	if !NewAllowList(nil, nil).Empty() {
		t.Fatal("expected empty allow-list")
	}
	if NewAllowList([]int64{1}, nil).Allows(2, 3) {
		t.Fatal("expected deny for unknown user")
	}
}

func TestRateTableComplete(t *testing.T) {
	var table RateTable
	if table.Complete() {
		t.Fatal("empty table must be incomplete")
	}
	for i, b := range Brackets {
		table = table.With(b, DefaultPayoutPolicy().PayNoDiscount)
		if got, want := table.Complete(), i == len(Brackets)-1; got != want {
			t.Fatalf("after %s Complete() = %v, want %v", b, got, want)
		}
	}
}
