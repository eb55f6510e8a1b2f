package models

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"todo", "in-progress", "done"} {
		got, err := ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) error = %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q", s, got)
		}
	}

	for _, s := range []string{"", "all", "closed", "TODO"} {
		if _, err := ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) error = nil, want failure", s)
		}
	}
}

func TestStatusNext(t *testing.T) {
	tests := []struct{ in, want Status }{
		{StatusTodo, StatusInProgress},
		{StatusInProgress, StatusDone},
		{StatusDone, StatusTodo},
	}
	for _, tt := range tests {
		if got := tt.in.Next(); got != tt.want {
			t.Errorf("%q.Next() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	for _, s := range Statuses {
		if !FilterAll.Matches(s) {
			t.Errorf("FilterAll must match %q", s)
		}
	}
	if !Filter(StatusTodo).Matches(StatusTodo) {
		t.Error("todo filter must match todo")
	}
	if Filter(StatusTodo).Matches(StatusDone) {
		t.Error("todo filter must not match done")
	}
}
