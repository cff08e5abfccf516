package messages

import "testing"

func TestBulkOutcome_Plurals(t *testing.T) {
	cases := []struct {
		remind bool
		n      int
		want   string
	}{
		{remind: false, n: 1, want: "Assignment canceled"},
		{remind: false, n: 3, want: "Assignments canceled (3)"},
		{remind: true, n: 1, want: "Reminder sent"},
		{remind: true, n: 2, want: "Reminders sent (2)"},
	}
	for _, tc := range cases {
		if got := BulkOutcome(tc.remind, tc.n); got != tc.want {
			t.Errorf("BulkOutcome(%v,%d) = %q; want %q", tc.remind, tc.n, got, tc.want)
		}
	}
}

func TestBulkConfirmLabel(t *testing.T) {
	if got := BulkConfirmLabel(true, 1); got != "Remind (1)" {
		t.Fatalf("got %q", got)
	}
	if got := BulkConfirmLabel(false, 0); got != "Cancel (0)" {
		t.Fatalf("got %q", got)
	}
}

func TestValidationCopy(t *testing.T) {
	if got := InvalidEmail("b@bcom"); got != "b@bcom is not a valid email." {
		t.Fatalf("InvalidEmail = %q", got)
	}
	if got := DuplicateEmail("A@a.com"); got != "A@a.com was entered more than once." {
		t.Fatalf("DuplicateEmail = %q", got)
	}
	if got := TooManyEmails(5); got == "" {
		t.Fatalf("TooManyEmails empty")
	}
}

func TestNotInCatalogTitle(t *testing.T) {
	if got := NotInCatalogTitle("Engineering"); got != "This course is not in your Engineering budget's catalog" {
		t.Fatalf("got %q", got)
	}
	if got := NotInCatalogTitle(""); got != "This course is not in your budget's catalog" {
		t.Fatalf("got %q", got)
	}
}

func TestAllocated(t *testing.T) {
	if got := Allocated(1); got != "Course assigned to 1 learner" {
		t.Fatalf("got %q", got)
	}
	if got := Allocated(4); got != "Course assigned to 4 learners" {
		t.Fatalf("got %q", got)
	}
}
