package cidl

import "testing"

func TestManyToManyTableNameSymmetric(t *testing.T) {
	forward := NavigationProperty{ModelReference: "Course"}.ManyToManyTableName("Student")
	backward := NavigationProperty{ModelReference: "Student"}.ManyToManyTableName("Course")

	if forward != backward {
		t.Fatalf("expected symmetric junction name, got %q vs %q", forward, backward)
	}
	if forward != "CourseStudent" {
		t.Fatalf("expected lexicographically-ordered concatenation, got %q", forward)
	}
}

func TestSortedPairOrdersLexicographically(t *testing.T) {
	left, right := SortedPair("User", "AppUser")
	if left != "AppUser" || right != "User" {
		t.Fatalf("expected (AppUser, User), got (%s, %s)", left, right)
	}
}
