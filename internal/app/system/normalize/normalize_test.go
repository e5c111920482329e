package normalize

import "testing"

func TestNormalizers(t *testing.T) {
	cases := []struct {
		fn   string
		f    func(string) string
		in   string
		want string
	}{
		{"Email", Email, "  Ada.Lovelace@Example.EDU\t", "ada.lovelace@example.edu"},
		{"Email", Email, "\n", ""},
		{"Name", Name, " Ada \t  King\nLovelace ", "Ada King Lovelace"},
		{"Name", Name, "CS 142  Study   Group", "CS 142 Study Group"},
		{"AuthType", AuthType, " BYU_NetID ", "byu_netid"},
		{"Text", Text, "  Read  chapter 3 \n", "Read  chapter 3"},
		{"Text", Text, "", ""},
	}

	for _, c := range cases {
		if got := c.f(c.in); got != c.want {
			t.Errorf("%s(%q) = %q, want %q", c.fn, c.in, got, c.want)
		}
	}
}

func TestEmail_Idempotent(t *testing.T) {
	once := Email(" MiXeD@Case.Org ")
	if twice := Email(once); twice != once {
		t.Errorf("Email not idempotent: %q then %q", once, twice)
	}
}
