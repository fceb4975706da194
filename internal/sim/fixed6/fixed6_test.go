package fixed6

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDivIsExact(t *testing.T) {
	got := MustParse("0.3").Div(MustParse("0.1"))
	if got != FromInt(3) {
		t.Fatalf("0.3/0.1 = %s, want 3", got)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want F
	}{
		{"12", 12 * Scale},
		{"-0.25", -250_000},
		{"1.000001", 1_000_001},
		{".5", 500_000},
		{"+3.5", 3_500_000},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Parse(%q) = %d, want %d", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"", "1.0000001", "abc", "1.x", "-"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("Parse(%q) expected error", bad)
		}
	}
}

func TestRounding(t *testing.T) {
	if got := MustParse("2.5").Round(); got != FromInt(3) {
		t.Fatalf("Round(2.5) = %s", got)
	}
	if got := MustParse("-2.5").Round(); got != FromInt(-3) {
		t.Fatalf("Round(-2.5) = %s", got)
	}
	if got := MustParse("-2.1").Floor(); got != FromInt(-3) {
		t.Fatalf("Floor(-2.1) = %s", got)
	}
	if got := MustParse("2.1").Ceil(); got != FromInt(3) {
		t.Fatalf("Ceil(2.1) = %s", got)
	}
	if got := MustParse("2.000001").CeilInt(); got != 3 {
		t.Fatalf("CeilInt = %d", got)
	}
	// 1/3 rounds down at the sixth digit, 2/3 rounds up.
	if got := FromRatio(1, 3); got != 333_333 {
		t.Fatalf("1/3 = %d", got)
	}
	if got := FromRatio(2, 3); got != 666_667 {
		t.Fatalf("2/3 = %d", got)
	}
}

func TestMulRoundsOnce(t *testing.T) {
	// Flooring 66.6667 before the second multiplication would give 59.
	skill := FromInt(100)
	hp := One.Sub(FromRatio(1, 3))
	ex := One.Sub(MustParse("0.1"))
	got := skill.Mul(hp).Mul(ex).Floor()
	if got != FromInt(60) {
		t.Fatalf("effective = %s, want 60", got)
	}
}

func TestLargeMulDoesNotOverflow(t *testing.T) {
	a := FromInt(5_000_000)
	b := FromInt(1000)
	if got := a.Mul(b); got != FromInt(5_000_000_000) {
		t.Fatalf("mul = %s", got)
	}
	if got := a.Div(MustParse("0.5")); got != FromInt(10_000_000) {
		t.Fatalf("div = %s", got)
	}
}

func TestString(t *testing.T) {
	cases := map[string]string{"1.5": "1.5", "-0.000001": "-0.000001", "7": "7"}
	for in, want := range cases {
		if got := MustParse(in).String(); got != want {
			t.Fatalf("String(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestYAML(t *testing.T) {
	var doc struct {
		Ratio F `yaml:"ratio"`
		Whole F `yaml:"whole"`
	}
	if err := yaml.Unmarshal([]byte("ratio: 0.1\nwhole: 30\n"), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Ratio != 100_000 || doc.Whole != FromInt(30) {
		t.Fatalf("got %d %d", doc.Ratio, doc.Whole)
	}
	if err := yaml.Unmarshal([]byte("ratio: [1]\n"), &doc); err == nil {
		t.Fatalf("expected error for sequence")
	}
}
