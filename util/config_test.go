package util

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type config struct {
	Name    string
	Size    int
	Tags    []string
	Enabled bool
	hidden  string
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEST_Name", "x")
	t.Setenv("TEST_Tags", `["a", "b"]`)
	t.Setenv("TEST_Enabled", "true")
	c := config{Size: 3}
	if err := LoadConfig("TEST_", &c); err != nil {
		t.Fatal(err)
	}
	if expected := (config{"x", 3, []string{"a", "b"}, true, ""}); !cmp.Equal(c, expected, cmp.AllowUnexported(config{})) {
		t.Errorf("got %#v", c)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("TEST_Name", "x")
	if err := LoadConfig("TEST_", &config{}); err == nil {
		t.Errorf("expected error for missing zero valued field")
	}
	t.Setenv("TEST_Size", "big")
	if err := LoadConfig("TEST_", &config{Tags: []string{}, Enabled: true}); err == nil {
		t.Errorf("expected error for bad int")
	}
}
