package curriculum

import (
	"errors"
	"testing"
)

func buildVersion(t *testing.T, v string) *Catalog {
	t.Helper()
	f, err := Parse([]byte(tinyYAML))
	if err != nil {
		t.Fatal(err)
	}
	f.Version = v
	c, err := Build(f)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCheckUpgrade(t *testing.T) {
	cur := buildVersion(t, "v2.0.0")

	if err := CheckUpgrade(cur, buildVersion(t, "v2.1.0")); err != nil {
		t.Errorf("upgrade: %v", err)
	}
	if err := CheckUpgrade(cur, buildVersion(t, "v2.0.0")); err != nil {
		t.Errorf("same version should be accepted: %v", err)
	}
	if err := CheckUpgrade(cur, buildVersion(t, "v1.9.9")); !errors.Is(err, ErrStaleVersion) {
		t.Errorf("downgrade: got %v, want ErrStaleVersion", err)
	}
	if err := CheckUpgrade(nil, buildVersion(t, "v0.0.1")); err != nil {
		t.Errorf("first load: %v", err)
	}
}
