package support

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("GEOSIFT_TEST_VALUE", "set")
	if got := GetEnv("GEOSIFT_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("GetEnv = %q, want set", got)
	}
	if got := GetEnv("GEOSIFT_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetEnv = %q, want fallback", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("GEOSIFT_TEST_INT", "7")
	if got := GetEnvInt("GEOSIFT_TEST_INT", 1); got != 7 {
		t.Errorf("GetEnvInt = %d, want 7", got)
	}

	t.Setenv("GEOSIFT_TEST_INT", "not-a-number")
	if got := GetEnvInt("GEOSIFT_TEST_INT", 1); got != 1 {
		t.Errorf("GetEnvInt with invalid value = %d, want fallback 1", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("GEOSIFT_TEST_BOOL", "true")
	if !GetEnvBool("GEOSIFT_TEST_BOOL", false) {
		t.Error("GetEnvBool = false, want true")
	}
	if GetEnvBool("GEOSIFT_TEST_BOOL_MISSING", false) {
		t.Error("GetEnvBool for missing key = true, want fallback false")
	}
}
