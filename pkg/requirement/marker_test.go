package requirement

import (
	"errors"
	"testing"
)

func TestMarker_Evaluate(t *testing.T) {
	env := Env{
		"python_version":      "3.10",
		"python_full_version": "3.10.12",
		"sys_platform":        "linux",
		"platform_machine":    "x86_64",
		"os_name":             "posix",
		"implementation_name": "cpython",
	}

	tests := []struct {
		marker string
		want   bool
	}{
		{`python_version >= "3.8"`, true},
		{`python_version < "3.9"`, false},
		{`python_version > "3.9"`, true},
		{`python_full_version == "3.10.12"`, true},
		{`python_full_version ~= "3.10.0"`, true},
		{`python_full_version ~= "3.11.0"`, false},
		{`"3.10" == python_version`, true},
		{`sys_platform == "win32"`, false},
		{`sys_platform != "win32" and platform_machine == "x86_64"`, true},
		{`sys_platform == "win32" or os_name == "posix"`, true},
		{`(sys_platform == "win32" or sys_platform == "darwin") and os_name == "posix"`, false},
		{`"linux" in sys_platform`, true},
		{`"arm" not in platform_machine`, true},
		{`implementation_name == 'cpython'`, true},
		{`extra == "socks"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			m, err := ParseMarker(tt.marker)
			if err != nil {
				t.Fatalf("ParseMarker(%q) error = %v", tt.marker, err)
			}
			got, err := m.Evaluate(env)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.marker, got, tt.want)
			}
		})
	}
}

func TestMarker_Extra(t *testing.T) {
	m, err := ParseMarker(`extra == "Socks_Proxy"`)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := m.Evaluate(Env{"extra": "socks-proxy"})
	if err != nil || !ok {
		t.Errorf("Evaluate() = %v, %v; want true, nil", ok, err)
	}
}

func TestMarker_UndefinedVariable(t *testing.T) {
	m, err := ParseMarker(`platform_release >= "5"`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Evaluate(Env{}); !errors.Is(err, ErrMarker) {
		t.Errorf("Evaluate() error = %v, want ErrMarker", err)
	}
}

func TestParseMarker_Invalid(t *testing.T) {
	for _, in := range []string{
		`python_version >=`,
		`python_version "3.8"`,
		`(python_version >= "3.8"`,
		`"a" == "b"`,
		`python_version >= "3.8" and`,
		`sys_platform not "linux"`,
		`python_version >= "3.8`,
		`python_version $ "3"`,
	} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseMarker(in); !errors.Is(err, ErrMarker) {
				t.Errorf("ParseMarker(%q) error = %v, want ErrMarker", in, err)
			}
		})
	}
}
