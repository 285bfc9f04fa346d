package validate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type target struct {
	Host    string `name:"host" validate:"required"`
	Port    int    `name:"port" validate:"gte=0,lte=65535"`
	Ignored string `name:"-"`
}

func TestStruct(t *testing.T) {
	testCases := []struct {
		name      string
		val       target
		expFields []string
	}{
		{name: "valid", val: target{Host: "example.com", Port: 443}},
		{name: "missing host", val: target{Port: 80}, expFields: []string{"host"}},
		{name: "missing host bad port", val: target{Port: 70000}, expFields: []string{"host", "port"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.val)
			if tc.expFields == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}

			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got: %v", err)
			}
			if diff := cmp.Diff(tc.expFields, fe.Fields()); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStruct_RequiredMessage(t *testing.T) {
	err := Struct(target{})

	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got: %v", err)
	}
	if exp := "host: This field is required"; fe.Error() != exp {
		t.Errorf("expected %q, got %q", exp, fe.Error())
	}
}
