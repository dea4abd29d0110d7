package model

import (
	"errors"
	"strings"
	"testing"

	"go.bytecodealliance.org/wit"

	herrors "github.com/wippyai/handlegen/errors"
)

func TestLoadFile_DeviceAPI(t *testing.T) {
	m, err := LoadFile("../testdata/device_api.json")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if len(m.Handles) != 5 {
		t.Fatalf("expected 5 handles, got %d", len(m.Handles))
	}
	dev, ok := m.Handle("Device")
	if !ok {
		t.Fatal("Device handle not found")
	}
	if !dev.IsDestroyable || dev.DestroyCommand != "apiDestroyDevice" || dev.Parent != "PhysicalDevice" {
		t.Fatalf("unexpected Device handle: %+v", dev)
	}
	if dev.Width() != 64 {
		t.Fatalf("Device width = %d, want 64", dev.Width())
	}
	q, _ := m.Handle("Queue")
	if q.Width() != 32 {
		t.Fatalf("Queue width = %d, want 32", q.Width())
	}

	enum, ok := m.Command("apiEnumeratePhysicalDevices")
	if !ok {
		t.Fatal("enumerate command not found")
	}
	if enum.Params[1].Direction != InOut {
		t.Fatalf("count direction = %v, want inout", enum.Params[1].Direction)
	}
	if !enum.Params[2].IsArray || enum.Params[2].CountParam != "physicalDeviceCount" {
		t.Fatalf("unexpected array param: %+v", enum.Params[2])
	}
	if got := m.Owner(enum); got != "Instance" {
		t.Fatalf("Owner = %q, want Instance", got)
	}
	if enum.Param("physicalDevices") != 2 || enum.Param("missing") != -1 {
		t.Fatal("Param lookup mismatch")
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"malformed", `{"handles": [`, "decode command model"},
		{"unknown field", `{"handles": [], "commands": [], "extra": 1}`, "decode command model"},
		{"bad direction", `{"commands": [{"name": "f", "params": [{"name": "a", "type": "u32", "direction": "sideways"}]}]}`, "decode command model"},
		{"duplicate handle", `{"handles": [{"name": "A"}, {"name": "A"}]}`, `duplicate handle type "A"`},
		{"unknown parent", `{"handles": [{"name": "A", "parentHandle": "B"}]}`, `unknown parent "B"`},
		{"unknown grandparent", `{"handles": [{"name": "A", "parentHandle": "B"}, {"name": "B", "parentHandle": "X"}]}`, `handle type "B": unknown parent "X"`},
		{"parent cycle", `{"handles": [{"name": "A", "parentHandle": "B"}, {"name": "B", "parentHandle": "A"}]}`, "cycle"},
		{"bad width", `{"handles": [{"name": "A", "bits": 16}]}`, "unsupported width 16"},
		{"duplicate command", `{"commands": [{"name": "f"}, {"name": "f"}]}`, `duplicate command "f"`},
		{"duplicate param", `{"commands": [{"name": "f", "params": [{"name": "a", "type": "u32"}, {"name": "a", "type": "u32"}]}]}`, `duplicate parameter "a"`},
		{"untyped param", `{"commands": [{"name": "f", "params": [{"name": "a"}]}]}`, "has no type"},
		{"unknown owner", `{"commands": [{"name": "f", "ownerHandle": "Nope"}]}`, `unknown owner handle "Nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, &herrors.Error{Phase: herrors.PhaseLoad, Kind: herrors.KindInvalidModel}) {
				t.Errorf("expected invalid model error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("does-not-exist.json")
	if !errors.Is(err, &herrors.Error{Phase: herrors.PhaseLoad, Kind: herrors.KindNotFound}) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDirection_Text(t *testing.T) {
	for _, d := range []Direction{In, Out, InOut} {
		text, err := d.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", d, err)
		}
		var back Direction
		if err := back.UnmarshalText(text); err != nil || back != d {
			t.Fatalf("UnmarshalText(%q) = %v, %v", text, back, err)
		}
	}
	if In.Writes() || !Out.Writes() || !InOut.Writes() {
		t.Fatal("Writes mismatch")
	}
}

func TestResolve(t *testing.T) {
	m, err := New([]HandleType{{Name: "Device"}}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if ref := m.Resolve("Device"); ref.Class != TypeHandle {
		t.Errorf("Device class = %v, want handle", ref.Class)
	}
	ref := m.Resolve("u32")
	if ref.Class != TypePrimitive {
		t.Fatalf("u32 class = %v, want primitive", ref.Class)
	}
	if _, ok := ref.Prim.(wit.U32); !ok {
		t.Errorf("u32 prim = %T, want wit.U32", ref.Prim)
	}
	if ref := m.Resolve("DeviceCreateInfo"); ref.Class != TypeOpaque {
		t.Errorf("DeviceCreateInfo class = %v, want opaque", ref.Class)
	}
}

func TestPrimitiveHelpers(t *testing.T) {
	tests := []struct {
		name    string
		size    uint32
		integer bool
	}{
		{"u8", 1, true},
		{"s16", 2, true},
		{"u32", 4, true},
		{"s64", 8, true},
		{"f32", 4, false},
		{"f64", 8, false},
		{"bool", 1, false},
		{"string", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Primitive(tt.name)
			if !ok {
				t.Fatalf("Primitive(%q) failed", tt.name)
			}
			if got := ByteSize(p); got != tt.size {
				t.Errorf("ByteSize = %d, want %d", got, tt.size)
			}
			if got := IsInteger(p); got != tt.integer {
				t.Errorf("IsInteger = %v, want %v", got, tt.integer)
			}
		})
	}

	if _, ok := Primitive("not-a-type"); ok {
		t.Error("expected unknown name to be rejected")
	}
}
