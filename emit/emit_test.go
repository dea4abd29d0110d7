package emit

import (
	"bytes"
	"context"
	stderrors "errors"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/model"
	"github.com/wippyai/handlegen/synth"
)

func synthesize(t *testing.T, opts synth.Options) *synth.Output {
	t.Helper()
	m, err := model.LoadFile("../testdata/device_api.json")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	opts.StripPrefix = "api"
	out, err := synth.Generate(context.Background(), m, opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return out
}

func render(t *testing.T, out *synth.Output, cfg Config) string {
	t.Helper()
	src, err := Source(out, cfg)
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	return string(src)
}

// declarations parses src and returns its top-level function and type names.
func declarations(t *testing.T, src string) (funcs, types []string) {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), "api.go", src, 0)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	for _, d := range file.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				funcs = append(funcs, d.Name.Name)
			}
		case *ast.GenDecl:
			for _, s := range d.Specs {
				if ts, ok := s.(*ast.TypeSpec); ok {
					types = append(types, ts.Name.Name)
				}
			}
		}
	}
	sort.Strings(funcs)
	sort.Strings(types)
	return funcs, types
}

// typecheck type-checks src, loading its imports from source.
func typecheck(t *testing.T, src string) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "api.go", src, 0)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	if _, err := conf.Check("example.com/api", fset, []*ast.File{file}, nil); err != nil {
		t.Fatalf("generated source does not type-check: %v\n%s", err, src)
	}
}

func TestSource_TypeChecks(t *testing.T) {
	tests := []struct {
		name string
		opts synth.Options
	}{
		{"default", synth.Options{}},
		{"compatibility wide handles", synth.Options{Compatibility: true, WideHandles: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typecheck(t, render(t, synthesize(t, tt.opts), Config{}))
		})
	}
}

func TestSource_Declarations(t *testing.T) {
	src := render(t, synthesize(t, synth.Options{}), Config{Package: "api"})

	if !strings.HasPrefix(src, "// Code generated by handlegen. DO NOT EDIT.") {
		t.Errorf("missing generated header:\n%s", src[:min(len(src), 80)])
	}

	funcs, types := declarations(t, src)
	wantFuncs := []string{
		"CreateBuffer", "CreateBufferRaw", "CreateBufferUnique",
		"CreateDevice", "CreateDeviceRaw", "CreateDeviceUnique",
		"CreateInstance", "CreateInstanceRaw", "CreateInstanceUnique",
		"DestroyBuffer", "DestroyDevice", "DestroyInstance",
		"DeviceWaitIdle",
		"EnumeratePhysicalDevices", "EnumeratePhysicalDevicesRaw", "EnumeratePhysicalDevicesWithAllocator",
		"GetBufferSize", "GetBufferSizeRaw",
		"GetDebugMessages",
		"GetDeviceQueues",
		"GetQueueFamilyIndices", "GetQueueFamilyIndicesRaw", "GetQueueFamilyIndicesWithAllocator",
		"HandleTable",
		"WriteBuffer",
	}
	if diff := cmp.Diff(wantFuncs, funcs); diff != "" {
		t.Errorf("functions mismatch (-want +got):\n%s", diff)
	}
	wantTypes := []string{
		"Buffer", "BufferCreateInfo", "BufferKind",
		"Device", "DeviceCreateInfo", "DeviceKind",
		"Dispatch",
		"Instance", "InstanceCreateInfo", "InstanceKind",
		"PhysicalDevice", "PhysicalDeviceKind",
		"Queue", "QueueKind",
		"UniqueBuffer", "UniqueDevice", "UniqueInstance",
	}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestSource_Snippets(t *testing.T) {
	src := render(t, synthesize(t, synth.Options{}), Config{})

	for _, want := range []string{
		"package api",
		"type Device = handle.Handle[DeviceKind, uint64]",
		"type Queue = handle.Handle[QueueKind, uint32]",
		"type UniqueBuffer = unique.Unique[BufferKind, uint64]",
		"func (DeviceKind) ObjectType() handle.ObjectType {\n\treturn 3\n}",
		"func CreateDevice(physicalDevice PhysicalDevice, createInfo *DeviceCreateInfo, dispatch *Dispatch) (Device, error) {",
		"if err := handlegen.Check(\"apiCreateDevice\", dispatch.CreateDevice(physicalDevice, createInfo, &device)); err != nil {",
		"return Device{}, err",
		"return twocall.Enumerate(\"apiEnumeratePhysicalDevices\", func(physicalDeviceCount *uint32, physicalDevices []PhysicalDevice) handlegen.Status {",
		"func EnumeratePhysicalDevicesWithAllocator[A handlegen.Allocator[PhysicalDevice]](instance Instance, alloc A, dispatch *Dispatch) ([]PhysicalDevice, error) {",
		"return twocall.EnumerateWith(\"apiEnumeratePhysicalDevices\",",
		"unique.ObjectDestroy(\"apiDestroyBuffer\", device, func(owner Device, h Buffer) handlegen.Status {",
		"return dispatch.DestroyBuffer(owner, h)",
		"unique.DeleterFunc(\"apiDestroyDevice\", func(h Device) handlegen.Status {",
		"var DefaultDispatch = new(Dispatch)",
		"return 0, err",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source lacks %q", want)
		}
	}

	// non-core commands never default their dispatch table
	i := strings.Index(src, "func GetDebugMessages(")
	if i < 0 {
		t.Fatal("GetDebugMessages not emitted")
	}
	body := src[i:]
	body = body[:strings.Index(body, "\n}\n")]
	if strings.Contains(body, "DefaultDispatch") {
		t.Errorf("non-core command defaults its dispatch:\n%s", body)
	}
}

func TestSource_Compatibility(t *testing.T) {
	src := render(t, synthesize(t, synth.Options{Compatibility: true}), Config{})
	funcs, _ := declarations(t, src)
	for _, name := range []string{"DeviceWaitIdleRaw", "WriteBufferRaw", "GetDeviceQueuesRaw"} {
		if !contains(funcs, name) {
			t.Errorf("compatibility mode lacks %s", name)
		}
	}
}

func TestSource_Options(t *testing.T) {
	t.Run("disable enhanced", func(t *testing.T) {
		src := render(t, synthesize(t, synth.Options{DisableEnhanced: true}), Config{})
		funcs, types := declarations(t, src)
		if contains(funcs, "CreateDeviceUnique") || contains(funcs, "CreateDeviceRaw") {
			t.Errorf("unexpected variants: %v", funcs)
		}
		if !contains(funcs, "CreateDevice") {
			t.Error("basic variant missing")
		}
		if strings.Contains(src, "twocall.") {
			t.Error("two-call adapter referenced with enhanced mode disabled")
		}
		if !contains(types, "UniqueDevice") {
			t.Error("ownership alias depends only on smart handle mode")
		}
	})

	t.Run("no smart handle", func(t *testing.T) {
		src := render(t, synthesize(t, synth.Options{NoSmartHandle: true}), Config{})
		if strings.Contains(src, "unique.") {
			t.Error("unique package referenced with smart handles disabled")
		}
	})

	t.Run("wide handles", func(t *testing.T) {
		src := render(t, synthesize(t, synth.Options{WideHandles: true}), Config{})
		if !strings.Contains(src, "func DeviceOf(raw uint64) Device {") {
			t.Error("wide 64-bit handle lacks its conversion shorthand")
		}
		if strings.Contains(src, "func QueueOf(") {
			t.Error("32-bit handle must not convert implicitly")
		}
	})

	t.Run("struct package", func(t *testing.T) {
		src := render(t, synthesize(t, synth.Options{}), Config{StructPackage: "example.com/api/types"})
		_, types := declarations(t, src)
		if contains(types, "DeviceCreateInfo") {
			t.Error("placeholder declared although structures are imported")
		}
		if !strings.Contains(src, "createInfo *types.DeviceCreateInfo") {
			t.Error("structure not qualified by its package")
		}
	})
}

func TestSource_WideCount(t *testing.T) {
	m, err := model.New(
		[]model.HandleType{{Name: "Device"}},
		[]model.Command{{Name: "listSizes", Params: []model.Parameter{
			{Name: "device", Type: "Device"},
			{Name: "count", Type: "u64", Direction: model.InOut},
			{Name: "sizes", Type: "u64", Direction: model.Out, IsArray: true, CountParam: "count"},
		}}},
	)
	if err != nil {
		t.Fatalf("model.New failed: %v", err)
	}
	out, err := synth.Generate(context.Background(), m, synth.Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	src := render(t, out, Config{})
	for _, want := range []string{
		"wide := uint64(*count)",
		"status := dispatch.ListSizes(device, &wide, sizes)",
		"if status >= handlegen.Success && uint64(wide) > math.MaxUint32 {\n\t\t\treturn handlegen.ErrorCountOverflow\n\t\t}\n\t\t*count = uint32(wide)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source lacks %q", want)
		}
	}
	typecheck(t, src)
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, nil, Config{})
	if err == nil {
		t.Fatal("expected error for nil output")
	}

	err = Write(&buf, synthesize(t, synth.Options{}), Config{Package: "func"})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEmit}) {
		t.Fatalf("expected emit error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("output written on error")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
