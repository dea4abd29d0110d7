package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/handlegen/emit"
	"github.com/wippyai/handlegen/model"
	"github.com/wippyai/handlegen/synth"
)

const deviceModel = "../../testdata/device_api.json"

func TestRun_List(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := config{modelFile: deviceModel, list: true, opts: synth.Options{StripPrefix: "api"}}
	if err := run(context.Background(), cfg, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"Handles",
		"Device  64-bit  parent PhysicalDevice  owned by apiDestroyDevice",
		"Queue  32-bit  parent Device",
		"apiEnumeratePhysicalDevices [two-call]",
		"enhanced EnumeratePhysicalDevices(instance Instance, dispatch *Dispatch) ([]PhysicalDevice, error)",
		"apiGetDebugMessages [unrecognized]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colour written to a non-terminal")
	}
	if !strings.Contains(stderr.String(), "warning:") || !strings.Contains(stderr.String(), "apiGetDebugMessages") {
		t.Errorf("stderr = %q, want a synthesis warning", stderr.String())
	}
}

func TestRun_Emit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := config{
		modelFile: deviceModel,
		emit:      emit.Config{Package: "device"},
		opts:      synth.Options{StripPrefix: "api"},
	}
	if err := run(context.Background(), cfg, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "// Code generated by handlegen. DO NOT EDIT.") {
		t.Fatalf("missing generated header:\n%.200s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "package device") {
		t.Fatal("package name not applied")
	}
}

func TestRun_EmitToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.go")
	var stdout, stderr bytes.Buffer
	cfg := config{modelFile: deviceModel, outFile: path, opts: synth.Options{StripPrefix: "api"}}
	if err := run(context.Background(), cfg, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("func CreateDeviceUnique(")) {
		t.Fatal("generated file has no unique variant")
	}
	if stdout.Len() != 0 {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "wrote "+path) {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	var stdout, stderr bytes.Buffer

	if err := run(ctx, config{modelFile: "missing.json"}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for missing model")
	}

	cfg := config{modelFile: deviceModel, emit: emit.Config{Package: "func"}}
	if err := run(ctx, cfg, &stdout, &stderr); err == nil {
		t.Fatal("expected error for keyword package name")
	}
}

func TestRun_Check(t *testing.T) {
	// a module exporting only memory
	wasm := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x03, 0x01, 0x00, 0x01,
		0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	}
	path := filepath.Join(t.TempDir(), "mem.wasm")
	if err := os.WriteFile(path, wasm, 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), config{modelFile: deviceModel, checkFile: path}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "13 of 13 commands do not match") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stdout.String(), `export "apiCreateInstance" not found`) {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestInteractiveModel(t *testing.T) {
	m, err := model.LoadFile(deviceModel)
	if err != nil {
		t.Fatal(err)
	}
	out, err := synth.Generate(context.Background(), m, synth.Options{StripPrefix: "api"})
	if err != nil {
		t.Fatal(err)
	}

	im := newInteractiveModel(out, "device_api.json")
	if len(im.visible) != len(out.Commands) {
		t.Fatalf("visible = %d, want %d", len(im.visible), len(out.Commands))
	}

	key := func(s string) tea.KeyMsg {
		switch s {
		case "enter":
			return tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			return tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			return tea.KeyMsg{Type: tea.KeyDown}
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	im.Update(key("down"))
	if im.selected != 1 {
		t.Fatalf("selected = %d, want 1", im.selected)
	}

	im.Update(key("/"))
	if im.state != stateFilter {
		t.Fatalf("state = %v, want filter", im.state)
	}
	for _, r := range "buffer" {
		im.Update(key(string(r)))
	}
	im.Update(key("enter"))
	for _, idx := range im.visible {
		if !strings.Contains(strings.ToLower(out.Commands[idx].Command), "buffer") {
			t.Fatalf("filter kept %s", out.Commands[idx].Command)
		}
	}
	if len(im.visible) != 4 {
		t.Fatalf("visible = %d, want 4 buffer commands", len(im.visible))
	}

	im.selected = 0
	im.Update(key("enter"))
	if im.state != stateShowCommand {
		t.Fatalf("state = %v, want details", im.state)
	}
	if view := im.View(); !strings.Contains(view, "apiCreateBuffer") || !strings.Contains(view, "CreateBufferUnique") {
		t.Fatalf("details view:\n%s", view)
	}
	im.Update(key("esc"))
	if im.state != stateSelectCommand {
		t.Fatalf("state = %v after esc", im.state)
	}
}
