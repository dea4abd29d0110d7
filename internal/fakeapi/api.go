package fakeapi

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/handlegen"
)

// Object is the object type of a simulated handle. The values match the
// declaration order of the handle types in the device model.
type Object uint32

const (
	ObjectInstance Object = iota + 1
	ObjectPhysicalDevice
	ObjectDevice
	ObjectBuffer
	ObjectQueue
)

var objectNames = [...]string{
	ObjectInstance:       "Instance",
	ObjectPhysicalDevice: "PhysicalDevice",
	ObjectDevice:         "Device",
	ObjectBuffer:         "Buffer",
	ObjectQueue:          "Queue",
}

func (o Object) String() string {
	if o > 0 && int(o) < len(objectNames) {
		return objectNames[o]
	}
	return fmt.Sprintf("object(%d)", uint32(o))
}

// Command names of the simulated API.
const (
	CmdCreateInstance           = "apiCreateInstance"
	CmdDestroyInstance          = "apiDestroyInstance"
	CmdEnumeratePhysicalDevices = "apiEnumeratePhysicalDevices"
	CmdGetQueueFamilyIndices    = "apiGetQueueFamilyIndices"
	CmdCreateDevice             = "apiCreateDevice"
	CmdDestroyDevice            = "apiDestroyDevice"
	CmdCreateBuffer             = "apiCreateBuffer"
	CmdDestroyBuffer            = "apiDestroyBuffer"
	CmdGetBufferSize            = "apiGetBufferSize"
)

// Config configures a simulated API.
type Config struct {
	// Logger receives one debug entry per call. nil disables logging.
	Logger *zap.Logger

	// PhysicalDevices is the number of physical devices each new instance
	// exposes. Zero means 2.
	PhysicalDevices int

	// QueueFamilies is the number of queue family indices each physical
	// device reports. Zero means 3.
	QueueFamilies int
}

// API is an in-memory implementation of the device model commands.
type API struct {
	table    *Table
	log      *zap.Logger
	failures map[string][]handlegen.Status
	scripts  map[string][]int
	calls    map[string]int
	devices  int
	families int
	mu       sync.Mutex
}

// New creates a simulated API. A nil cfg uses defaults.
func New(cfg *Config) *API {
	a := &API{
		table:    NewTable(),
		log:      zap.NewNop(),
		failures: make(map[string][]handlegen.Status),
		scripts:  make(map[string][]int),
		calls:    make(map[string]int),
		devices:  2,
		families: 3,
	}
	if cfg != nil {
		if cfg.Logger != nil {
			a.log = cfg.Logger
		}
		if cfg.PhysicalDevices > 0 {
			a.devices = cfg.PhysicalDevices
		}
		if cfg.QueueFamilies > 0 {
			a.families = cfg.QueueFamilies
		}
	}
	return a
}

// Table returns the handle table backing the API.
func (a *API) Table() *Table {
	return a.table
}

// FailNext makes the next calls of command return the given statuses, one
// per call, before normal behavior resumes.
func (a *API) FailNext(command string, statuses ...handlegen.Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[command] = append(a.failures[command], statuses...)
}

// ScriptCounts sets the element count an enumeration command sees on each
// of its next calls. Physical devices are added or removed to match before
// the call runs. Once the script is used up the count stays where it is.
func (a *API) ScriptCounts(command string, counts ...int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scripts[command] = append(a.scripts[command], counts...)
}

// Calls returns how often command was invoked.
func (a *API) Calls(command string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[command]
}

// begin records a call and returns an injected failure, if any.
func (a *API) begin(command string) (handlegen.Status, int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls[command]++
	a.log.Debug("call", zap.String("command", command), zap.Int("n", a.calls[command]))

	script := -1
	if s := a.scripts[command]; len(s) > 0 {
		script = s[0]
		a.scripts[command] = s[1:]
	}
	if f := a.failures[command]; len(f) > 0 {
		a.failures[command] = f[1:]
		return f[0], script, true
	}
	return handlegen.Success, script, false
}

// CreateInstance creates an instance along with its physical devices.
func (a *API) CreateInstance(out *uint64) handlegen.Status {
	if s, _, failed := a.begin(CmdCreateInstance); failed {
		return s
	}
	if out == nil {
		return handlegen.ErrorInitializationFailed
	}
	h := a.table.Create(ObjectInstance, 0, 0)
	for i := 0; i < a.devices; i++ {
		a.table.Create(ObjectPhysicalDevice, h, uint64(i))
	}
	*out = h
	return handlegen.Success
}

// MustCreateInstance creates an instance and panics on failure.
func (a *API) MustCreateInstance() uint64 {
	var h uint64
	if s := a.CreateInstance(&h); s != handlegen.Success {
		panic(fmt.Sprintf("fakeapi: create instance: %v", s))
	}
	return h
}

// DestroyInstance destroys an instance and the physical devices it owns.
func (a *API) DestroyInstance(instance uint64) handlegen.Status {
	if s, _, failed := a.begin(CmdDestroyInstance); failed {
		return s
	}
	if !a.table.Is(instance, ObjectInstance) {
		return handlegen.ErrorUnknown
	}
	for _, pd := range a.table.Children(instance, ObjectPhysicalDevice) {
		a.table.Drop(pd)
	}
	a.table.Drop(instance)
	return handlegen.Success
}

// EnumeratePhysicalDevices reports the physical devices of an instance.
func (a *API) EnumeratePhysicalDevices(instance uint64, count *uint32, out []uint64) handlegen.Status {
	s, script, failed := a.begin(CmdEnumeratePhysicalDevices)
	if failed {
		return s
	}
	if !a.table.Is(instance, ObjectInstance) || count == nil {
		return handlegen.ErrorUnknown
	}
	if script >= 0 {
		a.resize(instance, script)
	}
	return fill(a.table.Children(instance, ObjectPhysicalDevice), count, out)
}

func (a *API) resize(instance uint64, n int) {
	have := a.table.Children(instance, ObjectPhysicalDevice)
	for i := len(have); i < n; i++ {
		a.table.Create(ObjectPhysicalDevice, instance, uint64(i))
	}
	for i := len(have) - 1; i >= n; i-- {
		a.table.Drop(have[i])
	}
}

// GetQueueFamilyIndices reports the queue family indices of a physical device.
func (a *API) GetQueueFamilyIndices(physicalDevice uint64, count *uint32, out []uint32) handlegen.Status {
	s, script, failed := a.begin(CmdGetQueueFamilyIndices)
	if failed {
		return s
	}
	if !a.table.Is(physicalDevice, ObjectPhysicalDevice) || count == nil {
		return handlegen.ErrorUnknown
	}
	n := a.families
	if script >= 0 {
		n = script
	}
	indices := make([]uint32, n)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return fill(indices, count, out)
}

// CreateDevice creates a logical device on a physical device.
func (a *API) CreateDevice(physicalDevice uint64, out *uint64) handlegen.Status {
	if s, _, failed := a.begin(CmdCreateDevice); failed {
		return s
	}
	if !a.table.Is(physicalDevice, ObjectPhysicalDevice) || out == nil {
		return handlegen.ErrorInitializationFailed
	}
	*out = a.table.Create(ObjectDevice, physicalDevice, 0)
	return handlegen.Success
}

// DestroyDevice destroys a device. Buffers still owned by it are dropped.
func (a *API) DestroyDevice(device uint64) handlegen.Status {
	if s, _, failed := a.begin(CmdDestroyDevice); failed {
		return s
	}
	if !a.table.Is(device, ObjectDevice) {
		return handlegen.ErrorUnknown
	}
	for _, b := range a.table.Children(device, ObjectBuffer) {
		a.table.Drop(b)
	}
	a.table.Drop(device)
	return handlegen.Success
}

// CreateBuffer creates a buffer of the given size owned by device.
func (a *API) CreateBuffer(device, size uint64, out *uint64) handlegen.Status {
	if s, _, failed := a.begin(CmdCreateBuffer); failed {
		return s
	}
	if !a.table.Is(device, ObjectDevice) || out == nil {
		return handlegen.ErrorDeviceLost
	}
	if size == 0 {
		return handlegen.ErrorOutOfDeviceMemory
	}
	*out = a.table.Create(ObjectBuffer, device, size)
	return handlegen.Success
}

// DestroyBuffer destroys a buffer. The buffer must belong to device.
func (a *API) DestroyBuffer(device, buffer uint64) handlegen.Status {
	if s, _, failed := a.begin(CmdDestroyBuffer); failed {
		return s
	}
	object, parent, _, ok := a.table.Lookup(buffer)
	if !ok || object != ObjectBuffer || parent != device {
		return handlegen.ErrorUnknown
	}
	a.table.Drop(buffer)
	return handlegen.Success
}

// GetBufferSize reports the size a buffer was created with.
func (a *API) GetBufferSize(device, buffer uint64, size *uint64) handlegen.Status {
	if s, _, failed := a.begin(CmdGetBufferSize); failed {
		return s
	}
	object, parent, value, ok := a.table.Lookup(buffer)
	if !ok || object != ObjectBuffer || parent != device || size == nil {
		return handlegen.ErrorUnknown
	}
	*size = value
	return handlegen.Success
}

// fill applies the size-query-then-fill convention: a nil out reports the
// available count, otherwise up to *count elements are copied and
// Incomplete is returned when not all of them fit.
func fill[T any](items []T, count *uint32, out []T) handlegen.Status {
	if out == nil {
		*count = uint32(len(items))
		return handlegen.Success
	}
	n := min(int(*count), len(out), len(items))
	copy(out, items[:n])
	*count = uint32(n)
	if n < len(items) {
		return handlegen.Incomplete
	}
	return handlegen.Success
}
