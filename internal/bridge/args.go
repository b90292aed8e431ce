package bridge

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

// args reads positional arguments, reporting problems as argument errors.
type args struct {
	raw   []json.RawMessage
	usage string
}

func (a args) require(n int) error {
	if len(a.raw) < n {
		return automation.Argumentf("%s", a.usage)
	}
	return nil
}

func (a args) handle(i int) (platform.WindowHandle, error) {
	var h platform.WindowHandle
	if err := json.Unmarshal(a.raw[i], &h); err != nil {
		return h, automation.Argumentf("window handle must be a non-negative integer")
	}
	return h, nil
}

func (a args) text(i int, name string) (string, error) {
	var s string
	if err := json.Unmarshal(a.raw[i], &s); err != nil {
		return "", automation.Argumentf("%s must be a string", name)
	}
	return s, nil
}

func (a args) integer(i int, name string) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(a.raw[i], &n); err != nil {
		return 0, automation.Argumentf("%s must be a number", name)
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, automation.Argumentf("%s must be an integer", name)
	}
	return v, nil
}

func (a args) keyCode(i int) (uint32, error) {
	v, err := a.integer(i, "virtual key code")
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxUint32 {
		return 0, automation.Argumentf("virtual key code out of range: %d", v)
	}
	if v < 0 {
		return uint32(int32(v)), nil
	}
	return uint32(v), nil
}

// optionalInteger returns def when argument i is absent or null.
func (a args) optionalInteger(i int, name string, def int64) (int64, error) {
	if i >= len(a.raw) || string(a.raw[i]) == "null" {
		return def, nil
	}
	return a.integer(i, name)
}
