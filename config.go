package pegtree

import (
	"fmt"
	"io"
	"sort"
)

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with all the
// default values expected by the runners.
func NewConfig() *Config {
	m := make(Config)
	// compare string literals directly in basic runs
	m.SetBool("run.fast_strings", true)
	// deepest matcher nesting allowed, 0 means unlimited
	m.SetInt("run.max_depth", 0)
	// entries kept by the memo table of a basic run, 0 turns
	// memoization off
	m.SetInt("memo.max_entries", 4096)
	// errors a recovering run fixes before giving up on the rest of
	// the input
	m.SetInt("recovery.max_errors", 1000)
	// fixes that may fail to move the error position forward before
	// the root resynchronizes
	m.SetInt("recovery.max_stalls", 8)
	// logrus level of the default logger
	m.SetString("log.level", "warn")
	return &m
}

// Keys returns the setting names in order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(*c))
	for k := range *c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has tells whether the setting exists.
func (c *Config) Has(path string) bool {
	_, ok := (*c)[path]
	return ok
}

// Type returns the name of the type of a setting.
func (c *Config) Type(path string) string {
	if val, ok := (*c)[path]; ok {
		return val.typ.String()
	}
	return cfgValType_Undefined.String()
}

func (c *Config) Debug(w io.Writer) {
	fmt.Fprintln(w, "Configuration")

	keys := c.Keys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		fmt.Fprintf(w, "%-*s : %s\n", width, k, (*c)[k].String())
	}
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

// assignType is mostly for preventing programming errors
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("Can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("Can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (v *cfgVal) String() string {
	switch v.typ {
	case cfgValType_Bool:
		return fmt.Sprintf("%t (bool)", v.asBool)
	case cfgValType_Int:
		return fmt.Sprintf("%d (int)", v.asInt)
	case cfgValType_String:
		return fmt.Sprintf("%s (string)", v.asString)
	case cfgValType_Undefined:
		return "(undefined)"
	default:
		panic(fmt.Sprintf("unknown cfgVal type: %v", v.typ))
	}
}

// set keeps the type of existing settings, so overriding a default
// with a value of another type is caught early.
func (c *Config) set(path string, vt cfgValType) *cfgVal {
	val, ok := (*c)[path]
	if !ok {
		val = &cfgVal{}
		(*c)[path] = val
	}
	val.assignType(vt)
	return val
}

func (c *Config) SetBool(path string, v bool)     { c.set(path, cfgValType_Bool).asBool = v }
func (c *Config) SetInt(path string, v int)       { c.set(path, cfgValType_Int).asInt = v }
func (c *Config) SetString(path string, v string) { c.set(path, cfgValType_String).asString = v }

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("Bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("Int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("String setting `%s` does not exist", path))
}
