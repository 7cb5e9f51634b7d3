package wizard

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/kode4food/intake/pkg/api"
)

type (
	// RuleEngine executes Lua validation rules with state pooling. Rules
	// are pure: they read field values and report errors, and have no
	// access to the filesystem, network, or process environment
	RuleEngine struct {
		statePool chan *lua.State
		rules     sync.Map
	}

	// CompiledRule is a validation rule compiled to Lua bytecode
	CompiledRule struct {
		bytecode []byte
		argNames []string
	}
)

const (
	luaStatePoolSize    = 10
	luaGlobalTableIndex = -2
	luaArrayTableIndex  = -3
	luaMapTableIndex    = -3
	luaArgLocalTemplate = "local %s = select(%d, ...)"
	luaRuleSeparator    = "\n"
	luaGlobalTableName  = "_G"
)

var (
	ErrRuleEmpty     = errors.New("rule script is empty")
	ErrRuleLoad      = errors.New("rule load error")
	ErrRuleExecution = errors.New("rule execution error")
)

var luaExclude = [...]string{
	"io", "os", "debug", "package", "require", "dofile", "loadfile", "load",
}

// NewRuleEngine creates a Lua rule execution environment with a state pool
// for efficient rule reuse
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{
		statePool: make(chan *lua.State, luaStatePoolSize),
	}
}

// Compile compiles a validation rule for a step with the given argument
// names. Compiled bytecode is cached per step and script
func (e *RuleEngine) Compile(
	stepID api.StepID, script string, argNames []string,
) (*CompiledRule, error) {
	if script == "" {
		return nil, ErrRuleEmpty
	}

	key := ruleCacheKey(stepID, script)

	if val, ok := e.rules.Load(key); ok {
		return val.(*CompiledRule), nil
	}

	c, err := e.compile(script, argNames)
	if err != nil {
		return nil, fmt.Errorf("step %s rule: %w", stepID, err)
	}

	e.rules.Store(key, c)
	return c, nil
}

// Validate checks that a rule script is syntactically correct without
// running it
func (e *RuleEngine) Validate(script string, argNames []string) error {
	_, err := e.compile(script, argNames)
	return err
}

// Evaluate runs a compiled rule against the given field values. A rule
// returning true passes; returning a string reports a general error; and
// returning a table of field names to messages reports field errors
func (e *RuleEngine) Evaluate(
	c *CompiledRule, values api.Args,
) (api.ValidationResult, error) {
	L := e.getState()
	defer e.returnState(L)

	e.setupSandbox(L)

	if err := L.Load(bytes.NewReader(c.bytecode), "rule", "b"); err != nil {
		return api.ValidationResult{},
			fmt.Errorf("%w: %w", ErrRuleLoad, err)
	}

	for _, name := range c.argNames {
		pushLuaArg(L, values, name)
	}

	if err := L.ProtectedCall(len(c.argNames), 1, 0); err != nil {
		return api.ValidationResult{},
			fmt.Errorf("%w: %w", ErrRuleExecution, err)
	}
	defer L.Pop(1)

	switch {
	case L.IsBoolean(-1):
		if L.ToBoolean(-1) {
			return api.ValidResult(), nil
		}
		return api.InvalidResult(api.FieldError{
			Message: "validation rule failed",
		}), nil

	case L.IsString(-1):
		msg, _ := L.ToString(-1)
		return api.InvalidResult(api.FieldError{Message: msg}), nil

	case L.IsTable(-1):
		return luaTableToResult(L, -1), nil

	case L.IsNil(-1):
		return api.ValidResult(), nil

	default:
		return api.ValidationResult{},
			fmt.Errorf("%w: unexpected result type", ErrRuleExecution)
	}
}

func (e *RuleEngine) compile(
	script string, argNames []string,
) (*CompiledRule, error) {
	argLocals := make([]string, len(argNames))
	for i, name := range argNames {
		argLocals[i] = fmt.Sprintf(luaArgLocalTemplate, name, i+1)
	}

	src := strings.Join([]string{
		strings.Join(argLocals, luaRuleSeparator), script,
	}, luaRuleSeparator)

	L := lua.NewState()

	e.setupSandbox(L)

	if err := lua.LoadString(L, src); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := L.Dump(&buf); err != nil {
		return nil, err
	}

	return &CompiledRule{
		bytecode: buf.Bytes(),
		argNames: argNames,
	}, nil
}

func (e *RuleEngine) setupSandbox(L *lua.State) {
	lua.OpenLibraries(L)
	L.Global(luaGlobalTableName)
	for _, name := range luaExclude {
		L.PushNil()
		L.SetField(luaGlobalTableIndex, name)
	}
	L.Pop(1)
}

func (e *RuleEngine) getState() *lua.State {
	select {
	case L := <-e.statePool:
		return L
	default:
		return lua.NewState()
	}
}

func (e *RuleEngine) returnState(L *lua.State) {
	L.SetTop(0)

	select {
	case e.statePool <- L:
	default:
	}
}

func ruleCacheKey(stepID api.StepID, script string) string {
	return fmt.Sprintf("%s\x00%s", stepID, script)
}

func pushLuaArg(L *lua.State, values api.Args, argName string) {
	if value, ok := values[argName]; ok {
		goToLua(L, value)
		return
	}
	L.PushNil()
}

func goToLua(L *lua.State, value any) {
	switch v := value.(type) {
	case string:
		L.PushString(v)
	case bool:
		L.PushBoolean(v)
	case int:
		L.PushInteger(v)
	case int64:
		L.PushInteger(int(v))
	case float64:
		L.PushNumber(v)
	case []any:
		pushLuaArray(L, v)
	case map[string]any:
		pushLuaMap(L, v)
	case api.Args:
		pushLuaMap(L, v)
	case nil:
		L.PushNil()
	default:
		L.PushString(fmt.Sprintf("%v", v))
	}
}

func pushLuaArray(L *lua.State, arr []any) {
	L.CreateTable(len(arr), 0)
	for i, item := range arr {
		L.PushInteger(i + 1)
		goToLua(L, item)
		L.SetTable(luaArrayTableIndex)
	}
}

func pushLuaMap(L *lua.State, m map[string]any) {
	L.CreateTable(0, len(m))
	for k, val := range m {
		L.PushString(k)
		goToLua(L, val)
		L.SetTable(luaMapTableIndex)
	}
}

// luaTableToResult interprets a rule's table result as field errors. Keys
// are field names; values are messages
func luaTableToResult(L *lua.State, index int) api.ValidationResult {
	res := api.ValidResult()

	L.PushNil()
	for L.Next(index - 1) {
		if L.IsString(-2) {
			field, _ := L.ToString(-2)
			msg, _ := L.ToString(-1)
			res.AddError(field, msg)
		}
		L.Pop(1)
	}

	return res
}
