package engine

import (
	"github.com/chazu/capscript/vm"
)

// target is the host object the engine tests script against.
type target struct {
	I       int
	Score   int
	Counter int
	Zero    int
	hidden  int
}

func (t *target) Describe(n int) string        { return "int" }
func (t *target) DescribeText(s string) string { return "text:" + s }

func intField(name string, exposed bool, p func(*target) *int) vm.Field {
	return vm.Field{
		Name: name, Type: vm.TypeInt, Exposed: exposed,
		Get: func(o any) vm.Value { return vm.Int(int32(*p(o.(*target)))) },
		Set: func(o any, v vm.Value) { *p(o.(*target)) = int(v.Int()) },
	}
}

func testRegistry() *vm.HostRegistry {
	r := vm.NewHostRegistry()
	r.Register(vm.DefineHostType[*target]("Target", false).
		AddField(intField("I", true, func(t *target) *int { return &t.I })).
		AddField(intField("Score", true, func(t *target) *int { return &t.Score })).
		AddField(intField("Counter", true, func(t *target) *int { return &t.Counter })).
		AddField(intField("Zero", true, func(t *target) *int { return &t.Zero })).
		AddField(intField("hidden", false, func(t *target) *int { return &t.hidden })).
		AddMethod(vm.Method{
			Name: "Describe", Params: []vm.Type{vm.TypeInt}, Returns: vm.TypeString, Exposed: true,
			Invoke: func(o any, args []vm.Value) (vm.Value, error) {
				return vm.String(o.(*target).Describe(int(args[0].Int()))), nil
			},
		}).
		AddMethod(vm.Method{
			Name: "Describe", Params: []vm.Type{vm.TypeString}, Returns: vm.TypeString, Exposed: true,
			Invoke: func(o any, args []vm.Value) (vm.Value, error) {
				return vm.String(o.(*target).DescribeText(args[0].Str())), nil
			},
		}).
		AddMethod(vm.Method{
			Name: "Reset", Returns: vm.TypeVoid,
			Invoke: func(o any, args []vm.Value) (vm.Value, error) {
				*o.(*target) = target{}
				return vm.Null, nil
			},
		}))
	return r
}
