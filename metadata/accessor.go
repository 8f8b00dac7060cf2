package metadata

import (
	"reflect"

	"github.com/soaklib/soak/inflect"
)

// Method is one accessor method resolved against a bound Go type. Resolution
// happens once at bind time; hydration and extraction invoke by index.
type Method struct {
	// Name is the Go method name.
	Name string
	// Index is the method index on the pointer type.
	Index int
	// Param is the sole parameter type of a setter or adder, nil for getters.
	Param reflect.Type
	// Result is the result type of a getter, nil for setters and adders.
	Result reflect.Type
	// Nullable reports whether Param accepts nil.
	Nullable bool
	// Variadic reports whether the method declares its parameter variadically.
	Variadic bool
}

// Invoke calls a setter or adder on entity (a pointer value) with one argument.
func (m *Method) Invoke(entity, arg reflect.Value) {
	entity.Method(m.Index).Call([]reflect.Value{arg})
}

// Get calls a getter on entity and returns its result.
func (m *Method) Get(entity reflect.Value) reflect.Value {
	return entity.Method(m.Index).Call(nil)[0]
}

// Accessor groups the methods resolved for one entity member.
type Accessor struct {
	// Member is the payload name the accessor belongs to.
	Member string
	// Setter writes the member value, nil when the type declares none.
	Setter *Method
	// Adder appends one element to a to-many member, nil when none.
	Adder *Method
	// Getter reads the member value, nil when none.
	Getter *Method
}

// buildAccessors resolves the accessor table for a definition against a Go
// struct type. Setters are Set<Field>, adders Add<Singular> trying ordered
// singular candidates, getters <Field> or Get<Field>. Only exported methods
// with the right shape participate; members without a usable method simply
// have a nil entry and are skipped at hydration time.
func buildAccessors(def *Def, goType reflect.Type) map[string]Accessor {
	ptr := reflect.PointerTo(goType)
	table := make(map[string]Accessor, len(def.Fields)+len(def.Assocs))

	for i := range def.Fields {
		name := def.Fields[i].Name
		table[name] = Accessor{
			Member: name,
			Setter: resolveSetter(ptr, name),
			Getter: resolveGetter(ptr, name),
		}
	}
	for i := range def.Assocs {
		a := &def.Assocs[i]
		acc := Accessor{
			Member: a.Name,
			Getter: resolveGetter(ptr, a.Name),
		}
		if a.ToMany {
			acc.Adder = resolveAdder(ptr, a.Name)
		} else {
			acc.Setter = resolveSetter(ptr, a.Name)
		}
		table[a.Name] = acc
	}
	return table
}

// resolveSetter finds Set<Camelized> with exactly one parameter. The acronym
// spelling is probed only when no method carries the plain spelling at all.
func resolveSetter(ptr reflect.Type, member string) *Method {
	camel := inflect.Camelize(member)
	m, found := probeArgMethod(ptr, "Set"+camel)
	if found {
		return m
	}
	if alt := inflect.CamelizeAcronyms(member); alt != camel {
		m, _ = probeArgMethod(ptr, "Set"+alt)
		return m
	}
	return nil
}

// resolveAdder finds Add<Singular> over the ordered singular candidates of
// the member name. A candidate whose method exists but has the wrong shape
// stops the search; later candidates are not consulted.
func resolveAdder(ptr reflect.Type, member string) *Method {
	camel := inflect.Camelize(member)
	candidates := inflect.SingularCandidates(camel)
	if alt := inflect.CamelizeAcronyms(member); alt != camel {
		for _, c := range inflect.SingularCandidates(alt) {
			if !contains(candidates, c) {
				candidates = append(candidates, c)
			}
		}
	}
	for _, cand := range candidates {
		m, found := probeArgMethod(ptr, "Add"+cand)
		if !found {
			continue
		}
		return m
	}
	return nil
}

// resolveGetter finds <Camelized> or Get<Camelized> with no parameters and
// one result.
func resolveGetter(ptr reflect.Type, member string) *Method {
	camel := inflect.Camelize(member)
	names := []string{camel, "Get" + camel}
	if alt := inflect.CamelizeAcronyms(member); alt != camel {
		names = append(names, alt, "Get"+alt)
	}
	for _, name := range names {
		m, ok := ptr.MethodByName(name)
		if !ok {
			continue
		}
		mt := m.Func.Type()
		if mt.NumIn() != 1 || mt.NumOut() != 1 {
			continue
		}
		return &Method{Name: m.Name, Index: m.Index, Result: mt.Out(0)}
	}
	return nil
}

// probeArgMethod looks up a named method taking exactly one argument. The
// second result reports whether a method with that name exists at all, so
// callers can distinguish "absent" from "present but unusable".
func probeArgMethod(t reflect.Type, name string) (*Method, bool) {
	m, ok := t.MethodByName(name)
	if !ok {
		return nil, false
	}
	mt := m.Func.Type()
	if mt.NumIn() != 2 {
		return nil, true
	}
	param := mt.In(1)
	variadic := mt.IsVariadic()
	if variadic {
		param = param.Elem()
	}
	return &Method{
		Name:     m.Name,
		Index:    m.Index,
		Param:    param,
		Nullable: nilable(param),
		Variadic: variadic,
	}, true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
