package scene

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/asegale/ashlar/pkg/model"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: surface-area -> surface_area
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps a shape recipe so it can be passed between builtins.
type sexpShape struct {
	shape *model.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %s)", s.shape.Kind)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a model.Vec3.
type sexpVec3 struct {
	vec model.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpStoreyRef wraps a storey so a storey form can be bound to a
// variable and passed to element forms.
type sexpStoreyRef struct {
	id   string
	name string
}

func (s *sexpStoreyRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(storey %q)", s.name)
}
func (s *sexpStoreyRef) Type() *zygo.RegisteredType { return nil }

// sexpElementRef wraps an element's GlobalID.
type sexpElementRef struct {
	id   string
	name string
}

func (e *sexpElementRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(element %q %s)", e.name, e.id)
}
func (e *sexpElementRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a shape recipe from a sexpShape.
func toShape(s zygo.Sexp) (*model.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3 or from a 3-element list.
func toVec3(s zygo.Sexp) (model.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return model.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// xyzArgs extracts three numbers from either a single vec3 argument or
// three positional numbers.
func xyzArgs(args []zygo.Sexp) (model.Vec3, error) {
	if len(args) == 1 {
		return toVec3(args[0])
	}
	if len(args) != 3 {
		return model.Vec3{}, fmt.Errorf("expected a vec3 or 3 numbers, got %d arguments", len(args))
	}
	x, err := toFloat64(args[0])
	if err != nil {
		return model.Vec3{}, fmt.Errorf("x: %w", err)
	}
	y, err := toFloat64(args[1])
	if err != nil {
		return model.Vec3{}, fmt.Errorf("y: %w", err)
	}
	z, err := toFloat64(args[2])
	if err != nil {
		return model.Vec3{}, fmt.Errorf("z: %w", err)
	}
	return model.Vec3{X: x, Y: y, Z: z}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL builtins into a zygomys
// environment. The builtins populate the provided model during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, m *model.Model) {

	// Suffix counter for unnamed elements. Per-evaluation, so the same
	// source always produces the same derived GlobalIDs.
	var elemCounter uint64
	nextElemSuffix := func() string {
		n := atomic.AddUint64(&elemCounter, 1)
		return fmt.Sprintf("_anon_%d", n)
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: model.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (box 8 0.3 3)  edge lengths, min corner at the local origin
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		dims, err := xyzArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpShape{shape: model.Box(dims.X, dims.Y, dims.Z)}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 3 :radius 0.2)  or  (cylinder 3 0.2)
	// Z-axis cylinder, base circle centred on the local origin.
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var height, radius float64
		var err error
		switch {
		case len(pa.positional) == 2:
			if height, err = toFloat64(pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
			if radius, err = toFloat64(pa.positional[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
		case len(pa.positional) == 0:
			v, ok := pa.kw["height"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("cylinder: missing :height")
			}
			if height, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
			v, ok = pa.kw["radius"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("cylinder: missing :radius")
			}
			if radius, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("cylinder: expected (cylinder height radius) or (cylinder :height h :radius r)")
		}

		return &sexpShape{shape: model.Cylinder(height, radius)}, nil
	})

	// -----------------------------------------------------------------------
	// (translate shape 1 0 2.5)  or  (translate shape (vec3 1 0 2.5))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a shape and an offset")
		}
		sh, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		v, err := xyzArgs(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		return &sexpShape{shape: sh.At(v)}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate shape 0 0 90)  Euler angles in degrees, X then Y then Z
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a shape and angles")
		}
		sh, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		v, err := xyzArgs(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		// A node applies its rotation before its translation, so a shape
		// that already carries a transform must be wrapped to keep the
		// textual order of operations.
		if !sh.Rotation.IsZero() || !sh.Translation.IsZero() {
			sh = model.Union(sh)
		}
		return &sexpShape{shape: sh.Rotated(v)}, nil
	})

	// -----------------------------------------------------------------------
	// (union s1 s2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("union requires at least one shape")
		}
		ops := make([]*model.Shape, 0, len(args))
		for i, a := range args {
			sh, err := toShape(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: operand %d: %w", i+1, err)
			}
			ops = append(ops, sh)
		}
		return &sexpShape{shape: model.Union(ops...)}, nil
	})

	// -----------------------------------------------------------------------
	// (difference base cut1 cut2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("difference requires at least one shape")
		}
		ops := make([]*model.Shape, 0, len(args))
		for i, a := range args {
			sh, err := toShape(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("difference: operand %d: %w", i+1, err)
			}
			ops = append(ops, sh)
		}
		return &sexpShape{shape: model.Difference(ops...)}, nil
	})

	// -----------------------------------------------------------------------
	// (storey "Level 1" :elevation 0)
	// -----------------------------------------------------------------------
	env.AddFunction("storey", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("storey requires a name argument")
		}
		storeyName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("storey: name: %w", err)
		}

		var elevation float64
		if v, ok := pa.kw["elevation"]; ok {
			elevation, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("storey: elevation: %w", err)
			}
		}

		id := model.DeriveGlobalID("IfcBuildingStorey", storeyName)
		m.AddStorey(&model.Storey{GlobalID: id, Name: storeyName, Elevation: elevation})

		return &sexpStoreyRef{id: id, name: storeyName}, nil
	})

	// -----------------------------------------------------------------------
	// (element :type "IfcWall" :name "W-North" :storey "Level 1"
	//          :shape (box 8 0.3 3)
	//          :openings (list (translate (box 1 0.3 2.1) 2 0 0))
	//          :id "explicit-global-id")
	// -----------------------------------------------------------------------
	env.AddFunction("element", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		e := &model.Element{}

		v, ok := pa.kw["type"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("element: missing :type")
		}
		ifcType, err := toString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("element: type: %w", err)
		}
		e.IfcType = ifcType

		if v, ok := pa.kw["name"]; ok {
			e.Name, err = toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("element: name: %w", err)
			}
		} else {
			e.Name = ifcType + nextElemSuffix()
		}

		if v, ok := pa.kw["storey"]; ok {
			switch sv := v.(type) {
			case *sexpStoreyRef:
				e.Storey = sv.id
			default:
				storeyName, err := toString(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("element: storey: %w", err)
				}
				st := m.StoreyByName(storeyName)
				if st == nil {
					return zygo.SexpNull, fmt.Errorf("element: no storey named %q", storeyName)
				}
				e.Storey = st.GlobalID
			}
		}

		if v, ok := pa.kw["shape"]; ok {
			e.Base, err = toShape(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("element: shape: %w", err)
			}
		}

		if v, ok := pa.kw["openings"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("element: openings: %w", err)
			}
			for i, item := range items {
				sh, err := toShape(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("element: opening %d: %w", i+1, err)
				}
				e.Openings = append(e.Openings, sh)
			}
		}

		if v, ok := pa.kw["id"]; ok {
			e.GlobalID, err = toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("element: id: %w", err)
			}
		} else {
			e.GlobalID = model.DeriveGlobalID(e.IfcType, e.Name)
		}

		m.AddElement(e)

		return &sexpElementRef{id: e.GlobalID, name: e.Name}, nil
	})
}
