package suppression

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/abi-scope/abiscope/pkg/ini"
	"github.com/abi-scope/abiscope/pkg/regexcache"
)

// ParseResult is the outcome of reading one suppression specification:
// the rules of the accepted sections, in file order, plus every
// diagnostic that was emitted along the way.
type ParseResult struct {
	Suppressions     []Suppression
	Diagnostics      []Diagnostic
	RejectedSections int
}

// Parser turns parsed INI configurations into suppression rules.
// Regexes are compiled through a shared cache.
type Parser struct {
	cache *regexcache.Cache
}

// NewParser returns a parser backed by cache; a nil cache selects a
// new cache of the parser's own.
func NewParser(cache *regexcache.Cache) *Parser {
	if cache == nil {
		cache = regexcache.New()
	}
	return &Parser{cache: cache}
}

// ReadSuppressions reads suppression rules from r. path is used for
// diagnostics. The returned error is non-nil only for structural
// failures of the INI layer; section-level problems are reported as
// diagnostics and the offending sections skipped.
func ReadSuppressions(r io.Reader, path string) (*ParseResult, error) {
	return NewParser(nil).Read(r, path)
}

// ReadSuppressionsFile reads suppression rules from the file at path.
func ReadSuppressionsFile(path string) (*ParseResult, error) {
	cfg, err := ini.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewParser(nil).ReadConfig(cfg), nil
}

// Read parses an INI document from r and populates rules from it.
func (p *Parser) Read(r io.Reader, path string) (*ParseResult, error) {
	cfg, err := ini.Read(r, path)
	if err != nil {
		return nil, err
	}
	return p.ReadConfig(cfg), nil
}

// ReadConfig populates rules from an already-parsed INI tree.
func (p *Parser) ReadConfig(cfg *ini.Config) *ParseResult {
	res := &ParseResult{}
	for _, sec := range cfg.Sections {
		p.readSection(cfg.Path, sec, res)
	}
	return res
}

// valueError is a decoder failure, localized to one property.
type valueError struct {
	kind DiagKind
	msg  string
}

func (e *valueError) Error() string { return e.msg }

func malformed(format string, args ...interface{}) error {
	return &valueError{kind: DiagMalformedValue, msg: fmt.Sprintf(format, args...)}
}

// propertySpec describes one accepted property of a section schema:
// whether its presence is sufficient to justify the section, whether
// it may be repeated, and the typed decoder consuming it.
type propertySpec struct {
	sufficient bool
	repeatable bool
	consume    func(prop *ini.Property) error
}

type schema map[string]propertySpec

// readSection dispatches a section by name, evaluates its schema and
// appends the populated rule, or records the rejection.
func (p *Parser) readSection(path string, sec *ini.Section, res *ParseResult) {
	var (
		rule Suppression
		sch  schema
		post func(diag func(kind DiagKind, line int, property, format string, args ...interface{}))
	)

	diag := func(kind DiagKind, line int, property, format string, args ...interface{}) {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Path:     path,
			Line:     line,
			Section:  sec.Name,
			Property: property,
			Kind:     kind,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	switch sec.Name {
	case "suppress_type":
		t := &TypeSuppression{}
		sch = p.typeSchema(t)
		rule = t
		post = func(diag diagFunc) { typePostValidate(t, sec, diag) }
	case "suppress_function":
		f := &FunctionSuppression{ChangeKind: AllFunctionChanges, AllowOtherAliases: true}
		sch = p.functionSchema(f)
		rule = f
		post = func(diag diagFunc) { functionPostValidate(f, sec, diag) }
	case "suppress_variable":
		v := &VariableSuppression{ChangeKind: AllVariableChanges}
		sch = p.variableSchema(v)
		rule = v
		post = func(diag diagFunc) { variablePostValidate(v, sec, diag) }
	case "suppress_file":
		f := &FileSuppression{}
		sch = p.fileSchema(f)
		rule = f
		post = func(diagFunc) { f.DropsArtifact = f.HasSonameRelatedProperty() }
	default:
		diag(DiagUnknownSection, sec.Line, "", "unknown section [%s], skipping it", sec.Name)
		res.RejectedSections++
		return
	}

	seen := map[string]bool{}
	sufficient := false
	for _, prop := range sec.Properties {
		spec, known := sch[prop.Name]
		if !known {
			diag(DiagUnknownProperty, prop.Line, prop.Name,
				"unknown property %q in section [%s], skipping the section", prop.Name, sec.Name)
			res.RejectedSections++
			return
		}
		if seen[prop.Name] && !spec.repeatable {
			diag(DiagRepeatedProperty, prop.Line, prop.Name,
				"property %q may not be repeated in section [%s], skipping the section", prop.Name, sec.Name)
			res.RejectedSections++
			return
		}
		seen[prop.Name] = true
		if err := spec.consume(prop); err != nil {
			kind := DiagMalformedValue
			if ve, ok := err.(*valueError); ok {
				kind = ve.kind
			}
			diag(kind, prop.Line, prop.Name,
				"property %q in section [%s]: %v; skipping the section", prop.Name, sec.Name, err)
			res.RejectedSections++
			return
		}
		if spec.sufficient {
			sufficient = true
		}
	}

	if !sufficient {
		diag(DiagInsufficientSection, sec.Line, "",
			"section [%s] carries no property that could justify it, skipping it", sec.Name)
		res.RejectedSections++
		return
	}

	post(diag)
	res.Suppressions = append(res.Suppressions, rule)
}

type diagFunc = func(kind DiagKind, line int, property, format string, args ...interface{})

// <typed decoders>

func asString(v ini.Value) (string, bool) {
	s, ok := v.(*ini.StringValue)
	if !ok {
		return "", false
	}
	return s.Content, true
}

// asStringList flattens a scalar, a list, or a tuple holding a single
// list into a flat string slice.
func asStringList(v ini.Value) ([]string, bool) {
	switch v := v.(type) {
	case *ini.StringValue:
		return []string{v.Content}, true
	case *ini.ListValue:
		return v.Items, true
	case *ini.TupleValue:
		if len(v.Items) == 1 {
			if l, ok := v.Items[0].(*ini.ListValue); ok {
				return l.Items, true
			}
		}
	}
	return nil, false
}

// asPair extracts a two-element scalar list, tolerating the extra
// tuple wrapping the INI layer puts around braced groups.
func asPair(v ini.Value) (first, second string, ok bool) {
	items, ok := asStringList(v)
	if !ok || len(items) != 2 {
		return "", "", false
	}
	return items[0], items[1], true
}

func stringProp(dst *string) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected a simple string value")
		}
		*dst = s
		return nil
	}
}

func boolProp(dst *bool) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected a boolean value")
		}
		switch s {
		case "yes", "true":
			*dst = true
		case "no", "false":
			*dst = false
		default:
			return malformed("%q is not a boolean (yes|true|no|false)", s)
		}
		return nil
	}
}

func (p *Parser) regexProp(dst **regexp.Regexp) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected a regular expression")
		}
		re, err := p.cache.Compile(s)
		if err != nil {
			return &valueError{kind: DiagBadRegex, msg: fmt.Sprintf("cannot compile regex %q: %v", s, err)}
		}
		*dst = re
		return nil
	}
}

func stringSetProp(dst *map[string]struct{}) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		items, ok := asStringList(prop.Value)
		if !ok {
			return malformed("expected a string or a list of strings")
		}
		if *dst == nil {
			*dst = map[string]struct{}{}
		}
		for _, item := range items {
			(*dst)[item] = struct{}{}
		}
		return nil
	}
}

func stringListProp(dst *[]string) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		items, ok := asStringList(prop.Value)
		if !ok {
			return malformed("expected a string or a list of strings")
		}
		*dst = append(*dst, items...)
		return nil
	}
}

// insertedAtProp decodes has_data_member_inserted_at: a single offset
// that opens a range closed by the end sentinel.
func insertedAtProp(dst *[]*OffsetRange) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected an offset (end, an integer or offset_of/offset_after)")
		}
		begin, err := parseOffset(s)
		if err != nil {
			return malformed("%v", err)
		}
		*dst = append(*dst, &OffsetRange{Begin: begin, End: IntegerOffset(EndOffsetValue)})
		return nil
	}
}

func rangeFromPair(first, second string) (*OffsetRange, error) {
	begin, err := parseOffset(first)
	if err != nil {
		return nil, err
	}
	end, err := parseOffset(second)
	if err != nil {
		return nil, err
	}
	return &OffsetRange{Begin: begin, End: end}, nil
}

// insertedBetweenProp decodes has_data_member_inserted_between: a
// tuple holding exactly one two-element list.
func insertedBetweenProp(dst *[]*OffsetRange) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		first, second, ok := asPair(prop.Value)
		if !ok {
			return malformed("expected a {begin, end} offset pair")
		}
		r, err := rangeFromPair(first, second)
		if err != nil {
			return malformed("%v", err)
		}
		*dst = append(*dst, r)
		return nil
	}
}

// insertedBetweenListProp decodes has_data_members_inserted_between: a
// tuple of one or more {begin, end} pairs.
func insertedBetweenListProp(dst *[]*OffsetRange) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		tuple, ok := prop.Value.(*ini.TupleValue)
		if !ok {
			return malformed("expected a tuple of {begin, end} offset pairs")
		}
		for _, item := range tuple.Items {
			first, second, ok := asPair(item)
			if !ok {
				return malformed("expected a {begin, end} offset pair, got %q", item)
			}
			r, err := rangeFromPair(first, second)
			if err != nil {
				return malformed("%v", err)
			}
			*dst = append(*dst, r)
		}
		return nil
	}
}

// parseParameterSpec parses the parameter property scalar:
// ['index] [/type-regex/ | type-name].
func (p *Parser) parseParameterSpec(s string) (*ParameterSpec, error) {
	s = strings.TrimSpace(s)
	spec := &ParameterSpec{}

	if strings.HasPrefix(s, "'") {
		s = s[1:]
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 {
			return nil, fmt.Errorf("expected a parameter index after the quote")
		}
		index, err := strconv.Atoi(s[:i])
		if err != nil {
			return nil, fmt.Errorf("invalid parameter index %q", s[:i])
		}
		spec.Index = index
		s = strings.TrimSpace(s[i:])
	}

	switch {
	case s == "":
		// Index-only specs are allowed; they assert the parameter
		// exists.
	case strings.HasPrefix(s, "/"):
		end := strings.LastIndex(s[1:], "/")
		if end < 0 {
			return nil, fmt.Errorf("unterminated type regex in parameter spec")
		}
		re, err := p.cache.Compile(s[1 : end+1])
		if err != nil {
			return nil, fmt.Errorf("cannot compile parameter type regex: %v", err)
		}
		spec.TypeNameRegex = re
	default:
		spec.TypeName = s
	}
	return spec, nil
}

func (p *Parser) parameterProp(dst *[]*ParameterSpec) func(*ini.Property) error {
	return func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected a parameter specification string")
		}
		spec, err := p.parseParameterSpec(s)
		if err != nil {
			return malformed("%v", err)
		}
		*dst = append(*dst, spec)
		return nil
	}
}

// </typed decoders>

// <section schemas>

func (p *Parser) baseSchema(b *Base) schema {
	return schema{
		"label":                {consume: stringProp(&b.Label)},
		"drop":                 {consume: boolProp(&b.DropsArtifact)},
		"drop_artifact":        {consume: boolProp(&b.DropsArtifact)},
		"file_name_regexp":     {sufficient: true, consume: p.regexProp(&b.FileNameRegex)},
		"file_name_not_regexp": {sufficient: true, consume: p.regexProp(&b.FileNameNotRegex)},
		"soname_regexp":        {sufficient: true, consume: p.regexProp(&b.SonameRegex)},
		"soname_not_regexp":    {sufficient: true, consume: p.regexProp(&b.SonameNotRegex)},
	}
}

func (p *Parser) typeSchema(t *TypeSuppression) schema {
	sch := p.baseSchema(&t.Base)
	sch["name"] = propertySpec{sufficient: true, consume: stringProp(&t.TypeName)}
	sch["name_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&t.TypeNameRegex)}
	sch["name_not_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&t.TypeNameNotRegex)}
	sch["type_kind"] = propertySpec{sufficient: true, consume: func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected a type kind")
		}
		kind, ok := ParseTypeKind(s)
		if !ok {
			return malformed("unknown type kind %q", s)
		}
		t.ConsiderTypeKind = true
		t.TypeKind = kind
		return nil
	}}
	sch["accessed_through"] = propertySpec{consume: func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected a reach kind")
		}
		kind, ok := ParseReachKind(s)
		if !ok {
			return malformed("unknown reach kind %q", s)
		}
		t.ConsiderReachKind = true
		t.ReachKind = kind
		return nil
	}}
	sch["source_location_not_in"] = propertySpec{sufficient: true, consume: stringSetProp(&t.SourceLocationsToKeep)}
	sch["source_location_not_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&t.SourceLocationToKeepRegex)}
	sch["has_data_member_inserted_at"] = propertySpec{consume: insertedAtProp(&t.InsertionRanges)}
	sch["has_data_member_inserted_between"] = propertySpec{consume: insertedBetweenProp(&t.InsertionRanges)}
	sch["has_data_members_inserted_between"] = propertySpec{consume: insertedBetweenListProp(&t.InsertionRanges)}
	sch["changed_enumerators"] = propertySpec{consume: stringListProp(&t.ChangedEnumeratorNames)}
	return sch
}

func (p *Parser) functionSchema(f *FunctionSuppression) schema {
	sch := p.baseSchema(&f.Base)
	sch["label"] = propertySpec{sufficient: true, consume: stringProp(&f.Label)}
	sch["name"] = propertySpec{sufficient: true, consume: stringProp(&f.Name)}
	sch["name_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&f.NameRegex)}
	sch["name_not_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&f.NameNotRegex)}
	sch["change_kind"] = propertySpec{consume: func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected a change kind")
		}
		kind, ok := ParseFunctionChangeKind(s)
		if !ok {
			return malformed("unknown change kind %q", s)
		}
		f.ChangeKind = kind
		return nil
	}}
	sch["allow_other_aliases"] = propertySpec{consume: boolProp(&f.AllowOtherAliases)}
	sch["return_type_name"] = propertySpec{sufficient: true, consume: stringProp(&f.ReturnTypeName)}
	sch["return_type_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&f.ReturnTypeRegex)}
	sch["parameter"] = propertySpec{sufficient: true, repeatable: true, consume: p.parameterProp(&f.ParameterSpecs)}
	sch["symbol_name"] = propertySpec{sufficient: true, consume: stringProp(&f.SymbolName)}
	sch["symbol_name_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&f.SymbolNameRegex)}
	sch["symbol_name_not_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&f.SymbolNameNotRegex)}
	sch["symbol_version"] = propertySpec{sufficient: true, consume: stringProp(&f.SymbolVersion)}
	sch["symbol_version_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&f.SymbolVersionRegex)}
	return sch
}

func (p *Parser) variableSchema(v *VariableSuppression) schema {
	sch := p.baseSchema(&v.Base)
	sch["label"] = propertySpec{sufficient: true, consume: stringProp(&v.Label)}
	sch["name"] = propertySpec{sufficient: true, consume: stringProp(&v.Name)}
	sch["name_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&v.NameRegex)}
	sch["name_not_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&v.NameNotRegex)}
	sch["change_kind"] = propertySpec{consume: func(prop *ini.Property) error {
		s, ok := asString(prop.Value)
		if !ok {
			return malformed("expected a change kind")
		}
		kind, ok := ParseVariableChangeKind(s)
		if !ok {
			return malformed("unknown change kind %q", s)
		}
		v.ChangeKind = kind
		return nil
	}}
	sch["symbol_name"] = propertySpec{sufficient: true, consume: stringProp(&v.SymbolName)}
	sch["symbol_name_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&v.SymbolNameRegex)}
	sch["symbol_name_not_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&v.SymbolNameNotRegex)}
	sch["symbol_version"] = propertySpec{sufficient: true, consume: stringProp(&v.SymbolVersion)}
	sch["symbol_version_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&v.SymbolVersionRegex)}
	sch["type_name"] = propertySpec{sufficient: true, consume: stringProp(&v.TypeName)}
	sch["type_name_regexp"] = propertySpec{sufficient: true, consume: p.regexProp(&v.TypeNameRegex)}
	return sch
}

// fileSchema accepts only the label and the binary-scope regexes.
// The drop behavior of a file suppression is derived from its SONAME
// predicates, never read from a property.
func (p *Parser) fileSchema(f *FileSuppression) schema {
	sch := p.baseSchema(&f.Base)
	delete(sch, "drop")
	delete(sch, "drop_artifact")
	return sch
}

// </section schemas>

// <post-validation>

// typePostValidate enforces the invariants that cut across properties:
// drop needs a name or location predicate, and changed_enumerators
// needs type_kind = enum.
func typePostValidate(t *TypeSuppression, sec *ini.Section, diag diagFunc) {
	if t.DropsArtifact &&
		t.TypeName == "" &&
		t.TypeNameRegex == nil &&
		t.SourceLocationToKeepRegex == nil &&
		len(t.SourceLocationsToKeep) == 0 {
		diag(DiagDropIgnored, sec.Line, "drop",
			"section [%s] would drop artifacts it cannot designate; ignoring the drop property", sec.Name)
		t.DropsArtifact = false
	}
	if !t.ConsiderTypeKind || t.TypeKind != EnumTypeKind {
		t.ChangedEnumeratorNames = nil
	}
}

func functionPostValidate(f *FunctionSuppression, sec *ini.Section, diag diagFunc) {
	if f.DropsArtifact &&
		f.Name == "" && f.NameRegex == nil && f.NameNotRegex == nil &&
		f.SymbolName == "" && f.SymbolNameRegex == nil && f.SymbolNameNotRegex == nil {
		diag(DiagDropIgnored, sec.Line, "drop",
			"section [%s] would drop artifacts it cannot designate; ignoring the drop property", sec.Name)
		f.DropsArtifact = false
	}
}

func variablePostValidate(v *VariableSuppression, sec *ini.Section, diag diagFunc) {
	if v.DropsArtifact &&
		v.Name == "" && v.NameRegex == nil && v.NameNotRegex == nil &&
		v.SymbolName == "" && v.SymbolNameRegex == nil && v.SymbolNameNotRegex == nil {
		diag(DiagDropIgnored, sec.Line, "drop",
			"section [%s] would drop artifacts it cannot designate; ignoring the drop property", sec.Name)
		v.DropsArtifact = false
	}
}

// </post-validation>
