package suppression

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/abi-scope/abiscope/pkg/ini"
)

// SectionOf renders a rule back to an INI section holding its
// recognized properties. Parsing the rendered section yields an equal
// rule; unparsable state (such as the artificial flag) is not
// represented.
func SectionOf(s Suppression) *ini.Section {
	switch s := s.(type) {
	case *TypeSuppression:
		return typeSection(s)
	case *FunctionSuppression:
		return functionSection(s)
	case *VariableSuppression:
		return variableSection(s)
	case *FileSuppression:
		sec := &ini.Section{Name: "suppress_file"}
		baseProperties(sec, &s.Base, false)
		return sec
	default:
		return nil
	}
}

func addString(sec *ini.Section, name, value string) {
	if value == "" {
		return
	}
	sec.Properties = append(sec.Properties, &ini.Property{
		Name:  name,
		Value: &ini.StringValue{Content: value},
	})
}

func addRegex(sec *ini.Section, name string, re *regexp.Regexp) {
	if re == nil {
		return
	}
	addString(sec, name, re.String())
}

func addList(sec *ini.Section, name string, items []string) {
	switch len(items) {
	case 0:
	case 1:
		addString(sec, name, items[0])
	default:
		sec.Properties = append(sec.Properties, &ini.Property{
			Name:  name,
			Value: &ini.ListValue{Items: items},
		})
	}
}

// baseProperties emits the shared properties. The drop flag is
// emitted only when asked: a file suppression derives it from its
// SONAME predicates instead of reading it.
func baseProperties(sec *ini.Section, b *Base, withDrop bool) {
	addString(sec, "label", b.Label)
	if withDrop && b.DropsArtifact {
		addString(sec, "drop", "yes")
	}
	addRegex(sec, "file_name_regexp", b.FileNameRegex)
	addRegex(sec, "file_name_not_regexp", b.FileNameNotRegex)
	addRegex(sec, "soname_regexp", b.SonameRegex)
	addRegex(sec, "soname_not_regexp", b.SonameNotRegex)
}

func typeSection(t *TypeSuppression) *ini.Section {
	sec := &ini.Section{Name: "suppress_type"}
	baseProperties(sec, &t.Base, true)
	addString(sec, "name", t.TypeName)
	addRegex(sec, "name_regexp", t.TypeNameRegex)
	addRegex(sec, "name_not_regexp", t.TypeNameNotRegex)
	if t.ConsiderTypeKind {
		addString(sec, "type_kind", t.TypeKind.String())
	}
	if t.ConsiderReachKind {
		addString(sec, "accessed_through", t.ReachKind.String())
	}
	if len(t.SourceLocationsToKeep) > 0 {
		keep := make([]string, 0, len(t.SourceLocationsToKeep))
		for loc := range t.SourceLocationsToKeep {
			keep = append(keep, loc)
		}
		sort.Strings(keep)
		addList(sec, "source_location_not_in", keep)
	}
	addRegex(sec, "source_location_not_regexp", t.SourceLocationToKeepRegex)
	addInsertionRanges(sec, t.InsertionRanges)
	addList(sec, "changed_enumerators", t.ChangedEnumeratorNames)
	return sec
}

func addInsertionRanges(sec *ini.Section, ranges []*OffsetRange) {
	switch len(ranges) {
	case 0:
	case 1:
		pair := &ini.ListValue{Items: []string{formatOffset(ranges[0].Begin), formatOffset(ranges[0].End)}}
		sec.Properties = append(sec.Properties, &ini.Property{
			Name:  "has_data_member_inserted_between",
			Value: &ini.TupleValue{Items: []ini.Value{pair}},
		})
	default:
		tuple := &ini.TupleValue{}
		for _, r := range ranges {
			pair := &ini.ListValue{Items: []string{formatOffset(r.Begin), formatOffset(r.End)}}
			tuple.Items = append(tuple.Items, &ini.TupleValue{Items: []ini.Value{pair}})
		}
		sec.Properties = append(sec.Properties, &ini.Property{
			Name:  "has_data_members_inserted_between",
			Value: tuple,
		})
	}
}

func functionSection(f *FunctionSuppression) *ini.Section {
	sec := &ini.Section{Name: "suppress_function"}
	baseProperties(sec, &f.Base, true)
	if f.ChangeKind != AllFunctionChanges {
		addString(sec, "change_kind", f.ChangeKind.String())
	}
	if !f.AllowOtherAliases {
		addString(sec, "allow_other_aliases", "no")
	}
	addString(sec, "name", f.Name)
	addRegex(sec, "name_regexp", f.NameRegex)
	addRegex(sec, "name_not_regexp", f.NameNotRegex)
	addString(sec, "return_type_name", f.ReturnTypeName)
	addRegex(sec, "return_type_regexp", f.ReturnTypeRegex)
	for _, p := range f.ParameterSpecs {
		addString(sec, "parameter", formatParameterSpec(p))
	}
	addString(sec, "symbol_name", f.SymbolName)
	addRegex(sec, "symbol_name_regexp", f.SymbolNameRegex)
	addRegex(sec, "symbol_name_not_regexp", f.SymbolNameNotRegex)
	addString(sec, "symbol_version", f.SymbolVersion)
	addRegex(sec, "symbol_version_regexp", f.SymbolVersionRegex)
	return sec
}

func formatParameterSpec(p *ParameterSpec) string {
	s := "'" + strconv.Itoa(p.Index)
	switch {
	case p.TypeNameRegex != nil:
		s += " /" + p.TypeNameRegex.String() + "/"
	case p.TypeName != "":
		s += " " + p.TypeName
	}
	return s
}

func variableSection(v *VariableSuppression) *ini.Section {
	sec := &ini.Section{Name: "suppress_variable"}
	baseProperties(sec, &v.Base, true)
	if v.ChangeKind != AllVariableChanges {
		addString(sec, "change_kind", v.ChangeKind.String())
	}
	addString(sec, "name", v.Name)
	addRegex(sec, "name_regexp", v.NameRegex)
	addRegex(sec, "name_not_regexp", v.NameNotRegex)
	addString(sec, "symbol_name", v.SymbolName)
	addRegex(sec, "symbol_name_regexp", v.SymbolNameRegex)
	addRegex(sec, "symbol_name_not_regexp", v.SymbolNameNotRegex)
	addString(sec, "symbol_version", v.SymbolVersion)
	addRegex(sec, "symbol_version_regexp", v.SymbolVersionRegex)
	addString(sec, "type_name", v.TypeName)
	addRegex(sec, "type_name_regexp", v.TypeNameRegex)
	return sec
}
