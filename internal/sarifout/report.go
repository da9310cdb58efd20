// Package sarifout renders suppression-file diagnostics as a SARIF
// report, so rule files can be linted by CI systems that understand
// the format.
package sarifout

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/abi-scope/abiscope/pkg/suppression"
)

const informationURI = "https://github.com/abi-scope/abiscope"

// ruleDescriptions maps diagnostic kinds to the description shown in
// SARIF viewers.
var ruleDescriptions = map[suppression.DiagKind]string{
	suppression.DiagUnknownSection:      "The section name is not one of the recognized suppression kinds.",
	suppression.DiagUnknownProperty:     "The property is not accepted by the section's schema.",
	suppression.DiagRepeatedProperty:    "A non-repeatable property appears more than once.",
	suppression.DiagMalformedValue:      "The property value does not parse under its grammar.",
	suppression.DiagBadRegex:            "The regular expression does not compile.",
	suppression.DiagInsufficientSection: "The section carries no property that could justify it.",
	suppression.DiagDropIgnored:         "The drop directive needs a name-like predicate and was ignored.",
}

// WriteReport renders the diagnostics of one or more parsed
// suppression files as a SARIF 2.1.0 report on w. version is the tool
// version recorded in the report.
func WriteReport(w io.Writer, version string, diags []suppression.Diagnostic) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("abiscope", informationURI)
	run.Tool.Driver.Version = &version
	run.PropertyBag = *sarif.NewPropertyBag()
	run.Properties["runId"] = uuid.NewString()

	seenRules := map[suppression.DiagKind]bool{}
	for _, d := range diags {
		if !seenRules[d.Kind] {
			run.AddRule(d.Kind.RuleID()).
				WithDescription(ruleDescriptions[d.Kind]).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: "warning",
				})
			seenRules[d.Kind] = true
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(d.Path)).
				WithRegion(sarif.NewRegion().WithStartLine(d.Line)),
		)

		result := sarif.NewRuleResult(d.Kind.RuleID()).
			WithMessage(sarif.NewTextMessage(d.Message)).
			WithLevel("warning").
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}
