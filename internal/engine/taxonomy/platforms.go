package taxonomy

import "github.com/crimson-sun/sift/internal/model"

// Platform maps a URL substring to the artifact type that platform serves.
type Platform struct {
	Match      string
	Type       model.DataType
	Confidence float64
}

// Platforms is evaluated in order; more specific substrings come first.
var Platforms = []Platform{
	{"sentry.io", model.LogsAndErrors, 0.94},
	{"rollbar.com", model.LogsAndErrors, 0.92},
	{"bugsnag.com", model.LogsAndErrors, 0.92},
	{"app.datadoghq.com/logs", model.LogsAndErrors, 0.92},
	{"papertrailapp.com", model.LogsAndErrors, 0.90},
	{"loggly.com", model.LogsAndErrors, 0.90},
	{"splunkcloud.com", model.LogsAndErrors, 0.90},
	{"/app/kibana", model.LogsAndErrors, 0.90},
	{"console.cloud.google.com/logs", model.LogsAndErrors, 0.90},
	{"console.aws.amazon.com/cloudwatch", model.MetricsAndPerformance, 0.88},

	{"grafana.net", model.MetricsAndPerformance, 0.92},
	{"/grafana/", model.MetricsAndPerformance, 0.90},
	{"app.datadoghq.com", model.MetricsAndPerformance, 0.90},
	{"newrelic.com", model.MetricsAndPerformance, 0.90},
	{"dynatrace.com", model.MetricsAndPerformance, 0.88},
	{"appdynamics.com", model.MetricsAndPerformance, 0.88},
	{"/prometheus/", model.MetricsAndPerformance, 0.88},

	{"gist.github.com", model.SourceCode, 0.92},
	{"github.com", model.SourceCode, 0.88},
	{"gitlab.com", model.SourceCode, 0.88},
	{"bitbucket.org", model.SourceCode, 0.87},
	{"sourcegraph.com", model.SourceCode, 0.87},

	{"stackoverflow.com", model.UnstructuredText, 0.86},
	{"readthedocs.io", model.UnstructuredText, 0.86},
	{"atlassian.net/wiki", model.UnstructuredText, 0.85},
	{"notion.so", model.UnstructuredText, 0.85},
	{"docs.", model.UnstructuredText, 0.85},
}

// ContextKeyword maps a page-context keyword to the type that tool produces.
type ContextKeyword struct {
	Keyword    string
	Type       model.DataType
	Confidence float64
}

// ContextKeywords is evaluated in order against the lower-cased context.
var ContextKeywords = []ContextKeyword{
	{"sentry", model.LogsAndErrors, 0.92},
	{"kibana", model.LogsAndErrors, 0.90},
	{"splunk", model.LogsAndErrors, 0.90},
	{"loki", model.LogsAndErrors, 0.88},
	{"cloudwatch logs", model.LogsAndErrors, 0.88},
	{"grafana", model.MetricsAndPerformance, 0.90},
	{"prometheus", model.MetricsAndPerformance, 0.90},
	{"datadog", model.MetricsAndPerformance, 0.88},
	{"new relic", model.MetricsAndPerformance, 0.87},
	{"github", model.SourceCode, 0.88},
	{"gitlab", model.SourceCode, 0.87},
	{"jira", model.UnstructuredText, 0.85},
	{"confluence", model.UnstructuredText, 0.85},
}

// FailureSuggestions is offered when the rule-based tier cannot decide.
var FailureSuggestions = []model.DataType{
	model.LogsAndErrors,
	model.UnstructuredText,
	model.StructuredConfig,
}
