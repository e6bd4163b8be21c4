package bigo

import "testing"

// RequirePass logs the rendered report and fails t if err is non-nil: a
// ComplexityRegression becomes a test failure reporting observed vs. declared for
// every failing dimension, and any other error is treated as fatal since no
// classification was even attempted.
func RequirePass(t *testing.T, report *Report, err error) {
	t.Helper()

	if report != nil {
		t.Log(report.String())
	}

	switch e := err.(type) {
	case nil:
		return
	case *ComplexityRegression:
		t.Errorf("complexity regression in %q:\n%s", reportName(report), e.Error())
	default:
		t.Fatalf("analysis %q did not complete: %v", reportName(report), err)
	}
}

// RequireCRUDPass is RequirePass for a CRUDReport.
func RequireCRUDPass(t *testing.T, report *CRUDReport, err error) {
	t.Helper()

	if report != nil {
		t.Log(report.String())
	}

	switch e := err.(type) {
	case nil:
		return
	case *ComplexityRegression:
		t.Errorf("complexity regression in %q:\n%s", crudReportName(report), e.Error())
	default:
		t.Fatalf("CRUD analysis %q did not complete: %v", crudReportName(report), err)
	}
}

func reportName(r *Report) string {
	if r == nil {
		return "?"
	}
	return r.Name
}

func crudReportName(r *CRUDReport) string {
	if r == nil {
		return "?"
	}
	return r.Name
}
