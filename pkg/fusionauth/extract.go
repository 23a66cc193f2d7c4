package fusionauth

import (
	"html"
	"regexp"
	"strings"
)

const executionField = "execution"

var (
	inputTagRE = regexp.MustCompile(`(?is)<input\b[^>]*>`)
	tagAttrRE  = regexp.MustCompile(`(?s)([a-zA-Z_:][-a-zA-Z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `/]+))`)
)

// ExtractExecution returns the value of the hidden "execution" input of a CAS
// login page. Only <input> tags are scanned, so markup elsewhere on the page
// can be as broken as it likes. The page must contain exactly one such input
// with a non-empty value (repeats carrying the same value are tolerated);
// anything else is reported as ErrExtraction, since it means the page markup
// changed or the session was not initialised.
func ExtractExecution(page string) (string, error) {
	var (
		value string
		found int
	)

	for _, tag := range inputTagRE.FindAllString(page, -1) {
		attrs := inputAttrs(tag)
		if attrs["name"] != executionField {
			continue
		}

		v, hasValue := attrs["value"]
		v = strings.TrimSpace(v)
		switch {
		case !hasValue:
			return "", newError(KindServiceUnavailable, StepExecutionFetch, "execution field has no value")
		case v == "":
			return "", newError(KindServiceUnavailable, StepExecutionFetch, "execution field is empty")
		case found > 0 && v != value:
			return "", newError(KindServiceUnavailable, StepExecutionFetch, "found conflicting execution fields")
		}
		value = v
		found++
	}

	if found == 0 {
		return "", newError(KindServiceUnavailable, StepExecutionFetch, "execution field not found")
	}
	return value, nil
}

// inputAttrs reads the quoted or bare attributes of a single tag. Names are
// lower-cased, values are entity-decoded, and the first occurrence wins.
func inputAttrs(tag string) map[string]string {
	attrs := make(map[string]string, 4)
	for _, m := range tagAttrRE.FindAllStringSubmatch(tag, -1) {
		key := strings.ToLower(m[1])
		if _, dup := attrs[key]; dup {
			continue
		}
		attrs[key] = html.UnescapeString(m[2] + m[3] + m[4])
	}
	return attrs
}
