package notify

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Direct upload filename schema: modelname_modelversion_ppfunc_cuts_etc.
var (
	predictRe      = regexp.MustCompile(`^directupload_([^_]+)_([0-9]+)_([^_]+)_([0-9]+)_.+$`)
	benchmarkingRe = regexp.MustCompile(`benchmarking([0-9]+)special`)
)

type predictFields struct {
	ModelName    string
	ModelVersion string
	Postprocess  string
	Cuts         string
}

// directUploadName strips the prefix from key and reports whether the
// remainder is a direct upload (web uploads and nested keys are not).
func directUploadName(key, prefix string) (string, bool) {
	name := strings.TrimPrefix(key, prefix)
	if name == key || strings.Contains(name, "/") {
		return "", false
	}
	if !strings.HasPrefix(name, "directupload_") {
		return "", false
	}
	return name, true
}

func parsePredictFields(filename string) (predictFields, error) {
	m := predictRe.FindStringSubmatch(filename)
	if m == nil {
		return predictFields{}, fmt.Errorf("filename %q does not match the direct upload schema", filename)
	}
	return predictFields{
		ModelName:    m[1],
		ModelVersion: m[2],
		Postprocess:  m[3],
		Cuts:         m[4],
	}, nil
}

// expandBenchmarking turns a benchmarkingNNNspecial upload into NNN entry
// names, the image index spliced in before the extension. Anything else
// expands to itself.
func expandBenchmarking(filename string) []string {
	m := benchmarkingRe.FindStringSubmatch(filename)
	if m == nil {
		return []string{filename}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return []string{filename}
	}

	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, base+strconv.Itoa(i)+ext)
	}
	return out
}
