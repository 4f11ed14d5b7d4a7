package report

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"

	"github.com/apivet/apivet/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONRenderer emits the schema-stable JSON report, the sole contract
// consumed by downstream tooling.
type JSONRenderer struct {
	// Indent pretty-prints the output; CI consumers usually leave it off.
	Indent bool
}

var _ model.Renderer = JSONRenderer{}

func (JSONRenderer) Name() string { return "json" }

func (r JSONRenderer) Render(report *model.Report) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if r.Indent {
		out, err = json.MarshalIndent(report, "", "  ")
	} else {
		out, err = json.Marshal(report)
	}
	if err != nil {
		return nil, errm.Wrap(err, "failed to marshal report")
	}
	return out, nil
}
