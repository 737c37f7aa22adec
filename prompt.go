package scenic

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompts/reasoner_system.md
var reasonerSystemPrompt string

//go:embed prompts/reasoner_user.md
var reasonerUserTemplate string

//go:embed prompts/vision_system.md
var visionSystemPrompt string

//go:embed prompts/vision_describe.md
var visionDescribeTemplate string

//go:embed prompts/vision_compare.md
var visionCompareTemplate string

//go:embed prompts/vision_judge.md
var visionJudgeTemplate string

// maxPayloadChars bounds a single tool payload rendered into the reasoning prompt.
const maxPayloadChars = 2000

var promptFuncs = template.FuncMap{
	"json": func(v any) string {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	},
	"payload": func(v any) string {
		var s string
		switch p := v.(type) {
		case string:
			s = p
		case nil:
			s = ""
		default:
			raw, err := json.Marshal(p)
			if err != nil {
				s = fmt.Sprintf("%v", p)
			} else {
				s = string(raw)
			}
		}
		return truncateText(s, maxPayloadChars)
	},
}

var (
	reasonerUserTmpl   = template.Must(template.New("reasoner_user").Funcs(promptFuncs).Parse(reasonerUserTemplate))
	visionDescribeTmpl = template.Must(template.New("vision_describe").Parse(visionDescribeTemplate))
	visionCompareTmpl  = template.Must(template.New("vision_compare").Parse(visionCompareTemplate))
	visionJudgeTmpl    = template.Must(template.New("vision_judge").Parse(visionJudgeTemplate))
)

type toolView struct {
	Name        string
	Description string
	Params      []paramView
}

type paramView struct {
	Name        string
	Type        ParameterType
	Description string
	Required    bool
	Enum        []string
}

func newToolViews(caps []Capability) []toolView {
	views := make([]toolView, len(caps))
	for i, c := range caps {
		required := make(map[string]bool, len(c.Required))
		for _, r := range c.Required {
			required[r] = true
		}

		names := make([]string, 0, len(c.Parameters))
		for name := range c.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)

		params := make([]paramView, 0, len(names))
		for _, name := range names {
			p := c.Parameters[name]
			params = append(params, paramView{
				Name:        name,
				Type:        p.Type,
				Description: p.Description,
				Required:    required[name],
				Enum:        p.Enum,
			})
		}

		views[i] = toolView{Name: c.Name, Description: c.Description, Params: params}
	}
	return views
}

type reasonerPromptData struct {
	Goal        string
	Tools       []toolView
	Compressed  []string
	Recent      []Step
	Failed      []string
	Attachments []string
	Observation string
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return b.String(), nil
}
