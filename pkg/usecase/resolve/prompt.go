package resolve

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
)

//go:embed prompt/answer.md
var answerPromptRaw string

var answerPromptTmpl = template.Must(template.New("answer").Parse(answerPromptRaw))

//go:embed prompt/welcome.md
var welcomePromptRaw string

var welcomePromptTmpl = template.Must(template.New("welcome").Parse(welcomePromptRaw))

func buildAnswerPrompt(subject model.Subject, numerical bool) (string, error) {
	var buf bytes.Buffer
	if err := answerPromptTmpl.Execute(&buf, map[string]any{
		"Subject":   string(subject),
		"Numerical": numerical,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute answer prompt template")
	}

	return buf.String(), nil
}

func buildWelcomePrompt(subject model.Subject) (string, error) {
	var buf bytes.Buffer
	if err := welcomePromptTmpl.Execute(&buf, map[string]any{
		"Subject": string(subject),
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute welcome prompt template")
	}

	return buf.String(), nil
}
