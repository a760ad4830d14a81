// cmd/tools/worker-generator/templates.go
package main

const handlerTemplate = `// {{ .Dir }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"{{ .Module }}/internal/common/logger"
	"{{ .Module }}/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{ .TaskType }}"

var (
{{- range .Errors }}
	{{ .Name }} = errors.New("{{ .Code }}")
{{- end }}
)

var inputValidator = validation.MustCompile(inputSchema)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &vars); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}
	result, err := inputValidator.Validate(vars)
	if err != nil {
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}
	if !result.Valid {
		h.failJob(client, job, "PARSE_ERROR", result.Summary())
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, errorCode(err), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// TODO: implement {{ .TaskType }}
	return &Output{}, nil
}

func errorCode(err error) string {
{{- range .Errors }}
	if errors.Is(err, {{ .Name }}) {
		return {{ .Name }}.Error()
	}
{{- end }}
	return "INTERNAL_ERROR"
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const configTemplate = `// {{ .Dir }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: {{ .TimeoutExpr }}}
}
`

const modelsTemplate = `// {{ .Dir }}/models.go
package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSON }}\"`" + `
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSON }}\"`" + `
{{- end }}
}

const inputSchema = ` + "`{{ .InputSchemaJSON }}`" + `
`

const testTemplate = `// {{ .Dir }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"{{ .Module }}/internal/common/logger"

	"github.com/stretchr/testify/require"
)

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	require.NotNil(t, output)
}
`
