package llm

import (
	"context"
	"fmt"

	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
)

func completionErr(err error, detail string) error {
	return &apperrors.CompletionError{Err: err, Detail: detail}
}

func completionErrStatus(statusCode int, detail string) error {
	return &apperrors.CompletionError{StatusCode: statusCode, Detail: detail}
}

// ReviewCode asks the model for a code review of the given source.
func ReviewCode(ctx context.Context, client Client, code string) (string, error) {
	messages := []Message{
		{
			Role: "system",
			Content: "You are a professional code reviewer. Review the provided code and " +
				"point out potential problems, improvement suggestions and best practices.",
		},
		{Role: "user", Content: fmt.Sprintf("Please review the following code:\n\n%s", code)},
	}
	return client.Complete(ctx, messages)
}

// ExplainCode asks the model for a plain-language explanation of the given source.
func ExplainCode(ctx context.Context, client Client, code string) (string, error) {
	messages := []Message{
		{
			Role: "system",
			Content: "You are a professional code explainer. Explain the provided code in a " +
				"clear and accessible way, covering its purpose, mechanism and key points.",
		},
		{Role: "user", Content: fmt.Sprintf("Please explain the following code:\n\n%s", code)},
	}
	return client.Complete(ctx, messages)
}
