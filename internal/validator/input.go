package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/stratos/todochat/internal/types"
)

// spaceRegexp is compiled once at package init and reused across all Sanitize calls.
var spaceRegexp = regexp.MustCompile(`\s+`)

type InputValidator struct {
	maxLength   int
	maxMessages int
}

func NewInputValidator() *InputValidator {
	return &InputValidator{
		maxLength:   2000,
		maxMessages: 50,
	}
}

// Validate checks an incoming chat request before any model or gateway work.
func (v *InputValidator) Validate(req *types.ChatRequest) error {
	if len(req.Messages) == 0 {
		return errors.New("messages are required")
	}

	if len(req.Messages) > v.maxMessages {
		return fmt.Errorf("too many messages: maximum %d", v.maxMessages)
	}

	for i, m := range req.Messages {
		switch m.Role {
		case types.RoleUser, types.RoleModel, types.RoleTool:
		default:
			return fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
		if len(m.Content) > v.maxLength {
			return fmt.Errorf("message %d too long: maximum %d characters", i, v.maxLength)
		}
		if !utf8.ValidString(m.Content) {
			return fmt.Errorf("message %d: invalid UTF-8 encoding", i)
		}
	}

	if strings.TrimSpace(types.LastUserMessage(req.Messages)) == "" {
		return errors.New("latest user message is empty")
	}

	return nil
}

func (v *InputValidator) Sanitize(query string) string {
	query = strings.TrimSpace(query)
	query = spaceRegexp.ReplaceAllString(query, " ")
	return query
}
