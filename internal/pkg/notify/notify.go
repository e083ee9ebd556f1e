package notify

import (
	"context"
)

// CodeSender delivers one-time registration codes.
type CodeSender interface {
	// SendCode delivers code to toEmail. role is the account type the code
	// registers and only affects the message wording.
	SendCode(ctx context.Context, toEmail, code, role string) error
}
