package mail

import (
	"context"
	"fmt"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// Enqueuer accepts an email for asynchronous delivery.
type Enqueuer interface {
	Enqueue(email ports.Email) error
}

// VerificationNotifier renders the verification mail and queues it. Delivery
// happens later, so a nil error only means the mail was accepted.
type VerificationNotifier struct {
	composer Composer
	queue    Enqueuer
}

func NewVerificationNotifier(composer Composer, queue Enqueuer) *VerificationNotifier {
	return &VerificationNotifier{composer: composer, queue: queue}
}

var _ ports.VerificationSender = (*VerificationNotifier)(nil)

func (n *VerificationNotifier) SendVerification(_ context.Context, account *domain.Account) error {
	email, err := n.composer.Verification(account)
	if err != nil {
		return err
	}
	if err := n.queue.Enqueue(email); err != nil {
		return fmt.Errorf("queue verification email: %w", err)
	}
	return nil
}
