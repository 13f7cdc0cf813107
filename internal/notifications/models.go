package notifications

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"superlearn/learning-portal/learning-portal-backend/internal/journey"
)

// BadgeNotice announces a freshly minted badge
type BadgeNotice struct {
	SessionID   uuid.UUID `json:"session_id"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name"`
	Wallet      string    `json:"wallet"`
	TokenID     string    `json:"token_id"`
	TxHash      string    `json:"tx_hash"`
	MetadataURI string    `json:"metadata_uri,omitempty"`
	MintedAt    time.Time `json:"minted_at"`
}

// NewBadgeNotice builds a notice from an nft_minted event
func NewBadgeNotice(e journey.Event) (BadgeNotice, error) {
	if e.Kind != journey.EventNFTMinted || e.View.Receipt == nil {
		return BadgeNotice{}, fmt.Errorf("event %s carries no badge", e.Kind)
	}

	r := e.View.Receipt
	email, _ := e.Detail["email"].(string)
	return BadgeNotice{
		SessionID:   e.SessionID,
		Email:       email,
		Name:        e.View.LearnerName,
		Wallet:      r.Recipient,
		TokenID:     r.TokenID,
		TxHash:      r.TxHash,
		MetadataURI: r.MetadataURI,
		MintedAt:    r.MintedAt,
	}, nil
}

func (n BadgeNotice) subject() string {
	return "You earned your SuperLearn crypto badge!"
}

func (n BadgeNotice) textBody() string {
	name := n.Name
	if name == "" {
		name = "Explorer"
	}
	return fmt.Sprintf(`Congratulations %s!

You created a wallet, chatted with your AI mentor and passed the crypto quiz.
Your badge NFT is now in your wallet.

Wallet:      %s
Token:       %s
Transaction: %s
`, name, n.Wallet, n.TokenID, n.TxHash)
}
