// Package mint produces the celebratory badge NFT at the end of the journey.
// Nothing is submitted to a chain; receipts are simulated.
package mint

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Request describes the badge to mint
type Request struct {
	SessionID     uuid.UUID `json:"session_id"`
	Recipient     string    `json:"recipient"`
	LearnerName   string    `json:"learner_name"`
	QuizScore     int       `json:"quiz_score"`
	QuestionCount int       `json:"question_count"`
}

// Receipt is returned once a badge is minted
type Receipt struct {
	TokenID     string    `json:"token_id"`
	TxHash      string    `json:"tx_hash"`
	MetadataURI string    `json:"metadata_uri"`
	Recipient   string    `json:"recipient"`
	MintedAt    time.Time `json:"minted_at"`
}

// Minter mints a badge for a learner
type Minter interface {
	Mint(ctx context.Context, req Request) (*Receipt, error)
}

// Attribute is an ERC-721 metadata trait
type Attribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// Metadata is the ERC-721 JSON document stored for each badge
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}
