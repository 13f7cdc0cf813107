package mint

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/pkg/storage"
)

// SimulatedConfig contains simulated minter configuration
type SimulatedConfig struct {
	Delay          time.Duration `json:"delay"`
	MetadataBucket string        `json:"metadata_bucket"`
	ImageURL       string        `json:"image_url"`
}

// DefaultSimulatedConfig returns the journey's reference pacing
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		Delay:          3 * time.Second,
		MetadataBucket: "superlearn-badges",
		ImageURL:       "https://superlearn.app/badges/crypto-explorer.png",
	}
}

// SimulatedMinter waits a fixed delay, stores badge metadata and returns a
// receipt with a random transaction hash.
type SimulatedMinter struct {
	config  SimulatedConfig
	storage storage.S3Client
	logger  *zap.Logger
}

// NewSimulatedMinter creates a new simulated minter
func NewSimulatedMinter(config SimulatedConfig, s3 storage.S3Client, logger *zap.Logger) *SimulatedMinter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedMinter{
		config:  config,
		storage: s3,
		logger:  logger,
	}
}

// Mint waits for the simulated network latency and issues a receipt
func (m *SimulatedMinter) Mint(ctx context.Context, req Request) (*Receipt, error) {
	if m.config.Delay > 0 {
		timer := time.NewTimer(m.config.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("mint cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	txHash, err := randomTxHash()
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	receipt := &Receipt{
		TokenID:   tokenID,
		TxHash:    txHash,
		Recipient: req.Recipient,
		MintedAt:  time.Now(),
	}

	if m.storage != nil {
		uri, err := m.storeMetadata(ctx, tokenID, req)
		if err != nil {
			return nil, err
		}
		receipt.MetadataURI = uri
	}

	m.logger.Info("Badge minted",
		zap.String("session_id", req.SessionID.String()),
		zap.String("token_id", tokenID),
		zap.String("tx_hash", txHash))

	return receipt, nil
}

func (m *SimulatedMinter) storeMetadata(ctx context.Context, tokenID string, req Request) (string, error) {
	body, err := json.Marshal(BuildMetadata(req, m.config.ImageURL))
	if err != nil {
		return "", fmt.Errorf("failed to marshal badge metadata: %w", err)
	}

	key := fmt.Sprintf("badges/%s.json", tokenID)
	uri, err := m.storage.Upload(ctx, m.config.MetadataBucket, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return "", fmt.Errorf("failed to store badge metadata: %w", err)
	}
	return uri, nil
}

// BuildMetadata renders the ERC-721 metadata for a badge
func BuildMetadata(req Request, imageURL string) Metadata {
	name := req.LearnerName
	if name == "" {
		name = "Crypto Explorer"
	}
	return Metadata{
		Name:        fmt.Sprintf("SuperLearn Crypto Badge: %s", name),
		Description: "Awarded for creating a wallet, chatting with the AI mentor and passing the crypto quiz.",
		Image:       imageURL,
		Attributes: []Attribute{
			{TraitType: "quiz_score", Value: req.QuizScore},
			{TraitType: "questions", Value: req.QuestionCount},
			{TraitType: "wallet", Value: req.Recipient},
		},
	}
}

func randomTxHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate transaction hash: %w", err)
	}
	return "0x" + hex.EncodeToString(b), nil
}
