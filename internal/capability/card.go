package capability

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// AgentCard is the self-description an agent server publishes at
// /.well-known/agent.json.
type AgentCard struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Version     string  `json:"version"`
	Category    string  `json:"category"`
	Skills      []Skill `json:"skills"`
	Checksum    string  `json:"checksum"`
	Signature   string  `json:"signature,omitempty"`
}

// Skill is one advertised capability of an agent.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// ComputeChecksum returns a deterministic hash of the card payload (excluding checksum and signature).
func ComputeChecksum(card AgentCard) (string, error) {
	payload := map[string]interface{}{
		"name":        card.Name,
		"description": card.Description,
		"url":         card.URL,
		"version":     card.Version,
		"category":    card.Category,
		"skills":      card.Skills,
	}
	normalized, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:]), nil
}

// SignCard computes an HMAC signature using the signing secret.
func SignCard(card AgentCard, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret is empty")
	}
	checksum, err := ComputeChecksum(card)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(checksum))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Seal fills Checksum and, when secret is set, Signature.
func Seal(card AgentCard, secret string) (AgentCard, error) {
	checksum, err := ComputeChecksum(card)
	if err != nil {
		return card, err
	}
	card.Checksum = checksum
	card.Signature = ""
	if secret == "" {
		return card, nil
	}
	sig, err := SignCard(card, secret)
	if err != nil {
		return card, err
	}
	card.Signature = sig
	return card, nil
}

// VerifyCard checks the checksum and, when secret is set, the signature.
func VerifyCard(card AgentCard, secret string) error {
	checksum, err := ComputeChecksum(card)
	if err != nil {
		return err
	}
	if card.Checksum != "" && card.Checksum != checksum {
		return fmt.Errorf("checksum mismatch")
	}
	if secret == "" {
		return nil
	}
	expected, err := SignCard(card, secret)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(card.Signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
